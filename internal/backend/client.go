// Package backend talks to the external learning backend over JSON/HTTP.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/darijalingo/practice-engine/internal/models"
)

const (
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4 << 10
)

var ErrMissingBaseURL = errors.New("backend: base URL is not configured")

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend: %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}

// ID accepts numeric or string identifiers from the backend.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("backend: invalid id %s", b)
	}
	*id = ID(n.String())
	return nil
}

// SessionResponse is the raw playlist returned by GET /games/session.
type SessionResponse struct {
	ID         ID          `json:"id"`
	Level      string      `json:"level"`
	LevelLabel string      `json:"level_label"`
	Games      []GameEntry `json:"games"`
}

type GameEntry struct {
	GameType    string          `json:"game_type"`
	Type        string          `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Config      json.RawMessage `json:"config"`
	Data        json.RawMessage `json:"data"`
}

type AnswerOutcome struct {
	Correct bool `json:"correct"`
}

// SubmitResultRequest is the body of POST /games/{type}/submit.
type SubmitResultRequest struct {
	Score   float64         `json:"score"`
	Answers []AnswerOutcome `json:"answers"`
}

type CompleteLessonResponse struct {
	XPEarned int `json:"xp_earned"`
}

// Client is the backend surface the engine depends on.
type Client interface {
	GetSession(ctx context.Context) (*SessionResponse, error)
	SubmitResult(ctx context.Context, gameType string, req SubmitResultRequest) error
	GetLesson(ctx context.Context, id string) (*models.Lesson, error)
	CompleteLesson(ctx context.Context, id string, score float64) (*CompleteLessonResponse, error)
}

type HTTPClient struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

func NewHTTPClient(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *HTTPClient) GetSession(ctx context.Context) (*SessionResponse, error) {
	var out SessionResponse
	if err := c.do(ctx, http.MethodGet, nil, &out, "games", "session"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) SubmitResult(ctx context.Context, gameType string, req SubmitResultRequest) error {
	if strings.TrimSpace(gameType) == "" {
		return fmt.Errorf("backend: empty game type")
	}
	return c.do(ctx, http.MethodPost, req, nil, "games", gameType, "submit")
}

func (c *HTTPClient) GetLesson(ctx context.Context, id string) (*models.Lesson, error) {
	var out struct {
		ID ID `json:"id"`
		models.Lesson
	}
	if err := c.do(ctx, http.MethodGet, nil, &out, "lessons", id); err != nil {
		return nil, err
	}
	out.Lesson.ID = string(out.ID)
	return &out.Lesson, nil
}

func (c *HTTPClient) CompleteLesson(ctx context.Context, id string, score float64) (*CompleteLessonResponse, error) {
	var out CompleteLessonResponse
	body := map[string]float64{"score": score}
	if err := c.do(ctx, http.MethodPost, body, &out, "lessons", id, "complete"); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) do(ctx context.Context, method string, in, out any, segments ...string) error {
	if c.baseURL == "" {
		return ErrMissingBaseURL
	}
	endpoint, err := url.JoinPath(c.baseURL, segments...)
	if err != nil {
		return fmt.Errorf("backend: build url: %w", err)
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("backend: encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := BearerToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("Backend request failed", "method", method, "url", endpoint, "error", err)
		return fmt.Errorf("backend: %s %s: %w", method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Backend request",
		"method", method,
		"url", endpoint,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Method:     method,
			Path:       req.URL.Path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("backend: decode %s response: %w", req.URL.Path, err)
	}
	return nil
}

type tokenKey struct{}

// WithBearerToken attaches the learner's access token to ctx.
func WithBearerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, strings.TrimSpace(token))
}

func BearerToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// TokenFromHeader extracts the token from an Authorization header value.
func TokenFromHeader(header string) string {
	const prefix = "bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

