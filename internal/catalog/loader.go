// Package catalog turns the backend playlist into a playable session.
package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/darijalingo/practice-engine/internal/backend"
	"github.com/darijalingo/practice-engine/internal/engine"
	"github.com/darijalingo/practice-engine/internal/models"
	"github.com/google/uuid"
)

const (
	DefaultTimeout    = 10 * time.Second
	defaultLevelColor = "#0d9488"
	localIDPrefix     = "local-"
)

var ErrUnavailable = errors.New("session catalog unavailable")

// backendTypes maps backend game types onto playable kinds. Kind names map to
// themselves and are resolved by models.ParseGameKind.
var backendTypes = map[string]models.GameKind{
	"fill_blank":       models.GameFillInBlank,
	"conversation":     models.GameConversationSim,
	"listening":        models.GameMultipleChoice,
	"translation":      models.GameFillInBlank,
	"conjugation_quiz": models.GameMultipleChoice,
	"conjugation_fill": models.GameFillInBlank,
}

var levelColors = map[string]string{
	"a1": "#6366f1",
	"a2": "#0d9488",
	"b1": "#f59e0b",
	"b2": "#e11d48",
}

//go:embed fallback_session.json
var fallbackJSON []byte

// SessionSource is the part of the backend the loader reads from.
type SessionSource interface {
	GetSession(ctx context.Context) (*backend.SessionResponse, error)
}

type Config struct {
	Timeout         time.Duration
	FallbackEnabled bool
}

// Loader implements engine.Loader on top of the backend catalog.
type Loader struct {
	source SessionSource
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

var _ engine.Loader = (*Loader)(nil)

func NewLoader(source SessionSource, cfg Config, logger *slog.Logger) *Loader {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{source: source, cfg: cfg, logger: logger, now: time.Now}
}

// Load fetches and normalizes a session. When the catalog fails and the
// fallback playlist is enabled, the fallback is returned instead.
func (l *Loader) Load(ctx context.Context) (*models.Session, error) {
	session, err := l.load(ctx)
	if err == nil {
		return session, nil
	}
	if !l.cfg.FallbackEnabled {
		return nil, err
	}

	l.logger.Warn("Catalog unavailable, serving fallback playlist", "error", err)
	return FallbackSession(l.now())
}

func (l *Loader) load(ctx context.Context) (*models.Session, error) {
	ctx, cancel := context.WithTimeout(ctx, l.cfg.Timeout)
	defer cancel()

	raw, err := l.source.GetSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return Normalize(raw, l.now())
}

// Normalize converts a backend playlist. An empty playlist is an error.
func Normalize(raw *backend.SessionResponse, now time.Time) (*models.Session, error) {
	if raw == nil || len(raw.Games) == 0 {
		return nil, engine.ErrEmptySession
	}

	level := strings.TrimSpace(raw.Level)
	label := raw.LevelLabel
	if label == "" {
		label = strings.ToUpper(level)
	}
	s := &models.Session{
		ID:         string(raw.ID),
		Level:      level,
		LevelLabel: label,
		LevelColor: LevelColor(level),
		Games:      make([]models.GameConfig, 0, len(raw.Games)),
		LoadedAt:   now,
	}
	for _, g := range raw.Games {
		s.Games = append(s.Games, normalizeGame(g))
	}
	return s, nil
}

func normalizeGame(g backend.GameEntry) models.GameConfig {
	backendType := g.GameType
	if backendType == "" {
		backendType = g.Type
	}
	return models.GameConfig{
		Kind:        MapGameType(backendType),
		BackendType: backendType,
		RawType:     backendType,
		Title:       g.Title,
		Description: g.Description,
		Payload:     firstPayload(g.Config, g.Data),
	}
}

// MapGameType resolves a backend game type to a kind.
func MapGameType(t string) models.GameKind {
	if k, ok := backendTypes[t]; ok {
		return k
	}
	return models.ParseGameKind(t)
}

func LevelColor(level string) string {
	if c, ok := levelColors[strings.ToLower(level)]; ok {
		return c
	}
	return defaultLevelColor
}

func firstPayload(candidates ...json.RawMessage) json.RawMessage {
	for _, c := range candidates {
		t := bytes.TrimSpace(c)
		if len(t) > 0 && !bytes.Equal(t, []byte("null")) {
			return c
		}
	}
	return json.RawMessage("{}")
}

// FallbackSession builds the embedded illustrative playlist under a local id.
func FallbackSession(now time.Time) (*models.Session, error) {
	var raw backend.SessionResponse
	if err := json.Unmarshal(fallbackJSON, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode fallback playlist: %w", err)
	}
	s, err := Normalize(&raw, now)
	if err != nil {
		return nil, err
	}
	s.ID = localIDPrefix + uuid.NewString()
	s.Fallback = true
	return s, nil
}

// IsLocalID reports whether id was assigned to a fallback playlist.
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, localIDPrefix)
}
