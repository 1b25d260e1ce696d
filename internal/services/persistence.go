package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/darijalingo/practice-engine/internal/backend"
	"github.com/darijalingo/practice-engine/internal/models"
)

// FallbackBackendType is used for results whose game has no backend type.
const FallbackBackendType = "word_match"

// ResultSubmitter sends the results of a completed session to the backend.
type ResultSubmitter interface {
	// Submit posts one result per entry in playlist order. It returns true only
	// when every submission succeeded and never panics.
	Submit(ctx context.Context, session *models.Session, result models.SessionResult) bool
}

type resultSubmitter struct {
	client backend.Client
	logger *slog.Logger
}

func NewResultSubmitter(client backend.Client, logger *slog.Logger) ResultSubmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &resultSubmitter{client: client, logger: logger}
}

func (s *resultSubmitter) Submit(ctx context.Context, session *models.Session, result models.SessionResult) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Result submission panicked", "panic", fmt.Sprint(r))
			ok = false
		}
	}()

	ok = true
	for _, entry := range result.Results {
		gameType := backendTypeFor(session, entry.GameIndex)
		req := backend.SubmitResultRequest{
			Score:   scoreFor(entry.Correct),
			Answers: []backend.AnswerOutcome{{Correct: entry.Correct}},
		}
		if err := s.client.SubmitResult(ctx, gameType, req); err != nil {
			ok = false
			s.logger.Warn("Failed to submit game result",
				"game_index", entry.GameIndex,
				"game_type", gameType,
				"error", err)
			continue
		}
		s.logger.Debug("Game result submitted",
			"game_index", entry.GameIndex,
			"game_type", gameType)
	}
	return ok
}

func backendTypeFor(session *models.Session, index int) string {
	if session == nil || index < 0 || index >= len(session.Games) {
		return FallbackBackendType
	}
	if t := session.Games[index].BackendType; t != "" {
		return t
	}
	return FallbackBackendType
}

func scoreFor(correct bool) float64 {
	if correct {
		return 1.0
	}
	return 0.0
}
