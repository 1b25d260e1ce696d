package services

import (
	"context"
	"io"

	"github.com/darijalingo/practice-engine/internal/engine"
	"github.com/darijalingo/practice-engine/internal/games"
	"github.com/darijalingo/practice-engine/internal/models"
	"github.com/darijalingo/practice-engine/internal/repositories"
)

// ===== SERVICE INTERFACES =====

// PracticeService owns one live practice session per learner.
type PracticeService interface {
	StartSession(ctx context.Context, learnerID string, req *StartSessionRequest) (*SessionView, error)
	CurrentSession(ctx context.Context, learnerID string) (*SessionView, error)
	Act(ctx context.Context, learnerID string, action games.Action) (*ActionResponse, error)
	SubmitResult(ctx context.Context, learnerID string, req *SubmitResultRequest) (*SessionView, error)
	NextGame(ctx context.Context, learnerID string) (*SessionView, error)
	EndSession(ctx context.Context, learnerID string) (*SessionSummary, error)
	ResetSession(ctx context.Context, learnerID string) error

	// Wait blocks until every pending result reconciliation has finished.
	Wait()
}

type LessonService interface {
	GetLesson(ctx context.Context, lessonID string) (*LessonView, error)
	CheckAnswer(ctx context.Context, lessonID string, req *CheckAnswerRequest) (*CheckAnswerResponse, error)
	CompleteLesson(ctx context.Context, learnerID, lessonID string, req *CompleteLessonRequest) (*CompleteLessonResponse, error)
}

type ProgressService interface {
	GetProgress(ctx context.Context, learnerID string) (*models.Progress, error)
	ListSessions(ctx context.Context, learnerID string, filters repositories.SessionFilters) (*SessionHistoryResponse, error)
	ExportSessions(ctx context.Context, learnerID string, w io.Writer) error
}

// ===== REQUESTS =====

type StartSessionRequest struct {
	Script models.ScriptMode `json:"script" validate:"omitempty,script_mode"`
}

type SubmitResultRequest struct {
	GameIndex int  `json:"game_index" validate:"min=0"`
	Correct   bool `json:"correct"`
	Score     int  `json:"score" validate:"min=0"`
	Total     int  `json:"total" validate:"min=0,gtefield=Score"`
	Bonus     *int `json:"bonus,omitempty" validate:"omitempty,min=0"`
}

func (r SubmitResultRequest) GameResult() models.GameResult {
	return models.GameResult{
		Correct: r.Correct,
		Score:   r.Score,
		Total:   r.Total,
		Bonus:   r.Bonus,
	}
}

type CheckAnswerRequest struct {
	ExerciseIndex int    `json:"exercise_index" validate:"min=0"`
	Answer        string `json:"answer" validate:"required"`
}

type CompleteLessonRequest struct {
	Score float64 `json:"score"`
}

// ===== RESPONSES =====

type SessionView struct {
	State         engine.State         `json:"state"`
	SessionID     string               `json:"session_id,omitempty"`
	Level         string               `json:"level,omitempty"`
	LevelLabel    string               `json:"level_label,omitempty"`
	LevelColor    string               `json:"level_color,omitempty"`
	Fallback      bool                 `json:"fallback,omitempty"`
	GameIndex     int                  `json:"game_index"`
	GameCount     int                  `json:"game_count"`
	Game          *GameView            `json:"game,omitempty"`
	Results       []models.ResultEntry `json:"results"`
	TotalXPEarned int                  `json:"total_xp_earned"`
	Error         string               `json:"error,omitempty"`
	Retryable     bool                 `json:"retryable,omitempty"`
}

type GameView struct {
	Index       int             `json:"index"`
	Kind        models.GameKind `json:"kind"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Reported    bool            `json:"reported"`
	View        *games.View     `json:"view,omitempty"`
}

type ActionResponse struct {
	Feedback games.Feedback `json:"feedback"`
	Session  *SessionView   `json:"session"`
}

type SessionSummary struct {
	SessionID     string               `json:"session_id"`
	Level         string               `json:"level"`
	Fallback      bool                 `json:"fallback"`
	Results       []models.ResultEntry `json:"results"`
	GameCount     int                  `json:"game_count"`
	CorrectCount  int                  `json:"correct_count"`
	TotalXPEarned int                  `json:"total_xp_earned"`
	LedgerEntryID uint                 `json:"ledger_entry_id"`
	SyncStatus    models.SyncStatus    `json:"sync_status"`
}

type LessonView struct {
	ID                string                    `json:"id"`
	Title             string                    `json:"title"`
	Level             string                    `json:"level"`
	Content           models.LessonContent      `json:"content"`
	Exercises         []models.PracticeExercise `json:"exercises"`
	RomanizationTerms int                       `json:"romanization_terms"`
}

type CheckAnswerResponse struct {
	Correct  bool     `json:"correct"`
	Accepted []string `json:"accepted,omitempty"`
}

type CompleteLessonResponse struct {
	LessonID      string  `json:"lesson_id"`
	Score         float64 `json:"score"`
	XPEarned      int     `json:"xp_earned"`
	LedgerEntryID uint    `json:"ledger_entry_id,omitempty"`
}

type SessionHistoryResponse struct {
	Sessions []*models.SessionRecord `json:"sessions"`
	Total    int64                   `json:"total"`
	Limit    int                     `json:"limit"`
	Offset   int                     `json:"offset"`
}
