package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/darijalingo/practice-engine/internal/answers"
	"github.com/darijalingo/practice-engine/internal/backend"
	"github.com/darijalingo/practice-engine/internal/cache"
	"github.com/darijalingo/practice-engine/internal/events"
	"github.com/darijalingo/practice-engine/internal/models"
	"github.com/darijalingo/practice-engine/internal/repositories"
	"github.com/darijalingo/practice-engine/internal/validator"
)

const (
	PassMark              = 0.7
	DefaultLessonCacheTTL = 10 * time.Minute
)

type LessonOptions struct {
	CacheTTL time.Duration
	NewRand  func() *rand.Rand
}

type lessonService struct {
	client    backend.Client
	cache     cache.CacheService
	repo      repositories.Repository
	publisher events.EventPublisher
	validator *validator.Validator
	opts      LessonOptions
	logger    *slog.Logger
	ops       *ServiceLogger
}

func NewLessonService(
	client backend.Client,
	cacheService cache.CacheService,
	repo repositories.Repository,
	publisher events.EventPublisher,
	validator *validator.Validator,
	opts LessonOptions,
	logger *slog.Logger,
) LessonService {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultLessonCacheTTL
	}
	if opts.NewRand == nil {
		opts.NewRand = func() *rand.Rand { return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) }
	}
	return &lessonService{
		client:    client,
		cache:     cacheService,
		repo:      repo,
		publisher: publisher,
		validator: validator,
		opts:      opts,
		logger:    logger,
		ops:       NewServiceLogger(logger, LogConfig{Service: "practice", Component: "lesson"}),
	}
}

// GetLesson returns the lesson with its exercises normalized to multiple choice.
// The romanization table is rebuilt from the content on every call.
func (s *lessonService) GetLesson(ctx context.Context, lessonID string) (*LessonView, error) {
	lesson, err := s.lesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	table := answers.BuildRomanizationTable(lesson.Content)
	gen := answers.NewDistractorGenerator(s.opts.NewRand())
	exercises := answers.NormalizeExercises(lesson.Content.Exercises, table, gen)

	return &LessonView{
		ID:                lesson.ID,
		Title:             lesson.Title,
		Level:             lesson.Level,
		Content:           lesson.Content,
		Exercises:         exercises,
		RomanizationTerms: table.Len(),
	}, nil
}

// CheckAnswer verifies a free-text answer in either script against the
// accepted forms of the exercise at the given index.
func (s *lessonService) CheckAnswer(ctx context.Context, lessonID string, req *CheckAnswerRequest) (*CheckAnswerResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	view, err := s.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if req.ExerciseIndex >= len(view.Exercises) {
		return nil, fmt.Errorf("%w: lesson %s has %d exercises", ErrExerciseNotFound, lessonID, len(view.Exercises))
	}

	ex := view.Exercises[req.ExerciseIndex]
	if answers.Verify(req.Answer, ex.Accepted...) {
		return &CheckAnswerResponse{Correct: true}, nil
	}
	return &CheckAnswerResponse{Correct: false, Accepted: ex.Accepted}, nil
}

// CompleteLesson reports a passing score to the backend and credits the XP it
// awards. Nothing is credited locally when the backend awards none.
func (s *lessonService) CompleteLesson(ctx context.Context, learnerID, lessonID string, req *CompleteLessonRequest) (*CompleteLessonResponse, error) {
	op := s.ops.WithOperation(ctx, "complete_lesson", learnerID)
	resp, err := s.completeLesson(ctx, learnerID, lessonID, req)
	op.LogResult(lessonID, err)
	return resp, err
}

func (s *lessonService) completeLesson(ctx context.Context, learnerID, lessonID string, req *CompleteLessonRequest) (*CompleteLessonResponse, error) {
	if err := requireLearner(learnerID); err != nil {
		return nil, err
	}
	if req.Score < 0 || req.Score > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrScoreOutOfRange, req.Score)
	}
	if req.Score < PassMark {
		return nil, NewBusinessRuleError("pass_mark", "lesson score is below the pass mark", map[string]interface{}{
			"score":     req.Score,
			"pass_mark": PassMark,
		})
	}

	s.logger.Info("Completing lesson", "learner_id", learnerID, "lesson_id", lessonID, "score", req.Score)

	done, err := s.client.CompleteLesson(ctx, lessonID, req.Score)
	if err != nil {
		if backend.IsStatus(err, http.StatusNotFound) {
			s.forget(ctx, lessonID)
			return nil, fmt.Errorf("%w: %s", ErrLessonNotFound, lessonID)
		}
		return nil, fmt.Errorf("failed to complete lesson: %w", err)
	}

	resp := &CompleteLessonResponse{LessonID: lessonID, Score: req.Score, XPEarned: done.XPEarned}
	if done.XPEarned <= 0 {
		return resp, nil
	}

	now := time.Now().UTC()
	entry := &models.XPLedgerEntry{
		LearnerID:  learnerID,
		Source:     models.XPSourceLesson,
		SourceRef:  lessonID,
		Amount:     done.XPEarned,
		SyncStatus: models.SyncSynced,
		SyncedAt:   &now,
	}
	if err := s.repo.XPLedger().Create(ctx, nil, entry); err != nil {
		return nil, fmt.Errorf("failed to credit lesson xp: %w", err)
	}
	resp.LedgerEntryID = entry.ID

	if s.publisher != nil {
		event := events.NewPracticeEvent(events.EventLessonCompleted, learnerID, events.LessonCompletedEvent{
			LessonID: lessonID,
			Score:    req.Score,
			XPEarned: done.XPEarned,
		})
		if err := s.publisher.PublishEvent(ctx, event); err != nil {
			s.logger.Warn("Failed to publish lesson event", "lesson_id", lessonID, "error", err)
		}
	}
	return resp, nil
}

func (s *lessonService) lesson(ctx context.Context, lessonID string) (*models.Lesson, error) {
	lessonID = strings.TrimSpace(lessonID)
	if lessonID == "" {
		return nil, ValidationErrors{*NewValidationError("id", "is required", lessonID)}
	}

	key := cache.LessonKey(lessonID)
	if s.cache != nil {
		var cached models.Lesson
		err := s.cache.Get(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("Lesson cache unavailable", "lesson_id", lessonID, "error", err)
		}
	}

	lesson, err := s.client.GetLesson(ctx, lessonID)
	if err != nil {
		if backend.IsStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrLessonNotFound, lessonID)
		}
		return nil, fmt.Errorf("failed to fetch lesson: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, lesson, s.opts.CacheTTL); err != nil {
			s.logger.Warn("Failed to cache lesson", "lesson_id", lessonID, "error", err)
		}
	}
	return lesson, nil
}

// forget drops cached content of a lesson the backend no longer knows.
func (s *lessonService) forget(ctx context.Context, lessonID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.LessonKey(lessonID)); err != nil {
		s.logger.Warn("Failed to evict lesson from cache", "lesson_id", lessonID, "error", err)
	}
}
