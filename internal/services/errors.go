package services

import (
	"errors"
	"fmt"

	"github.com/darijalingo/practice-engine/internal/catalog"
	"github.com/darijalingo/practice-engine/internal/engine"
	apperrors "github.com/darijalingo/practice-engine/internal/errors"
	"github.com/darijalingo/practice-engine/internal/games"
	"github.com/darijalingo/practice-engine/internal/repositories"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrConflict         = errors.New("resource conflict")

	// Session specific errors
	ErrNoActiveSession  = errors.New("no active practice session")
	ErrSessionNotPlayed = errors.New("session has no game in progress")

	// Lesson specific errors
	ErrLessonNotFound   = errors.New("lesson not found")
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrScoreOutOfRange  = errors.New("score must be between 0 and 1")
	ErrBelowPassMark    = errors.New("score is below the pass mark")

	// Learner errors
	ErrMissingLearner = errors.New("learner id is required")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

func (bre *BusinessRuleError) Unwrap() error {
	if bre.Rule == "pass_mark" {
		return ErrBelowPassMark
	}
	return nil
}

// ===== ERROR HELPERS =====

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrNoActiveSession) ||
		errors.Is(err, ErrLessonNotFound) ||
		errors.Is(err, ErrExerciseNotFound) ||
		errors.Is(err, repositories.ErrNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) ||
		errors.Is(err, ErrMissingLearner) ||
		errors.Is(err, ErrScoreOutOfRange) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict reports an operation that is not valid for the session or game
// in its current state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrSessionNotPlayed) ||
		errors.Is(err, engine.ErrInvalidState) ||
		errors.Is(err, engine.ErrGameMismatch) ||
		errors.Is(err, engine.ErrDuplicateResult) ||
		errors.Is(err, engine.ErrUnsupportedGame) ||
		errors.Is(err, engine.ErrStaleLoad) ||
		errors.Is(err, games.ErrGameOver) ||
		errors.Is(err, games.ErrNotTerminal) ||
		errors.Is(err, games.ErrAlreadyReported) ||
		errors.Is(err, games.ErrAlreadyAnswered) ||
		errors.Is(err, games.ErrNotAnswered) ||
		errors.Is(err, games.ErrCardsBusy)
}

// IsInvalidAction reports an action the current game cannot interpret.
func IsInvalidAction(err error) bool {
	return errors.Is(err, games.ErrUnknownAction) ||
		errors.Is(err, games.ErrInvalidAction) ||
		errors.Is(err, games.ErrIncompleteAnswer)
}

// IsUnavailable reports a session that could not be loaded. The learner may retry.
func IsUnavailable(err error) bool {
	return errors.Is(err, catalog.ErrUnavailable) ||
		errors.Is(err, engine.ErrEmptySession)
}
