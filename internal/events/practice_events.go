package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents different types of practice events
type EventType string

const (
	// Session events
	EventSessionCompleted EventType = "session.completed"

	// XP events
	EventXPCredited      EventType = "xp.credited"
	EventXPSyncDiverged  EventType = "xp.sync_diverged"
	EventLessonCompleted EventType = "lesson.completed"
)

const (
	eventSource  = "practice-engine"
	eventVersion = "1.0"
)

// PracticeEvent is the envelope for every event the engine publishes
type PracticeEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	LearnerID string                 `json:"learner_id"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Event payloads

type SessionCompletedEvent struct {
	SessionID     string    `json:"session_id"`
	Level         string    `json:"level"`
	Fallback      bool      `json:"fallback"`
	GameCount     int       `json:"game_count"`
	CorrectCount  int       `json:"correct_count"`
	TotalXPEarned int       `json:"total_xp_earned"`
	CompletedAt   time.Time `json:"completed_at"`
}

type XPCreditedEvent struct {
	LedgerEntryID uint   `json:"ledger_entry_id"`
	Source        string `json:"source"`
	SourceRef     string `json:"source_ref"`
	Amount        int    `json:"amount"`
}

type XPSyncDivergedEvent struct {
	LedgerEntryID uint   `json:"ledger_entry_id"`
	SessionID     string `json:"session_id"`
	Amount        int    `json:"amount"`
	Reason        string `json:"reason"`
}

type LessonCompletedEvent struct {
	LessonID string  `json:"lesson_id"`
	Score    float64 `json:"score"`
	XPEarned int     `json:"xp_earned"`
}

// NewPracticeEvent wraps data in an envelope with a fresh id
func NewPracticeEvent(eventType EventType, learnerID string, data interface{}) *PracticeEvent {
	return &PracticeEvent{
		ID:        GenerateEventID(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		LearnerID: learnerID,
		Data:      data,
		Metadata:  make(map[string]interface{}),
	}
}

// GenerateEventID generates a unique event ID
func GenerateEventID() string {
	return uuid.NewString()
}
