package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type XPSource string

const (
	XPSourceSession XPSource = "session"
	XPSourceLesson  XPSource = "lesson"
)

type SyncStatus string

const (
	SyncPending SyncStatus = "pending"
	SyncSynced  SyncStatus = "synced"
	SyncFailed  SyncStatus = "failed"
)

// XPLedgerEntry is one local XP credit. The amount is never rolled back,
// only the sync status changes once the remote submission settles.
type XPLedgerEntry struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	LearnerID  string     `json:"learner_id" gorm:"not null;size:64;index"`
	Source     XPSource   `json:"source" gorm:"not null;size:16"`
	SourceRef  string     `json:"source_ref" gorm:"not null;size:128;index"`
	Amount     int        `json:"amount" gorm:"not null"`
	SyncStatus SyncStatus `json:"sync_status" gorm:"default:pending;size:16;index"`
	SyncError  *string    `json:"sync_error,omitempty" gorm:"type:text"`
	SyncedAt   *time.Time `json:"synced_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (XPLedgerEntry) TableName() string {
	return "xp_ledger_entries"
}

// SessionRecord is the history row written when a practice session ends.
type SessionRecord struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	SessionID     string         `json:"session_id" gorm:"not null;size:128;index"`
	LearnerID     string         `json:"learner_id" gorm:"not null;size:64;index"`
	Level         string         `json:"level" gorm:"size:16"`
	LevelLabel    string         `json:"level_label" gorm:"size:64"`
	Fallback      bool           `json:"fallback" gorm:"default:false"`
	GameCount     int            `json:"game_count" gorm:"not null"`
	CorrectCount  int            `json:"correct_count" gorm:"not null"`
	TotalXPEarned int            `json:"total_xp_earned" gorm:"not null"`
	Results       datatypes.JSON `json:"results" gorm:"type:jsonb"`
	LedgerEntryID uint           `json:"ledger_entry_id" gorm:"index"`
	CompletedAt   time.Time      `json:"completed_at" gorm:"not null"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Progress is the learner summary derived from the local ledger.
type Progress struct {
	LearnerID        string  `json:"learner_id"`
	TotalXP          int     `json:"total_xp"`
	Level            int     `json:"level"`
	LevelTitle       string  `json:"level_title"`
	XPIntoLevel      int     `json:"xp_into_level"`
	XPToNextLevel    int     `json:"xp_to_next_level"`
	LevelProgressPct float64 `json:"level_progress_pct"`
	SessionsPlayed   int64   `json:"sessions_played"`
	UnsyncedCredits  int64   `json:"unsynced_credits"`
}
