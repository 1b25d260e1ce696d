package repositories

import (
	"context"
	"errors"

	"github.com/darijalingo/practice-engine/internal/models"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

// ===== SHARED FILTER STRUCTS =====

type SessionFilters struct {
	Limit     int    `json:"limit"`
	Offset    int    `json:"offset"`
	SortOrder string `json:"sort_order"` // "asc", "desc"
}

// ===== REPOSITORIES =====

// XPLedgerRepository stores local XP credits. Amounts are immutable once
// written; only the sync fields change.
type XPLedgerRepository interface {
	Create(ctx context.Context, tx *gorm.DB, entry *models.XPLedgerEntry) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.XPLedgerEntry, error)
	UpdateSyncStatus(ctx context.Context, tx *gorm.DB, id uint, status models.SyncStatus, syncErr *string) error

	// Aggregates
	SumByLearner(ctx context.Context, tx *gorm.DB, learnerID string) (int, error)
	CountByStatus(ctx context.Context, tx *gorm.DB, learnerID string, status models.SyncStatus) (int64, error)
}

type SessionRecordRepository interface {
	Create(ctx context.Context, tx *gorm.DB, record *models.SessionRecord) error
	ListByLearner(ctx context.Context, tx *gorm.DB, learnerID string, filters SessionFilters) ([]*models.SessionRecord, int64, error)
	CountByLearner(ctx context.Context, tx *gorm.DB, learnerID string) (int64, error)
}

// Repository groups the repositories behind one transaction boundary.
type Repository interface {
	XPLedger() XPLedgerRepository
	SessionRecords() SessionRecordRepository
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}
