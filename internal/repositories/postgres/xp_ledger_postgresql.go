package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/darijalingo/practice-engine/internal/models"
	"github.com/darijalingo/practice-engine/internal/repositories"
	"gorm.io/gorm"
)

type XPLedgerPostgreSQL struct {
	db *gorm.DB
}

func NewXPLedgerPostgreSQL(db *gorm.DB) repositories.XPLedgerRepository {
	return &XPLedgerPostgreSQL{db: db}
}

func (x XPLedgerPostgreSQL) Create(ctx context.Context, tx *gorm.DB, entry *models.XPLedgerEntry) error {
	if entry.SyncStatus == "" {
		entry.SyncStatus = models.SyncPending
	}
	return pick(x.db, tx).WithContext(ctx).Create(entry).Error
}

func (x XPLedgerPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.XPLedgerEntry, error) {
	var entry models.XPLedgerEntry
	if err := pick(x.db, tx).WithContext(ctx).First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("ledger entry %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}
	return &entry, nil
}

func (x XPLedgerPostgreSQL) UpdateSyncStatus(ctx context.Context, tx *gorm.DB, id uint, status models.SyncStatus, syncErr *string) error {
	updates := map[string]interface{}{
		"sync_status": status,
		"sync_error":  syncErr,
	}
	if status == models.SyncSynced {
		updates["synced_at"] = time.Now()
	}

	result := pick(x.db, tx).WithContext(ctx).
		Model(&models.XPLedgerEntry{}).
		Where("id = ?", id).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update ledger sync status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("ledger entry %d: %w", id, repositories.ErrNotFound)
	}
	return nil
}

func (x XPLedgerPostgreSQL) SumByLearner(ctx context.Context, tx *gorm.DB, learnerID string) (int, error) {
	var total int
	if err := pick(x.db, tx).WithContext(ctx).
		Model(&models.XPLedgerEntry{}).
		Where("learner_id = ?", learnerID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to sum learner xp: %w", err)
	}
	return total, nil
}

func (x XPLedgerPostgreSQL) CountByStatus(ctx context.Context, tx *gorm.DB, learnerID string, status models.SyncStatus) (int64, error) {
	var count int64
	if err := pick(x.db, tx).WithContext(ctx).
		Model(&models.XPLedgerEntry{}).
		Where("learner_id = ? AND sync_status = ?", learnerID, status).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}
	return count, nil
}
