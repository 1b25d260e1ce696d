package postgres

import (
	"context"
	"fmt"

	"github.com/darijalingo/practice-engine/internal/models"
	"github.com/darijalingo/practice-engine/internal/repositories"
	"gorm.io/gorm"
)

const (
	defaultSessionPageSize = 20
	maxSessionPageSize     = 100
)

type SessionRecordPostgreSQL struct {
	db *gorm.DB
}

func NewSessionRecordPostgreSQL(db *gorm.DB) repositories.SessionRecordRepository {
	return &SessionRecordPostgreSQL{db: db}
}

func (s SessionRecordPostgreSQL) Create(ctx context.Context, tx *gorm.DB, record *models.SessionRecord) error {
	return pick(s.db, tx).WithContext(ctx).Create(record).Error
}

func (s SessionRecordPostgreSQL) ListByLearner(ctx context.Context, tx *gorm.DB, learnerID string, filters repositories.SessionFilters) ([]*models.SessionRecord, int64, error) {
	var records []*models.SessionRecord
	var total int64

	query := pick(s.db, tx).WithContext(ctx).
		Model(&models.SessionRecord{}).
		Where("learner_id = ?", learnerID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count sessions: %w", err)
	}

	order := "completed_at DESC"
	if filters.SortOrder == "asc" {
		order = "completed_at ASC"
	}
	query = query.Order(order)

	limit := filters.Limit
	if limit <= 0 {
		limit = defaultSessionPageSize
	}
	if limit > maxSessionPageSize {
		limit = maxSessionPageSize
	}
	query = query.Limit(limit)
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list sessions: %w", err)
	}
	return records, total, nil
}

func (s SessionRecordPostgreSQL) CountByLearner(ctx context.Context, tx *gorm.DB, learnerID string) (int64, error) {
	var count int64
	if err := pick(s.db, tx).WithContext(ctx).
		Model(&models.SessionRecord{}).
		Where("learner_id = ?", learnerID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}
