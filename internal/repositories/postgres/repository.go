package postgres

import (
	"context"

	"github.com/darijalingo/practice-engine/internal/repositories"
	"gorm.io/gorm"
)

type Repository struct {
	db       *gorm.DB
	ledger   repositories.XPLedgerRepository
	sessions repositories.SessionRecordRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &Repository{
		db:       db,
		ledger:   NewXPLedgerPostgreSQL(db),
		sessions: NewSessionRecordPostgreSQL(db),
	}
}

func (r *Repository) XPLedger() repositories.XPLedgerRepository { return r.ledger }

func (r *Repository) SessionRecords() repositories.SessionRecordRepository { return r.sessions }

func (r *Repository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func pick(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}
