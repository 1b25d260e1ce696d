package services

import (
	"context"
	"time"

	"github.com/darijalingo/practice-engine/internal/backend"
	"github.com/darijalingo/practice-engine/internal/models"
	"github.com/darijalingo/practice-engine/internal/repositories"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// ===== REPOSITORY MOCKS =====

type MockRepository struct {
	mock.Mock
	ledger   *MockXPLedgerRepository
	sessions *MockSessionRecordRepository
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		ledger:   new(MockXPLedgerRepository),
		sessions: new(MockSessionRecordRepository),
	}
}

func (m *MockRepository) XPLedger() repositories.XPLedgerRepository { return m.ledger }

func (m *MockRepository) SessionRecords() repositories.SessionRecordRepository { return m.sessions }

func (m *MockRepository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type MockXPLedgerRepository struct {
	mock.Mock
}

func (m *MockXPLedgerRepository) Create(ctx context.Context, tx *gorm.DB, entry *models.XPLedgerEntry) error {
	args := m.Called(ctx, tx, entry)
	return args.Error(0)
}

func (m *MockXPLedgerRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.XPLedgerEntry, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.XPLedgerEntry), args.Error(1)
}

func (m *MockXPLedgerRepository) UpdateSyncStatus(ctx context.Context, tx *gorm.DB, id uint, status models.SyncStatus, syncErr *string) error {
	args := m.Called(ctx, tx, id, status, syncErr)
	return args.Error(0)
}

func (m *MockXPLedgerRepository) SumByLearner(ctx context.Context, tx *gorm.DB, learnerID string) (int, error) {
	args := m.Called(ctx, tx, learnerID)
	return args.Int(0), args.Error(1)
}

func (m *MockXPLedgerRepository) CountByStatus(ctx context.Context, tx *gorm.DB, learnerID string, status models.SyncStatus) (int64, error) {
	args := m.Called(ctx, tx, learnerID, status)
	return args.Get(0).(int64), args.Error(1)
}

type MockSessionRecordRepository struct {
	mock.Mock
}

func (m *MockSessionRecordRepository) Create(ctx context.Context, tx *gorm.DB, record *models.SessionRecord) error {
	args := m.Called(ctx, tx, record)
	return args.Error(0)
}

func (m *MockSessionRecordRepository) ListByLearner(ctx context.Context, tx *gorm.DB, learnerID string, filters repositories.SessionFilters) ([]*models.SessionRecord, int64, error) {
	args := m.Called(ctx, tx, learnerID, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.SessionRecord), args.Get(1).(int64), args.Error(2)
}

func (m *MockSessionRecordRepository) CountByLearner(ctx context.Context, tx *gorm.DB, learnerID string) (int64, error) {
	args := m.Called(ctx, tx, learnerID)
	return args.Get(0).(int64), args.Error(1)
}

// ===== COLLABORATOR MOCKS =====

type MockLoader struct {
	mock.Mock
}

func (m *MockLoader) Load(ctx context.Context) (*models.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

type MockBackendClient struct {
	mock.Mock
}

func (m *MockBackendClient) GetSession(ctx context.Context) (*backend.SessionResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.SessionResponse), args.Error(1)
}

func (m *MockBackendClient) SubmitResult(ctx context.Context, gameType string, req backend.SubmitResultRequest) error {
	args := m.Called(ctx, gameType, req)
	return args.Error(0)
}

func (m *MockBackendClient) GetLesson(ctx context.Context, id string) (*models.Lesson, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lesson), args.Error(1)
}

func (m *MockBackendClient) CompleteLesson(ctx context.Context, id string, score float64) (*backend.CompleteLessonResponse, error) {
	args := m.Called(ctx, id, score)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.CompleteLessonResponse), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCache) Get(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
