package handlers

import (
	"context"
	"io"

	"github.com/darijalingo/practice-engine/internal/games"
	"github.com/darijalingo/practice-engine/internal/models"
	"github.com/darijalingo/practice-engine/internal/repositories"
	"github.com/darijalingo/practice-engine/internal/services"
	"github.com/stretchr/testify/mock"
)

type MockServiceManager struct {
	practice *MockPracticeService
	lesson   *MockLessonService
	progress *MockProgressService
}

func newMockServiceManager() *MockServiceManager {
	return &MockServiceManager{
		practice: new(MockPracticeService),
		lesson:   new(MockLessonService),
		progress: new(MockProgressService),
	}
}

func (m *MockServiceManager) Practice() services.PracticeService { return m.practice }
func (m *MockServiceManager) Lesson() services.LessonService     { return m.lesson }
func (m *MockServiceManager) Progress() services.ProgressService { return m.progress }

type MockPracticeService struct {
	mock.Mock
}

func (m *MockPracticeService) StartSession(ctx context.Context, learnerID string, req *services.StartSessionRequest) (*services.SessionView, error) {
	args := m.Called(ctx, learnerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SessionView), args.Error(1)
}

func (m *MockPracticeService) CurrentSession(ctx context.Context, learnerID string) (*services.SessionView, error) {
	args := m.Called(ctx, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SessionView), args.Error(1)
}

func (m *MockPracticeService) Act(ctx context.Context, learnerID string, action games.Action) (*services.ActionResponse, error) {
	args := m.Called(ctx, learnerID, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ActionResponse), args.Error(1)
}

func (m *MockPracticeService) SubmitResult(ctx context.Context, learnerID string, req *services.SubmitResultRequest) (*services.SessionView, error) {
	args := m.Called(ctx, learnerID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SessionView), args.Error(1)
}

func (m *MockPracticeService) NextGame(ctx context.Context, learnerID string) (*services.SessionView, error) {
	args := m.Called(ctx, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SessionView), args.Error(1)
}

func (m *MockPracticeService) EndSession(ctx context.Context, learnerID string) (*services.SessionSummary, error) {
	args := m.Called(ctx, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SessionSummary), args.Error(1)
}

func (m *MockPracticeService) ResetSession(ctx context.Context, learnerID string) error {
	return m.Called(ctx, learnerID).Error(0)
}

func (m *MockPracticeService) Wait() {}

type MockLessonService struct {
	mock.Mock
}

func (m *MockLessonService) GetLesson(ctx context.Context, lessonID string) (*services.LessonView, error) {
	args := m.Called(ctx, lessonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.LessonView), args.Error(1)
}

func (m *MockLessonService) CheckAnswer(ctx context.Context, lessonID string, req *services.CheckAnswerRequest) (*services.CheckAnswerResponse, error) {
	args := m.Called(ctx, lessonID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CheckAnswerResponse), args.Error(1)
}

func (m *MockLessonService) CompleteLesson(ctx context.Context, learnerID, lessonID string, req *services.CompleteLessonRequest) (*services.CompleteLessonResponse, error) {
	args := m.Called(ctx, learnerID, lessonID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CompleteLessonResponse), args.Error(1)
}

type MockProgressService struct {
	mock.Mock
}

func (m *MockProgressService) GetProgress(ctx context.Context, learnerID string) (*models.Progress, error) {
	args := m.Called(ctx, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Progress), args.Error(1)
}

func (m *MockProgressService) ListSessions(ctx context.Context, learnerID string, filters repositories.SessionFilters) (*services.SessionHistoryResponse, error) {
	args := m.Called(ctx, learnerID, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SessionHistoryResponse), args.Error(1)
}

func (m *MockProgressService) ExportSessions(ctx context.Context, learnerID string, w io.Writer) error {
	args := m.Called(ctx, learnerID, w)
	if fn, ok := args.Get(1).(func(io.Writer)); ok {
		fn(w)
	}
	return args.Error(0)
}
