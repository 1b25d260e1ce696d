package services

import (
	"log/slog"

	"github.com/darijalingo/practice-engine/internal/backend"
	"github.com/darijalingo/practice-engine/internal/cache"
	"github.com/darijalingo/practice-engine/internal/engine"
	"github.com/darijalingo/practice-engine/internal/events"
	"github.com/darijalingo/practice-engine/internal/games"
	"github.com/darijalingo/practice-engine/internal/repositories"
	"github.com/darijalingo/practice-engine/internal/validator"
)

// ServiceManager gives handlers access to every service
type ServiceManager interface {
	Practice() PracticeService
	Lesson() LessonService
	Progress() ProgressService
}

type Dependencies struct {
	Repo      repositories.Repository
	Backend   backend.Client
	Loader    engine.Loader
	Cache     cache.CacheService
	Publisher events.EventPublisher
	Validator *validator.Validator
	Registry  *games.Registry
	Practice  PracticeOptions
	Lesson    LessonOptions
}

type serviceManager struct {
	practice PracticeService
	lesson   LessonService
	progress ProgressService
}

func NewServiceManager(deps Dependencies, logger *slog.Logger) ServiceManager {
	if deps.Validator == nil {
		deps.Validator = validator.New()
	}
	submitter := NewResultSubmitter(deps.Backend, logger)
	return &serviceManager{
		practice: NewPracticeService(deps.Repo, deps.Loader, submitter, deps.Publisher, deps.Registry, deps.Validator, deps.Practice, logger),
		lesson:   NewLessonService(deps.Backend, deps.Cache, deps.Repo, deps.Publisher, deps.Validator, deps.Lesson, logger),
		progress: NewProgressService(deps.Repo, logger),
	}
}

func (m *serviceManager) Practice() PracticeService { return m.practice }

func (m *serviceManager) Lesson() LessonService { return m.lesson }

func (m *serviceManager) Progress() ProgressService { return m.progress }
