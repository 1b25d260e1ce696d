package games

import (
	"log/slog"

	"github.com/darijalingo/practice-engine/internal/models"
)

// Callbacks receive the single outcome of a game: a result, or a skip for
// games that cannot be played.
type Callbacks struct {
	Report func(models.GameResult)
	Skip   func()
}

// Runner wraps a module and delivers its outcome exactly once.
type Runner struct {
	index     int
	module    Module
	callbacks Callbacks
	done      bool
	logger    *slog.Logger
}

func NewRunner(index int, module Module, callbacks Callbacks, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		index:     index,
		module:    module,
		callbacks: callbacks,
		logger:    logger,
	}
}

func (r *Runner) Index() int { return r.index }

func (r *Runner) Module() Module { return r.module }

func (r *Runner) Done() bool { return r.done }

// Handle routes a learner action. Continue reports the result of a terminal
// game; skip is only accepted for unsupported games.
func (r *Runner) Handle(a Action) (Feedback, error) {
	if r.done {
		r.logger.Warn("Ignoring action for finished game",
			"game_index", r.index,
			"kind", r.module.Kind(),
			"action", a.Type)
		return Feedback{}, ErrAlreadyReported
	}

	switch a.Type {
	case ActionContinue, ActionSkip:
		return r.finish(a.Type)
	default:
		return r.module.Handle(a)
	}
}

func (r *Runner) finish(t ActionType) (Feedback, error) {
	if _, unsupported := r.module.(*Unsupported); unsupported {
		r.done = true
		r.module.Close()
		if r.callbacks.Skip != nil {
			r.callbacks.Skip()
		}
		return Feedback{Message: "Game skipped"}, nil
	}
	if t == ActionSkip {
		return Feedback{}, ErrInvalidAction
	}
	if !r.module.Terminal() {
		return Feedback{}, ErrNotTerminal
	}

	r.done = true
	r.module.Close()
	result := r.module.Result()
	if r.callbacks.Report != nil {
		r.callbacks.Report(result)
	}
	return Feedback{Correct: &result.Correct}, nil
}

// Close tears down the module timers without reporting anything.
func (r *Runner) Close() {
	r.module.Close()
}
