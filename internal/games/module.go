// Package games holds the mini-game modules played inside a practice session.
//
// Every module interprets its own payload, reacts to learner actions and
// exposes only whether it is terminal plus the result it would report. The
// Runner owns the report callback and guarantees a single report per game.
package games

import (
	"bytes"
	"encoding/json"
	"errors"
	"math/rand/v2"

	"github.com/darijalingo/practice-engine/internal/models"
)

var (
	ErrUnknownAction    = errors.New("action not supported by this game")
	ErrInvalidAction    = errors.New("invalid action for current game state")
	ErrGameOver         = errors.New("game is already over")
	ErrNotTerminal      = errors.New("game has not reached a terminal state")
	ErrAlreadyReported  = errors.New("game result already reported")
	ErrAlreadyAnswered  = errors.New("question already answered")
	ErrNotAnswered      = errors.New("question not answered yet")
	ErrCardsBusy        = errors.New("mismatched cards are still visible")
	ErrIncompleteAnswer = errors.New("answer is incomplete")
)

type ActionType string

const (
	ActionSelect   ActionType = "select"
	ActionAnswer   ActionType = "answer"
	ActionNext     ActionType = "next"
	ActionMatch    ActionType = "match"
	ActionPlace    ActionType = "place"
	ActionRemove   ActionType = "remove"
	ActionReset    ActionType = "reset"
	ActionClear    ActionType = "clear"
	ActionCheck    ActionType = "check"
	ActionFlip     ActionType = "flip"
	ActionKnow     ActionType = "know"
	ActionAgain    ActionType = "again"
	ActionHide     ActionType = "hide"
	ActionSay      ActionType = "say"
	ActionSuggest  ActionType = "suggest"
	ActionFinish   ActionType = "finish"
	ActionFill     ActionType = "fill"
	ActionContinue ActionType = "continue"
	ActionSkip     ActionType = "skip"
)

// Action is one learner interaction. Only the fields relevant to Type are read.
type Action struct {
	Type     ActionType `json:"type" validate:"required"`
	OptionID string     `json:"option_id,omitempty"`
	Text     string     `json:"text,omitempty"`
	Index    int        `json:"index,omitempty" validate:"min=0"`
	LeftID   string     `json:"left_id,omitempty"`
	RightID  string     `json:"right_id,omitempty"`
	CardID   string     `json:"card_id,omitempty"`
	GapID    string     `json:"gap_id,omitempty"`
	Word     string     `json:"word,omitempty"`
}

// Feedback is what the learner sees right after an action.
type Feedback struct {
	Correct  *bool  `json:"correct,omitempty"`
	Expected string `json:"expected,omitempty"`
	Message  string `json:"message,omitempty"`
}

func verdict(correct bool, expected string) Feedback {
	return Feedback{Correct: &correct, Expected: expected}
}

// View is the externally visible snapshot of a module.
type View struct {
	Kind     models.GameKind `json:"kind"`
	Terminal bool            `json:"terminal"`
	Score    int             `json:"score"`
	Total    int             `json:"total"`
	NoData   bool            `json:"no_data,omitempty"`
	Message  string          `json:"message,omitempty"`
	State    any             `json:"state,omitempty"`
}

// Module is a single mini-game. Modules are not safe for concurrent use; the
// owner serializes actions and timer callbacks delivered through Env.Clock.
type Module interface {
	Kind() models.GameKind
	Handle(a Action) (Feedback, error)
	View() View
	Terminal() bool
	Result() models.GameResult
	Close()
}

// Env carries the collaborators a module may need.
type Env struct {
	Clock  Clock
	Rand   *rand.Rand
	Script models.ScriptMode
}

func (e Env) withDefaults() Env {
	if e.Clock == nil {
		e.Clock = RealClock()
	}
	if e.Rand == nil {
		e.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if e.Script == "" {
		e.Script = models.ScriptLatin
	}
	return e
}

type Factory func(payload json.RawMessage, env Env) Module

// Registry maps every supported kind to its factory.
type Registry struct {
	factories map[models.GameKind]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[models.GameKind]Factory)}
}

// DefaultRegistry has a factory for every supported kind.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(models.GameMultipleChoice, NewMultipleChoice)
	r.Register(models.GameFillInBlank, NewFillInBlank)
	r.Register(models.GameCulturalQuiz, NewCulturalQuiz)
	r.Register(models.GameWordMatch, NewWordMatch)
	r.Register(models.GameSentenceBuilder, NewSentenceBuilder)
	r.Register(models.GameFlashcardSprint, NewFlashcardSprint)
	r.Register(models.GameWordScramble, NewWordScramble)
	r.Register(models.GameMemoryMatch, NewMemoryMatch)
	r.Register(models.GameConversationSim, NewConversationSim)
	r.Register(models.GameStoryGapFill, NewStoryGapFill)
	return r
}

func (r *Registry) Register(kind models.GameKind, f Factory) {
	r.factories[kind] = f
}

// New builds the module for cfg. Unknown kinds get the skip-only module and
// empty payloads get the no-data module.
func (r *Registry) New(cfg models.GameConfig, env Env) Module {
	f, ok := r.factories[cfg.Kind]
	if !ok || !cfg.Kind.Supported() {
		raw := cfg.RawType
		if raw == "" {
			raw = string(cfg.Kind)
		}
		return NewUnsupported(raw)
	}
	if PayloadEmpty(cfg.Payload) {
		return NewNoData(cfg.Kind)
	}
	return f(cfg.Payload, env.withDefaults())
}

// PayloadEmpty reports whether p is absent, null or an empty object or array.
func PayloadEmpty(p json.RawMessage) bool {
	t := bytes.TrimSpace(p)
	if len(t) == 0 {
		return true
	}
	switch string(t) {
	case "null", "{}", "[]", `""`:
		return true
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(t, &obj); err == nil {
		return len(obj) == 0
	}
	return false
}

// decode unmarshals payload into v, reporting false when it does not parse.
func decode(payload json.RawMessage, v any) bool {
	return json.Unmarshal(payload, v) == nil
}
