// Package engine implements the practice session state machine.
//
// A Machine walks a learner through one playlist: it loads the session,
// presents games strictly in order, scores each reported result and hands the
// accumulated results over exactly once when the session ends. A Machine is
// not safe for concurrent use; callers serialize access.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/darijalingo/practice-engine/internal/models"
)

type State string

const (
	StateNone     State = "none"
	StateLoading  State = "loading"
	StatePlaying  State = "playing"
	StateComplete State = "complete"
	StateError    State = "error"
)

const (
	// DefaultCorrectXP is awarded for a correct result that carries no bonus.
	DefaultCorrectXP = 25
	// ParticipationXP is awarded for every incorrect result.
	ParticipationXP = 5
)

var (
	ErrInvalidState    = errors.New("operation not valid in current session state")
	ErrStaleLoad       = errors.New("session load was superseded")
	ErrEmptySession    = errors.New("session has no games")
	ErrGameMismatch    = errors.New("result is not for the current game")
	ErrDuplicateResult = errors.New("result already recorded for this game")
	ErrUnsupportedGame = errors.New("unsupported games do not earn results")
)

// Loader produces the playlist for a new session.
type Loader interface {
	Load(ctx context.Context) (*models.Session, error)
}

// LoadTicket identifies one load attempt. Only the newest ticket may complete.
type LoadTicket uint64

// Summary is what End hands over: the finished session and its results.
type Summary struct {
	Session *models.Session      `json:"session"`
	Result  models.SessionResult `json:"result"`
	EndedAt time.Time            `json:"ended_at"`
}

type Machine struct {
	state      State
	index      int
	session    *models.Session
	result     models.SessionResult
	err        error
	generation uint64
	now        func() time.Time
	logger     *slog.Logger
}

func NewMachine(logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{
		state:  StateNone,
		now:    time.Now,
		logger: logger,
	}
}

// XPFor is the scoring rule for a single game result.
func XPFor(r models.GameResult) int {
	if !r.Correct {
		return ParticipationXP
	}
	if r.Bonus != nil {
		return *r.Bonus
	}
	return DefaultCorrectXP
}

// BeginLoad discards whatever the machine holds and enters the loading state.
// Any ticket issued earlier becomes stale.
func (m *Machine) BeginLoad() LoadTicket {
	m.discard()
	m.state = StateLoading
	m.logger.Debug("Session loading", "ticket", m.generation)
	return LoadTicket(m.generation)
}

// CompleteLoad installs the loaded session and presents its first game.
func (m *Machine) CompleteLoad(t LoadTicket, s *models.Session) error {
	if !m.current(t) {
		return ErrStaleLoad
	}
	if s.GameCount() == 0 {
		m.state = StateError
		m.err = ErrEmptySession
		return ErrEmptySession
	}

	m.session = s
	m.index = 0
	m.result = models.SessionResult{Results: []models.ResultEntry{}}
	m.err = nil
	m.state = StatePlaying
	m.logger.Info("Session started",
		"session_id", s.ID,
		"level", s.Level,
		"games", len(s.Games),
		"fallback", s.Fallback)
	return nil
}

// FailLoad records a load failure. The learner may retry with a new BeginLoad.
func (m *Machine) FailLoad(t LoadTicket, err error) error {
	if !m.current(t) {
		return ErrStaleLoad
	}
	if err == nil {
		err = ErrEmptySession
	}
	m.state = StateError
	m.err = err
	m.logger.Warn("Session load failed", "error", err)
	return nil
}

// Start runs a full load synchronously.
func (m *Machine) Start(ctx context.Context, loader Loader) error {
	t := m.BeginLoad()
	s, err := loader.Load(ctx)
	if err != nil {
		if ferr := m.FailLoad(t, err); ferr != nil {
			return ferr
		}
		return err
	}
	return m.CompleteLoad(t, s)
}

func (m *Machine) current(t LoadTicket) bool {
	return m.state == StateLoading && uint64(t) == m.generation
}

// SubmitAnswer scores the result of the game at index and records it.
func (m *Machine) SubmitAnswer(index int, r models.GameResult) (models.ResultEntry, error) {
	if m.state != StatePlaying {
		return models.ResultEntry{}, fmt.Errorf("%w: submit in %s", ErrInvalidState, m.state)
	}
	if index != m.index {
		return models.ResultEntry{}, fmt.Errorf("%w: got %d, current %d", ErrGameMismatch, index, m.index)
	}
	if !m.session.Games[index].Kind.Supported() {
		return models.ResultEntry{}, ErrUnsupportedGame
	}
	for _, e := range m.result.Results {
		if e.GameIndex == index {
			return models.ResultEntry{}, ErrDuplicateResult
		}
	}

	entry := models.ResultEntry{GameIndex: index, GameResult: r, XPEarned: XPFor(r)}
	m.result.Results = append(m.result.Results, entry)
	m.result.TotalXPEarned += entry.XPEarned
	m.logger.Debug("Game result recorded",
		"session_id", m.session.ID,
		"game_index", index,
		"correct", r.Correct,
		"xp_earned", entry.XPEarned)
	return entry, nil
}

// NextGame presents the following game, or completes the session after the last one.
func (m *Machine) NextGame() error {
	if m.state != StatePlaying {
		return fmt.Errorf("%w: next in %s", ErrInvalidState, m.state)
	}
	if m.index < len(m.session.Games)-1 {
		m.index++
		return nil
	}
	m.state = StateComplete
	m.logger.Info("Session complete",
		"session_id", m.session.ID,
		"results", len(m.result.Results),
		"total_xp", m.result.TotalXPEarned)
	return nil
}

// End releases a completed session and returns its summary.
func (m *Machine) End() (Summary, error) {
	if m.state != StateComplete {
		return Summary{}, fmt.Errorf("%w: end in %s", ErrInvalidState, m.state)
	}
	summary := Summary{Session: m.session, Result: m.result.Clone(), EndedAt: m.now()}
	m.discard()
	return summary, nil
}

// Reset drops the session and every result without persisting anything.
func (m *Machine) Reset() {
	if m.session != nil {
		m.logger.Info("Session reset",
			"session_id", m.session.ID,
			"state", m.state,
			"discarded_results", len(m.result.Results))
	}
	m.discard()
}

func (m *Machine) discard() {
	m.generation++
	m.state = StateNone
	m.index = 0
	m.session = nil
	m.result = models.SessionResult{Results: []models.ResultEntry{}}
	m.err = nil
}

func (m *Machine) State() State { return m.state }

func (m *Machine) Index() int { return m.index }

func (m *Machine) Session() *models.Session { return m.session }

func (m *Machine) Err() error { return m.err }

// Result returns a copy of the results recorded so far.
func (m *Machine) Result() models.SessionResult { return m.result.Clone() }

// CurrentGame is the game being presented, if any.
func (m *Machine) CurrentGame() (models.GameConfig, bool) {
	if m.state != StatePlaying {
		return models.GameConfig{}, false
	}
	return m.session.Games[m.index], true
}
