package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/darijalingo/practice-engine/internal/engine"
	"github.com/darijalingo/practice-engine/internal/events"
	"github.com/darijalingo/practice-engine/internal/games"
	"github.com/darijalingo/practice-engine/internal/models"
	"github.com/darijalingo/practice-engine/internal/repositories"
	"github.com/darijalingo/practice-engine/internal/validator"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const DefaultSubmitTimeout = 30 * time.Second

type PracticeOptions struct {
	Clock         games.Clock
	NewRand       func() *rand.Rand
	SubmitTimeout time.Duration
}

type practiceService struct {
	repo      repositories.Repository
	loader    engine.Loader
	submitter ResultSubmitter
	publisher events.EventPublisher
	registry  *games.Registry
	validator *validator.Validator
	opts      PracticeOptions
	logger    *slog.Logger
	ops       *ServiceLogger

	mu    sync.Mutex
	slots map[string]*learnerSlot
	wg    sync.WaitGroup
}

// learnerSlot holds the live session of one learner. Every field is guarded by mu.
type learnerSlot struct {
	mu          sync.Mutex
	machine     *engine.Machine
	runner      *games.Runner
	scope       *gameScope
	script      models.ScriptMode
	callbackErr error
}

// gameScope is invalidated when its game is replaced so late timer callbacks
// never reach a different game.
type gameScope struct {
	closed bool
}

func NewPracticeService(
	repo repositories.Repository,
	loader engine.Loader,
	submitter ResultSubmitter,
	publisher events.EventPublisher,
	registry *games.Registry,
	validator *validator.Validator,
	opts PracticeOptions,
	logger *slog.Logger,
) PracticeService {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = games.RealClock()
	}
	if opts.NewRand == nil {
		opts.NewRand = func() *rand.Rand { return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) }
	}
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = DefaultSubmitTimeout
	}
	if registry == nil {
		registry = games.DefaultRegistry()
	}
	return &practiceService{
		repo:      repo,
		loader:    loader,
		submitter: submitter,
		publisher: publisher,
		registry:  registry,
		validator: validator,
		opts:      opts,
		logger:    logger,
		ops:       NewServiceLogger(logger, LogConfig{Service: "practice", Component: "session"}),
		slots:     make(map[string]*learnerSlot),
	}
}

// ===== SESSION LIFECYCLE =====

func (s *practiceService) StartSession(ctx context.Context, learnerID string, req *StartSessionRequest) (*SessionView, error) {
	op := s.ops.WithOperation(ctx, "start_session", learnerID)
	view, err := s.startSession(ctx, learnerID, req)
	resourceID := ""
	if view != nil {
		resourceID = view.SessionID
	}
	op.LogResult(resourceID, err)
	return view, err
}

func (s *practiceService) startSession(ctx context.Context, learnerID string, req *StartSessionRequest) (*SessionView, error) {
	if err := requireLearner(learnerID); err != nil {
		return nil, err
	}
	if req == nil {
		req = &StartSessionRequest{}
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	s.logger.Info("Starting practice session", "learner_id", learnerID, "script", req.Script)

	slot := s.lockedSlot(learnerID)
	s.closeGame(slot)
	ticket := slot.machine.BeginLoad()
	slot.script = models.ParseScriptMode(string(req.Script))
	slot.mu.Unlock()

	// The catalog call runs unlocked; the ticket rejects it if the learner
	// started over or reset in the meantime.
	session, loadErr := s.loader.Load(ctx)

	slot.mu.Lock()
	defer slot.mu.Unlock()

	if loadErr != nil {
		if err := slot.machine.FailLoad(ticket, loadErr); err != nil {
			return nil, err
		}
		s.logger.Warn("Practice session load failed", "learner_id", learnerID, "error", loadErr)
		return nil, fmt.Errorf("failed to load session: %w", loadErr)
	}
	if err := slot.machine.CompleteLoad(ticket, session); err != nil {
		return nil, err
	}

	s.presentGame(learnerID, slot)
	return s.view(slot), nil
}

func (s *practiceService) CurrentSession(ctx context.Context, learnerID string) (*SessionView, error) {
	slot, err := s.activeSlot(learnerID)
	if err != nil {
		return nil, err
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.machine.State() == engine.StateNone {
		return nil, ErrNoActiveSession
	}
	return s.view(slot), nil
}

func (s *practiceService) ResetSession(ctx context.Context, learnerID string) error {
	if err := requireLearner(learnerID); err != nil {
		return err
	}
	slot := s.slot(learnerID, false)
	if slot == nil {
		return nil
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()

	s.closeGame(slot)
	slot.machine.Reset()
	s.release(learnerID, slot)
	s.logger.Info("Practice session reset", "learner_id", learnerID)
	return nil
}

// ===== GAMEPLAY =====

func (s *practiceService) Act(ctx context.Context, learnerID string, action games.Action) (*ActionResponse, error) {
	if err := s.validator.Validate(&action); err != nil {
		return nil, err
	}
	slot, err := s.playingSlot(learnerID)
	if err != nil {
		return nil, err
	}
	defer slot.mu.Unlock()

	if slot.runner == nil {
		return nil, games.ErrAlreadyReported
	}

	slot.callbackErr = nil
	feedback, err := slot.runner.Handle(action)
	if err != nil {
		return nil, fmt.Errorf("game %d rejected %s: %w", slot.runner.Index(), action.Type, err)
	}
	if slot.callbackErr != nil {
		return nil, slot.callbackErr
	}

	return &ActionResponse{Feedback: feedback, Session: s.view(slot)}, nil
}

// SubmitResult records a result computed by the client for the current game.
// The game stays presented until NextGame.
func (s *practiceService) SubmitResult(ctx context.Context, learnerID string, req *SubmitResultRequest) (*SessionView, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	slot, err := s.playingSlot(learnerID)
	if err != nil {
		return nil, err
	}
	defer slot.mu.Unlock()

	if _, err := slot.machine.SubmitAnswer(req.GameIndex, req.GameResult()); err != nil {
		return nil, err
	}
	if slot.runner != nil && slot.runner.Index() == req.GameIndex {
		slot.runner.Close()
		slot.runner = nil
	}
	return s.view(slot), nil
}

func (s *practiceService) NextGame(ctx context.Context, learnerID string) (*SessionView, error) {
	slot, err := s.playingSlot(learnerID)
	if err != nil {
		return nil, err
	}
	defer slot.mu.Unlock()

	if err := s.advance(learnerID, slot); err != nil {
		return nil, err
	}
	return s.view(slot), nil
}

// ===== GAME WIRING =====

// presentGame builds the runner for the machine's current game. Callers hold slot.mu.
func (s *practiceService) presentGame(learnerID string, slot *learnerSlot) {
	cfg, ok := slot.machine.CurrentGame()
	if !ok {
		return
	}
	index := slot.machine.Index()
	scope := &gameScope{}
	env := games.Env{
		Clock:  &slotClock{clock: s.opts.Clock, slot: slot, scope: scope},
		Rand:   s.opts.NewRand(),
		Script: slot.script,
	}
	module := s.registry.New(cfg, env)

	slot.scope = scope
	slot.runner = games.NewRunner(index, module, games.Callbacks{
		Report: func(r models.GameResult) { s.onReport(learnerID, slot, index, r) },
		Skip:   func() { s.onSkip(learnerID, slot, index) },
	}, s.logger.With("learner_id", learnerID))

	s.logger.Debug("Game presented",
		"learner_id", learnerID,
		"game_index", index,
		"kind", cfg.Kind,
		"backend_type", cfg.BackendType)
}

// onReport runs inside Runner.Handle, so slot.mu is already held.
func (s *practiceService) onReport(learnerID string, slot *learnerSlot, index int, r models.GameResult) {
	if _, err := slot.machine.SubmitAnswer(index, r); err != nil {
		slot.callbackErr = err
		return
	}
	if err := s.advance(learnerID, slot); err != nil {
		slot.callbackErr = err
	}
}

func (s *practiceService) onSkip(learnerID string, slot *learnerSlot, index int) {
	s.logger.Info("Skipping unsupported game", "learner_id", learnerID, "game_index", index)
	if err := s.advance(learnerID, slot); err != nil {
		slot.callbackErr = err
	}
}

func (s *practiceService) advance(learnerID string, slot *learnerSlot) error {
	if err := slot.machine.NextGame(); err != nil {
		return err
	}
	s.closeGame(slot)
	s.presentGame(learnerID, slot)
	return nil
}

func (s *practiceService) closeGame(slot *learnerSlot) {
	if slot.scope != nil {
		slot.scope.closed = true
		slot.scope = nil
	}
	if slot.runner != nil {
		slot.runner.Close()
		slot.runner = nil
	}
}

// slotClock delivers module timers under the learner lock and drops them once
// their game has been replaced.
type slotClock struct {
	clock games.Clock
	slot  *learnerSlot
	scope *gameScope
}

func (c *slotClock) Now() time.Time { return c.clock.Now() }

func (c *slotClock) AfterFunc(d time.Duration, f func()) games.Timer {
	return c.clock.AfterFunc(d, func() {
		c.slot.mu.Lock()
		defer c.slot.mu.Unlock()
		if c.scope.closed {
			return
		}
		f()
	})
}

// ===== SESSION END =====

// EndSession credits the session XP locally and releases the session. The
// remote submission is reconciled in the background and never revokes the credit.
func (s *practiceService) EndSession(ctx context.Context, learnerID string) (*SessionSummary, error) {
	op := s.ops.WithOperation(ctx, "end_session", learnerID)
	summary, err := s.endSession(ctx, learnerID)
	resourceID := ""
	if summary != nil {
		resourceID = summary.SessionID
	}
	op.LogResult(resourceID, err)
	return summary, err
}

func (s *practiceService) endSession(ctx context.Context, learnerID string) (*SessionSummary, error) {
	slot, err := s.activeSlot(learnerID)
	if err != nil {
		return nil, err
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()

	if state := slot.machine.State(); state != engine.StateComplete {
		if state == engine.StateNone {
			return nil, ErrNoActiveSession
		}
		return nil, fmt.Errorf("%w: end in %s", engine.ErrInvalidState, state)
	}

	session := slot.machine.Session()
	result := slot.machine.Result()
	entry, record, err := s.recordCompletion(ctx, learnerID, session, result)
	if err != nil {
		return nil, err
	}

	summary, err := slot.machine.End()
	if err != nil {
		return nil, err
	}
	s.closeGame(slot)
	s.release(learnerID, slot)

	s.logger.Info("Practice session ended",
		"learner_id", learnerID,
		"session_id", session.ID,
		"total_xp", result.TotalXPEarned,
		"ledger_entry_id", entry.ID)

	s.publish(ctx, events.NewPracticeEvent(events.EventXPCredited, learnerID, events.XPCreditedEvent{
		LedgerEntryID: entry.ID,
		Source:        string(entry.Source),
		SourceRef:     entry.SourceRef,
		Amount:        entry.Amount,
	}))
	s.publish(ctx, events.NewPracticeEvent(events.EventSessionCompleted, learnerID, events.SessionCompletedEvent{
		SessionID:     session.ID,
		Level:         session.Level,
		Fallback:      session.Fallback,
		GameCount:     record.GameCount,
		CorrectCount:  record.CorrectCount,
		TotalXPEarned: record.TotalXPEarned,
		CompletedAt:   record.CompletedAt,
	}))

	s.wg.Add(1)
	go s.reconcile(context.WithoutCancel(ctx), learnerID, entry, summary)

	return &SessionSummary{
		SessionID:     session.ID,
		Level:         session.Level,
		Fallback:      session.Fallback,
		Results:       summary.Result.Results,
		GameCount:     session.GameCount(),
		CorrectCount:  summary.Result.CorrectCount(),
		TotalXPEarned: summary.Result.TotalXPEarned,
		LedgerEntryID: entry.ID,
		SyncStatus:    entry.SyncStatus,
	}, nil
}

func (s *practiceService) recordCompletion(ctx context.Context, learnerID string, session *models.Session, result models.SessionResult) (*models.XPLedgerEntry, *models.SessionRecord, error) {
	results, err := json.Marshal(result.Results)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode session results: %w", err)
	}

	entry := &models.XPLedgerEntry{
		LearnerID:  learnerID,
		Source:     models.XPSourceSession,
		SourceRef:  session.ID,
		Amount:     result.TotalXPEarned,
		SyncStatus: models.SyncPending,
	}
	record := &models.SessionRecord{
		SessionID:     session.ID,
		LearnerID:     learnerID,
		Level:         session.Level,
		LevelLabel:    session.LevelLabel,
		Fallback:      session.Fallback,
		GameCount:     session.GameCount(),
		CorrectCount:  result.CorrectCount(),
		TotalXPEarned: result.TotalXPEarned,
		Results:       datatypes.JSON(results),
		CompletedAt:   time.Now().UTC(),
	}

	err = s.repo.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.repo.XPLedger().Create(ctx, tx, entry); err != nil {
			return fmt.Errorf("failed to credit xp: %w", err)
		}
		record.LedgerEntryID = entry.ID
		if err := s.repo.SessionRecords().Create(ctx, tx, record); err != nil {
			return fmt.Errorf("failed to record session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return entry, record, nil
}

func (s *practiceService) reconcile(ctx context.Context, learnerID string, entry *models.XPLedgerEntry, summary engine.Summary) {
	defer s.wg.Done()

	submitCtx, cancel := context.WithTimeout(ctx, s.opts.SubmitTimeout)
	ok := s.submitter.Submit(submitCtx, summary.Session, summary.Result)
	cancel()

	status := models.SyncSynced
	var syncErr *string
	if !ok {
		status = models.SyncFailed
		reason := "one or more game results were not accepted by the backend"
		syncErr = &reason
	}

	updateCtx, cancel := context.WithTimeout(ctx, s.opts.SubmitTimeout)
	defer cancel()
	if err := s.repo.XPLedger().UpdateSyncStatus(updateCtx, nil, entry.ID, status, syncErr); err != nil {
		s.logger.Error("Failed to update ledger sync status",
			"learner_id", learnerID,
			"ledger_entry_id", entry.ID,
			"error", err)
	}

	if ok {
		s.logger.Info("Session results synced", "learner_id", learnerID, "session_id", summary.Session.ID)
		return
	}

	s.logger.Warn("Session results diverged from backend",
		"learner_id", learnerID,
		"session_id", summary.Session.ID,
		"ledger_entry_id", entry.ID)
	s.publish(updateCtx, events.NewPracticeEvent(events.EventXPSyncDiverged, learnerID, events.XPSyncDivergedEvent{
		LedgerEntryID: entry.ID,
		SessionID:     summary.Session.ID,
		Amount:        entry.Amount,
		Reason:        *syncErr,
	}))
}

func (s *practiceService) Wait() {
	s.wg.Wait()
}

func (s *practiceService) publish(ctx context.Context, event *events.PracticeEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish practice event", "type", event.Type, "error", err)
	}
}

// ===== HELPERS =====

func (s *practiceService) slot(learnerID string, create bool) *learnerSlot {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[learnerID]
	if !ok && create {
		slot = &learnerSlot{machine: engine.NewMachine(s.logger.With("learner_id", learnerID))}
		s.slots[learnerID] = slot
	}
	return slot
}

// lockedSlot returns the learner's registered slot with its lock held. A slot
// released while waiting for its lock is skipped.
func (s *practiceService) lockedSlot(learnerID string) *learnerSlot {
	for {
		slot := s.slot(learnerID, true)
		slot.mu.Lock()
		s.mu.Lock()
		current := s.slots[learnerID] == slot
		s.mu.Unlock()
		if current {
			return slot
		}
		slot.mu.Unlock()
	}
}

// release forgets a slot whose machine is back to none. Callers hold slot.mu.
func (s *practiceService) release(learnerID string, slot *learnerSlot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.slots[learnerID] == slot {
		delete(s.slots, learnerID)
	}
}

func (s *practiceService) activeSlot(learnerID string) (*learnerSlot, error) {
	if err := requireLearner(learnerID); err != nil {
		return nil, err
	}
	slot := s.slot(learnerID, false)
	if slot == nil {
		return nil, ErrNoActiveSession
	}
	return slot, nil
}

// playingSlot returns the learner's slot locked, or an error when no game is
// being presented.
func (s *practiceService) playingSlot(learnerID string) (*learnerSlot, error) {
	slot, err := s.activeSlot(learnerID)
	if err != nil {
		return nil, err
	}
	slot.mu.Lock()
	switch slot.machine.State() {
	case engine.StatePlaying:
		return slot, nil
	case engine.StateNone:
		slot.mu.Unlock()
		return nil, ErrNoActiveSession
	default:
		state := slot.machine.State()
		slot.mu.Unlock()
		return nil, fmt.Errorf("%w: session is %s", ErrSessionNotPlayed, state)
	}
}

func (s *practiceService) view(slot *learnerSlot) *SessionView {
	m := slot.machine
	result := m.Result()
	v := &SessionView{
		State:         m.State(),
		GameIndex:     m.Index(),
		Results:       result.Results,
		TotalXPEarned: result.TotalXPEarned,
	}
	if session := m.Session(); session != nil {
		v.SessionID = session.ID
		v.Level = session.Level
		v.LevelLabel = session.LevelLabel
		v.LevelColor = session.LevelColor
		v.Fallback = session.Fallback
		v.GameCount = session.GameCount()
	}
	if err := m.Err(); err != nil {
		v.Error = loadErrorMessage(err)
		v.Retryable = true
	}
	if cfg, ok := m.CurrentGame(); ok {
		g := &GameView{
			Index:       m.Index(),
			Kind:        cfg.Kind,
			Title:       cfg.Title,
			Description: cfg.Description,
			Reported:    reported(result, m.Index()),
		}
		if slot.runner != nil {
			mv := slot.runner.Module().View()
			g.View = &mv
		}
		v.Game = g
	}
	return v
}

func reported(result models.SessionResult, index int) bool {
	for _, e := range result.Results {
		if e.GameIndex == index {
			return true
		}
	}
	return false
}

func loadErrorMessage(err error) string {
	if errors.Is(err, engine.ErrEmptySession) {
		return "No games are available for this session yet. Please try again later."
	}
	return "The practice session could not be loaded. Check your connection and try again."
}

func requireLearner(learnerID string) error {
	if strings.TrimSpace(learnerID) == "" {
		return ErrMissingLearner
	}
	return nil
}
