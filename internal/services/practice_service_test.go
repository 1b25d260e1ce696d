package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/darijalingo/practice-engine/internal/backend"
	"github.com/darijalingo/practice-engine/internal/catalog"
	"github.com/darijalingo/practice-engine/internal/engine"
	"github.com/darijalingo/practice-engine/internal/events"
	"github.com/darijalingo/practice-engine/internal/games"
	"github.com/darijalingo/practice-engine/internal/models"
	"github.com/darijalingo/practice-engine/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const learner = "learner-1"

var (
	quizPayload = json.RawMessage(`{"question":"Thank you?","options":[
		{"id":1,"text":"Choukran","correct":true},{"id":2,"text":"Salam"}]}`)
	matchPayload = json.RawMessage(`{"pairs":[
		{"id":1,"darija":"Salam","english":"Hello"},{"id":2,"darija":"Choukran","english":"Thank you"},
		{"id":3,"darija":"Bslama","english":"Goodbye"},{"id":4,"darija":"Wakha","english":"Okay"}]}`)
	sprintPayload = json.RawMessage(`{"cards":[]}`)
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type practiceFixture struct {
	svc       PracticeService
	repo      *MockRepository
	loader    *MockLoader
	client    *MockBackendClient
	publisher *events.MockEventPublisher
	clock     *games.FakeClock
}

func newPracticeFixture(t *testing.T) *practiceFixture {
	t.Helper()
	f := &practiceFixture{
		repo:      NewMockRepository(),
		loader:    new(MockLoader),
		client:    new(MockBackendClient),
		publisher: events.NewMockEventPublisher(testLogger()),
		clock:     games.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
	}
	seed := uint64(0)
	f.svc = NewPracticeService(
		f.repo,
		f.loader,
		NewResultSubmitter(f.client, testLogger()),
		f.publisher,
		games.DefaultRegistry(),
		validator.New(),
		PracticeOptions{
			Clock: f.clock,
			NewRand: func() *rand.Rand {
				seed++
				return rand.New(rand.NewPCG(seed, seed))
			},
			SubmitTimeout: time.Second,
		},
		testLogger(),
	)
	return f
}

func session(id string, games ...models.GameConfig) *models.Session {
	return &models.Session{ID: id, Level: "a1", LevelLabel: "A1", LevelColor: "#6366f1", Games: games}
}

func game(kind models.GameKind, backendType string, payload json.RawMessage) models.GameConfig {
	return models.GameConfig{Kind: kind, BackendType: backendType, RawType: backendType, Title: string(kind), Payload: payload}
}

func (f *practiceFixture) slotCount() int {
	ps := f.svc.(*practiceService)
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return len(ps.slots)
}

func (f *practiceFixture) act(t *testing.T, a games.Action) *ActionResponse {
	t.Helper()
	resp, err := f.svc.Act(context.Background(), learner, a)
	require.NoError(t, err, "action %s", a.Type)
	return resp
}

func (f *practiceFixture) expectCredit(id uint, amount int) {
	f.repo.ledger.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(e *models.XPLedgerEntry) bool {
		return e.Amount == amount && e.SyncStatus == models.SyncPending && e.Source == models.XPSourceSession
	})).Run(func(args mock.Arguments) {
		args.Get(2).(*models.XPLedgerEntry).ID = id
	}).Return(nil).Once()
	f.repo.sessions.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(r *models.SessionRecord) bool {
		return r.LedgerEntryID == id && r.TotalXPEarned == amount
	})).Return(nil).Once()
}

func TestPracticeService_PlaysFullSession(t *testing.T) {
	f := newPracticeFixture(t)
	f.loader.On("Load", mock.Anything).Return(session("s-1",
		game(models.GameMultipleChoice, "listening", quizPayload),
		game(models.GameWordMatch, "word_match", matchPayload),
	), nil).Once()

	view, err := f.svc.StartSession(context.Background(), learner, &StartSessionRequest{Script: models.ScriptHybrid})
	require.NoError(t, err)
	assert.Equal(t, engine.StatePlaying, view.State)
	assert.Equal(t, "s-1", view.SessionID)
	assert.Equal(t, 2, view.GameCount)
	require.NotNil(t, view.Game)
	assert.Equal(t, models.GameMultipleChoice, view.Game.Kind)
	require.NotNil(t, view.Game.View)

	resp := f.act(t, games.Action{Type: games.ActionAnswer, Text: "choukran"})
	require.NotNil(t, resp.Feedback.Correct)
	assert.True(t, *resp.Feedback.Correct)
	f.act(t, games.Action{Type: games.ActionNext})
	resp = f.act(t, games.Action{Type: games.ActionContinue})
	assert.Equal(t, 1, resp.Session.GameIndex)
	assert.Equal(t, models.GameWordMatch, resp.Session.Game.Kind)
	assert.Equal(t, 25, resp.Session.TotalXPEarned)

	f.act(t, games.Action{Type: games.ActionMatch, LeftID: "1", RightID: "2"})
	for _, id := range []string{"1", "2", "3", "4"} {
		f.act(t, games.Action{Type: games.ActionMatch, LeftID: id, RightID: id})
	}
	resp = f.act(t, games.Action{Type: games.ActionContinue})
	assert.Equal(t, engine.StateComplete, resp.Session.State)
	assert.Nil(t, resp.Session.Game)
	require.Len(t, resp.Session.Results, 2)
	assert.Equal(t, 50, resp.Session.TotalXPEarned)

	f.expectCredit(7, 50)
	f.client.On("SubmitResult", mock.Anything, "listening", backend.SubmitResultRequest{
		Score: 1, Answers: []backend.AnswerOutcome{{Correct: true}},
	}).Return(nil).Once()
	f.client.On("SubmitResult", mock.Anything, "word_match", backend.SubmitResultRequest{
		Score: 1, Answers: []backend.AnswerOutcome{{Correct: true}},
	}).Return(nil).Once()
	f.repo.ledger.On("UpdateSyncStatus", mock.Anything, mock.Anything, uint(7), models.SyncSynced, (*string)(nil)).
		Return(nil).Once()

	summary, err := f.svc.EndSession(context.Background(), learner)
	require.NoError(t, err)
	assert.Equal(t, "s-1", summary.SessionID)
	assert.Equal(t, 50, summary.TotalXPEarned)
	assert.Equal(t, 2, summary.CorrectCount)
	assert.Equal(t, uint(7), summary.LedgerEntryID)
	assert.Equal(t, models.SyncPending, summary.SyncStatus)

	f.svc.Wait()
	f.repo.ledger.AssertExpectations(t)
	f.repo.sessions.AssertExpectations(t)
	f.client.AssertExpectations(t)

	assert.Len(t, f.publisher.EventsOfType(events.EventXPCredited), 1)
	assert.Len(t, f.publisher.EventsOfType(events.EventSessionCompleted), 1)
	assert.Empty(t, f.publisher.EventsOfType(events.EventXPSyncDiverged))

	_, err = f.svc.CurrentSession(context.Background(), learner)
	assert.ErrorIs(t, err, ErrNoActiveSession)
	assert.Zero(t, f.slotCount(), "ended session keeps no learner state")
}

func TestPracticeService_SyncFailureKeepsCredit(t *testing.T) {
	f := newPracticeFixture(t)
	f.loader.On("Load", mock.Anything).Return(session("s-2",
		game(models.GameWordMatch, "", matchPayload),
		game(models.GameWordMatch, "word_match", matchPayload),
	), nil).Once()

	ctx := context.Background()
	_, err := f.svc.StartSession(ctx, learner, nil)
	require.NoError(t, err)

	_, err = f.svc.SubmitResult(ctx, learner, &SubmitResultRequest{GameIndex: 0, Correct: false, Score: 0, Total: 1})
	require.NoError(t, err)
	_, err = f.svc.Act(ctx, learner, games.Action{Type: games.ActionContinue})
	assert.ErrorIs(t, err, games.ErrAlreadyReported)
	_, err = f.svc.NextGame(ctx, learner)
	require.NoError(t, err)

	bonus := 50
	_, err = f.svc.SubmitResult(ctx, learner, &SubmitResultRequest{GameIndex: 1, Correct: true, Score: 4, Total: 4, Bonus: &bonus})
	require.NoError(t, err)
	view, err := f.svc.NextGame(ctx, learner)
	require.NoError(t, err)
	require.Equal(t, engine.StateComplete, view.State)
	assert.Equal(t, 55, view.TotalXPEarned)

	f.expectCredit(9, 55)
	f.client.On("SubmitResult", mock.Anything, FallbackBackendType, backend.SubmitResultRequest{
		Score: 0, Answers: []backend.AnswerOutcome{{Correct: false}},
	}).Return(errors.New("bad gateway")).Once()
	f.client.On("SubmitResult", mock.Anything, "word_match", mock.Anything).Return(nil).Once()
	f.repo.ledger.On("UpdateSyncStatus", mock.Anything, mock.Anything, uint(9), models.SyncFailed,
		mock.MatchedBy(func(s *string) bool { return s != nil && *s != "" })).Return(nil).Once()

	summary, err := f.svc.EndSession(ctx, learner)
	require.NoError(t, err)
	assert.Equal(t, 55, summary.TotalXPEarned)

	f.svc.Wait()
	f.client.AssertExpectations(t)
	f.repo.ledger.AssertExpectations(t)

	diverged := f.publisher.EventsOfType(events.EventXPSyncDiverged)
	require.Len(t, diverged, 1)
	data := diverged[0].Data.(events.XPSyncDivergedEvent)
	assert.Equal(t, uint(9), data.LedgerEntryID)
	assert.Equal(t, 55, data.Amount)
}

func TestPracticeService_RecordFailureKeepsSession(t *testing.T) {
	f := newPracticeFixture(t)
	f.loader.On("Load", mock.Anything).Return(session("s-3",
		game(models.GameWordMatch, "word_match", matchPayload),
	), nil).Once()

	ctx := context.Background()
	_, err := f.svc.StartSession(ctx, learner, nil)
	require.NoError(t, err)
	_, err = f.svc.SubmitResult(ctx, learner, &SubmitResultRequest{GameIndex: 0, Correct: true, Score: 4, Total: 4})
	require.NoError(t, err)
	_, err = f.svc.NextGame(ctx, learner)
	require.NoError(t, err)

	f.repo.ledger.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
	_, err = f.svc.EndSession(ctx, learner)
	require.Error(t, err)

	view, err := f.svc.CurrentSession(ctx, learner)
	require.NoError(t, err)
	assert.Equal(t, engine.StateComplete, view.State)
	assert.Equal(t, 25, view.TotalXPEarned)
	f.client.AssertNotCalled(t, "SubmitResult", mock.Anything, mock.Anything, mock.Anything)
}

func TestPracticeService_LoadFailureAndRetry(t *testing.T) {
	f := newPracticeFixture(t)
	ctx := context.Background()
	f.loader.On("Load", mock.Anything).Return(nil, fmt.Errorf("%w: timeout", catalog.ErrUnavailable)).Once()

	_, err := f.svc.StartSession(ctx, learner, nil)
	require.Error(t, err)
	assert.True(t, IsUnavailable(err))

	view, err := f.svc.CurrentSession(ctx, learner)
	require.NoError(t, err)
	assert.Equal(t, engine.StateError, view.State)
	assert.True(t, view.Retryable)
	assert.NotEmpty(t, view.Error)

	_, err = f.svc.Act(ctx, learner, games.Action{Type: games.ActionNext})
	assert.True(t, IsConflict(err))

	f.loader.On("Load", mock.Anything).Return(session("s-4", game(models.GameWordMatch, "word_match", matchPayload)), nil).Once()
	view, err = f.svc.StartSession(ctx, learner, nil)
	require.NoError(t, err)
	assert.Equal(t, engine.StatePlaying, view.State)
	assert.Empty(t, view.Error)

	t.Run("empty playlist", func(t *testing.T) {
		f.loader.On("Load", mock.Anything).Return(&models.Session{ID: "empty"}, nil).Once()
		_, err := f.svc.StartSession(ctx, learner, nil)
		assert.ErrorIs(t, err, engine.ErrEmptySession)
		assert.True(t, IsUnavailable(err))
	})
}

func TestPracticeService_StaleLoadIsDiscarded(t *testing.T) {
	f := newPracticeFixture(t)
	started := make(chan struct{})
	release := make(chan struct{})
	f.loader.On("Load", mock.Anything).Run(func(mock.Arguments) {
		close(started)
		<-release
	}).Return(session("late", game(models.GameWordMatch, "word_match", matchPayload)), nil).Once()

	errCh := make(chan error, 1)
	go func() {
		_, err := f.svc.StartSession(context.Background(), learner, nil)
		errCh <- err
	}()

	<-started
	require.NoError(t, f.svc.ResetSession(context.Background(), learner))
	close(release)

	assert.ErrorIs(t, <-errCh, engine.ErrStaleLoad)
	_, err := f.svc.CurrentSession(context.Background(), learner)
	assert.ErrorIs(t, err, ErrNoActiveSession)
	assert.Zero(t, f.slotCount())
}

func TestPracticeService_ResetDiscardsResults(t *testing.T) {
	f := newPracticeFixture(t)
	ctx := context.Background()
	f.loader.On("Load", mock.Anything).Return(session("s-5",
		game(models.GameWordMatch, "word_match", matchPayload),
		game(models.GameWordMatch, "word_match", matchPayload),
	), nil).Twice()

	_, err := f.svc.StartSession(ctx, learner, nil)
	require.NoError(t, err)
	_, err = f.svc.SubmitResult(ctx, learner, &SubmitResultRequest{GameIndex: 0, Correct: true, Score: 4, Total: 4})
	require.NoError(t, err)

	require.NoError(t, f.svc.ResetSession(ctx, learner))
	assert.Zero(t, f.slotCount(), "reset drops the learner slot")
	_, err = f.svc.EndSession(ctx, learner)
	assert.ErrorIs(t, err, ErrNoActiveSession)

	view, err := f.svc.StartSession(ctx, learner, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, f.slotCount())
	assert.Empty(t, view.Results)
	assert.Zero(t, view.TotalXPEarned)
	assert.Zero(t, view.GameIndex)

	f.repo.ledger.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestPracticeService_UnsupportedGameIsSkipped(t *testing.T) {
	f := newPracticeFixture(t)
	ctx := context.Background()
	unknown := models.GameConfig{Kind: models.GameUnsupported, RawType: "karaoke", BackendType: "karaoke"}
	f.loader.On("Load", mock.Anything).Return(session("s-6",
		unknown,
		game(models.GameWordMatch, "word_match", matchPayload),
	), nil).Once()

	view, err := f.svc.StartSession(ctx, learner, nil)
	require.NoError(t, err)
	assert.Equal(t, models.GameUnsupported, view.Game.Kind)

	_, err = f.svc.SubmitResult(ctx, learner, &SubmitResultRequest{GameIndex: 0, Correct: true, Score: 1, Total: 1})
	assert.ErrorIs(t, err, engine.ErrUnsupportedGame)

	resp := f.act(t, games.Action{Type: games.ActionSkip})
	assert.Equal(t, 1, resp.Session.GameIndex)
	assert.Empty(t, resp.Session.Results)
	assert.Equal(t, models.GameWordMatch, resp.Session.Game.Kind)
}

func TestPracticeService_TimersBelongToTheirGame(t *testing.T) {
	t.Run("sprint expires under the session lock", func(t *testing.T) {
		f := newPracticeFixture(t)
		f.loader.On("Load", mock.Anything).Return(session("s-7",
			game(models.GameFlashcardSprint, "flashcard_sprint", sprintPayload),
		), nil).Once()

		_, err := f.svc.StartSession(context.Background(), learner, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, f.clock.Pending())

		f.act(t, games.Action{Type: games.ActionKnow})
		_, err = f.svc.Act(context.Background(), learner, games.Action{Type: games.ActionContinue})
		assert.ErrorIs(t, err, games.ErrNotTerminal)

		f.clock.Advance(games.SprintDuration + time.Second)
		view, err := f.svc.CurrentSession(context.Background(), learner)
		require.NoError(t, err)
		assert.True(t, view.Game.View.Terminal)

		resp := f.act(t, games.Action{Type: games.ActionContinue})
		assert.Equal(t, engine.StateComplete, resp.Session.State)
		assert.Equal(t, 25, resp.Session.TotalXPEarned)
	})

	t.Run("advancing stops the previous game's timer", func(t *testing.T) {
		f := newPracticeFixture(t)
		f.loader.On("Load", mock.Anything).Return(session("s-8",
			game(models.GameFlashcardSprint, "flashcard_sprint", sprintPayload),
			game(models.GameWordMatch, "word_match", matchPayload),
		), nil).Once()

		_, err := f.svc.StartSession(context.Background(), learner, nil)
		require.NoError(t, err)
		require.Equal(t, 1, f.clock.Pending())

		view, err := f.svc.NextGame(context.Background(), learner)
		require.NoError(t, err)
		assert.Zero(t, f.clock.Pending())

		f.clock.Advance(2 * games.SprintDuration)
		assert.Equal(t, models.GameWordMatch, view.Game.Kind)
		assert.False(t, view.Game.View.Terminal)
	})
}

func TestPracticeService_Guards(t *testing.T) {
	f := newPracticeFixture(t)
	ctx := context.Background()

	t.Run("missing learner", func(t *testing.T) {
		_, err := f.svc.StartSession(ctx, " ", nil)
		assert.ErrorIs(t, err, ErrMissingLearner)
		assert.True(t, IsValidation(err))
	})

	t.Run("no session", func(t *testing.T) {
		_, err := f.svc.Act(ctx, "nobody", games.Action{Type: games.ActionNext})
		assert.ErrorIs(t, err, ErrNoActiveSession)
		_, err = f.svc.NextGame(ctx, "nobody")
		assert.ErrorIs(t, err, ErrNoActiveSession)
		assert.NoError(t, f.svc.ResetSession(ctx, "nobody"))
	})

	t.Run("invalid requests", func(t *testing.T) {
		_, err := f.svc.StartSession(ctx, learner, &StartSessionRequest{Script: "cyrillic"})
		assert.True(t, IsValidation(err))

		f.loader.On("Load", mock.Anything).Return(session("s-9", game(models.GameWordMatch, "word_match", matchPayload)), nil).Once()
		_, err = f.svc.StartSession(ctx, learner, nil)
		require.NoError(t, err)

		_, err = f.svc.SubmitResult(ctx, learner, &SubmitResultRequest{GameIndex: 0, Score: 5, Total: 4})
		assert.True(t, IsValidation(err))

		_, err = f.svc.Act(ctx, learner, games.Action{})
		assert.True(t, IsValidation(err))

		_, err = f.svc.SubmitResult(ctx, learner, &SubmitResultRequest{GameIndex: 1, Score: 1, Total: 1})
		assert.ErrorIs(t, err, engine.ErrGameMismatch)
		assert.True(t, IsConflict(err))
	})

	t.Run("end before complete", func(t *testing.T) {
		_, err := f.svc.EndSession(ctx, learner)
		assert.ErrorIs(t, err, engine.ErrInvalidState)
		assert.True(t, IsConflict(err))
	})
}
