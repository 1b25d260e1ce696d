package games

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/darijalingo/practice-engine/internal/models"
)

const (
	mismatchDelay   = time.Second
	fastMatchCutoff = 60 * time.Second
)

type memoryCard struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	PairID int    `json:"pair_id"`
	Side   string `json:"side"`
}

type MemoryCardView struct {
	ID      string `json:"id"`
	Text    string `json:"text,omitempty"`
	Up      bool   `json:"up"`
	Matched bool   `json:"matched"`
}

type MemoryMatchView struct {
	Cards          []MemoryCardView `json:"cards"`
	Moves          int              `json:"moves"`
	ElapsedSeconds int              `json:"elapsed_seconds"`
}

// MemoryMatch is a concentration game over Darija and English cards.
// A mismatched pair stays face up until hidden by the learner or the delay.
type MemoryMatch struct {
	env       Env
	pairCount int
	cards     []memoryCard
	flipped   []string
	matched   map[int]bool
	moves     int
	started   time.Time
	finished  time.Time
	hideTimer Timer
}

func NewMemoryMatch(payload json.RawMessage, env Env) Module {
	var p struct {
		Pairs []struct {
			Darija  string `json:"darija"`
			English string `json:"english"`
		} `json:"pairs"`
	}
	if !decode(payload, &p) || len(p.Pairs) == 0 {
		defaultPayload(models.GameMemoryMatch, &p)
	}
	if len(p.Pairs) == 0 {
		return NewNoData(models.GameMemoryMatch)
	}

	cards := make([]memoryCard, 0, len(p.Pairs)*2)
	for i, pair := range p.Pairs {
		cards = append(cards,
			memoryCard{ID: fmt.Sprintf("d-%d", i), Text: pair.Darija, PairID: i, Side: "darija"},
			memoryCard{ID: fmt.Sprintf("e-%d", i), Text: pair.English, PairID: i, Side: "english"},
		)
	}
	env.Rand.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })

	return &MemoryMatch{
		env:       env,
		pairCount: len(p.Pairs),
		cards:     cards,
		matched:   make(map[int]bool),
		started:   env.Clock.Now(),
	}
}

func (m *MemoryMatch) Kind() models.GameKind { return models.GameMemoryMatch }

func (m *MemoryMatch) Handle(a Action) (Feedback, error) {
	if m.Terminal() {
		return Feedback{}, ErrGameOver
	}
	switch a.Type {
	case ActionHide:
		m.hide()
		return Feedback{}, nil
	case ActionFlip:
		return m.flip(a.CardID)
	default:
		return Feedback{}, ErrUnknownAction
	}
}

func (m *MemoryMatch) flip(id string) (Feedback, error) {
	if len(m.flipped) == 2 {
		return Feedback{}, ErrCardsBusy
	}
	card, ok := m.card(id)
	if !ok || m.matched[card.PairID] {
		return Feedback{}, ErrInvalidAction
	}
	for _, f := range m.flipped {
		if f == id {
			return Feedback{}, ErrInvalidAction
		}
	}

	m.flipped = append(m.flipped, id)
	if len(m.flipped) < 2 {
		return Feedback{}, nil
	}

	m.moves++
	first, _ := m.card(m.flipped[0])
	if first.PairID == card.PairID && first.Side != card.Side {
		m.matched[card.PairID] = true
		m.flipped = nil
		if m.Terminal() {
			m.finished = m.env.Clock.Now()
		}
		return verdict(true, ""), nil
	}

	m.hideTimer = m.env.Clock.AfterFunc(mismatchDelay, m.hide)
	return verdict(false, ""), nil
}

func (m *MemoryMatch) hide() {
	if m.hideTimer != nil {
		m.hideTimer.Stop()
		m.hideTimer = nil
	}
	m.flipped = nil
}

func (m *MemoryMatch) card(id string) (memoryCard, bool) {
	for _, c := range m.cards {
		if c.ID == id {
			return c, true
		}
	}
	return memoryCard{}, false
}

func (m *MemoryMatch) elapsed() time.Duration {
	if !m.finished.IsZero() {
		return m.finished.Sub(m.started)
	}
	return m.env.Clock.Now().Sub(m.started)
}

func (m *MemoryMatch) View() View {
	up := make(map[string]bool, len(m.flipped))
	for _, id := range m.flipped {
		up[id] = true
	}
	state := MemoryMatchView{Moves: m.moves, ElapsedSeconds: int(m.elapsed().Seconds())}
	for _, c := range m.cards {
		v := MemoryCardView{ID: c.ID, Up: up[c.ID], Matched: m.matched[c.PairID]}
		if v.Up || v.Matched {
			v.Text = c.Text
		}
		state.Cards = append(state.Cards, v)
	}
	return View{Kind: models.GameMemoryMatch, Terminal: m.Terminal(), Score: len(m.matched), Total: m.pairCount, State: state}
}

func (m *MemoryMatch) Terminal() bool { return len(m.matched) == m.pairCount }

func (m *MemoryMatch) Result() models.GameResult {
	bonus := standardBonus
	if m.elapsed() < fastMatchCutoff {
		bonus = perfectBonus
	}
	return models.GameResult{
		Correct: len(m.matched) == m.pairCount,
		Score:   len(m.matched),
		Total:   m.pairCount,
	}.WithBonus(bonus)
}

func (m *MemoryMatch) Close() {
	if m.hideTimer != nil {
		m.hideTimer.Stop()
		m.hideTimer = nil
	}
}
