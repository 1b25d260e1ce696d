package games

import (
	"encoding/json"
	"strconv"

	"github.com/darijalingo/practice-engine/internal/models"
)

const (
	perfectBonus  = 50
	standardBonus = 25
)

type matchPair struct {
	ID           flexID `json:"id"`
	Darija       string `json:"darija,omitempty"`
	DarijaArabic string `json:"darija_arabic,omitempty"`
	DarijaLatin  string `json:"darija_latin,omitempty"`
	English      string `json:"english"`
}

type MatchItemView struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Matched bool   `json:"matched"`
}

type WordMatchView struct {
	Darija   []MatchItemView `json:"darija"`
	English  []MatchItemView `json:"english"`
	Attempts int             `json:"attempts"`
}

// WordMatch pairs Darija words with their English meaning. A pair only scores
// when it is matched without having been part of an earlier wrong attempt.
type WordMatch struct {
	env          Env
	pairs        []matchPair
	ids          []string
	englishOrder []int
	matched      map[string]bool
	missed       map[string]bool
	score        int
	attempts     int
}

func NewWordMatch(payload json.RawMessage, env Env) Module {
	var p struct {
		Pairs []matchPair `json:"pairs"`
	}
	if !decode(payload, &p) || len(p.Pairs) == 0 {
		return NewNoData(models.GameWordMatch)
	}

	ids := make([]string, len(p.Pairs))
	for i, pair := range p.Pairs {
		ids[i] = idOr(pair.ID, i)
	}
	// Colliding ids would leave a pair unmatchable; number the pairs instead.
	if hasDuplicates(ids) {
		for i := range ids {
			ids[i] = strconv.Itoa(i + 1)
		}
	}
	return &WordMatch{
		env:          env,
		pairs:        p.Pairs,
		ids:          ids,
		englishOrder: env.Rand.Perm(len(p.Pairs)),
		matched:      make(map[string]bool),
		missed:       make(map[string]bool),
	}
}

func (w *WordMatch) Kind() models.GameKind { return models.GameWordMatch }

func (w *WordMatch) Handle(a Action) (Feedback, error) {
	if w.Terminal() {
		return Feedback{}, ErrGameOver
	}
	if a.Type != ActionMatch {
		return Feedback{}, ErrUnknownAction
	}
	if !w.known(a.LeftID) || !w.known(a.RightID) {
		return Feedback{}, ErrInvalidAction
	}
	if w.matched[a.LeftID] || w.matched[a.RightID] {
		return Feedback{}, ErrInvalidAction
	}

	w.attempts++
	if a.LeftID != a.RightID {
		w.missed[a.LeftID] = true
		w.missed[a.RightID] = true
		return verdict(false, ""), nil
	}

	w.matched[a.LeftID] = true
	if !w.missed[a.LeftID] {
		w.score++
	}
	return verdict(true, a.LeftID), nil
}

func (w *WordMatch) known(id string) bool {
	for _, k := range w.ids {
		if k == id {
			return true
		}
	}
	return false
}

func hasDuplicates(ids []string) bool {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return true
		}
		seen[id] = true
	}
	return false
}

func (w *WordMatch) View() View {
	state := WordMatchView{Attempts: w.attempts}
	for i, p := range w.pairs {
		darija := models.RenderText(p.DarijaArabic, p.DarijaLatin, w.env.Script)
		if darija == "" {
			darija = p.Darija
		}
		state.Darija = append(state.Darija, MatchItemView{ID: w.ids[i], Text: darija, Matched: w.matched[w.ids[i]]})
	}
	for _, i := range w.englishOrder {
		state.English = append(state.English, MatchItemView{ID: w.ids[i], Text: w.pairs[i].English, Matched: w.matched[w.ids[i]]})
	}
	return View{Kind: models.GameWordMatch, Terminal: w.Terminal(), Score: w.score, Total: len(w.pairs), State: state}
}

func (w *WordMatch) Terminal() bool { return len(w.matched) == len(w.pairs) }

func (w *WordMatch) Result() models.GameResult {
	total := len(w.pairs)
	bonus := standardBonus
	if w.score == total {
		bonus = perfectBonus
	}
	return models.GameResult{Correct: halfOrMore(w.score, total), Score: w.score, Total: total}.WithBonus(bonus)
}

func (w *WordMatch) Close() {}
