package games

import (
	"encoding/json"
	"strings"

	"github.com/darijalingo/practice-engine/internal/models"
)

type SentenceBuilderView struct {
	English   string   `json:"english,omitempty"`
	Available []string `json:"available"`
	Placed    []string `json:"placed"`
	Checked   bool     `json:"checked"`
	Correct   bool     `json:"correct"`
}

// SentenceBuilder asks the learner to order shuffled words. The target order
// follows the learner's script mode.
type SentenceBuilder struct {
	env       Env
	english   string
	order     []string
	available []string
	placed    []string
	checked   bool
	correct   bool
}

func NewSentenceBuilder(payload json.RawMessage, env Env) Module {
	var p struct {
		English            string   `json:"english"`
		CorrectOrderLatin  []string `json:"correct_order_latin"`
		CorrectOrderArabic []string `json:"correct_order_arabic"`
	}
	if !decode(payload, &p) || len(p.CorrectOrderLatin) == 0 {
		return NewNoData(models.GameSentenceBuilder)
	}

	order := p.CorrectOrderLatin
	if env.Script == models.ScriptArabic && len(p.CorrectOrderArabic) > 0 {
		order = p.CorrectOrderArabic
	}
	return &SentenceBuilder{
		env:       env,
		english:   p.English,
		order:     order,
		available: shuffledStrings(env, order),
	}
}

func (s *SentenceBuilder) Kind() models.GameKind { return models.GameSentenceBuilder }

func (s *SentenceBuilder) Handle(a Action) (Feedback, error) {
	switch a.Type {
	case ActionReset:
		s.available = shuffledStrings(s.env, s.order)
		s.placed = nil
		s.checked = false
		s.correct = false
		return Feedback{}, nil
	case ActionPlace, ActionRemove, ActionCheck:
	default:
		return Feedback{}, ErrUnknownAction
	}

	if s.checked {
		return Feedback{}, ErrAlreadyAnswered
	}

	switch a.Type {
	case ActionPlace:
		if a.Index < 0 || a.Index >= len(s.available) {
			return Feedback{}, ErrInvalidAction
		}
		s.placed = append(s.placed, s.available[a.Index])
		s.available = removeAt(s.available, a.Index)
	case ActionRemove:
		if a.Index < 0 || a.Index >= len(s.placed) {
			return Feedback{}, ErrInvalidAction
		}
		s.available = append(s.available, s.placed[a.Index])
		s.placed = removeAt(s.placed, a.Index)
	case ActionCheck:
		if len(s.placed) == 0 {
			return Feedback{}, ErrIncompleteAnswer
		}
		s.checked = true
		s.correct = strings.Join(s.placed, " ") == strings.Join(s.order, " ")
		return verdict(s.correct, strings.Join(s.order, " ")), nil
	}
	return Feedback{}, nil
}

func (s *SentenceBuilder) View() View {
	score := 0
	if s.correct {
		score = 1
	}
	return View{
		Kind:     models.GameSentenceBuilder,
		Terminal: s.checked,
		Score:    score,
		Total:    1,
		State: SentenceBuilderView{
			English:   s.english,
			Available: append([]string(nil), s.available...),
			Placed:    append([]string(nil), s.placed...),
			Checked:   s.checked,
			Correct:   s.correct,
		},
	}
}

func (s *SentenceBuilder) Terminal() bool { return s.checked }

func (s *SentenceBuilder) Result() models.GameResult {
	if s.correct {
		return models.GameResult{Correct: true, Score: 1, Total: 1}
	}
	return models.GameResult{Correct: false, Score: 0, Total: 1}
}

func (s *SentenceBuilder) Close() {}
