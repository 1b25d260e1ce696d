package games

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"

	"github.com/darijalingo/practice-engine/internal/answers"
	"github.com/darijalingo/practice-engine/internal/models"
)

var gapMarker = regexp.MustCompile(`___(\d+)___`)

type storyGap struct {
	Answer string `json:"answer"`
}

type storyParagraph struct {
	Text string              `json:"text"`
	Gaps map[string]storyGap `json:"gaps"`
}

type StoryGapView struct {
	Title      string            `json:"title,omitempty"`
	Paragraphs []string          `json:"paragraphs"`
	GapIDs     []string          `json:"gap_ids"`
	WordBank   []string          `json:"word_bank"`
	Filled     map[string]string `json:"filled"`
	Checked    bool              `json:"checked"`
	Results    map[string]bool   `json:"results,omitempty"`
}

// StoryGapFill is a short story with numbered blanks filled from a word bank.
type StoryGapFill struct {
	title      string
	paragraphs []storyParagraph
	gaps       map[string]storyGap
	gapIDs     []string
	wordBank   []string
	filled     map[string]string
	checked    bool
	score      int
}

func NewStoryGapFill(payload json.RawMessage, env Env) Module {
	var p struct {
		Title      string           `json:"title"`
		Paragraphs []storyParagraph `json:"paragraphs"`
		WordBank   []string         `json:"wordBank"`
		WordBankJS []string         `json:"word_bank"`
	}
	if !decode(payload, &p) || len(p.Paragraphs) == 0 {
		return NewNoData(models.GameStoryGapFill)
	}

	gaps := make(map[string]storyGap)
	for _, para := range p.Paragraphs {
		for id, g := range para.Gaps {
			gaps[id] = g
		}
	}
	if len(gaps) == 0 {
		return NewNoData(models.GameStoryGapFill)
	}

	ids := orderedGapIDs(p.Paragraphs, gaps)

	bank := p.WordBank
	if len(bank) == 0 {
		bank = p.WordBankJS
	}
	return &StoryGapFill{
		title:      p.Title,
		paragraphs: p.Paragraphs,
		gaps:       gaps,
		gapIDs:     ids,
		wordBank:   bank,
		filled:     make(map[string]string),
	}
}

func (s *StoryGapFill) Kind() models.GameKind { return models.GameStoryGapFill }

func (s *StoryGapFill) Handle(a Action) (Feedback, error) {
	if a.Type == ActionReset {
		s.filled = make(map[string]string)
		s.checked = false
		s.score = 0
		return Feedback{}, nil
	}
	if s.checked {
		return Feedback{}, ErrAlreadyAnswered
	}

	switch a.Type {
	case ActionFill:
		if _, ok := s.gaps[a.GapID]; !ok || !s.inBank(a.Word) {
			return Feedback{}, ErrInvalidAction
		}
		s.filled[a.GapID] = a.Word
	case ActionClear:
		if _, ok := s.gaps[a.GapID]; !ok {
			return Feedback{}, ErrInvalidAction
		}
		delete(s.filled, a.GapID)
	case ActionCheck:
		if len(s.filled) < len(s.gaps) {
			return Feedback{}, ErrIncompleteAnswer
		}
		s.checked = true
		s.score = 0
		for id, g := range s.gaps {
			if answers.Verify(s.filled[id], g.Answer) {
				s.score++
			}
		}
		return verdict(s.score == len(s.gaps), ""), nil
	default:
		return Feedback{}, ErrUnknownAction
	}
	return Feedback{}, nil
}

func (s *StoryGapFill) inBank(word string) bool {
	if word == "" {
		return false
	}
	if len(s.wordBank) == 0 {
		return true
	}
	for _, w := range s.wordBank {
		if w == word {
			return true
		}
	}
	return false
}

func (s *StoryGapFill) View() View {
	state := StoryGapView{
		Title:    s.title,
		GapIDs:   s.gapIDs,
		WordBank: s.wordBank,
		Filled:   make(map[string]string, len(s.filled)),
		Checked:  s.checked,
	}
	for id, w := range s.filled {
		state.Filled[id] = w
	}
	for _, para := range s.paragraphs {
		state.Paragraphs = append(state.Paragraphs, para.Text)
	}
	if s.checked {
		state.Results = make(map[string]bool, len(s.gaps))
		for id, g := range s.gaps {
			state.Results[id] = answers.Verify(s.filled[id], g.Answer)
		}
	}
	return View{Kind: models.GameStoryGapFill, Terminal: s.checked, Score: s.score, Total: len(s.gaps), State: state}
}

func (s *StoryGapFill) Terminal() bool { return s.checked }

func (s *StoryGapFill) Result() models.GameResult {
	total := len(s.gaps)
	return models.GameResult{Correct: halfOrMore(s.score, total), Score: s.score, Total: total}
}

func (s *StoryGapFill) Close() {}

// orderedGapIDs lists gaps in reading order. Gaps never referenced by a
// marker follow, sorted numerically.
func orderedGapIDs(paragraphs []storyParagraph, gaps map[string]storyGap) []string {
	ids := make([]string, 0, len(gaps))
	seen := make(map[string]bool, len(gaps))
	for _, para := range paragraphs {
		for _, m := range gapMarker.FindAllStringSubmatch(para.Text, -1) {
			if _, ok := gaps[m[1]]; ok && !seen[m[1]] {
				seen[m[1]] = true
				ids = append(ids, m[1])
			}
		}
	}

	var rest []string
	for id := range gaps {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Slice(rest, func(i, j int) bool {
		a, errA := strconv.Atoi(rest[i])
		b, errB := strconv.Atoi(rest[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return rest[i] < rest[j]
	})
	return append(ids, rest...)
}
