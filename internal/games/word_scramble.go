package games

import (
	"encoding/json"
	"strings"

	"github.com/darijalingo/practice-engine/internal/models"
)

type scrambleWord struct {
	Word string `json:"word"`
	Hint string `json:"hint"`
}

type WordScrambleView struct {
	Index    int      `json:"index"`
	Count    int      `json:"count"`
	Hint     string   `json:"hint,omitempty"`
	Letters  []string `json:"letters"`
	Placed   []string `json:"placed"`
	Checked  bool     `json:"checked"`
	Correct  bool     `json:"correct"`
	Solution string   `json:"solution,omitempty"`
}

// WordScramble asks the learner to rebuild each word from shuffled letters.
type WordScramble struct {
	env     Env
	words   []scrambleWord
	current int
	letters []string
	placed  []string
	checked bool
	correct bool
	score   int
	over    bool
}

func NewWordScramble(payload json.RawMessage, env Env) Module {
	var p struct {
		Words []scrambleWord `json:"words"`
	}
	if !decode(payload, &p) {
		return NewNoData(models.GameWordScramble)
	}
	words := p.Words[:0:0]
	for _, w := range p.Words {
		if w.Word != "" {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return NewNoData(models.GameWordScramble)
	}

	ws := &WordScramble{env: env, words: words}
	ws.letters = Scramble(env, words[0].Word)
	return ws
}

// Scramble shuffles the letters of word. When the shuffle lands on the
// original order the first letter is swapped with the first different one, so
// only words made of a single repeated letter come back unchanged.
func Scramble(env Env, word string) []string {
	letters := strings.Split(word, "")
	env.Rand.Shuffle(len(letters), func(i, j int) { letters[i], letters[j] = letters[j], letters[i] })
	if strings.Join(letters, "") != word {
		return letters
	}
	for j := 1; j < len(letters); j++ {
		if letters[j] != letters[0] {
			letters[0], letters[j] = letters[j], letters[0]
			break
		}
	}
	return letters
}

func (w *WordScramble) Kind() models.GameKind { return models.GameWordScramble }

func (w *WordScramble) Handle(a Action) (Feedback, error) {
	if w.over {
		return Feedback{}, ErrGameOver
	}
	word := w.words[w.current]

	switch a.Type {
	case ActionNext:
		if !w.checked {
			return Feedback{}, ErrNotAnswered
		}
		if w.current == len(w.words)-1 {
			w.over = true
			return Feedback{Message: "All words done"}, nil
		}
		w.current++
		w.letters = Scramble(w.env, w.words[w.current].Word)
		w.placed = nil
		w.checked = false
		w.correct = false
		return Feedback{}, nil
	case ActionPlace, ActionRemove, ActionClear, ActionCheck:
	default:
		return Feedback{}, ErrUnknownAction
	}

	if w.checked {
		return Feedback{}, ErrAlreadyAnswered
	}

	switch a.Type {
	case ActionPlace:
		if a.Index < 0 || a.Index >= len(w.letters) {
			return Feedback{}, ErrInvalidAction
		}
		w.placed = append(w.placed, w.letters[a.Index])
		w.letters = removeAt(w.letters, a.Index)
	case ActionRemove:
		if a.Index < 0 || a.Index >= len(w.placed) {
			return Feedback{}, ErrInvalidAction
		}
		w.letters = append(w.letters, w.placed[a.Index])
		w.placed = removeAt(w.placed, a.Index)
	case ActionClear:
		w.letters = Scramble(w.env, word.Word)
		w.placed = nil
	case ActionCheck:
		if len(w.placed) == 0 {
			return Feedback{}, ErrIncompleteAnswer
		}
		w.checked = true
		w.correct = strings.Join(w.placed, "") == word.Word
		if w.correct {
			w.score++
		}
		return verdict(w.correct, word.Word), nil
	}
	return Feedback{}, nil
}

func (w *WordScramble) View() View {
	v := View{Kind: models.GameWordScramble, Terminal: w.over, Score: w.score, Total: len(w.words)}
	if w.over {
		return v
	}
	state := WordScrambleView{
		Index:   w.current,
		Count:   len(w.words),
		Hint:    w.words[w.current].Hint,
		Letters: append([]string(nil), w.letters...),
		Placed:  append([]string(nil), w.placed...),
		Checked: w.checked,
		Correct: w.correct,
	}
	if w.checked && !w.correct {
		state.Solution = w.words[w.current].Word
	}
	v.State = state
	return v
}

func (w *WordScramble) Terminal() bool { return w.over }

func (w *WordScramble) Result() models.GameResult {
	total := len(w.words)
	return models.GameResult{Correct: halfOrMore(w.score, total), Score: w.score, Total: total}
}

func (w *WordScramble) Close() {}
