package games

import (
	"encoding/json"
	"strings"

	"github.com/darijalingo/practice-engine/internal/answers"
	"github.com/darijalingo/practice-engine/internal/models"
)

type quizOption struct {
	ID      flexID `json:"id"`
	Text    string `json:"text,omitempty"`
	Arabic  string `json:"arabic,omitempty"`
	Latin   string `json:"latin,omitempty"`
	Correct bool   `json:"correct"`
}

type quizQuestion struct {
	Question       scriptText   `json:"question"`
	SentenceArabic string       `json:"sentence_arabic,omitempty"`
	SentenceLatin  string       `json:"sentence_latin,omitempty"`
	English        string       `json:"english,omitempty"`
	Hint           string       `json:"hint,omitempty"`
	Explanation    string       `json:"explanation,omitempty"`
	Fun            string       `json:"fun,omitempty"`
	Options        []quizOption `json:"options,omitempty"`
	Answer         scriptText   `json:"answer"`
}

func (q quizQuestion) accepted() []string {
	forms := []string{q.Answer.Latin, q.Answer.Arabic}
	for _, o := range q.Options {
		if o.Correct {
			forms = append(forms, o.Text, o.Latin, o.Arabic)
		}
	}
	return answers.AcceptedForms(forms...)
}

func (q quizQuestion) correctOptionID() string {
	for i, o := range q.Options {
		if o.Correct {
			return idOr(o.ID, i)
		}
	}
	return ""
}

type QuizOptionView struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Arabic string `json:"arabic,omitempty"`
	Latin  string `json:"latin,omitempty"`
}

type QuizView struct {
	Index       int              `json:"index"`
	Count       int              `json:"count"`
	Prompt      string           `json:"prompt"`
	English     string           `json:"english,omitempty"`
	Hint        string           `json:"hint,omitempty"`
	Options     []QuizOptionView `json:"options,omitempty"`
	FreeText    bool             `json:"free_text"`
	Answered    bool             `json:"answered"`
	Selected    string           `json:"selected,omitempty"`
	Explanation string           `json:"explanation,omitempty"`
}

// Quiz runs a question list with a select, check and next loop. Multiple
// choice, fill in the blank and the cultural quiz differ only in payload
// shape and in how the final result is judged.
type Quiz struct {
	kind      models.GameKind
	env       Env
	questions []quizQuestion
	pass      func(score, total int) bool

	current  int
	answered bool
	selected string
	score    int
	over     bool
}

type quizPayload struct {
	Questions []quizQuestion `json:"questions"`
}

func parseQuiz(payload json.RawMessage, single func(quizQuestion) bool) []quizQuestion {
	var list quizPayload
	if decode(payload, &list) && len(list.Questions) > 0 {
		return list.Questions
	}
	var one quizQuestion
	if decode(payload, &one) && single(one) {
		return []quizQuestion{one}
	}
	return nil
}

func newQuiz(kind models.GameKind, questions []quizQuestion, env Env, pass func(int, int) bool) Module {
	if len(questions) == 0 {
		return NewNoData(kind)
	}
	return &Quiz{kind: kind, env: env, questions: questions, pass: pass}
}

func NewMultipleChoice(payload json.RawMessage, env Env) Module {
	qs := parseQuiz(payload, func(q quizQuestion) bool { return len(q.Options) > 0 })
	return newQuiz(models.GameMultipleChoice, qs, env, func(score, total int) bool { return score == total })
}

func NewFillInBlank(payload json.RawMessage, env Env) Module {
	qs := parseQuiz(payload, func(q quizQuestion) bool { return q.SentenceLatin != "" })
	return newQuiz(models.GameFillInBlank, qs, env, halfOrMore)
}

func NewCulturalQuiz(payload json.RawMessage, env Env) Module {
	qs := parseQuiz(payload, func(q quizQuestion) bool { return !q.Question.empty() })
	return newQuiz(models.GameCulturalQuiz, qs, env, halfOrMore)
}

func (q *Quiz) Kind() models.GameKind { return q.kind }

func (q *Quiz) Handle(a Action) (Feedback, error) {
	if q.over {
		return Feedback{}, ErrGameOver
	}
	switch a.Type {
	case ActionSelect:
		return q.selectOption(a.OptionID)
	case ActionAnswer:
		return q.answerText(a.Text)
	case ActionNext:
		return q.next()
	default:
		return Feedback{}, ErrUnknownAction
	}
}

func (q *Quiz) selectOption(id string) (Feedback, error) {
	if q.answered {
		return Feedback{}, ErrAlreadyAnswered
	}
	question := q.questions[q.current]
	for i, o := range question.Options {
		if idOr(o.ID, i) != id {
			continue
		}
		q.answered = true
		q.selected = id
		if o.Correct {
			q.score++
		}
		return verdict(o.Correct, question.correctOptionID()), nil
	}
	return Feedback{}, ErrInvalidAction
}

func (q *Quiz) answerText(text string) (Feedback, error) {
	if q.answered {
		return Feedback{}, ErrAlreadyAnswered
	}
	if strings.TrimSpace(text) == "" {
		return Feedback{}, ErrIncompleteAnswer
	}
	question := q.questions[q.current]
	accepted := question.accepted()
	if len(accepted) == 0 {
		return Feedback{}, ErrInvalidAction
	}

	correct := answers.Verify(text, accepted...)
	q.answered = true
	q.selected = text
	if correct {
		q.score++
	}
	return verdict(correct, models.RenderText(question.Answer.Arabic, question.Answer.Latin, q.env.Script)), nil
}

func (q *Quiz) next() (Feedback, error) {
	if !q.answered {
		return Feedback{}, ErrNotAnswered
	}
	if q.current < len(q.questions)-1 {
		q.current++
		q.answered = false
		q.selected = ""
		return Feedback{}, nil
	}
	q.over = true
	return Feedback{Message: "Quiz complete"}, nil
}

func (q *Quiz) View() View {
	v := View{Kind: q.kind, Terminal: q.over, Score: q.score, Total: len(q.questions)}
	if q.over {
		return v
	}

	question := q.questions[q.current]
	prompt := models.RenderText(question.Question.Arabic, question.Question.Latin, q.env.Script)
	if prompt == "" {
		prompt = models.RenderText(question.SentenceArabic, question.SentenceLatin, q.env.Script)
	}
	state := QuizView{
		Index:    q.current,
		Count:    len(q.questions),
		Prompt:   prompt,
		English:  question.English,
		Hint:     question.Hint,
		FreeText: len(question.Options) == 0,
		Answered: q.answered,
		Selected: q.selected,
	}
	if q.answered {
		state.Explanation = question.Explanation
	}
	for i, o := range question.Options {
		text := o.Text
		if text == "" {
			text = models.RenderText(o.Arabic, o.Latin, q.env.Script)
		}
		state.Options = append(state.Options, QuizOptionView{ID: idOr(o.ID, i), Text: text, Arabic: o.Arabic, Latin: o.Latin})
	}
	v.State = state
	return v
}

func (q *Quiz) Terminal() bool { return q.over }

func (q *Quiz) Result() models.GameResult {
	total := len(q.questions)
	return models.GameResult{Correct: q.pass(q.score, total), Score: q.score, Total: total}
}

func (q *Quiz) Close() {}
