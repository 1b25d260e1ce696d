package models

const (
	ExerciseMultipleChoice = "multiple_choice"
	ExerciseTranslation    = "translation"
)

// Lesson is the backend lesson document. Content arrives as content_json.
type Lesson struct {
	ID      string        `json:"id"`
	Title   string        `json:"title"`
	Level   string        `json:"level"`
	Module  string        `json:"module,omitempty"`
	Order   int           `json:"order,omitempty"`
	Content LessonContent `json:"content_json"`
}

type LessonContent struct {
	ModuleTitle string            `json:"module_title,omitempty"`
	Vocabulary  []VocabularyEntry `json:"vocabulary,omitempty"`
	Grammar     []GrammarRule     `json:"grammar,omitempty"`
	Phrases     []Phrase          `json:"phrases,omitempty"`
	Exercises   []Exercise        `json:"exercises,omitempty"`
}

// ScriptPair is a text rendered in Arabic script with its Latin forms.
type ScriptPair struct {
	Arabic    string `json:"arabic,omitempty"`
	Romanized string `json:"romanized,omitempty"`
	Latin     string `json:"latin,omitempty"`
	English   string `json:"english,omitempty"`
}

// Roman prefers the romanized form over the latin one.
func (p ScriptPair) Roman() string {
	if p.Romanized != "" {
		return p.Romanized
	}
	return p.Latin
}

type VocabularyEntry struct {
	ScriptPair
	PartOfSpeech    string     `json:"part_of_speech,omitempty"`
	ExampleSentence ScriptPair `json:"example_sentence,omitempty"`
}

type GrammarRule struct {
	Title       string       `json:"title,omitempty"`
	Explanation string       `json:"explanation,omitempty"`
	Examples    []ScriptPair `json:"examples,omitempty"`
}

type Phrase struct {
	ScriptPair
	Context string `json:"context,omitempty"`
}

// Exercise is a raw lesson exercise before normalization.
type Exercise struct {
	Type                   string   `json:"type"`
	Question               string   `json:"question"`
	Hint                   string   `json:"hint,omitempty"`
	CorrectAnswer          string   `json:"correct_answer,omitempty"`
	CorrectAnswerArabic    string   `json:"correct_answer_arabic,omitempty"`
	CorrectAnswerRomanized string   `json:"correct_answer_romanized,omitempty"`
	RomanizedAnswer        string   `json:"romanized_answer,omitempty"`
	Distractors            []string `json:"distractors,omitempty"`
	DistractorsRomanized   []string `json:"distractors_romanized,omitempty"`
	Options                []string `json:"options,omitempty"`
}

// AcceptedAnswers returns every non-empty accepted form of the exercise answer.
func (e Exercise) AcceptedAnswers() []string {
	forms := make([]string, 0, 4)
	for _, f := range []string{e.CorrectAnswer, e.RomanizedAnswer, e.CorrectAnswerArabic, e.CorrectAnswerRomanized} {
		if f != "" {
			forms = append(forms, f)
		}
	}
	return forms
}

// Option is a choice rendered in one or both scripts.
type Option struct {
	Text      string `json:"text"`
	Arabic    string `json:"arabic,omitempty"`
	Romanized string `json:"romanized,omitempty"`
}

// PracticeExercise is a normalized exercise ready to be answered.
type PracticeExercise struct {
	Type         string   `json:"type"`
	Question     string   `json:"question"`
	Hint         string   `json:"hint,omitempty"`
	Options      []Option `json:"options"`
	CorrectIndex int      `json:"-"`
	Accepted     []string `json:"-"`
}
