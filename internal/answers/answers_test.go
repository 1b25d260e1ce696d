package answers

import (
	"math/rand/v2"
	"testing"

	"github.com/darijalingo/practice-engine/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContent() models.LessonContent {
	return models.LessonContent{
		Vocabulary: []models.VocabularyEntry{
			{ScriptPair: models.ScriptPair{Arabic: "سلام", Romanized: "salam", English: "hello"}},
			{ScriptPair: models.ScriptPair{Arabic: "كتاب", Latin: "ktab", English: "book"}},
			{
				ScriptPair:      models.ScriptPair{Arabic: "دار", Romanized: "dar", Latin: "daar"},
				ExampleSentence: models.ScriptPair{Arabic: "هادي داري.", Romanized: "hadi dari."},
			},
			{ScriptPair: models.ScriptPair{Arabic: "سلام!", Romanized: "salam!"}},
		},
		Grammar: []models.GrammarRule{
			{Title: "Adjectives", Examples: []models.ScriptPair{{Arabic: "الدار كبيرة", Latin: "ddar kbira"}}},
		},
		Phrases: []models.Phrase{
			{ScriptPair: models.ScriptPair{Arabic: "كيف داير؟", Romanized: "kif dayer?"}},
		},
	}
}

func TestVerify(t *testing.T) {
	accepted := []string{"Salam", "سلام"}

	t.Run("accepts either script ignoring case and padding", func(t *testing.T) {
		assert.True(t, Verify("salam", accepted...))
		assert.True(t, Verify(" Salam ", accepted...))
		assert.True(t, Verify("سلام", accepted...))
	})

	t.Run("rejects near misses", func(t *testing.T) {
		assert.False(t, Verify("Salaam", accepted...))
		assert.False(t, Verify("sala", accepted...))
	})

	t.Run("blank candidate never matches missing forms", func(t *testing.T) {
		assert.False(t, Verify("", "", "  "))
		assert.False(t, Verify("anything"))
	})
}

func TestAcceptedForms(t *testing.T) {
	forms := AcceptedForms("Choukran", "", "choukran ", "شكرا")
	assert.Equal(t, []string{"Choukran", "شكرا"}, forms)
}

func TestRomanizationTable_Resolve(t *testing.T) {
	table := BuildRomanizationTable(testContent())

	tests := []struct {
		name     string
		input    string
		expected string
		found    bool
	}{
		{"exact vocabulary", "سلام", "salam", true},
		{"latin used when romanized missing", "كتاب", "ktab", true},
		{"romanized preferred over latin", "دار", "dar", true},
		{"exact phrase keeps punctuation", "كيف داير؟", "kif dayer?", true},
		{"stripped phrase", "كيف داير", "kif dayer", true},
		{"latin question mark stripped", "كيف داير?", "kif dayer", true},
		{"example sentence", "هادي داري", "hadi dari", true},
		{"grammar example", "الدار كبيرة", "ddar kbira", true},
		{"definite article prefix", "الكتاب", "lktab", true},
		{"word by word", "سلام كتاب", "salam ktab", true},
		{"word by word with article", "سلام الكتاب", "salam lktab", true},
		{"any unknown word fails the whole phrase", "سلام مجهول", "", false},
		{"bare article is not stripped", "ال", "", false},
		{"empty", "", "", false},
		{"latin input", "salam", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := table.Resolve(tt.input)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRomanizationTable_StrippedKeyDoesNotOverwrite(t *testing.T) {
	table := BuildRomanizationTable(testContent())

	got, ok := table.Resolve("سلام!")
	require.True(t, ok)
	assert.Equal(t, "salam!", got)

	got, ok = table.Resolve("سلام")
	require.True(t, ok)
	assert.Equal(t, "salam", got)
}

func TestRomanizationTable_RoundTripIsIdempotent(t *testing.T) {
	content := testContent()
	table := BuildRomanizationTable(content)

	for _, p := range content.Phrases {
		for _, input := range []string{p.Arabic, StripArabicPunctuation(p.Arabic)} {
			first, ok := table.Resolve(input)
			require.True(t, ok, input)
			second, _ := table.Resolve(input)
			assert.Equal(t, first, second)
			assert.Equal(t, latinPunctuation.Replace(p.Romanized), latinPunctuation.Replace(first))
		}
	}
}

func TestRomanizationTable_NilIsEmpty(t *testing.T) {
	var table *RomanizationTable
	_, ok := table.Resolve("سلام")
	assert.False(t, ok)
	assert.Equal(t, 0, table.Len())
}

func TestEnrichOption(t *testing.T) {
	table := BuildRomanizationTable(testContent())

	assert.Equal(t, models.Option{Text: "bzzaf"}, table.EnrichOption("bzzaf", ""))
	assert.Equal(t, models.Option{Text: "سلام", Arabic: "سلام", Romanized: "salam"}, table.EnrichOption("سلام", ""))
	assert.Equal(t, models.Option{Text: "سلام", Arabic: "سلام", Romanized: "slam"}, table.EnrichOption("سلام", "slam"))
	assert.Equal(t, models.Option{Text: "مجهول", Arabic: "مجهول"}, table.EnrichOption("مجهول", ""))
}

func TestDistractorGenerator_BuildChoices(t *testing.T) {
	t.Run("bzzaf with one other session answer", func(t *testing.T) {
		for seed := uint64(0); seed < 50; seed++ {
			gen := NewDistractorGenerator(rand.New(rand.NewPCG(seed, seed+1)))
			choices := gen.BuildChoices("bzzaf", []string{"chwiya"})

			require.Len(t, choices.Options, 4)
			assert.Equal(t, "bzzaf", choices.Options[choices.CorrectIndex])

			seen := map[string]bool{}
			for _, o := range choices.Options {
				assert.False(t, seen[o], "duplicate option %q", o)
				seen[o] = true
			}
		}
	})

	t.Run("same seed gives same order", func(t *testing.T) {
		a := NewDistractorGenerator(rand.New(rand.NewPCG(7, 9))).BuildChoices("safi", []string{"wakha"})
		b := NewDistractorGenerator(rand.New(rand.NewPCG(7, 9))).BuildChoices("safi", []string{"wakha"})
		assert.Equal(t, a, b)
	})

	t.Run("small pool yields fewer options", func(t *testing.T) {
		gen := NewDistractorGenerator(rand.New(rand.NewPCG(1, 2))).WithPool([]string{"wakha", "safi"})
		choices := gen.BuildChoices("safi", nil)
		require.Len(t, choices.Options, 2)
		assert.Equal(t, "safi", choices.Options[choices.CorrectIndex])
	})
}

func TestNormalizeExercises(t *testing.T) {
	content := testContent()
	table := BuildRomanizationTable(content)
	gen := NewDistractorGenerator(rand.New(rand.NewPCG(3, 4)))

	exercises := []models.Exercise{
		{Type: "translation", Question: "How do you say 'a lot'?", CorrectAnswerRomanized: "bzzaf"},
		{Type: "translation", Question: "How do you say 'a little'?", CorrectAnswerRomanized: "chwiya"},
		{
			Type:                   "multiple_choice",
			Question:               "Hello?",
			CorrectAnswer:          "سلام",
			CorrectAnswerRomanized: "salam",
			Distractors:            []string{"كتاب", "دار"},
			DistractorsRomanized:   []string{"ktab"},
		},
		{Type: "multiple_choice", Question: "Pick book", CorrectAnswer: "ktab", Options: []string{"dar", "ktab"}},
		{Type: "fill_blank", Question: "dropped"},
	}

	got := NormalizeExercises(exercises, table, gen)
	require.Len(t, got, 4)

	t.Run("translation becomes multiple choice", func(t *testing.T) {
		ex := got[0]
		assert.Equal(t, models.ExerciseMultipleChoice, ex.Type)
		require.Len(t, ex.Options, 4)
		assert.Equal(t, "bzzaf", ex.Options[ex.CorrectIndex].Text)
		assert.Equal(t, []string{"bzzaf"}, ex.Accepted)
	})

	t.Run("generated options keep romanized hints aligned", func(t *testing.T) {
		ex := got[2]
		require.Len(t, ex.Options, 3)
		assert.Equal(t, "سلام", ex.Options[ex.CorrectIndex].Text)
		for _, o := range ex.Options {
			switch o.Text {
			case "سلام":
				assert.Equal(t, "salam", o.Romanized)
			case "كتاب":
				assert.Equal(t, "ktab", o.Romanized)
			case "دار":
				assert.Equal(t, "dar", o.Romanized)
			}
		}
	})

	t.Run("existing options are kept in order", func(t *testing.T) {
		ex := got[3]
		require.Len(t, ex.Options, 2)
		assert.Equal(t, 1, ex.CorrectIndex)
		assert.Equal(t, "dar", ex.Options[0].Text)
	})
}
