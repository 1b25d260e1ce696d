package answers

import (
	"strings"
	"unicode/utf8"

	"github.com/darijalingo/practice-engine/internal/models"
)

const definiteArticle = "ال"

var (
	arabicPunctuation = strings.NewReplacer("؟", "", "?", "", "!", "", ".", "", "،", "", ",", "")
	latinPunctuation  = strings.NewReplacer("?", "", "!", "", ".", "", ",", "")
)

// RomanizationTable maps Arabic-script text to its romanized form.
// It is read-only once built and safe for concurrent readers.
type RomanizationTable struct {
	entries map[string]string
}

// BuildRomanizationTable scans vocabulary, example sentences, grammar examples
// and phrases of a lesson.
func BuildRomanizationTable(content models.LessonContent) *RomanizationTable {
	t := &RomanizationTable{entries: make(map[string]string)}

	for _, v := range content.Vocabulary {
		t.add(v.Arabic, v.Roman())
		t.add(v.ExampleSentence.Arabic, v.ExampleSentence.Romanized)
	}
	for _, g := range content.Grammar {
		for _, ex := range g.Examples {
			t.add(ex.Arabic, ex.Roman())
		}
	}
	for _, p := range content.Phrases {
		t.add(p.Arabic, p.Roman())
	}

	return t
}

func (t *RomanizationTable) add(arabic, romanized string) {
	if arabic == "" || romanized == "" {
		return
	}
	t.entries[arabic] = romanized

	clean := StripArabicPunctuation(arabic)
	if clean == "" {
		return
	}
	if _, exists := t.entries[clean]; !exists {
		t.entries[clean] = strings.TrimSpace(latinPunctuation.Replace(romanized))
	}
}

func (t *RomanizationTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Resolve looks arabic up by exact match, then without punctuation, then word
// by word. A miss is an expected outcome and returns false.
func (t *RomanizationTable) Resolve(arabic string) (string, bool) {
	if t == nil || arabic == "" {
		return "", false
	}
	if r, ok := t.entries[arabic]; ok && r != "" {
		return r, true
	}

	clean := StripArabicPunctuation(arabic)
	if r, ok := t.entries[clean]; ok && r != "" {
		return r, true
	}

	words := strings.Fields(clean)
	if len(words) == 0 {
		return "", false
	}
	parts := make([]string, 0, len(words))
	for _, w := range words {
		r, ok := t.resolveWord(w)
		if !ok {
			return "", false
		}
		parts = append(parts, r)
	}
	return strings.Join(parts, " "), true
}

func (t *RomanizationTable) resolveWord(w string) (string, bool) {
	if r, ok := t.entries[w]; ok && r != "" {
		return r, true
	}
	if strings.HasPrefix(w, definiteArticle) && utf8.RuneCountInString(w) > 2 {
		if base, ok := t.entries[strings.TrimPrefix(w, definiteArticle)]; ok && base != "" {
			return "l" + base, true
		}
	}
	return "", false
}

// StripArabicPunctuation removes both Arabic and Latin sentence punctuation.
func StripArabicPunctuation(s string) string {
	return strings.TrimSpace(arabicPunctuation.Replace(s))
}

// ContainsArabic reports whether s has any rune in the Arabic block.
func ContainsArabic(s string) bool {
	for _, r := range s {
		if r >= 0x0600 && r <= 0x06FF {
			return true
		}
	}
	return false
}

// EnrichOption renders text as an option. Arabic-script options get a
// romanized form, from hint when given, otherwise from the table.
func (t *RomanizationTable) EnrichOption(text, hint string) models.Option {
	if !ContainsArabic(text) {
		return models.Option{Text: text}
	}
	romanized := hint
	if romanized == "" {
		romanized, _ = t.Resolve(text)
	}
	return models.Option{Text: text, Arabic: text, Romanized: romanized}
}
