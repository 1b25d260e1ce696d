package answers

import "github.com/darijalingo/practice-engine/internal/models"

// NormalizeExercises keeps multiple-choice and translation exercises and turns
// each into a multiple-choice exercise with enriched options.
func NormalizeExercises(exercises []models.Exercise, table *RomanizationTable, gen *DistractorGenerator) []models.PracticeExercise {
	var translationAnswers []string
	for _, ex := range exercises {
		if ex.Type == models.ExerciseTranslation && ex.CorrectAnswerRomanized != "" {
			translationAnswers = append(translationAnswers, ex.CorrectAnswerRomanized)
		}
	}

	out := make([]models.PracticeExercise, 0, len(exercises))
	for _, ex := range exercises {
		switch ex.Type {
		case models.ExerciseTranslation:
			out = append(out, translationToChoice(ex, translationAnswers, table, gen))
		case models.ExerciseMultipleChoice:
			out = append(out, multipleChoice(ex, table, gen))
		}
	}
	return out
}

func translationToChoice(ex models.Exercise, sessionAnswers []string, table *RomanizationTable, gen *DistractorGenerator) models.PracticeExercise {
	correct := ex.CorrectAnswerRomanized
	others := make([]string, 0, len(sessionAnswers))
	for _, a := range sessionAnswers {
		if a != correct {
			others = append(others, a)
		}
	}

	choices := gen.BuildChoices(correct, others)
	options := make([]models.Option, len(choices.Options))
	for i, o := range choices.Options {
		options[i] = table.EnrichOption(o, "")
	}

	return models.PracticeExercise{
		Type:         models.ExerciseMultipleChoice,
		Question:     ex.Question,
		Hint:         ex.Hint,
		Options:      options,
		CorrectIndex: choices.CorrectIndex,
		Accepted:     AcceptedForms(ex.AcceptedAnswers()...),
	}
}

func multipleChoice(ex models.Exercise, table *RomanizationTable, gen *DistractorGenerator) models.PracticeExercise {
	pe := models.PracticeExercise{
		Type:         models.ExerciseMultipleChoice,
		Question:     ex.Question,
		Hint:         ex.Hint,
		CorrectIndex: -1,
		Accepted:     AcceptedForms(ex.AcceptedAnswers()...),
	}

	if len(ex.Options) > 0 || ex.CorrectAnswer == "" {
		pe.Options = make([]models.Option, len(ex.Options))
		for i, o := range ex.Options {
			pe.Options[i] = table.EnrichOption(o, "")
			if o == ex.CorrectAnswer && pe.CorrectIndex < 0 {
				pe.CorrectIndex = i
			}
		}
		return pe
	}

	texts := append([]string{ex.CorrectAnswer}, ex.Distractors...)
	hints := make([]string, len(texts))
	hints[0] = ex.CorrectAnswerRomanized
	for i, r := range ex.DistractorsRomanized {
		if i+1 < len(hints) {
			hints[i+1] = r
		}
	}

	order := gen.Permutation(len(texts))
	pe.Options = make([]models.Option, len(order))
	for i, src := range order {
		pe.Options[i] = table.EnrichOption(texts[src], hints[src])
		if texts[src] == ex.CorrectAnswer && pe.CorrectIndex < 0 {
			pe.CorrectIndex = i
		}
	}
	return pe
}
