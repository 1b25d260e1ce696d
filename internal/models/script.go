package models

type ScriptMode string

const (
	ScriptArabic ScriptMode = "arabic"
	ScriptLatin  ScriptMode = "latin"
	ScriptHybrid ScriptMode = "hybrid"
)

func ParseScriptMode(s string) ScriptMode {
	switch ScriptMode(s) {
	case ScriptArabic, ScriptHybrid:
		return ScriptMode(s)
	default:
		return ScriptLatin
	}
}

// RenderText picks the rendering for mode, falling back to whichever script is present.
func RenderText(arabic, latin string, mode ScriptMode) string {
	switch mode {
	case ScriptArabic:
		if arabic != "" {
			return arabic
		}
		return latin
	case ScriptHybrid:
		if arabic != "" && latin != "" {
			return arabic + " (" + latin + ")"
		}
		if arabic != "" {
			return arabic
		}
		return latin
	default:
		if latin != "" {
			return latin
		}
		return arabic
	}
}

// Direction is the text direction used for mode.
func (m ScriptMode) Direction() string {
	if m == ScriptArabic {
		return "rtl"
	}
	return "ltr"
}
