// Package answers verifies free-text answers in either script and resolves
// Arabic-script text to its romanized form using lesson content.
package answers

import "strings"

// Normalize trims surrounding whitespace and lower-cases s.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Verify reports whether candidate equals any accepted form after normalization.
// Empty accepted forms never match.
func Verify(candidate string, accepted ...string) bool {
	c := Normalize(candidate)
	for _, a := range accepted {
		n := Normalize(a)
		if n == "" {
			continue
		}
		if c == n {
			return true
		}
	}
	return false
}

// AcceptedForms collects the non-empty forms given, dropping duplicates.
func AcceptedForms(forms ...string) []string {
	out := make([]string, 0, len(forms))
	seen := make(map[string]struct{}, len(forms))
	for _, f := range forms {
		n := Normalize(f)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, f)
	}
	return out
}
