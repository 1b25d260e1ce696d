package games

import (
	"encoding/json"
	"strconv"
	"strings"
)

// scriptText accepts either a plain string or an {arabic, latin} object.
type scriptText struct {
	Arabic string `json:"arabic,omitempty"`
	Latin  string `json:"latin,omitempty"`
}

func (s *scriptText) UnmarshalJSON(b []byte) error {
	var plain string
	if err := json.Unmarshal(b, &plain); err == nil {
		s.Latin = plain
		return nil
	}
	type alias scriptText
	var obj alias
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*s = scriptText(obj)
	return nil
}

func (s scriptText) empty() bool {
	return s.Arabic == "" && s.Latin == ""
}

// flexID accepts numeric or string identifiers.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

func idOr(id flexID, index int) string {
	if s := strings.TrimSpace(string(id)); s != "" {
		return s
	}
	return strconv.Itoa(index)
}

func shuffledStrings(env Env, in []string) []string {
	out := append([]string(nil), in...)
	env.Rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func removeAt(s []string, i int) []string {
	out := make([]string, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}

func halfOrMore(score, total int) bool {
	return score*2 >= total
}
