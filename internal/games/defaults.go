package games

import (
	_ "embed"
	"encoding/json"

	"github.com/darijalingo/practice-engine/internal/models"
)

// Built-in decks for games the backend often ships without content.
//
//go:embed defaults.json
var defaultsJSON []byte

var defaultPayloads = func() map[models.GameKind]json.RawMessage {
	var m map[models.GameKind]json.RawMessage
	if err := json.Unmarshal(defaultsJSON, &m); err != nil {
		panic("games: invalid defaults.json: " + err.Error())
	}
	return m
}()

// defaultPayload decodes the built-in deck for kind into v.
func defaultPayload(kind models.GameKind, v any) bool {
	raw, ok := defaultPayloads[kind]
	if !ok {
		return false
	}
	return decode(raw, v)
}
