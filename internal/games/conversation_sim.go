package games

import (
	"encoding/json"
	"strings"

	"github.com/darijalingo/practice-engine/internal/models"
)

const conversationBonus = 30

type line struct {
	Role    string `json:"role,omitempty"`
	Arabic  string `json:"arabic,omitempty"`
	Latin   string `json:"latin,omitempty"`
	English string `json:"english,omitempty"`
	Text    string `json:"text,omitempty"`
}

type scriptedResponse struct {
	line
	NextSuggestions []line `json:"next_suggestions"`
}

type conversationScript struct {
	Context     string             `json:"context"`
	Messages    []line             `json:"messages"`
	Suggestions []line             `json:"suggestions"`
	Responses   []scriptedResponse `json:"responses"`
}

type MessageView struct {
	Role  string `json:"role"`
	Text  string `json:"text"`
	Gloss string `json:"gloss,omitempty"`
}

type ConversationView struct {
	Context     string        `json:"context"`
	Messages    []MessageView `json:"messages"`
	Suggestions []string      `json:"suggestions"`
	Exchanged   int           `json:"exchanged"`
}

// ConversationSim plays a scripted dialogue. The conversation ends when a
// response offers no further suggestions or the script runs out.
type ConversationSim struct {
	env         Env
	script      conversationScript
	messages    []line
	suggestions []line
	responseIdx int
	exchanged   int
	over        bool
}

func NewConversationSim(payload json.RawMessage, env Env) Module {
	var s conversationScript
	if !decode(payload, &s) || len(s.Responses) == 0 {
		s = conversationScript{}
		defaultPayload(models.GameConversationSim, &s)
	}
	if len(s.Responses) == 0 {
		return NewNoData(models.GameConversationSim)
	}
	return &ConversationSim{
		env:         env,
		script:      s,
		messages:    append([]line(nil), s.Messages...),
		suggestions: s.Suggestions,
	}
}

func (c *ConversationSim) Kind() models.GameKind { return models.GameConversationSim }

func (c *ConversationSim) Handle(a Action) (Feedback, error) {
	if c.over {
		return Feedback{}, ErrGameOver
	}
	switch a.Type {
	case ActionSay:
		text := strings.TrimSpace(a.Text)
		if text == "" {
			return Feedback{}, ErrIncompleteAnswer
		}
		c.exchange(text)
	case ActionSuggest:
		if a.Index < 0 || a.Index >= len(c.suggestions) {
			return Feedback{}, ErrInvalidAction
		}
		c.exchange(c.suggestions[a.Index].English)
	case ActionFinish:
		if c.exchanged == 0 {
			return Feedback{}, ErrIncompleteAnswer
		}
		c.over = true
	default:
		return Feedback{}, ErrUnknownAction
	}
	return Feedback{}, nil
}

func (c *ConversationSim) exchange(text string) {
	c.messages = append(c.messages, line{Role: "user", Text: text})
	c.exchanged++

	if c.responseIdx >= len(c.script.Responses) {
		c.over = true
		return
	}
	resp := c.script.Responses[c.responseIdx]
	c.responseIdx++
	resp.Role = "ai"
	c.messages = append(c.messages, resp.line)
	c.suggestions = resp.NextSuggestions
	if len(resp.NextSuggestions) == 0 {
		c.over = true
	}
}

func (c *ConversationSim) View() View {
	state := ConversationView{Context: c.script.Context, Exchanged: c.exchanged}
	for _, m := range c.messages {
		text := m.Text
		if text == "" {
			text = models.RenderText(m.Arabic, m.Latin, c.env.Script)
		}
		state.Messages = append(state.Messages, MessageView{Role: m.Role, Text: text, Gloss: m.English})
	}
	if !c.over {
		for _, s := range c.suggestions {
			state.Suggestions = append(state.Suggestions, models.RenderText(s.Arabic, s.Latin, c.env.Script))
		}
	}
	return View{
		Kind:     models.GameConversationSim,
		Terminal: c.over,
		Score:    c.exchanged,
		Total:    len(c.script.Responses),
		State:    state,
	}
}

func (c *ConversationSim) Terminal() bool { return c.over }

func (c *ConversationSim) Result() models.GameResult {
	return models.GameResult{Correct: true, Score: c.exchanged, Total: c.exchanged}.WithBonus(conversationBonus)
}

func (c *ConversationSim) Close() {}
