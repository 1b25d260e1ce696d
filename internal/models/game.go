package models

import (
	"encoding/json"
	"time"
)

type GameKind string

const (
	GameMultipleChoice  GameKind = "multiple_choice"
	GameWordMatch       GameKind = "word_match"
	GameFillInBlank     GameKind = "fill_in_blank"
	GameSentenceBuilder GameKind = "sentence_builder"
	GameFlashcardSprint GameKind = "flashcard_sprint"
	GameCulturalQuiz    GameKind = "cultural_quiz"
	GameWordScramble    GameKind = "word_scramble"
	GameMemoryMatch     GameKind = "memory_match"
	GameConversationSim GameKind = "conversation_sim"
	GameStoryGapFill    GameKind = "story_gap_fill"
	GameUnsupported     GameKind = "unsupported"
)

// SupportedGameKinds lists every playable kind in a stable order.
var SupportedGameKinds = []GameKind{
	GameMultipleChoice,
	GameWordMatch,
	GameFillInBlank,
	GameSentenceBuilder,
	GameFlashcardSprint,
	GameCulturalQuiz,
	GameWordScramble,
	GameMemoryMatch,
	GameConversationSim,
	GameStoryGapFill,
}

// ParseGameKind never fails: anything outside the supported set is GameUnsupported.
func ParseGameKind(s string) GameKind {
	for _, k := range SupportedGameKinds {
		if string(k) == s {
			return k
		}
	}
	return GameUnsupported
}

func (k GameKind) Supported() bool {
	return k != GameUnsupported && ParseGameKind(string(k)) == k
}

// GameConfig is one entry in a session playlist.
type GameConfig struct {
	Kind        GameKind        `json:"kind"`
	BackendType string          `json:"backend_type"`
	RawType     string          `json:"raw_type,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}

// Session is one playlist instance. It is not modified after the loader builds it.
type Session struct {
	ID         string       `json:"id"`
	Level      string       `json:"level"`
	LevelLabel string       `json:"level_label"`
	LevelColor string       `json:"level_color"`
	Games      []GameConfig `json:"games"`
	Fallback   bool         `json:"fallback"`
	LoadedAt   time.Time    `json:"loaded_at"`
}

func (s *Session) GameCount() int {
	if s == nil {
		return 0
	}
	return len(s.Games)
}

// GameResult is the terminal report of one game module.
type GameResult struct {
	Correct bool `json:"correct"`
	Score   int  `json:"score"`
	Total   int  `json:"total"`
	Bonus   *int `json:"bonus,omitempty"`
}

// WithBonus returns a copy of r carrying the given bonus.
func (r GameResult) WithBonus(bonus int) GameResult {
	r.Bonus = &bonus
	return r
}

type ResultEntry struct {
	GameIndex int `json:"game_index"`
	GameResult
	XPEarned int `json:"xp_earned"`
}

type SessionResult struct {
	Results       []ResultEntry `json:"results"`
	TotalXPEarned int           `json:"total_xp_earned"`
}

// Clone returns a deep copy so callers cannot mutate engine state.
func (r SessionResult) Clone() SessionResult {
	out := SessionResult{
		Results:       make([]ResultEntry, len(r.Results)),
		TotalXPEarned: r.TotalXPEarned,
	}
	for i, e := range r.Results {
		if e.Bonus != nil {
			b := *e.Bonus
			e.Bonus = &b
		}
		out.Results[i] = e
	}
	return out
}

func (r SessionResult) CorrectCount() int {
	n := 0
	for _, e := range r.Results {
		if e.Correct {
			n++
		}
	}
	return n
}
