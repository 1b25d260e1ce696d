package games

import (
	"encoding/json"
	"math"
	"time"

	"github.com/darijalingo/practice-engine/internal/models"
)

// SprintDuration is the flashcard sprint countdown.
const SprintDuration = 60 * time.Second

const sprintBonusThreshold = 8

type flashcard struct {
	ID          flexID `json:"id"`
	FrontArabic string `json:"front_arabic"`
	FrontLatin  string `json:"front_latin"`
	Back        string `json:"back"`
}

type FlashcardView struct {
	Index       int    `json:"index"`
	Count       int    `json:"count"`
	Front       string `json:"front,omitempty"`
	Back        string `json:"back,omitempty"`
	Flipped     bool   `json:"flipped"`
	Known       int    `json:"known"`
	Again       int    `json:"again"`
	SecondsLeft int    `json:"seconds_left"`
}

// FlashcardSprint is a timed pass over a deck. The game ends when the deck
// runs out or the countdown expires, whichever comes first.
type FlashcardSprint struct {
	env      Env
	cards    []flashcard
	current  int
	flipped  bool
	known    int
	again    int
	over     bool
	deadline time.Time
	timer    Timer
}

func NewFlashcardSprint(payload json.RawMessage, env Env) Module {
	var p struct {
		Cards []flashcard `json:"cards"`
	}
	if !decode(payload, &p) || len(p.Cards) == 0 {
		defaultPayload(models.GameFlashcardSprint, &p)
	}
	if len(p.Cards) == 0 {
		return NewNoData(models.GameFlashcardSprint)
	}

	f := &FlashcardSprint{
		env:      env,
		cards:    p.Cards,
		deadline: env.Clock.Now().Add(SprintDuration),
	}
	f.timer = env.Clock.AfterFunc(SprintDuration, f.expire)
	return f
}

func (f *FlashcardSprint) expire() {
	f.over = true
}

func (f *FlashcardSprint) Kind() models.GameKind { return models.GameFlashcardSprint }

func (f *FlashcardSprint) Handle(a Action) (Feedback, error) {
	if f.over {
		return Feedback{}, ErrGameOver
	}
	switch a.Type {
	case ActionFlip:
		f.flipped = !f.flipped
		return Feedback{}, nil
	case ActionKnow:
		f.known++
	case ActionAgain:
		f.again++
	default:
		return Feedback{}, ErrUnknownAction
	}

	if f.current < len(f.cards)-1 {
		f.current++
		f.flipped = false
		return Feedback{}, nil
	}
	f.over = true
	f.Close()
	return Feedback{Message: "Deck finished"}, nil
}

func (f *FlashcardSprint) secondsLeft() int {
	if f.over {
		return 0
	}
	left := f.deadline.Sub(f.env.Clock.Now()).Seconds()
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left))
}

func (f *FlashcardSprint) View() View {
	state := FlashcardView{
		Index:       f.current,
		Count:       len(f.cards),
		Known:       f.known,
		Again:       f.again,
		Flipped:     f.flipped,
		SecondsLeft: f.secondsLeft(),
	}
	if !f.over {
		card := f.cards[f.current]
		state.Front = models.RenderText(card.FrontArabic, card.FrontLatin, f.env.Script)
		if f.flipped {
			state.Back = card.Back
		}
	}
	return View{Kind: models.GameFlashcardSprint, Terminal: f.over, Score: f.known, Total: f.known + f.again, State: state}
}

func (f *FlashcardSprint) Terminal() bool { return f.over }

func (f *FlashcardSprint) Result() models.GameResult {
	bonus := standardBonus
	if f.known >= sprintBonusThreshold {
		bonus = perfectBonus
	}
	return models.GameResult{
		Correct: f.known > f.again,
		Score:   f.known,
		Total:   f.known + f.again,
	}.WithBonus(bonus)
}

func (f *FlashcardSprint) Close() {
	if f.timer != nil {
		f.timer.Stop()
	}
}
