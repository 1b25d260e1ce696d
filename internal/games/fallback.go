package games

import "github.com/darijalingo/practice-engine/internal/models"

const noDataMessage = "No game data available."

// NoData is the terminal module used when a game has nothing to play.
type NoData struct {
	kind models.GameKind
}

func NewNoData(kind models.GameKind) *NoData {
	return &NoData{kind: kind}
}

func (n *NoData) Kind() models.GameKind { return n.kind }

func (n *NoData) Handle(Action) (Feedback, error) { return Feedback{}, ErrGameOver }

func (n *NoData) View() View {
	return View{Kind: n.kind, Terminal: true, NoData: true, Message: noDataMessage}
}

func (n *NoData) Terminal() bool { return true }

func (n *NoData) Result() models.GameResult { return models.GameResult{} }

func (n *NoData) Close() {}

// Unsupported stands in for a kind this engine cannot play. It never reports a
// result; the learner can only skip it.
type Unsupported struct {
	rawType string
}

func NewUnsupported(rawType string) *Unsupported {
	return &Unsupported{rawType: rawType}
}

func (u *Unsupported) Kind() models.GameKind { return models.GameUnsupported }

func (u *Unsupported) Handle(Action) (Feedback, error) { return Feedback{}, ErrUnknownAction }

func (u *Unsupported) View() View {
	return View{
		Kind:     models.GameUnsupported,
		Terminal: true,
		Message:  "This game type is not available yet (" + u.rawType + "). Skip to continue.",
	}
}

func (u *Unsupported) Terminal() bool { return true }

func (u *Unsupported) Result() models.GameResult { return models.GameResult{} }

func (u *Unsupported) Close() {}
