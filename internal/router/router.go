// Package router selects the active view from the latest snapshot. It owns no state.
package router

import (
	"github.com/rocketscienceinc/whoisthemole/internal/entity"
	"github.com/rocketscienceinc/whoisthemole/internal/games"
)

type Kind int

const (
	ViewJoin Kind = iota
	ViewLoading
	ViewLobby
	ViewReveal
	ViewExplanation
	ViewGame
	ViewScoring
	ViewQuizIntro
	ViewQuizForm
	ViewQuizWaiting
	ViewFinalReveal
)

var kindNames = map[Kind]string{
	ViewJoin:        "join",
	ViewLoading:     "loading",
	ViewLobby:       "lobby",
	ViewReveal:      "reveal",
	ViewExplanation: "explanation",
	ViewGame:        "game",
	ViewScoring:     "scoring",
	ViewQuizIntro:   "quiz-intro",
	ViewQuizForm:    "quiz-form",
	ViewQuizWaiting: "quiz-waiting",
	ViewFinalReveal: "final-reveal",
}

func (that Kind) String() string {
	return kindNames[that]
}

// MinPlayers is the lobby size needed before the VIP may start.
const MinPlayers = 2

// View is the selected screen. Only the fields of its Kind are set.
type View struct {
	Kind Kind
	VIP  bool

	// ViewLobby
	CanStart bool

	// ViewGame and ViewScoring
	GameID  string
	Game    games.Kind
	Scoring games.ScoringMode

	// ViewQuizWaiting
	Finished   int
	Total      int
	CanAdvance bool
	LastRound  bool
}

type Input struct {
	Joined   bool
	Snapshot *entity.Snapshot
}

// Route maps a snapshot to exactly one view. The same input always yields the same view.
func Route(in Input) View {
	snap := in.Snapshot
	switch {
	case !in.Joined:
		return View{Kind: ViewJoin}
	case snap == nil:
		return View{Kind: ViewLoading}
	case snap.Me == nil:
		return View{Kind: ViewJoin}
	}

	view := View{VIP: snap.IsVIP()}

	switch snap.Phase {
	case entity.PhaseLobby:
		view.Kind = ViewLobby
		view.CanStart = view.VIP && len(snap.Players) >= MinPlayers
	case entity.PhaseReveal:
		view.Kind = ViewReveal
	case entity.PhaseExplanation:
		view.Kind = ViewExplanation
	case entity.PhaseGameRunning:
		view.Kind = ViewGame
		view.GameID = snap.GameID()
		view.Game = games.KindOf(view.GameID)
	case entity.PhaseScoring:
		view.Kind = ViewScoring
		view.GameID = snap.GameID()
		view.Scoring = games.ScoringModeOf(view.GameID)
	case entity.PhaseQuizIntro:
		view.Kind = ViewQuizIntro
	case entity.PhaseQuiz:
		if !snap.Me.HasFinishedQuiz {
			view.Kind = ViewQuizForm
			break
		}
		view.Kind = ViewQuizWaiting
		view.Finished, view.Total = snap.FinishedQuiz()
		view.LastRound = snap.RoundInfo.IsLast()
		view.CanAdvance = view.VIP && view.Total > 0 && view.Finished == view.Total
	case entity.PhaseFinalReveal:
		view.Kind = ViewFinalReveal
	default:
		view.Kind = ViewLoading
	}

	return view
}

// AdvanceLabel is the VIP control text once every player finished the quiz.
func AdvanceLabel(lastRound bool) string {
	if lastRound {
		return "Go to Final Awards"
	}
	return "Start Next Game"
}
