package entity

// Phase is the server-driven stage of a session.
type Phase string

const (
	PhaseLobby       Phase = "LOBBY"
	PhaseReveal      Phase = "REVEAL"
	PhaseExplanation Phase = "EXPLANATION"
	PhaseGameRunning Phase = "GAME_RUNNING"
	PhaseScoring     Phase = "SCORING"
	PhaseQuizIntro   Phase = "QUIZ_INTRO"
	PhaseQuiz        Phase = "QUIZ"
	PhaseFinalReveal Phase = "FINAL_REVEAL"
)

var transitions = map[Phase][]Phase{
	PhaseLobby:       {PhaseReveal},
	PhaseReveal:      {PhaseExplanation},
	PhaseExplanation: {PhaseGameRunning},
	PhaseGameRunning: {PhaseScoring},
	PhaseScoring:     {PhaseQuizIntro},
	PhaseQuizIntro:   {PhaseQuiz},
	PhaseQuiz:        {PhaseExplanation, PhaseFinalReveal},
	PhaseFinalReveal: {},
}

// String returns the wire value of the phase.
func (p Phase) String() string {
	return string(p)
}

// Known reports whether p is one of the phases the client can render.
func (p Phase) Known() bool {
	_, ok := transitions[p]
	return ok
}

// CanTransitionTo reports whether the server may move a session from p to target.
// A reset returns any phase to the lobby.
func (p Phase) CanTransitionTo(target Phase) bool {
	if target == PhaseLobby {
		return p.Known()
	}

	for _, phase := range transitions[p] {
		if phase == target {
			return true
		}
	}

	return false
}
