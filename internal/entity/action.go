package entity

// ControlAction is a VIP or session level action sent to /control.
type ControlAction string

const (
	ActionStartGame    ControlAction = "start_game"
	ActionExplainRound ControlAction = "explain_round"
	ActionStartTimer   ControlAction = "start_timer"
	ActionEndGameEarly ControlAction = "end_game_early"
	ActionSubmitScore  ControlAction = "submit_score"
	ActionStartQuiz    ControlAction = "start_quiz"
	ActionAdvanceRound ControlAction = "advance_round"
	ActionReset        ControlAction = "reset"
)

var controlActions = []ControlAction{
	ActionStartGame,
	ActionExplainRound,
	ActionStartTimer,
	ActionEndGameEarly,
	ActionSubmitScore,
	ActionStartQuiz,
	ActionAdvanceRound,
	ActionReset,
}

// Valid reports whether the action is part of the control vocabulary.
func (that ControlAction) Valid() bool {
	for _, a := range controlActions {
		if a == that {
			return true
		}
	}
	return false
}

// Guess outcomes.
const (
	ResultCorrect   = "correct"
	ResultIncorrect = "incorrect"
)

// ActionResult is the structured reply to a game action.
type ActionResult struct {
	Status   string `json:"status,omitempty"`
	Result   string `json:"result,omitempty"`
	RealName string `json:"real_name,omitempty"`
	Points   int    `json:"points,omitempty"`
	Error    string `json:"error,omitempty"`
}
