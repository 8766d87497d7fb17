package games

import (
	"encoding/json"
	"fmt"
)

// Task is a checklist item. Idx is the server-side index to send back when toggling.
type Task struct {
	Idx    int    `json:"idx"`
	Desc   string `json:"desc"`
	Points int    `json:"points"`
	Done   bool   `json:"done"`
	Type   string `json:"type,omitempty"`
}

type WhoAmIStats struct {
	Questions int  `json:"questions"`
	Strikes   int  `json:"strikes"`
	Solved    bool `json:"solved"`
	Points    int  `json:"points"`
}

type Character struct {
	Name string `json:"name"`
	Char string `json:"char"`
}

type WhoAmIPayload struct {
	Tasks    []Task      `json:"tasks"`
	Stats    WhoAmIStats `json:"stats"`
	Others   []Character `json:"others"`
	RoleText string      `json:"role_text"`
}

type ChessStats struct {
	Moves   int  `json:"moves"`
	GameWon bool `json:"game_won"`
}

type ChessPayload struct {
	GroupTasks     []Task     `json:"group_tasks"`
	IndivTasks     []Task     `json:"indiv_tasks"`
	AnonymousTasks []Task     `json:"anonymous_tasks"`
	Stats          ChessStats `json:"stats"`
	RoleText       string     `json:"role_text"`
}

type DictionaryPayload struct {
	WordList []string `json:"word_list"`
	RoleText string   `json:"role_text"`
}

type RiskyPayload struct {
	Tasks    []Task `json:"tasks"`
	RoleText string `json:"role_text"`
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode game payload: %w", err)
	}
	return nil
}

// RoleText extracts the role blurb any game may put in its payload.
func RoleText(raw json.RawMessage) string {
	var p struct {
		RoleText string `json:"role_text"`
	}
	if decode(raw, &p) != nil {
		return ""
	}
	return p.RoleText
}

// WhoAmITaskPoints is the value of a who-am-i task, which carries a difficulty instead of points.
func WhoAmITaskPoints(t Task) int {
	if t.Type == "easy" {
		return 100
	}
	return 250
}
