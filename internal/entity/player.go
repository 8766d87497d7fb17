package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Flag is a boolean that also accepts the 0/1 integers some server rows carry.
type Flag bool

func (that *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch string(data) {
	case "true", "1":
		*that = true
	case "false", "0", "null":
		*that = false
	default:
		n, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("invalid flag value %s", data)
		}
		*that = n != 0
	}

	return nil
}

func (that Flag) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(that))
}

type Player struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Score           int    `json:"score"`
	IsVIP           Flag   `json:"is_vip"`
	IsMole          Flag   `json:"is_mole"`
	HasFinishedQuiz Flag   `json:"has_finished_quiz"`
}

// Me is the requesting player's projection of their own role and status.
type Me struct {
	ID              int64 `json:"id"`
	IsVIP           Flag  `json:"is_vip"`
	IsMole          Flag  `json:"is_mole"`
	HasFinishedQuiz Flag  `json:"has_finished_quiz"`
}

// Identity is what a successful join establishes for all subsequent calls.
type Identity struct {
	Server   string `json:"server"`
	PlayerID int64  `json:"player_id"`
	Name     string `json:"name"`
}
