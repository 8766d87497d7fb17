package entity

import (
	"bytes"
	"encoding/json"
	"slices"
	"strconv"
)

// Label holds a value the server sends either as a number or as text ("Variable").
type Label string

func (that *Label) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*that = Label(s)
		return nil
	}

	if string(data) == "null" {
		*that = ""
		return nil
	}

	*that = Label(data)
	return nil
}

// Int returns the numeric value of the label, if it has one.
func (that Label) Int() (int, bool) {
	n, err := strconv.Atoi(string(that))
	return n, err == nil
}

type GameContent struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	Duration         int    `json:"duration"`
	MaxPoints        Label  `json:"max_points"`
	TeamDistribution string `json:"team_distribution,omitempty"`
}

type QuizQuestion struct {
	ID      int      `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

type QuizHint struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
}

type RoundInfo struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// IsLast reports whether the current round is the final one.
func (that RoundInfo) IsLast() bool {
	return that.Current >= that.Total
}

// HistoryEntry is one score sample. Round indices may be fractional: a game's
// scoring lands on n+0.5 and the following quiz on n+1.
type HistoryEntry struct {
	PlayerID int64   `json:"player_id"`
	RoundIdx float64 `json:"round_idx"`
	Score    int     `json:"score"`
}

// Snapshot is the full session document returned by a state fetch.
type Snapshot struct {
	Phase        Phase           `json:"phase"`
	Players      []Player        `json:"players"`
	Me           *Me             `json:"me,omitempty"`
	GameContent  *GameContent    `json:"game_content,omitempty"`
	GameSpecific json.RawMessage `json:"game_specific,omitempty"`
	SecretInfo   string          `json:"secret_info,omitempty"`
	QuizHint     *QuizHint       `json:"quiz_hint,omitempty"`
	TimerEnd     float64         `json:"timer_end"`
	QuizData     []QuizQuestion  `json:"quiz_data,omitempty"`
	RoundInfo    RoundInfo       `json:"round_info"`
	History      []HistoryEntry  `json:"history,omitempty"`
	MaxPoints    Label           `json:"max_points,omitempty"`
}

// GameID returns the current mini-game identifier, or "" outside a game.
func (that *Snapshot) GameID() string {
	if that == nil || that.GameContent == nil {
		return ""
	}
	return that.GameContent.ID
}

// IsVIP reports whether the requesting player drives phase transitions.
func (that *Snapshot) IsVIP() bool {
	return that != nil && that.Me != nil && bool(that.Me.IsVIP)
}

// Questions returns the quiz of the current round, if any.
func (that *Snapshot) Questions() []QuizQuestion {
	if that == nil {
		return nil
	}
	return that.QuizData
}

// FinishedQuiz counts players that submitted the current quiz.
func (that *Snapshot) FinishedQuiz() (finished, total int) {
	for _, p := range that.Players {
		if p.HasFinishedQuiz {
			finished++
		}
	}
	return finished, len(that.Players)
}

// Clone returns a deep copy so readers never share memory with the store.
func (that *Snapshot) Clone() *Snapshot {
	if that == nil {
		return nil
	}

	out := *that
	out.Players = slices.Clone(that.Players)
	out.GameSpecific = slices.Clone(that.GameSpecific)
	out.History = slices.Clone(that.History)

	if that.Me != nil {
		me := *that.Me
		out.Me = &me
	}
	if that.GameContent != nil {
		content := *that.GameContent
		out.GameContent = &content
	}
	if that.QuizHint != nil {
		hint := QuizHint{Text: that.QuizHint.Text, Options: slices.Clone(that.QuizHint.Options)}
		out.QuizHint = &hint
	}
	if that.QuizData != nil {
		out.QuizData = make([]QuizQuestion, len(that.QuizData))
		for i, q := range that.QuizData {
			out.QuizData[i] = QuizQuestion{ID: q.ID, Text: q.Text, Options: slices.Clone(q.Options)}
		}
	}

	return &out
}
