package games

import (
	"encoding/json"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/whoisthemole/internal/entity"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	down  = tea.KeyMsg{Type: tea.KeyDown}
)

func TestKindAndScoring(t *testing.T) {
	assert.Equal(t, KindWhoAmI, KindOf("who-am-i"))
	assert.Equal(t, KindChess, KindOf("chess-challenges"))
	assert.Equal(t, KindGeneric, KindOf("ritual"))
	assert.Equal(t, KindGeneric, KindOf("brand-new-game"))

	assert.Equal(t, ScoringManual, ScoringModeOf("ritual"))
	assert.Equal(t, ScoringManual, ScoringModeOf("risky-business"))
	assert.Equal(t, ScoringManual, ScoringModeOf("dictionary-dudes"))
	assert.Equal(t, ScoringAutomated, ScoringModeOf("who-am-i"))
	assert.Equal(t, ScoringAutomated, ScoringModeOf("brand-new-game"))
}

func TestNew_SelectsAdapter(t *testing.T) {
	assert.IsType(t, &WhoAmI{}, New("who-am-i"))
	assert.IsType(t, &Chess{}, New("chess-challenges"))
	assert.IsType(t, &Dictionary{}, New("dictionary-dudes"))
	assert.IsType(t, &Risky{}, New("risky-business"))
	assert.IsType(t, &Generic{}, New("unknown"))
}

func TestWhoAmI_Gestures(t *testing.T) {
	// Given: a who-am-i round with two tasks
	a := NewWhoAmI()
	raw := json.RawMessage(`{"tasks":[{"desc":"a","type":"easy"},{"desc":"b","type":"hard","done":true}],
		"stats":{"questions":3,"strikes":1,"solved":false,"points":0},
		"others":[{"name":"Bob","char":"Napoleon"}]}`)
	require.NoError(t, a.Update(raw))

	// When: the second task is toggled
	_, ok, _ := a.HandleKey(down)
	require.False(t, ok)
	g, ok, _ := a.HandleKey(space)

	// Then: the task is addressed by position
	require.True(t, ok)
	assert.Equal(t, Gesture{Action: "toggle_task", Payload: map[string]any{"task_index": 1}}, g)

	g, ok, _ = a.HandleKey(runes("+"))
	require.True(t, ok)
	assert.Equal(t, "add_question", g.Action)

	view := a.View(Clock{Left: 42, Known: true})
	assert.Contains(t, view, "Bob is NAPOLEON")
	assert.Contains(t, view, "(100 pts)")
	assert.Contains(t, view, "(250 pts)")
}

func TestWhoAmI_Guess(t *testing.T) {
	a := NewWhoAmI()

	// Then: an empty guess is never sent
	_, ok := a.Guess("   ")
	assert.False(t, ok)

	// When: the player types a guess
	_, _, _ = a.HandleKey(runes("g"))
	require.True(t, a.Capturing())
	_, ok, _ = a.HandleKey(runes("e"))
	require.False(t, ok)
	g, ok, _ := a.HandleKey(enter)

	// Then: the guess is sent and the input is released
	require.True(t, ok)
	assert.Equal(t, Gesture{Action: "guess", Payload: map[string]any{"guess": "e"}}, g)
	assert.False(t, a.Capturing())

	a.Result(g, entity.ActionResult{Status: "ok", Result: entity.ResultCorrect, RealName: "Cleopatra", Points: 300})
	assert.Contains(t, a.View(Clock{}), "CORRECT! You are Cleopatra. You earned 300 points for the POT.")

	a.Result(g, entity.ActionResult{Status: "ok", Result: entity.ResultIncorrect})
	assert.Contains(t, a.View(Clock{}), "WRONG! -25 Points.")
}

func TestWhoAmI_SolvedHidesInteraction(t *testing.T) {
	a := NewWhoAmI()
	require.NoError(t, a.Update(json.RawMessage(`{"stats":{"solved":true,"points":300}}`)))

	_, ok, _ := a.HandleKey(runes("+"))
	assert.False(t, ok)
	_, _, _ = a.HandleKey(runes("g"))
	assert.False(t, a.Capturing())
	assert.Contains(t, a.View(Clock{}), "IDENTITY FOUND (+300 pts)")
}

func TestChess_Gestures(t *testing.T) {
	a := &Chess{}
	require.NoError(t, a.Update(json.RawMessage(`{"group_tasks":[{"idx":4,"desc":"g","points":50}],
		"indiv_tasks":[{"idx":7,"desc":"i","points":100}],
		"anonymous_tasks":[{"desc":"secret","points":50}],
		"stats":{"moves":2,"game_won":false}}`)))

	g, ok, _ := a.HandleKey(space)
	require.True(t, ok)
	assert.Equal(t, Gesture{Action: "toggle_group", Payload: map[string]any{"index": 4}}, g)

	_, _, _ = a.HandleKey(down)
	g, ok, _ = a.HandleKey(space)
	require.True(t, ok)
	assert.Equal(t, Gesture{Action: "toggle_indiv", Payload: map[string]any{"index": 7}}, g)

	g, _, _ = a.HandleKey(runes("+"))
	assert.Equal(t, "add_move", g.Action)
	g, _, _ = a.HandleKey(runes("w"))
	assert.Equal(t, "toggle_win", g.Action)

	assert.Contains(t, a.View(Clock{}), "secret")
}

func TestDictionary_RevealNeedsConfirmation(t *testing.T) {
	a := &Dictionary{}
	require.NoError(t, a.Update(json.RawMessage(`{"word_list":["apple","pear"]}`)))

	// When: the reveal is declined
	_, _, _ = a.HandleKey(runes("v"))
	_, _, _ = a.HandleKey(runes("n"))
	assert.False(t, a.Revealed())
	assert.NotContains(t, a.View(Clock{}), "apple")

	// When: the reveal is confirmed
	_, _, _ = a.HandleKey(runes("v"))
	_, ok, _ := a.HandleKey(runes("y"))
	assert.False(t, ok)
	assert.True(t, a.Revealed())
	assert.Contains(t, a.View(Clock{}), "1. apple")

	_, _, _ = a.HandleKey(runes("h"))
	assert.False(t, a.Revealed())
}

func TestRisky_TrackerClampsAtZero(t *testing.T) {
	a := NewRisky()
	require.NoError(t, a.Update(json.RawMessage(`{"tasks":[{"idx":2,"desc":"hold","points":100,"type":"hold","done":false},
		{"idx":5,"desc":"done","points":50,"type":"x","done":true}]}`)))

	_, _, _ = a.HandleKey(runes("-"))
	assert.Equal(t, 0, a.Counter(2))
	_, _, _ = a.HandleKey(runes("+"))
	_, _, _ = a.HandleKey(runes("+"))
	assert.Equal(t, 2, a.Counter(2))

	// Then: finished tasks have no tracker
	_, _, _ = a.HandleKey(down)
	_, _, _ = a.HandleKey(runes("+"))
	assert.Equal(t, 0, a.Counter(5))

	g, ok, _ := a.HandleKey(space)
	require.True(t, ok)
	assert.Equal(t, Gesture{Action: "toggle_task", Payload: map[string]any{"index": 5}}, g)

	// Then: the tracker survives a payload refresh
	require.NoError(t, a.Update(json.RawMessage(`{"tasks":[{"idx":2,"desc":"hold","points":100,"done":false}]}`)))
	assert.Equal(t, 2, a.Counter(2))
}

func TestFlashingAndEndLabel(t *testing.T) {
	assert.False(t, Flashing(Clock{}))
	assert.False(t, Flashing(Clock{Left: 11, Known: true}))
	assert.True(t, Flashing(Clock{Left: 9, Known: true}))
	assert.False(t, Flashing(Clock{Left: 8, Known: true}))
	assert.False(t, Flashing(Clock{Left: 0, Known: true}))

	assert.Equal(t, "End Game Early", EndRoundLabel(KindGeneric, Clock{Left: 5, Known: true}))
	assert.Equal(t, "Finish & Go to Scoring", EndRoundLabel(KindGeneric, Clock{Left: 0, Known: true}))
	assert.Contains(t, EndRoundLabel(KindDictionary, Clock{Left: 5, Known: true}), "CHECK THE WORDS")
	assert.Contains(t, New("x").View(Clock{Left: 0, Known: true}), "TIME'S UP!")
}

func TestRoleText(t *testing.T) {
	assert.Equal(t, "You are the drawer", RoleText(json.RawMessage(`{"role_text":"You are the drawer"}`)))
	assert.Empty(t, RoleText(nil))
	assert.Empty(t, RoleText(json.RawMessage(`[1,2]`)))
}
