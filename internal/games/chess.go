package games

import (
	"encoding/json"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rocketscienceinc/whoisthemole/internal/entity"
)

const (
	ActionToggleGroup = "toggle_group"
	ActionToggleIndiv = "toggle_indiv"
	ActionAddMove     = "add_move"
	ActionToggleWin   = "toggle_win"
)

// Chess lists group tasks first and individual tasks after them under a single cursor.
type Chess struct {
	payload ChessPayload
	cursor  cursor
}

func (that *Chess) Kind() Kind { return KindChess }

func (that *Chess) Update(raw json.RawMessage) error {
	var p ChessPayload
	if err := decode(raw, &p); err != nil {
		return err
	}
	that.payload = p
	that.cursor.move(0, that.selectable())
	return nil
}

func (that *Chess) Payload() ChessPayload { return that.payload }

func (that *Chess) Capturing() bool { return false }

func (that *Chess) Result(Gesture, entity.ActionResult) {}

func (that *Chess) selectable() int {
	return len(that.payload.GroupTasks) + len(that.payload.IndivTasks)
}

func (that *Chess) ToggleGroup(idx int) Gesture {
	return Gesture{Action: ActionToggleGroup, Payload: map[string]any{"index": idx}}
}

func (that *Chess) ToggleIndiv(idx int) Gesture {
	return Gesture{Action: ActionToggleIndiv, Payload: map[string]any{"index": idx}}
}

func (that *Chess) AddMove() Gesture { return Gesture{Action: ActionAddMove} }

func (that *Chess) ToggleWin() Gesture { return Gesture{Action: ActionToggleWin} }

func (that *Chess) HandleKey(msg tea.KeyMsg) (Gesture, bool, tea.Cmd) {
	key := msg.String()
	if that.cursor.handle(key, that.selectable()) {
		return Gesture{}, false, nil
	}
	switch key {
	case " ", "space":
		groups := len(that.payload.GroupTasks)
		switch {
		case that.cursor.pos < groups:
			return that.ToggleGroup(that.payload.GroupTasks[that.cursor.pos].Idx), true, nil
		case that.cursor.pos-groups < len(that.payload.IndivTasks):
			return that.ToggleIndiv(that.payload.IndivTasks[that.cursor.pos-groups].Idx), true, nil
		}
	case "+", "=":
		return that.AddMove(), true, nil
	case "w":
		return that.ToggleWin(), true, nil
	}
	return Gesture{}, false, nil
}

func (that *Chess) View(clock Clock) string {
	var b strings.Builder
	header(&b, clock)
	won := "no"
	if that.payload.Stats.GameWon {
		won = "YES"
	}
	fmt.Fprintf(&b, "MOVES %d [+]    GAME WON (+400 pts): %s [w]\n\n", that.payload.Stats.Moves, won)

	b.WriteString("My Group Challenges\n")
	for i, t := range that.payload.GroupTasks {
		fmt.Fprintf(&b, "%s%s %s (%d pts)\n", pointer(i == that.cursor.pos), checkbox(t.Done), t.Desc, t.Points)
	}
	b.WriteString("\nIntel: Others' Group Tasks\n")
	b.WriteString("  Tasks belonging to other players. You don't know who has them or if they are done.\n")
	for _, t := range that.payload.AnonymousTasks {
		fmt.Fprintf(&b, "  - %s (%d pts)\n", t.Desc, t.Points)
	}
	b.WriteString("\nIndividual Challenges\n")
	groups := len(that.payload.GroupTasks)
	for i, t := range that.payload.IndivTasks {
		fmt.Fprintf(&b, "%s%s %s (%d pts)\n", pointer(groups+i == that.cursor.pos), checkbox(t.Done), t.Desc, t.Points)
	}
	return b.String()
}
