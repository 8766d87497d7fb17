package games

import (
	"encoding/json"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rocketscienceinc/whoisthemole/internal/entity"
)

// Generic is the fallback for games without a dedicated view: a large countdown.
type Generic struct{}

func (that *Generic) Kind() Kind { return KindGeneric }

func (that *Generic) Update(json.RawMessage) error { return nil }

func (that *Generic) Capturing() bool { return false }

func (that *Generic) Result(Gesture, entity.ActionResult) {}

func (that *Generic) HandleKey(tea.KeyMsg) (Gesture, bool, tea.Cmd) {
	return Gesture{}, false, nil
}

func (that *Generic) View(clock Clock) string {
	var b strings.Builder
	b.WriteString("TIME REMAINING\n\n")
	left := "  " + clock.String() + "  "
	if Flashing(clock) {
		left = ">>" + clock.String() + "<<"
	}
	b.WriteString(left + "\n")
	if clock.Known && clock.Left == 0 {
		b.WriteString("\nTIME'S UP!\n")
	}
	return b.String()
}
