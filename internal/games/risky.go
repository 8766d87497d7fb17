package games

import (
	"encoding/json"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rocketscienceinc/whoisthemole/internal/entity"
)

// Risky keeps a per-task tracker that exists only on this client.
type Risky struct {
	payload  RiskyPayload
	cursor   cursor
	counters map[int]int
}

func NewRisky() *Risky {
	return &Risky{counters: make(map[int]int)}
}

func (that *Risky) Kind() Kind { return KindRisky }

func (that *Risky) Update(raw json.RawMessage) error {
	var p RiskyPayload
	if err := decode(raw, &p); err != nil {
		return err
	}
	that.payload = p
	that.cursor.move(0, len(p.Tasks))
	return nil
}

func (that *Risky) Capturing() bool { return false }

func (that *Risky) Result(Gesture, entity.ActionResult) {}

func (that *Risky) ToggleTask(idx int) Gesture {
	return Gesture{Action: ActionToggleTask, Payload: map[string]any{"index": idx}}
}

// Track moves the tracker of a task by delta, never below zero.
func (that *Risky) Track(idx, delta int) {
	v := that.counters[idx] + delta
	if v < 0 {
		v = 0
	}
	that.counters[idx] = v
}

func (that *Risky) Counter(idx int) int { return that.counters[idx] }

func (that *Risky) selected() (Task, bool) {
	if that.cursor.pos >= len(that.payload.Tasks) {
		return Task{}, false
	}
	return that.payload.Tasks[that.cursor.pos], true
}

func (that *Risky) HandleKey(msg tea.KeyMsg) (Gesture, bool, tea.Cmd) {
	key := msg.String()
	if that.cursor.handle(key, len(that.payload.Tasks)) {
		return Gesture{}, false, nil
	}
	t, ok := that.selected()
	if !ok {
		return Gesture{}, false, nil
	}
	switch key {
	case " ", "space":
		return that.ToggleTask(t.Idx), true, nil
	case "+", "=":
		if !t.Done {
			that.Track(t.Idx, 1)
		}
	case "-":
		if !t.Done {
			that.Track(t.Idx, -1)
		}
	}
	return Gesture{}, false, nil
}

func (that *Risky) View(clock Clock) string {
	var b strings.Builder
	header(&b, clock)
	b.WriteString("My Secret Tasks\n")
	for i, t := range that.payload.Tasks {
		fmt.Fprintf(&b, "%s%s %s (%d pts, %s)\n", pointer(i == that.cursor.pos), checkbox(t.Done), t.Desc, t.Points, t.Type)
		if !t.Done {
			fmt.Fprintf(&b, "      Tracker: %d  [-/+]\n", that.counters[t.Idx])
		}
	}
	return b.String()
}
