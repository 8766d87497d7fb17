package games

import (
	"encoding/json"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rocketscienceinc/whoisthemole/internal/entity"
)

// Gesture is a named game action with its payload, ready to be sent to the server.
type Gesture struct {
	Action  string
	Payload map[string]any
}

// Clock is the locally computed countdown. Known is false until the first tick.
type Clock struct {
	Left  int
	Known bool
}

func (that Clock) String() string {
	if !that.Known {
		return "--"
	}
	return fmt.Sprintf("%d", that.Left)
}

// Adapter renders one game's payload and turns key presses into gestures.
// Local state lives on the adapter and is dropped when the view is replaced.
type Adapter interface {
	Kind() Kind
	Update(raw json.RawMessage) error
	View(clock Clock) string
	// HandleKey returns a gesture to dispatch, or ok=false when the key only changed local state
	// or was not handled.
	HandleKey(msg tea.KeyMsg) (gesture Gesture, ok bool, cmd tea.Cmd)
	// Capturing reports whether the adapter wants every key, e.g. while text is being typed.
	Capturing() bool
	// Result feeds the server reply of a dispatched gesture back to the adapter.
	Result(gesture Gesture, result entity.ActionResult)
}

// New returns a fresh adapter for a game id.
func New(gameID string) Adapter {
	switch KindOf(gameID) {
	case KindWhoAmI:
		return NewWhoAmI()
	case KindChess:
		return &Chess{}
	case KindDictionary:
		return &Dictionary{}
	case KindRisky:
		return NewRisky()
	}
	return &Generic{}
}

// EndRoundLabel is the VIP button text to leave GAME_RUNNING.
func EndRoundLabel(kind Kind, clock Clock) string {
	if clock.Known && clock.Left == 0 {
		return "Finish & Go to Scoring"
	}
	if kind == KindDictionary {
		return "CHECK THE WORDS AND COUNT POINTS FIRST - End Round"
	}
	return "End Game Early"
}

// Flashing reports whether the countdown should blink on this second.
func Flashing(clock Clock) bool {
	return clock.Known && clock.Left > 0 && clock.Left <= 10 && clock.Left%2 == 1
}

type cursor struct {
	pos int
}

func (that *cursor) move(delta, size int) {
	if size == 0 {
		that.pos = 0
		return
	}
	that.pos += delta
	if that.pos < 0 {
		that.pos = 0
	}
	if that.pos >= size {
		that.pos = size - 1
	}
}

func (that *cursor) handle(key string, size int) bool {
	switch key {
	case "up", "k":
		that.move(-1, size)
	case "down", "j":
		that.move(1, size)
	default:
		return false
	}
	return true
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func pointer(selected bool) string {
	if selected {
		return "> "
	}
	return "  "
}

func header(b *strings.Builder, clock Clock) {
	fmt.Fprintf(b, "Time left: %s\n\n", clock)
}
