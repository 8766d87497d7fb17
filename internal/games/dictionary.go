package games

import (
	"encoding/json"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rocketscienceinc/whoisthemole/internal/entity"
)

// Dictionary hides the word list until the player confirms they are allowed to see it.
// Nothing is ever sent to the server.
type Dictionary struct {
	payload    DictionaryPayload
	confirming bool
	revealed   bool
}

func (that *Dictionary) Kind() Kind { return KindDictionary }

func (that *Dictionary) Update(raw json.RawMessage) error {
	var p DictionaryPayload
	if err := decode(raw, &p); err != nil {
		return err
	}
	that.payload = p
	return nil
}

func (that *Dictionary) Capturing() bool { return that.confirming }

func (that *Dictionary) Result(Gesture, entity.ActionResult) {}

func (that *Dictionary) Revealed() bool { return that.revealed }

func (that *Dictionary) HandleKey(msg tea.KeyMsg) (Gesture, bool, tea.Cmd) {
	key := msg.String()
	if that.confirming {
		that.confirming = false
		if key == "y" {
			that.revealed = true
		}
		return Gesture{}, false, nil
	}
	switch key {
	case "v":
		if !that.revealed {
			that.confirming = true
		}
	case "h":
		that.revealed = false
	}
	return Gesture{}, false, nil
}

func (that *Dictionary) View(clock Clock) string {
	var b strings.Builder
	header(&b, clock)
	b.WriteString("Word List\nOnly the Solo Players (Drawer & Writer) should look at this list.\n\n")
	switch {
	case that.confirming:
		b.WriteString("Are you sure? Only reveal this if you are a Solo Player! [y/n]\n")
	case !that.revealed:
		b.WriteString("[v] REVEAL WORD LIST (DO NOT PRESS IF GUESSING)\n")
	default:
		b.WriteString("[h] Hide List\n")
		for i, w := range that.payload.WordList {
			fmt.Fprintf(&b, "%3d. %s\n", i+1, w)
		}
	}
	return b.String()
}
