package games

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rocketscienceinc/whoisthemole/internal/entity"
)

const (
	ActionAddQuestion = "add_question"
	ActionToggleTask  = "toggle_task"
	ActionGuess       = "guess"
)

type WhoAmI struct {
	payload  WhoAmIPayload
	cursor   cursor
	guess    textinput.Model
	feedback string
}

func NewWhoAmI() *WhoAmI {
	in := textinput.New()
	in.Placeholder = "Who are you?"
	in.CharLimit = 64
	return &WhoAmI{guess: in}
}

func (that *WhoAmI) Kind() Kind { return KindWhoAmI }

func (that *WhoAmI) Update(raw json.RawMessage) error {
	var p WhoAmIPayload
	if err := decode(raw, &p); err != nil {
		return err
	}
	that.payload = p
	that.cursor.move(0, len(p.Tasks))
	if p.Stats.Solved {
		that.guess.Blur()
	}
	return nil
}

func (that *WhoAmI) Payload() WhoAmIPayload { return that.payload }

func (that *WhoAmI) Capturing() bool { return that.guess.Focused() }

// ToggleTask addresses tasks by their position in the list.
func (that *WhoAmI) ToggleTask(position int) Gesture {
	return Gesture{Action: ActionToggleTask, Payload: map[string]any{"task_index": position}}
}

func (that *WhoAmI) AddQuestion() Gesture {
	return Gesture{Action: ActionAddQuestion}
}

// Guess returns ok=false for an empty guess, which is never sent.
func (that *WhoAmI) Guess(text string) (Gesture, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Gesture{}, false
	}
	return Gesture{Action: ActionGuess, Payload: map[string]any{"guess": text}}, true
}

func (that *WhoAmI) HandleKey(msg tea.KeyMsg) (Gesture, bool, tea.Cmd) {
	if that.guess.Focused() {
		switch msg.String() {
		case "esc":
			that.guess.Blur()
			return Gesture{}, false, nil
		case "enter":
			g, ok := that.Guess(that.guess.Value())
			that.guess.SetValue("")
			that.guess.Blur()
			return g, ok, nil
		}
		var cmd tea.Cmd
		that.guess, cmd = that.guess.Update(msg)
		return Gesture{}, false, cmd
	}

	key := msg.String()
	if that.cursor.handle(key, len(that.payload.Tasks)) {
		return Gesture{}, false, nil
	}
	switch key {
	case " ", "space":
		if len(that.payload.Tasks) == 0 {
			return Gesture{}, false, nil
		}
		return that.ToggleTask(that.cursor.pos), true, nil
	case "+", "=":
		if that.payload.Stats.Solved {
			return Gesture{}, false, nil
		}
		return that.AddQuestion(), true, nil
	case "g":
		if that.payload.Stats.Solved {
			return Gesture{}, false, nil
		}
		that.feedback = ""
		return Gesture{}, false, that.guess.Focus()
	}
	return Gesture{}, false, nil
}

func (that *WhoAmI) Result(g Gesture, res entity.ActionResult) {
	if g.Action != ActionGuess {
		return
	}
	that.feedback = DescribeGuess(res)
}

// DescribeGuess turns a guess reply into the line shown to the player.
func DescribeGuess(res entity.ActionResult) string {
	switch res.Result {
	case entity.ResultCorrect:
		return fmt.Sprintf("CORRECT! You are %s. You earned %d points for the POT.", res.RealName, res.Points)
	case entity.ResultIncorrect:
		return "WRONG! -25 Points."
	}
	return ""
}

func (that *WhoAmI) View(clock Clock) string {
	var b strings.Builder
	header(&b, clock)
	s := that.payload.Stats
	if s.Solved {
		fmt.Fprintf(&b, "IDENTITY FOUND (+%d pts)\nYou can still complete your secret tasks!\n\n", s.Points)
	}
	fmt.Fprintf(&b, "QUESTIONS %d    STRIKES %d\n\n", s.Questions, s.Strikes)
	if !s.Solved {
		b.WriteString("[+] log a question   [g] make a guess\n")
		if that.guess.Focused() {
			b.WriteString(that.guess.View() + "  (enter to submit, esc to cancel)\n")
		}
		b.WriteString("\n")
	}
	if that.feedback != "" {
		b.WriteString(that.feedback + "\n\n")
	}
	b.WriteString("Secret Tasks\n")
	for i, t := range that.payload.Tasks {
		fmt.Fprintf(&b, "%s%s %s (%d pts)\n", pointer(i == that.cursor.pos), checkbox(t.Done), t.Desc, WhoAmITaskPoints(t))
	}
	if len(that.payload.Others) > 0 {
		b.WriteString("\nOthers' Characters\n")
		for _, o := range that.payload.Others {
			fmt.Fprintf(&b, "  %s is %s\n", o.Name, strings.ToUpper(o.Char))
		}
	}
	return b.String()
}
