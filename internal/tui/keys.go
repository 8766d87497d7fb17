package tui

import (
	"errors"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rocketscienceinc/whoisthemole/internal/apperror"
	"github.com/rocketscienceinc/whoisthemole/internal/entity"
	"github.com/rocketscienceinc/whoisthemole/internal/games"
	"github.com/rocketscienceinc/whoisthemole/internal/reveal"
	"github.com/rocketscienceinc/whoisthemole/internal/router"
)

func (that *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	route := that.route()

	// Views with text entry get every key first.
	switch {
	case route.Kind == router.ViewJoin:
		return that.keyJoin(msg)
	case route.Kind == router.ViewGame && that.adapter != nil && that.adapter.Capturing():
		return that.keyGame(route, msg)
	case route.Kind == router.ViewScoring && that.scoreInput.Focused():
		return that.keyManualScore(msg)
	}

	if msg.String() == "x" && that.notice != "" {
		that.notice = ""
		return nil
	}

	switch route.Kind {
	case router.ViewLobby:
		if msg.String() == "s" && route.CanStart {
			return that.control(entity.ActionStartGame, nil)
		}
	case router.ViewReveal:
		if msg.String() == "n" && route.VIP {
			return that.control(entity.ActionExplainRound, nil)
		}
	case router.ViewExplanation:
		switch msg.String() {
		case "i":
			that.showIntel = !that.showIntel
		case "h":
			that.showHint = !that.showHint
		case "t":
			if route.VIP {
				return that.control(entity.ActionStartTimer, nil)
			}
		}
	case router.ViewGame:
		return that.keyGame(route, msg)
	case router.ViewScoring:
		if route.VIP && route.Scoring == games.ScoringAutomated && msg.String() == "enter" {
			return that.control(entity.ActionSubmitScore, nil)
		}
	case router.ViewQuizIntro:
		if msg.String() == "q" && route.VIP {
			return that.control(entity.ActionStartQuiz, nil)
		}
	case router.ViewQuizForm:
		return that.keyQuiz(msg)
	case router.ViewQuizWaiting:
		if msg.String() == "a" && route.CanAdvance {
			return that.control(entity.ActionAdvanceRound, nil)
		}
	case router.ViewFinalReveal:
		return that.keyReveal(route, msg)
	}

	return nil
}

func (that *Model) keyJoin(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "enter" {
		return that.join(that.nameInput.Value())
	}
	if !that.nameInput.Focused() {
		cmd := that.nameInput.Focus()
		return tea.Batch(cmd, that.updateName(msg))
	}
	return that.updateName(msg)
}

func (that *Model) updateName(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	that.nameInput, cmd = that.nameInput.Update(msg)
	that.state.SetNameDraft(that.nameInput.Value())
	return cmd
}

func (that *Model) keyGame(route router.View, msg tea.KeyMsg) tea.Cmd {
	if that.adapter == nil {
		return nil
	}
	if !that.adapter.Capturing() && msg.String() == "e" && route.VIP {
		return that.control(entity.ActionEndGameEarly, nil)
	}

	gesture, ok, cmd := that.adapter.HandleKey(msg)
	if !ok {
		return cmd
	}
	return tea.Batch(cmd, that.gameAction(gesture))
}

func (that *Model) keyManualScore(msg tea.KeyMsg) tea.Cmd {
	if msg.String() != "enter" {
		var cmd tea.Cmd
		that.scoreInput, cmd = that.scoreInput.Update(msg)
		return cmd
	}

	points, err := strconv.Atoi(strings.TrimSpace(that.scoreInput.Value()))
	if err != nil || points < 0 {
		that.notice = "Enter the points as a whole number."
		return nil
	}
	return that.control(entity.ActionSubmitScore, map[string]any{"points": points})
}

func (that *Model) keyQuiz(msg tea.KeyMsg) tea.Cmd {
	questions := that.state.View().Questions()
	if len(questions) == 0 {
		return nil
	}
	if that.quizCursor >= len(questions) {
		that.quizCursor = len(questions) - 1
	}
	q := questions[that.quizCursor]

	key := msg.String()
	switch key {
	case "up", "k":
		if that.quizCursor > 0 {
			that.quizCursor--
		}
	case "down", "j", "tab":
		if that.quizCursor < len(questions)-1 {
			that.quizCursor++
		}
	case "left", "h", "right", "l":
		n := len(q.Options)
		if n == 0 {
			return nil
		}
		back := key == "left" || key == "h"
		current := optionIndex(q.Options, that.state.Answers()[q.ID])
		// with nothing chosen yet, right picks the first option and left the last
		var next int
		switch {
		case current < 0 && back:
			next = n - 1
		case back:
			next = (current + n - 1) % n
		default:
			next = (current + 1) % n
		}
		that.state.SetAnswer(q.ID, q.Options[next])
	case "enter":
		return that.submitQuiz(that.state.Answers())
	default:
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(q.Options) {
			that.state.SetAnswer(q.ID, q.Options[n-1])
		}
	}
	return nil
}

func optionIndex(options []string, chosen string) int {
	for i, o := range options {
		if o == chosen {
			return i
		}
	}
	return -1
}

func (that *Model) keyReveal(route router.View, msg tea.KeyMsg) tea.Cmd {
	key := msg.String()

	if that.confirmReset {
		that.confirmReset = false
		if key == "y" {
			return that.control(entity.ActionReset, nil)
		}
		return nil
	}

	var err error
	switch key {
	case "n", "enter":
		err = that.state.AdvanceReveal(func(s *reveal.Sequencer) error { return s.Next() })
	case " ", "space", "r":
		err = that.state.AdvanceReveal(func(s *reveal.Sequencer) error { return s.TapToReveal() })
	case "R":
		if seq := that.state.Reveal(); seq.CanReset(route.VIP) {
			that.confirmReset = true
		}
	}
	if err != nil && !errors.Is(err, apperror.ErrOutOfOrder) {
		that.logger.Warn("reveal step failed", "error", err)
	}
	return nil
}
