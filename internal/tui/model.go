// Package tui is the terminal front end: a single bubbletea event loop that renders the active
// view and turns key presses into dispatched actions.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rocketscienceinc/whoisthemole/internal/apperror"
	"github.com/rocketscienceinc/whoisthemole/internal/entity"
	"github.com/rocketscienceinc/whoisthemole/internal/games"
	"github.com/rocketscienceinc/whoisthemole/internal/repository"
	"github.com/rocketscienceinc/whoisthemole/internal/reveal"
	"github.com/rocketscienceinc/whoisthemole/internal/router"
	"github.com/rocketscienceinc/whoisthemole/internal/session"
)

// SnapshotMsg is sent after the poller replaced the snapshot.
type SnapshotMsg struct {
	Transition session.Transition
}

// TickMsg carries a new countdown value.
type TickMsg struct {
	Left int
}

// AlarmMsg is sent once when the round countdown reaches zero.
type AlarmMsg struct{}

// PollErrorMsg reports a failed fetch; the last snapshot stays on screen.
type PollErrorMsg struct {
	Err error
}

type joinedMsg struct {
	identity entity.Identity
	err      error
}

type dispatchedMsg struct {
	action string
	err    error
}

type gameActionMsg struct {
	gesture games.Gesture
	result  entity.ActionResult
	err     error
}

type leftMsg struct{}

type actions interface {
	Join(ctx context.Context, name string) (entity.Identity, error)
	Resume(ctx context.Context) (entity.Identity, error)
	Control(ctx context.Context, action entity.ControlAction, payload map[string]any) error
	GameAction(ctx context.Context, action string, payload map[string]any) (entity.ActionResult, error)
	SubmitQuiz(ctx context.Context, answers map[int]string) error
	Leave(ctx context.Context)
}

type sessionState interface {
	View() *entity.Snapshot
	Identity() (entity.Identity, bool)
	SetNameDraft(name string)
	NameDraft() string
	SetAnswer(questionID int, option string)
	Answers() map[int]string
	Reveal() reveal.Sequencer
	AdvanceReveal(fn func(*reveal.Sequencer) error) error
}

type Model struct {
	ctx     context.Context
	logger  *slog.Logger
	actions actions
	state   sessionState
	bell    io.Writer
	resume  bool

	nameInput  textinput.Model
	scoreInput textinput.Model

	adapter    games.Adapter
	adapterKey string
	clock      games.Clock

	quizCursor   int
	showIntel    bool
	showHint     bool
	confirmReset bool

	notice string
	status string
}

type Options struct {
	// Name pre-fills the join screen.
	Name string
	// Resume re-joins with the remembered identity on start.
	Resume bool
	// Bell receives the end-of-round signal.
	Bell io.Writer
}

func New(ctx context.Context, logger *slog.Logger, actions actions, state sessionState, opts Options) *Model {
	nameInput := textinput.New()
	nameInput.Placeholder = "Your name"
	nameInput.CharLimit = 32
	name := opts.Name
	if name == "" {
		name = state.NameDraft()
	}
	nameInput.SetValue(name)
	nameInput.Focus()

	scoreInput := textinput.New()
	scoreInput.Placeholder = "Points"
	scoreInput.CharLimit = 6

	return &Model{
		ctx:        ctx,
		logger:     logger.With("component", "tui"),
		actions:    actions,
		state:      state,
		bell:       opts.Bell,
		resume:     opts.Resume,
		nameInput:  nameInput,
		scoreInput: scoreInput,
	}
}

func (that *Model) Init() tea.Cmd {
	if that.resume {
		return tea.Batch(textinput.Blink, that.resumeSession())
	}
	return textinput.Blink
}

func (that *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return that, tea.Quit
		}
		return that, that.handleKey(msg)

	case SnapshotMsg:
		return that, that.onSnapshot(msg.Transition)

	case TickMsg:
		that.clock = games.Clock{Left: msg.Left, Known: true}

	case AlarmMsg:
		that.ring()

	case PollErrorMsg:
		that.status = "Connection problem, showing the last known state."

	case joinedMsg:
		if msg.err != nil {
			that.notice = describe(msg.err)
			return that, nil
		}
		that.notice = ""
		that.nameInput.Blur()

	case dispatchedMsg:
		if msg.err != nil {
			that.notice = describe(msg.err)
		}

	case gameActionMsg:
		if that.adapter != nil {
			that.adapter.Result(msg.gesture, msg.result)
		}
		if msg.err != nil {
			that.notice = describe(msg.err)
		}

	case leftMsg:
		that.resetLocal()
		return that, that.nameInput.Focus()
	}

	return that, nil
}

func (that *Model) route() router.View {
	_, joined := that.state.Identity()
	return router.Route(router.Input{Joined: joined, Snapshot: that.state.View()})
}

func (that *Model) onSnapshot(tr session.Transition) tea.Cmd {
	log := that.logger.With("method", "onSnapshot")

	that.status = ""

	if tr.Orphaned {
		log.Info("server no longer knows this player, leaving")
		that.notice = "The session was reset."
		return that.leave()
	}

	view := that.state.View()
	route := that.route()

	var cmd tea.Cmd
	if tr.Changed() {
		that.confirmReset = false
		switch tr.To {
		case entity.PhaseExplanation:
			that.showIntel, that.showHint = false, false
		case entity.PhaseScoring:
			that.scoreInput.Reset()
			if route.VIP && route.Scoring == games.ScoringManual {
				cmd = that.scoreInput.Focus()
			}
		case entity.PhaseQuiz:
			that.quizCursor = 0
		}
		if tr.To != entity.PhaseGameRunning {
			that.clock = games.Clock{}
		}
	}

	that.syncAdapter(route, view)
	return cmd
}

// syncAdapter keeps one adapter per game round. A new round gets fresh local state.
func (that *Model) syncAdapter(route router.View, view *entity.Snapshot) {
	if route.Kind != router.ViewGame || view == nil {
		that.adapter, that.adapterKey = nil, ""
		return
	}

	key := fmt.Sprintf("%s#%d", route.GameID, view.RoundInfo.Current)
	if that.adapter == nil || key != that.adapterKey {
		that.adapter, that.adapterKey = games.New(route.GameID), key
	}
	if err := that.adapter.Update(view.GameSpecific); err != nil {
		that.logger.Warn("failed to read game payload", "game", route.GameID, "error", err)
	}
}

func (that *Model) resetLocal() {
	that.adapter, that.adapterKey = nil, ""
	that.clock = games.Clock{}
	that.quizCursor = 0
	that.showIntel, that.showHint, that.confirmReset = false, false, false
	that.scoreInput.Reset()
	that.status = ""
}

func (that *Model) ring() {
	that.logger.Info("end of round signal")
	if that.bell != nil {
		_, _ = io.WriteString(that.bell, "\a")
	}
}

func (that *Model) join(name string) tea.Cmd {
	return func() tea.Msg {
		identity, err := that.actions.Join(that.ctx, name)
		return joinedMsg{identity: identity, err: err}
	}
}

func (that *Model) resumeSession() tea.Cmd {
	return func() tea.Msg {
		identity, err := that.actions.Resume(that.ctx)
		return joinedMsg{identity: identity, err: err}
	}
}

func (that *Model) control(action entity.ControlAction, payload map[string]any) tea.Cmd {
	return func() tea.Msg {
		return dispatchedMsg{action: string(action), err: that.actions.Control(that.ctx, action, payload)}
	}
}

func (that *Model) gameAction(g games.Gesture) tea.Cmd {
	return func() tea.Msg {
		res, err := that.actions.GameAction(that.ctx, g.Action, g.Payload)
		return gameActionMsg{gesture: g, result: res, err: err}
	}
}

func (that *Model) submitQuiz(answers map[int]string) tea.Cmd {
	return func() tea.Msg {
		return dispatchedMsg{action: "submit_quiz", err: that.actions.SubmitQuiz(that.ctx, answers)}
	}
}

func (that *Model) leave() tea.Cmd {
	return func() tea.Msg {
		that.actions.Leave(that.ctx)
		return leftMsg{}
	}
}

// describe turns an error into the notice line shown to the player.
func describe(err error) string {
	var validationErr *apperror.ValidationError
	var joinErr *apperror.JoinError
	var dispatchErr *apperror.DispatchError

	switch {
	case errors.As(err, &validationErr):
		return "Please answer all questions before submitting."
	case errors.Is(err, apperror.ErrEmptyName):
		return "Please enter a name."
	case errors.Is(err, repository.ErrIdentityNotFound):
		return "No remembered identity for this server, please join."
	case errors.As(err, &joinErr):
		return "Failed to join: " + joinErr.Err.Error()
	case errors.As(err, &dispatchErr):
		if dispatchErr.Action != "" {
			return "Action failed: " + dispatchErr.Action
		}
		return "Action failed: " + dispatchErr.Op
	}
	return err.Error()
}
