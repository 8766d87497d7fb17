// Package dispatch sends player and VIP actions to the server and asks the poller for an
// immediate refresh afterwards.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/rocketscienceinc/whoisthemole/internal/apperror"
	"github.com/rocketscienceinc/whoisthemole/internal/entity"
	"github.com/rocketscienceinc/whoisthemole/internal/repository"
	"github.com/rocketscienceinc/whoisthemole/internal/session"
)

const (
	OpControl    = "control"
	OpGameAction = "game_action"
	OpSubmitQuiz = "submit_quiz"
)

type api interface {
	Join(ctx context.Context, name string) (int64, error)
	Control(ctx context.Context, action entity.ControlAction, payload map[string]any) error
	GameAction(ctx context.Context, playerID int64, action string, payload map[string]any) (entity.ActionResult, error)
	SubmitQuiz(ctx context.Context, playerID int64, answers map[int]string) error
}

type subscriber interface {
	Start(ctx context.Context, playerID int64)
	Stop()
	RefreshNow()
}

type sessionStore interface {
	SetIdentity(identity entity.Identity)
	Identity() (entity.Identity, bool)
	View() *entity.Snapshot
	PatchLocal(p session.Patch)
	Clear()
}

type Dispatcher struct {
	logger     *slog.Logger
	api        api
	store      sessionStore
	poller     subscriber
	identities repository.IdentityRepository
	server     string
}

func New(
	logger *slog.Logger,
	api api,
	store sessionStore,
	poller subscriber,
	identities repository.IdentityRepository,
	server string,
) *Dispatcher {
	return &Dispatcher{
		logger:     logger.With("component", "dispatch"),
		api:        api,
		store:      store,
		poller:     poller,
		identities: identities,
		server:     server,
	}
}

// Join registers name, makes it the identity for every later call and starts polling for it.
// A previous identity's polling loop is cancelled first.
func (that *Dispatcher) Join(ctx context.Context, name string) (entity.Identity, error) {
	log := that.logger.With("method", "Join")

	name = strings.TrimSpace(name)
	if name == "" {
		return entity.Identity{}, &apperror.JoinError{Name: name, Err: apperror.ErrEmptyName}
	}

	playerID, err := that.api.Join(ctx, name)
	if err != nil {
		log.Warn("join refused", "name", name, "error", err)
		return entity.Identity{}, &apperror.JoinError{Name: name, Err: err}
	}

	identity := entity.Identity{Server: that.server, PlayerID: playerID, Name: name}

	if current, ok := that.store.Identity(); ok && current.PlayerID != playerID {
		that.poller.Stop()
		that.store.Clear()
	}
	that.store.SetIdentity(identity)
	that.poller.Start(ctx, playerID)

	if err = that.identities.Save(ctx, identity); err != nil {
		log.Warn("failed to remember identity", "error", err)
	}

	log.Info("joined", "player_id", playerID, "name", name)
	return identity, nil
}

// Resume re-joins with the identity remembered for this server.
func (that *Dispatcher) Resume(ctx context.Context) (entity.Identity, error) {
	remembered, err := that.identities.Get(ctx, that.server)
	if err != nil {
		return entity.Identity{}, fmt.Errorf("failed to get remembered identity: %w", err)
	}

	return that.Join(ctx, remembered.Name)
}

// Remembered returns the identity stored for this server, if any.
func (that *Dispatcher) Remembered(ctx context.Context) (entity.Identity, bool) {
	identity, err := that.identities.Get(ctx, that.server)
	if err != nil {
		if !errors.Is(err, repository.ErrIdentityNotFound) {
			that.logger.Warn("failed to read remembered identity", "error", err)
		}
		return entity.Identity{}, false
	}
	return identity, true
}

// Control sends a session level action. A refresh always follows, success or not; nothing is
// changed locally before the server confirms. A successful reset leaves the session.
func (that *Dispatcher) Control(ctx context.Context, action entity.ControlAction, payload map[string]any) error {
	log := that.logger.With("method", "Control", "action", action)

	if !action.Valid() {
		return &apperror.DispatchError{Op: OpControl, Action: string(action), Err: apperror.ErrUnknownAction}
	}

	err := that.api.Control(ctx, action, payload)
	that.poller.RefreshNow()
	if err != nil {
		log.Error("control failed", "error", err)
		return &apperror.DispatchError{Op: OpControl, Action: string(action), Err: err}
	}

	if action == entity.ActionReset {
		that.Leave(ctx)
	}

	return nil
}

// GameAction sends a per-game verb and returns the server's direct reply. The refresh it
// triggers may land before or after the reply is seen.
func (that *Dispatcher) GameAction(ctx context.Context, action string, payload map[string]any) (entity.ActionResult, error) {
	log := that.logger.With("method", "GameAction", "action", action)

	identity, ok := that.store.Identity()
	if !ok {
		return entity.ActionResult{}, &apperror.DispatchError{Op: OpGameAction, Action: action, Err: apperror.ErrNotJoined}
	}

	result, err := that.api.GameAction(ctx, identity.PlayerID, action, payload)
	that.poller.RefreshNow()
	if err != nil {
		log.Error("game action failed", "error", err)
		return entity.ActionResult{}, &apperror.DispatchError{Op: OpGameAction, Action: action, Err: err}
	}
	if result.Error != "" {
		log.Error("game action rejected", "reason", result.Error)
		return result, &apperror.DispatchError{Op: OpGameAction, Action: action, Err: errors.New(result.Error)}
	}

	return result, nil
}

// SubmitQuiz requires one answer per question of the current quiz. On dispatch the player is
// marked finished locally before the server confirms; a failure does not undo that mark.
func (that *Dispatcher) SubmitQuiz(ctx context.Context, answers map[int]string) error {
	log := that.logger.With("method", "SubmitQuiz")

	identity, ok := that.store.Identity()
	if !ok {
		return &apperror.DispatchError{Op: OpSubmitQuiz, Err: apperror.ErrNotJoined}
	}

	questions := that.store.View().Questions()
	if len(questions) == 0 {
		return &apperror.DispatchError{Op: OpSubmitQuiz, Err: apperror.ErrNotAllowed}
	}

	var missing []int
	complete := make(map[int]string, len(questions))
	for _, q := range questions {
		answer, ok := answers[q.ID]
		if !ok || answer == "" {
			missing = append(missing, q.ID)
			continue
		}
		complete[q.ID] = answer
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		log.Debug("quiz incomplete", "missing", missing)
		return &apperror.ValidationError{Missing: missing}
	}

	finished := true
	that.store.PatchLocal(session.Patch{HasFinishedQuiz: &finished})

	err := that.api.SubmitQuiz(ctx, identity.PlayerID, complete)
	that.poller.RefreshNow()
	if err != nil {
		log.Error("quiz submission failed", "error", err)
		return &apperror.DispatchError{Op: OpSubmitQuiz, Err: err}
	}

	return nil
}

// Leave stops polling, forgets the identity and returns the client to the pre-join state.
func (that *Dispatcher) Leave(ctx context.Context) {
	log := that.logger.With("method", "Leave")

	that.poller.Stop()
	that.store.Clear()

	if err := that.identities.Delete(ctx, that.server); err != nil {
		log.Warn("failed to forget identity", "error", err)
	}

	log.Info("left session")
}
