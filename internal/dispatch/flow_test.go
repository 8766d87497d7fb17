package dispatch_test

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/whoisthemole/internal/apperror"
	"github.com/rocketscienceinc/whoisthemole/internal/dispatch"
	"github.com/rocketscienceinc/whoisthemole/internal/entity"
	"github.com/rocketscienceinc/whoisthemole/internal/poller"
	"github.com/rocketscienceinc/whoisthemole/internal/repository"
	"github.com/rocketscienceinc/whoisthemole/internal/session"
	"github.com/rocketscienceinc/whoisthemole/internal/transport/rest"
	"github.com/rocketscienceinc/whoisthemole/testing/fakeserver"
)

type client struct {
	store      *session.Store
	poller     *poller.Poller
	dispatcher *dispatch.Dispatcher
	orphaned   atomic.Bool
}

func newClient(t *testing.T, baseURL string) *client {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	api, err := rest.NewClient(logger, baseURL, time.Second)
	require.NoError(t, err)

	c := &client{store: session.NewStore(logger)}
	c.poller = poller.New(logger, api, c.store, 10*time.Millisecond,
		func(tr session.Transition) {
			if tr.Orphaned {
				c.orphaned.Store(true)
			}
		},
		func(*apperror.PollError) {},
	)
	c.dispatcher = dispatch.New(logger, api, c.store, c.poller, repository.NewMemoryIdentityRepository(), api.BaseURL())
	t.Cleanup(c.poller.Stop)

	return c
}

func (c *client) phase() entity.Phase {
	if view := c.store.View(); view != nil {
		return view.Phase
	}
	return ""
}

func (c *client) isMole() bool {
	view := c.store.View()
	return view != nil && view.Me != nil && bool(view.Me.IsMole)
}

func TestFlow_TwoPlayersReachReveal(t *testing.T) {
	server := httptest.NewServer(fakeserver.New(fakeserver.WithSeed(7)).Handler())
	defer server.Close()

	ctx := context.Background()
	alice := newClient(t, server.URL)
	bob := newClient(t, server.URL)

	// Given: two players joined the lobby
	aliceID, err := alice.dispatcher.Join(ctx, "Alice")
	require.NoError(t, err)
	_, err = bob.dispatcher.Join(ctx, "  Bob ")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		view := alice.store.View()
		return view != nil && view.Phase == entity.PhaseLobby && len(view.Players) == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.True(t, alice.store.View().IsVIP())

	// When: the VIP starts the game
	require.NoError(t, alice.dispatcher.Control(ctx, entity.ActionStartGame, nil))

	// Then: both clients converge on REVEAL with exactly one mole between them
	require.Eventually(t, func() bool {
		return alice.phase() == entity.PhaseReveal && bob.phase() == entity.PhaseReveal
	}, 2*time.Second, 10*time.Millisecond)

	moles := 0
	for _, c := range []*client{alice, bob} {
		if c.isMole() {
			moles++
		}
	}
	assert.Equal(t, 1, moles)

	// And: joining again with the same name keeps the identity
	again, err := alice.dispatcher.Join(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, aliceID.PlayerID, again.PlayerID)
}

func TestFlow_ResetOrphansOtherClients(t *testing.T) {
	server := httptest.NewServer(fakeserver.New().Handler())
	defer server.Close()

	ctx := context.Background()
	alice := newClient(t, server.URL)
	bob := newClient(t, server.URL)

	_, err := alice.dispatcher.Join(ctx, "Alice")
	require.NoError(t, err)
	_, err = bob.dispatcher.Join(ctx, "Bob")
	require.NoError(t, err)

	// When: the VIP resets the session
	require.NoError(t, alice.dispatcher.Control(ctx, entity.ActionReset, nil))

	// Then: the VIP's client left, the other one notices it was forgotten
	_, joined := alice.store.Identity()
	assert.False(t, joined)
	_, active := alice.poller.Active()
	assert.False(t, active)

	require.Eventually(t, bob.orphaned.Load, 2*time.Second, 10*time.Millisecond)

	bob.dispatcher.Leave(ctx)
	_, joined = bob.store.Identity()
	assert.False(t, joined)
}

func TestFlow_StartGameNeedsTwoPlayers(t *testing.T) {
	server := httptest.NewServer(fakeserver.New().Handler())
	defer server.Close()

	ctx := context.Background()
	alice := newClient(t, server.URL)

	_, err := alice.dispatcher.Join(ctx, "Alice")
	require.NoError(t, err)

	// When: the VIP starts alone
	err = alice.dispatcher.Control(ctx, entity.ActionStartGame, nil)

	// Then: the server refuses and the phase stays LOBBY
	var dispatchErr *apperror.DispatchError
	require.ErrorAs(t, err, &dispatchErr)

	var statusErr *rest.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, 400, statusErr.Code)

	require.Eventually(t, func() bool { return alice.phase() == entity.PhaseLobby }, 2*time.Second, 10*time.Millisecond)
}
