// Package poller keeps the session store in step with the server by fetching the full
// snapshot at a fixed cadence.
package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/whoisthemole/internal/apperror"
	"github.com/rocketscienceinc/whoisthemole/internal/entity"
	"github.com/rocketscienceinc/whoisthemole/internal/session"
)

type fetcher interface {
	State(ctx context.Context, playerID int64) (*entity.Snapshot, error)
}

type store interface {
	Replace(snap *entity.Snapshot) session.Transition
}

// Poller owns at most one polling loop, scoped to one player identity.
type Poller struct {
	logger   *slog.Logger
	fetcher  fetcher
	store    store
	interval time.Duration

	onUpdate func(session.Transition)
	onError  func(*apperror.PollError)

	refresh chan struct{}

	// ctl serializes Start and Stop.
	ctl sync.Mutex

	mu       sync.Mutex
	playerID int64
	cancel   context.CancelFunc
	done     chan struct{}
}

func New(
	logger *slog.Logger,
	fetcher fetcher,
	store store,
	interval time.Duration,
	onUpdate func(session.Transition),
	onError func(*apperror.PollError),
) *Poller {
	return &Poller{
		logger:   logger.With("component", "poller"),
		fetcher:  fetcher,
		store:    store,
		interval: interval,
		onUpdate: onUpdate,
		onError:  onError,
		refresh:  make(chan struct{}, 1),
	}
}

// Start cancels any running loop, waits for it to exit and starts polling for playerID.
// The first fetch happens immediately.
func (that *Poller) Start(ctx context.Context, playerID int64) {
	log := that.logger.With("method", "Start")

	that.ctl.Lock()
	defer that.ctl.Unlock()

	that.stop()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	that.mu.Lock()
	that.playerID = playerID
	that.cancel, that.done = cancel, done
	that.mu.Unlock()

	log.Info("polling started", "player_id", playerID)
	go that.loop(ctx, playerID, done)
}

// Stop cancels the running loop, if any, and waits for it to exit.
func (that *Poller) Stop() {
	that.ctl.Lock()
	defer that.ctl.Unlock()

	that.stop()
}

// Active returns the player the loop polls for.
func (that *Poller) Active() (int64, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.playerID, that.done != nil
}

// RefreshNow asks the running loop for an out-of-band fetch without waiting for it.
func (that *Poller) RefreshNow() {
	select {
	case that.refresh <- struct{}{}:
	default:
	}
}

func (that *Poller) stop() {
	that.mu.Lock()
	cancel, done, playerID := that.cancel, that.done, that.playerID
	that.cancel, that.done, that.playerID = nil, nil, 0
	that.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	that.logger.Info("polling stopped", "player_id", playerID)
}

func (that *Poller) loop(ctx context.Context, playerID int64, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(that.interval)
	defer ticker.Stop()

	that.poll(ctx, playerID)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			that.poll(ctx, playerID)
		case <-that.refresh:
			that.poll(ctx, playerID)
		}
	}
}

func (that *Poller) poll(ctx context.Context, playerID int64) {
	log := that.logger.With("method", "poll", "player_id", playerID)

	snap, err := that.fetcher.State(ctx, playerID)
	if ctx.Err() != nil {
		// A late reply for a cancelled identity must not reach the store.
		return
	}
	if err != nil {
		pollErr := &apperror.PollError{PlayerID: playerID, Err: err}
		log.Warn("failed to fetch state, keeping last snapshot", "error", err)
		if that.onError != nil {
			that.onError(pollErr)
		}
		return
	}

	tr := that.store.Replace(snap)
	if tr.Changed() {
		log.Info("phase changed", "from", tr.From, "to", tr.To)
	}
	if that.onUpdate != nil {
		that.onUpdate(tr)
	}
}
