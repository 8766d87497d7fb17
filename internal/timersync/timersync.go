// Package timersync turns the server's absolute round deadline into a whole-second countdown.
package timersync

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/rocketscienceinc/whoisthemole/internal/entity"
)

// Remaining returns max(0, ceil(timerEnd - now)) in seconds.
func Remaining(timerEnd float64, now time.Time) int {
	left := math.Ceil(timerEnd - float64(now.UnixNano())/float64(time.Second))
	if left <= 0 {
		return 0
	}
	return int(left)
}

type Option func(*Synchronizer)

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Synchronizer) { s.now = now }
}

// Synchronizer runs one countdown loop per observed deadline. onChange receives every new
// display value; onExpire fires exactly once per deadline, after which the loop stops.
type Synchronizer struct {
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
	onChange func(left int)
	onExpire func()

	// ctl serializes Observe and Stop so two loops never run at once.
	ctl sync.Mutex

	mu       sync.Mutex
	timerEnd float64
	left     int
	known    bool
	fired    bool
	cancel   context.CancelFunc
	done     chan struct{}
}

func New(logger *slog.Logger, interval time.Duration, onChange func(int), onExpire func(), opts ...Option) *Synchronizer {
	s := &Synchronizer{
		logger:   logger.With("component", "timersync"),
		interval: interval,
		now:      time.Now,
		onChange: onChange,
		onExpire: onExpire,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Observe starts a new countdown when a different deadline shows up during GAME_RUNNING
// and stops the countdown in any other phase.
func (that *Synchronizer) Observe(phase entity.Phase, timerEnd float64) {
	log := that.logger.With("method", "Observe")

	that.ctl.Lock()
	defer that.ctl.Unlock()

	if phase != entity.PhaseGameRunning || timerEnd <= 0 {
		that.stop()
		that.mu.Lock()
		that.timerEnd = 0
		that.mu.Unlock()
		return
	}

	that.mu.Lock()
	same := that.timerEnd == timerEnd
	that.mu.Unlock()
	if same {
		return
	}

	that.stop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	that.mu.Lock()
	that.timerEnd = timerEnd
	that.left, that.known, that.fired = 0, false, false
	that.cancel, that.done = cancel, done
	that.mu.Unlock()

	log.Debug("countdown started", "timer_end", timerEnd)
	go that.loop(ctx, done)
}

// Stop cancels the running loop and waits for it to exit.
func (that *Synchronizer) Stop() {
	that.ctl.Lock()
	defer that.ctl.Unlock()

	that.stop()
}

// Running reports whether a countdown loop is active.
func (that *Synchronizer) Running() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.done != nil
}

// Left returns the last displayed value; ok is false before the first tick.
func (that *Synchronizer) Left() (left int, ok bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.left, that.known
}

func (that *Synchronizer) stop() {
	that.mu.Lock()
	cancel, done := that.cancel, that.done
	that.cancel, that.done = nil, nil
	that.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (that *Synchronizer) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(that.interval)
	defer ticker.Stop()

	if that.step(that.now()) {
		that.finish(done)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if that.step(that.now()) {
				that.finish(done)
				return
			}
		}
	}
}

// finish forgets the loop handle after the countdown reached zero on its own.
func (that *Synchronizer) finish(done chan struct{}) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.done == done {
		that.cancel()
		that.cancel, that.done = nil, nil
	}
}

// step recomputes the display value at now. It reports true once the countdown expired.
func (that *Synchronizer) step(now time.Time) bool {
	that.mu.Lock()
	left := Remaining(that.timerEnd, now)
	if that.known && left > that.left {
		left = that.left
	}
	changed := !that.known || left != that.left
	that.left, that.known = left, true

	expired := left == 0 && !that.fired
	if expired {
		that.fired = true
	}
	that.mu.Unlock()

	if changed && that.onChange != nil {
		that.onChange(left)
	}
	if expired {
		that.logger.Info("round timer expired")
		if that.onExpire != nil {
			that.onExpire()
		}
	}
	return left == 0
}
