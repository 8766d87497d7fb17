package timersync

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/whoisthemole/internal/entity"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestRemaining(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	assert.Equal(t, 8, Remaining(1_700_000_007.4, now))
	assert.Equal(t, 1, Remaining(1_700_000_000.2, now))
	assert.Equal(t, 0, Remaining(1_700_000_000, now))
	assert.Equal(t, 0, Remaining(1_699_999_990, now))
}

func TestStep_CountsDownAndFiresOnce(t *testing.T) {
	// Given: a deadline 7.4 seconds away
	base := time.Unix(1_700_000_000, 0)

	var seen []int
	var fired int
	s := New(newLogger(), 500*time.Millisecond, func(left int) { seen = append(seen, left) }, func() { fired++ })
	s.timerEnd = 1_700_000_007.4

	// When: the clock advances in half-second ticks well past the deadline
	var expiredAt int
	for k := 0; k <= 24; k++ {
		if s.step(base.Add(time.Duration(k) * 500 * time.Millisecond)) && expiredAt == 0 {
			expiredAt = k
		}
	}

	// Then: every second is displayed once, non-increasing, ending at exactly one zero
	assert.Equal(t, []int{8, 7, 6, 5, 4, 3, 2, 1, 0}, seen)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 15, expiredAt)
}

func TestStep_NeverIncreases(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)

	var seen []int
	s := New(newLogger(), time.Second, func(left int) { seen = append(seen, left) }, nil)
	s.timerEnd = 1_700_000_005

	s.step(base.Add(2 * time.Second))
	// local clock jumps backwards
	s.step(base)

	assert.Equal(t, []int{3}, seen)
	left, ok := s.Left()
	require.True(t, ok)
	assert.Equal(t, 3, left)
}

func TestObserve_LoopLifecycle(t *testing.T) {
	// Given: a synchronizer on a fast cadence
	var fired atomic.Int32
	expired := make(chan struct{}, 4)
	s := New(newLogger(), 5*time.Millisecond, nil, func() {
		fired.Add(1)
		expired <- struct{}{}
	})

	// When: a deadline 50ms ahead is observed
	end := float64(time.Now().Add(50*time.Millisecond).UnixNano()) / float64(time.Second)
	s.Observe(entity.PhaseGameRunning, end)
	require.True(t, s.Running())

	// Then: it fires once and the loop stops on its own
	select {
	case <-expired:
	case <-time.After(2 * time.Second):
		t.Fatal("timer never expired")
	}
	require.Eventually(t, func() bool { return !s.Running() }, time.Second, 5*time.Millisecond)

	// When: the same deadline is observed again
	s.Observe(entity.PhaseGameRunning, end)

	// Then: it is not restarted and does not fire twice
	assert.False(t, s.Running())
	assert.Equal(t, int32(1), fired.Load())
}

func TestObserve_NewDeadlineRestartsAndPhaseChangeStops(t *testing.T) {
	var mu sync.Mutex
	var seen []int
	s := New(newLogger(), 5*time.Millisecond, func(left int) {
		mu.Lock()
		seen = append(seen, left)
		mu.Unlock()
	}, nil)

	far := float64(time.Now().Add(time.Hour).UnixNano()) / float64(time.Second)
	s.Observe(entity.PhaseGameRunning, far)
	require.True(t, s.Running())

	// When: the VIP shortens the round
	nearer := far - 1800
	s.Observe(entity.PhaseGameRunning, nearer)
	require.True(t, s.Running())

	// Then: the new countdown starts fresh even though the value jumped down
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) >= 2
	}, time.Second, 5*time.Millisecond)

	// When: the phase leaves GAME_RUNNING
	s.Observe(entity.PhaseScoring, nearer)

	// Then: the loop is gone
	assert.False(t, s.Running())
	s.Stop()
}
