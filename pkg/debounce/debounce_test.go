package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestSchedule_BurstRunsLastCallOnce(t *testing.T) {
	clock := NewManualClock(epoch)
	d := New(clock)

	var calls []string
	for _, term := range []string{"f", "fo", "foo"} {
		term := term
		require.True(t, d.Schedule(func() { calls = append(calls, term) }, 300*time.Millisecond))
		clock.Advance(100 * time.Millisecond)
	}

	assert.Empty(t, calls, "nothing fires while keystrokes keep arriving")
	assert.True(t, d.Pending())
	assert.Equal(t, 1, clock.Pending(), "older timers are stopped, not left to fire")

	clock.Advance(200 * time.Millisecond)
	assert.Equal(t, []string{"foo"}, calls)
	assert.False(t, d.Pending())

	clock.Advance(time.Second)
	assert.Equal(t, []string{"foo"}, calls)
}

func TestCancel(t *testing.T) {
	clock := NewManualClock(epoch)
	d := New(clock)

	fired := false
	d.Schedule(func() { fired = true }, 50*time.Millisecond)

	assert.True(t, d.Cancel())
	assert.False(t, d.Cancel(), "second cancel has nothing to drop")

	clock.Advance(time.Second)
	assert.False(t, fired)
}

func TestStop_RefusesLaterSchedules(t *testing.T) {
	clock := NewManualClock(epoch)
	d := New(clock)

	fired := false
	d.Schedule(func() { fired = true }, 10*time.Millisecond)
	d.Stop()
	d.Stop()

	assert.False(t, d.Schedule(func() { fired = true }, 10*time.Millisecond))
	clock.Advance(time.Second)
	assert.False(t, fired)
	assert.False(t, d.Pending())
}

func TestSchedule_StaleCallbackIgnored(t *testing.T) {
	// A timer whose Stop lost the race still runs its closure; the
	// generation check must swallow it.
	clock := &racyClock{}
	d := New(clock)

	var first, second atomic.Bool
	d.Schedule(func() { first.Store(true) }, time.Millisecond)
	d.Schedule(func() { second.Store(true) }, time.Millisecond)

	clock.fire(0)
	assert.False(t, first.Load())

	clock.fire(1)
	assert.True(t, second.Load())
}

func TestRealClock(t *testing.T) {
	d := New(nil)
	defer d.Stop()

	var n atomic.Int32
	for i := 0; i < 5; i++ {
		d.Schedule(func() { n.Add(1) }, 20*time.Millisecond)
	}

	require.Eventually(t, func() bool { return n.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), n.Load())
}

func TestManualClock_OrderAndNow(t *testing.T) {
	clock := NewManualClock(epoch)

	var order []int
	clock.AfterFunc(30*time.Millisecond, func() { order = append(order, 3) })
	clock.AfterFunc(10*time.Millisecond, func() { order = append(order, 1) })
	stop := clock.AfterFunc(20*time.Millisecond, func() { order = append(order, 2) })

	assert.True(t, stop.Stop())
	assert.False(t, stop.Stop())

	clock.Advance(time.Minute)
	assert.Equal(t, []int{1, 3}, order)
	assert.Equal(t, epoch.Add(time.Minute), clock.Now())
	assert.Zero(t, clock.Pending())
}

// racyClock never honours Stop, like a time.Timer that already fired.
type racyClock struct {
	fns []func()
}

func (c *racyClock) AfterFunc(_ time.Duration, f func()) Stopper {
	c.fns = append(c.fns, f)
	return racyStopper{}
}

func (c *racyClock) Now() time.Time { return epoch }

func (c *racyClock) fire(i int) { c.fns[i]() }

type racyStopper struct{}

func (racyStopper) Stop() bool { return false }
