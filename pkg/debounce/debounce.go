// Package debounce coalesces bursts of triggers into a single delayed call.
//
// A Debouncer holds at most one pending timer. Every Schedule cancels the
// previous one before arming a new one, so only the last call of a burst
// runs once the burst has been quiet for the given delay.
//
// Example usage:
//
//	d := debounce.New(nil)
//	defer d.Stop()
//
//	for _, key := range keystrokes {
//	    term = term + key
//	    d.Schedule(func() { search(term) }, 300*time.Millisecond)
//	}
package debounce

import (
	"sync"
	"time"
)

// Debouncer is safe for concurrent use.
type Debouncer struct {
	clock Clock

	mu      sync.Mutex
	timer   Stopper
	gen     uint64
	stopped bool
}

// New creates a Debouncer. A nil clock means RealClock.
func New(clock Clock) *Debouncer {
	if clock == nil {
		clock = RealClock{}
	}
	return &Debouncer{clock: clock}
}

// Schedule arms fn to run after delay, cancelling any call not yet fired.
//
// Returns false, without scheduling, once Stop has been called.
func (d *Debouncer) Schedule(fn func(), delay time.Duration) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return false
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen

	d.timer = d.clock.AfterFunc(delay, func() {
		d.mu.Lock()
		// A timer that lost the race with Stop() can still fire.
		if d.stopped || d.gen != gen {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.mu.Unlock()

		fn()
	})
	return true
}

// Cancel drops the pending call, if any. Returns true if one was dropped.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.cancelLocked()
}

func (d *Debouncer) cancelLocked() bool {
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	d.gen++
	return true
}

// Pending reports whether a call is scheduled and has not fired yet.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.timer != nil
}

// Stop cancels the pending call and refuses every later Schedule.
// It is safe to call more than once.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cancelLocked()
	d.stopped = true
}
