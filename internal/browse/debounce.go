package browse

import (
	"sync"
	"time"
)

// Timer is a pending callback that can be cancelled.
type Timer interface {
	// Stop prevents the callback from running. It reports false when the
	// callback already ran or is running.
	Stop() bool
}

// Clock schedules callbacks. Tests substitute a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock returns the wall clock.
func RealClock() Clock {
	return realClock{}
}

// Debouncer runs the last triggered callback once input has been quiet for
// the configured delay. At most one timer is pending at a time.
type Debouncer struct {
	clock Clock
	delay time.Duration

	mu    sync.Mutex
	timer Timer
	gen   uint64
	wg    sync.WaitGroup
}

// NewDebouncer creates a trailing-edge debouncer. A nil clock uses RealClock.
func NewDebouncer(delay time.Duration, clock Clock) *Debouncer {
	if clock == nil {
		clock = RealClock()
	}
	return &Debouncer{clock: clock, delay: delay}
}

// Delay returns the quiet period.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Trigger cancels any pending callback and schedules fn after the delay.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cancelLocked()
	d.gen++
	gen := d.gen

	d.wg.Add(1)
	d.timer = d.clock.AfterFunc(d.delay, func() {
		defer d.wg.Done()

		d.mu.Lock()
		// A Trigger or Stop that lost the race with this timer bumped gen
		current := gen == d.gen
		if current {
			d.timer = nil
		}
		d.mu.Unlock()

		if current {
			fn()
		}
	})
}

// Stop cancels the pending callback, if any. It reports whether one was pending.
func (d *Debouncer) Stop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	pending := d.timer != nil
	d.cancelLocked()
	d.gen++
	return pending
}

// Pending reports whether a callback is scheduled and has not started.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Wait blocks until no callback is scheduled or running.
func (d *Debouncer) Wait() {
	d.wg.Wait()
}

func (d *Debouncer) cancelLocked() {
	if d.timer == nil {
		return
	}
	if d.timer.Stop() {
		// The callback will never run, so it cannot release its slot
		d.wg.Done()
	}
	d.timer = nil
}
