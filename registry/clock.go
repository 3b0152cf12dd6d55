package registry

import (
	"sort"
	"sync"
	"time"
)

// Clock abstracts wall time and one-shot timer scheduling so that expiry
// behavior is testable without real sleeps.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a one-shot scheduled callback. Stop reports whether the callback
// was prevented from running.
type Timer interface {
	Stop() bool
}

type realClock struct{}

type realTimer struct {
	t *time.Timer
}

// RealClock returns a Clock backed by the system clock and [time.AfterFunc].
func RealClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return realTimer{t: time.AfterFunc(d, f)}
}

func (rt realTimer) Stop() bool {
	return rt.t.Stop()
}

// ManualClock is a Clock whose time only moves when Advance is called.
// Intended for tests; callbacks fire synchronously inside Advance, in
// deadline order, without the clock lock held.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	clock    *ManualClock
	deadline time.Time
	f        func()
	stopped  bool
	fired    bool
}

// NewManualClock creates a ManualClock starting at the given instant.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the manual clock's current instant.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc schedules f to run once the clock has advanced d past now.
func (c *ManualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &manualTimer{
		clock:    c,
		deadline: c.now.Add(d),
		f:        f,
	}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward by d, firing every pending callback whose
// deadline falls within the window. Callbacks run on the calling goroutine.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)

	for {
		next := c.nextDueLocked(target)
		if next == nil {
			break
		}
		if next.deadline.After(c.now) {
			c.now = next.deadline
		}
		next.fired = true
		f := next.f

		// Fire without the clock lock so the callback may schedule or stop
		// timers on this clock.
		c.mu.Unlock()
		f()
		c.mu.Lock()
	}

	c.now = target
	c.mu.Unlock()
}

func (c *ManualClock) nextDueLocked(target time.Time) *manualTimer {
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.deadline.After(target) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool { return due[i].deadline.Before(due[j].deadline) })
	return due[0]
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}
