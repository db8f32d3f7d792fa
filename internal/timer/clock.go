package timer

import (
	"sort"
	"sync"
	"time"
)

// Clock abstracts wall time and delayed callbacks so the registry and
// engine can be tested deterministically.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Handle
}

// Handle is a cancellable pending callback.
type Handle interface {
	// Stop cancels the callback. Reports whether it was still pending.
	Stop() bool
}

// RealClock returns a Clock backed by the time package.
func RealClock() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Handle {
	return time.AfterFunc(d, f)
}

// FakeClock is a manually advanced Clock for tests. Callbacks fire
// synchronously inside Advance, in deadline order.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	pending []*fakeHandle
}

// NewFakeClock creates a fake clock starting at the given instant.
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the fake current time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc registers f to fire once the clock has been advanced past d.
func (c *FakeClock) AfterFunc(d time.Duration, f func()) Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := &fakeHandle{deadline: c.now.Add(d), f: f}
	c.pending = append(c.pending, h)
	return h
}

// Advance moves the clock forward and fires every due callback.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeHandle
	var rest []*fakeHandle
	for _, h := range c.pending {
		h.mu.Lock()
		expired := !h.stopped && !h.deadline.After(c.now)
		if expired {
			h.stopped = true
		}
		h.mu.Unlock()
		if expired {
			due = append(due, h)
		} else {
			rest = append(rest, h)
		}
	}
	c.pending = rest
	sort.SliceStable(due, func(i, j int) bool { return due[i].deadline.Before(due[j].deadline) })
	c.mu.Unlock()

	// Fire outside the clock lock so callbacks can schedule again.
	for _, h := range due {
		h.f()
	}
}

type fakeHandle struct {
	mu       sync.Mutex
	deadline time.Time
	f        func()
	stopped  bool
}

func (h *fakeHandle) Stop() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return false
	}
	h.stopped = true
	return true
}
