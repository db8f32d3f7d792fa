// Package timer implements the countdown registry for cooking sessions.
// The registry owns at most one live countdown (or one paused snapshot)
// per session and publishes expiries on an event channel instead of
// calling back into the engine directly.
package timer

import (
	"sync"
	"time"

	"github.com/platekit/cooksession/internal/logger"
)

// Expiry is published when a step countdown elapses naturally.
type Expiry struct {
	SessionID string
	StepIndex int
}

// Snapshot captures the remaining time of a countdown at the moment it
// was paused. It is consumed exactly once, on resume.
type Snapshot struct {
	StepIndex int
	PausedAt  time.Time
	Remaining time.Duration
}

type activeTimer struct {
	stepIndex int
	startedAt time.Time
	duration  time.Duration
	handle    Handle
}

// Option configures the registry.
type Option func(*Registry)

// WithEventBuffer sets the expiry channel capacity.
func WithEventBuffer(n int) Option {
	return func(r *Registry) {
		r.expired = make(chan Expiry, n)
	}
}

// Registry tracks per-session countdowns. A session has an active timer
// or a paused snapshot or neither, never both. All methods are safe for
// concurrent use.
type Registry struct {
	clock Clock
	log   *logger.Logger

	mu      sync.Mutex
	active  map[string]*activeTimer
	paused  map[string]*Snapshot
	expired chan Expiry
}

// New creates a registry using the given clock.
func New(clock Clock, log *logger.Logger, opts ...Option) *Registry {
	r := &Registry{
		clock:   clock,
		log:     log,
		active:  make(map[string]*activeTimer),
		paused:  make(map[string]*Snapshot),
		expired: make(chan Expiry, 64),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Expired returns the channel on which natural countdown expiries are
// published. The engine consumes it in its run loop.
func (r *Registry) Expired() <-chan Expiry {
	return r.expired
}

// Schedule arms a one-shot countdown for the session's step, replacing
// any existing timer or snapshot. A non-positive duration is a no-op.
func (r *Registry) Schedule(sessionID string, stepIndex int, d time.Duration) {
	if d <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.dropLocked(sessionID)
	t := &activeTimer{
		stepIndex: stepIndex,
		startedAt: r.clock.Now(),
		duration:  d,
	}
	t.handle = r.clock.AfterFunc(d, func() { r.fire(sessionID, stepIndex) })
	r.active[sessionID] = t
	r.log.Debug("timer: scheduled %s for session %s step %d", d, sessionID, stepIndex)
}

// Cancel removes the session's timer and snapshot, stopping any pending
// callback. Safe to call when nothing is registered.
func (r *Registry) Cancel(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropLocked(sessionID)
}

// Pause stops the session's running countdown and stores a snapshot of
// the remaining time. Reports false when no countdown was running.
func (r *Registry) Pause(sessionID string) (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.active[sessionID]
	if !ok {
		return 0, false
	}
	t.handle.Stop()
	delete(r.active, sessionID)

	now := r.clock.Now()
	remaining := t.duration - now.Sub(t.startedAt)
	if remaining < 0 {
		remaining = 0
	}
	r.paused[sessionID] = &Snapshot{
		StepIndex: t.stepIndex,
		PausedAt:  now,
		Remaining: remaining,
	}
	r.log.Debug("timer: paused session %s with %s remaining", sessionID, remaining)
	return remaining, true
}

// TakeSnapshot removes and returns the session's paused snapshot.
func (r *Registry) TakeSnapshot(sessionID string) (Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap, ok := r.paused[sessionID]
	if !ok {
		return Snapshot{}, false
	}
	delete(r.paused, sessionID)
	return *snap, true
}

// SeedSnapshot installs a paused snapshot directly, replacing any
// existing timer. Boot recovery uses it for sessions whose in-memory
// countdowns were lost in a previous process.
func (r *Registry) SeedSnapshot(sessionID string, stepIndex int, pausedAt time.Time, remaining time.Duration) {
	if remaining <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.dropLocked(sessionID)
	r.paused[sessionID] = &Snapshot{
		StepIndex: stepIndex,
		PausedAt:  pausedAt,
		Remaining: remaining,
	}
}

// Remaining returns how much of the session's running countdown is left.
func (r *Registry) Remaining(sessionID string) (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.active[sessionID]
	if !ok {
		return 0, false
	}
	remaining := t.duration - r.clock.Now().Sub(t.startedAt)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// HasTimer reports whether the session has a live countdown.
func (r *Registry) HasTimer(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[sessionID]
	return ok
}

// HasSnapshot reports whether the session has a paused snapshot.
func (r *Registry) HasSnapshot(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.paused[sessionID]
	return ok
}

// CancelAll stops every pending callback and clears both maps. Called on
// process shutdown so no scheduled work leaks.
func (r *Registry) CancelAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, t := range r.active {
		t.handle.Stop()
		delete(r.active, id)
	}
	for id := range r.paused {
		delete(r.paused, id)
	}
	r.log.Info("timer: cancelled all countdowns")
}

// fire runs in the clock's callback goroutine when a countdown elapses.
func (r *Registry) fire(sessionID string, stepIndex int) {
	r.mu.Lock()
	t, ok := r.active[sessionID]
	if !ok || t.stepIndex != stepIndex {
		// Cancelled or replaced between expiry and acquiring the lock.
		r.mu.Unlock()
		return
	}
	delete(r.active, sessionID)
	r.mu.Unlock()

	select {
	case r.expired <- Expiry{SessionID: sessionID, StepIndex: stepIndex}:
	default:
		r.log.Warn("timer: expiry channel full, dropping event for session %s step %d", sessionID, stepIndex)
	}
}

// dropLocked removes both registry entries for a session. Caller holds mu.
func (r *Registry) dropLocked(sessionID string) {
	if t, ok := r.active[sessionID]; ok {
		t.handle.Stop()
		delete(r.active, sessionID)
	}
	delete(r.paused, sessionID)
}
