// Package engine implements the core cooking session state machine. It
// orchestrates the step catalog, session store, timer registry, and
// notification dispatcher; it is the only component that mutates
// sessions.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/platekit/cooksession/internal/domain"
	"github.com/platekit/cooksession/internal/logger"
	"github.com/platekit/cooksession/internal/notify"
	"github.com/platekit/cooksession/internal/timer"
)

// Option configures the engine.
type Option func(*Engine)

// WithClock overrides the wall clock. Tests pair this with the fake
// clock driving the timer registry.
func WithClock(clock timer.Clock) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// Engine manages cooking sessions. It depends only on interfaces plus
// the injected timer registry and is fully testable with mocks and a
// fake clock.
type Engine struct {
	steps  domain.StepSource
	store  domain.SessionStore
	timers *timer.Registry
	notify *notify.Dispatcher
	log    *logger.Logger
	clock  timer.Clock
	locks  *sessionLocks
}

// New creates a session engine with the given dependencies and options.
func New(steps domain.StepSource, store domain.SessionStore, timers *timer.Registry, dispatcher *notify.Dispatcher, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		steps:  steps,
		store:  store,
		timers: timers,
		notify: dispatcher,
		log:    log,
		clock:  timer.RealClock(),
		locks:  newSessionLocks(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run consumes timer expiry events until ctx is cancelled. Intended to
// be called as a goroutine; errors inside an expiry are logged and never
// stop the loop.
func (e *Engine) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-e.timers.Expired():
			if err := e.handleExpiry(ctx, ev); err != nil {
				e.log.Error("engine: expiry for session %s step %d: %v", ev.SessionID, ev.StepIndex, err)
			}
		}
	}
}

// Start begins a new cooking session for the user and recipe. The first
// step is announced immediately and, when timed, its countdown is armed.
func (e *Engine) Start(ctx context.Context, userID, recipeID string) (*domain.CookingSession, error) {
	steps, err := e.steps.StepsForRecipe(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("getting steps: %w", err)
	}
	if len(steps) == 0 {
		return nil, domain.ErrNoSteps
	}

	now := e.clock.Now()
	session := &domain.CookingSession{
		ID:                   uuid.NewString(),
		UserID:               userID,
		RecipeID:             recipeID,
		Status:               domain.SessionActive,
		CurrentStepIndex:     0,
		StartedAt:            now,
		CurrentStepStartedAt: now,
		UpdatedAt:            now,
	}

	if err := e.store.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	e.notify.StepStarted(ctx, session, steps[0])
	if d := steps[0].TimerDuration(); d > 0 {
		e.timers.Schedule(session.ID, 0, d)
	}

	e.log.Info("started session %s for recipe %q (user=%s, %d steps)", session.ID, recipeID, userID, len(steps))
	return session, nil
}

// Pause suspends an active session. A running countdown is stopped and
// its remaining time captured so Resume can re-arm it exactly.
func (e *Engine) Pause(ctx context.Context, sessionID string) (*domain.CookingSession, error) {
	defer e.locks.acquire(sessionID)()

	session, err := e.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if session.Status != domain.SessionActive {
		return nil, domain.ErrInvalidState
	}

	if remaining, ok := e.timers.Pause(sessionID); ok {
		e.log.Debug("session %s paused with %s left on step %d", sessionID, remaining, session.CurrentStepIndex)
	}

	now := e.clock.Now()
	session.Status = domain.SessionPaused
	session.PausedAt = &now
	session.UpdatedAt = now

	if err := e.store.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	e.log.Info("session %s paused", sessionID)
	return session, nil
}

// Resume reactivates a paused session. A paused countdown is re-armed
// for exactly its remaining time, and the pause interval is added to the
// session's total paused duration (whole seconds, floored).
func (e *Engine) Resume(ctx context.Context, sessionID string) (*domain.CookingSession, error) {
	defer e.locks.acquire(sessionID)()

	session, err := e.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if session.Status != domain.SessionPaused {
		return nil, domain.ErrInvalidState
	}

	steps, err := e.steps.StepsForRecipe(ctx, session.RecipeID)
	if err != nil {
		return nil, fmt.Errorf("getting steps: %w", err)
	}

	now := e.clock.Now()
	if session.PausedAt != nil {
		session.TotalPausedSeconds += int64(now.Sub(*session.PausedAt) / time.Second)
	}

	if snap, ok := e.timers.TakeSnapshot(sessionID); ok {
		idx := session.CurrentStepIndex
		if idx < len(steps) && steps[idx].TimerDuration() > 0 && snap.Remaining > 0 {
			e.timers.Schedule(sessionID, idx, snap.Remaining)
			e.log.Debug("session %s re-armed step %d timer for %s", sessionID, idx, snap.Remaining)
		}
	}

	session.Status = domain.SessionActive
	session.PausedAt = nil
	session.UpdatedAt = now

	if err := e.store.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	e.log.Info("session %s resumed (total paused %ds)", sessionID, session.TotalPausedSeconds)
	return session, nil
}

// Advance moves an active session to the next step, or completes it when
// the current step is the last one. Manual completion is silent; only
// the timer-driven path sends the cooking-complete notification.
func (e *Engine) Advance(ctx context.Context, sessionID string) (*domain.CookingSession, error) {
	defer e.locks.acquire(sessionID)()
	return e.advanceLocked(ctx, sessionID)
}

func (e *Engine) advanceLocked(ctx context.Context, sessionID string) (*domain.CookingSession, error) {
	session, err := e.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if session.Status != domain.SessionActive {
		return nil, domain.ErrInvalidState
	}

	steps, err := e.steps.StepsForRecipe(ctx, session.RecipeID)
	if err != nil {
		return nil, fmt.Errorf("getting steps: %w", err)
	}

	// Drop any countdown for the step being left behind before arming a
	// new one, so a stale callback can never fire.
	e.timers.Cancel(sessionID)

	now := e.clock.Now()
	next := session.CurrentStepIndex + 1
	if next >= len(steps) {
		session.Status = domain.SessionCompleted
		session.CompletedAt = &now
		session.UpdatedAt = now
		if err := e.store.Update(ctx, session); err != nil {
			return nil, fmt.Errorf("saving session: %w", err)
		}
		e.log.Info("session %s completed", sessionID)
		return session, nil
	}

	session.CurrentStepIndex = next
	session.CurrentStepStartedAt = now
	session.UpdatedAt = now
	if err := e.store.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	e.notify.StepStarted(ctx, session, steps[next])
	if d := steps[next].TimerDuration(); d > 0 {
		e.timers.Schedule(sessionID, next, d)
	}

	e.log.Debug("session %s advanced to step %d/%d", sessionID, next+1, len(steps))
	return session, nil
}

// Cancel terminates a session and drops any timer state. Safe to call on
// any status; cancelling a terminal session is a no-op.
func (e *Engine) Cancel(ctx context.Context, sessionID string) (*domain.CookingSession, error) {
	defer e.locks.acquire(sessionID)()

	session, err := e.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	e.timers.Cancel(sessionID)

	if session.Status.Terminal() {
		return session, nil
	}

	now := e.clock.Now()
	session.Status = domain.SessionCancelled
	session.CompletedAt = &now
	session.UpdatedAt = now

	if err := e.store.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	e.log.Info("session %s cancelled", sessionID)
	return session, nil
}

// Get returns the session's current state.
func (e *Engine) Get(ctx context.Context, sessionID string) (*domain.CookingSession, error) {
	return e.store.Get(ctx, sessionID)
}

// handleExpiry reacts to a natural countdown expiry: announce the
// finished step, then auto-advance or complete the session. Stale events
// for sessions that moved on are ignored.
func (e *Engine) handleExpiry(ctx context.Context, ev timer.Expiry) error {
	defer e.locks.acquire(ev.SessionID)()

	session, err := e.store.Get(ctx, ev.SessionID)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	if session.Status != domain.SessionActive || session.CurrentStepIndex != ev.StepIndex {
		e.log.Debug("ignoring stale expiry for session %s step %d (status=%s, step=%d)",
			ev.SessionID, ev.StepIndex, session.Status, session.CurrentStepIndex)
		return nil
	}

	steps, err := e.steps.StepsForRecipe(ctx, session.RecipeID)
	if err != nil {
		return fmt.Errorf("getting steps: %w", err)
	}
	if ev.StepIndex >= len(steps) {
		return fmt.Errorf("expiry step %d out of range (%d steps)", ev.StepIndex, len(steps))
	}

	e.notify.StepCompleted(ctx, session, steps[ev.StepIndex])

	now := e.clock.Now()
	next := ev.StepIndex + 1
	if next >= len(steps) {
		session.Status = domain.SessionCompleted
		session.CompletedAt = &now
		session.UpdatedAt = now
		if err := e.store.Update(ctx, session); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}
		e.notify.CookingComplete(ctx, session)
		e.log.Info("session %s completed by timer", session.ID)
		return nil
	}

	session.CurrentStepIndex = next
	session.CurrentStepStartedAt = now
	session.UpdatedAt = now
	if err := e.store.Update(ctx, session); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	e.notify.StepStarted(ctx, session, steps[next])
	if d := steps[next].TimerDuration(); d > 0 {
		e.timers.Schedule(session.ID, next, d)
	}

	e.log.Debug("session %s auto-advanced to step %d/%d", session.ID, next+1, len(steps))
	return nil
}

// Recover reconciles sessions left running by a previous process. The
// in-memory registry is gone, so every recovered session is parked in
// paused with the countdown's remaining time recomputed from persisted
// step timestamps; the user resumes when ready.
func (e *Engine) Recover(ctx context.Context) error {
	sessions, err := e.store.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("listing active sessions: %w", err)
	}

	for _, session := range sessions {
		if err := e.recoverSession(ctx, session); err != nil {
			e.log.Error("recovering session %s: %v", session.ID, err)
		}
	}
	return nil
}

func (e *Engine) recoverSession(ctx context.Context, session *domain.CookingSession) error {
	defer e.locks.acquire(session.ID)()

	steps, err := e.steps.StepsForRecipe(ctx, session.RecipeID)
	if err != nil {
		return fmt.Errorf("getting steps: %w", err)
	}

	now := e.clock.Now()
	idx := session.CurrentStepIndex

	// Recompute the countdown the lost registry was running. For a
	// session paused before the restart, the countdown stopped at
	// PausedAt rather than now.
	if idx < len(steps) {
		if d := steps[idx].TimerDuration(); d > 0 {
			stoppedAt := now
			if session.Status == domain.SessionPaused && session.PausedAt != nil {
				stoppedAt = *session.PausedAt
			}
			remaining := d - stoppedAt.Sub(session.CurrentStepStartedAt)
			if remaining > 0 {
				e.timers.SeedSnapshot(session.ID, idx, now, remaining)
				e.log.Debug("session %s recovered step %d snapshot with %s remaining", session.ID, idx, remaining)
			}
		}
	}

	if session.Status == domain.SessionActive {
		session.Status = domain.SessionPaused
		session.PausedAt = &now
		session.UpdatedAt = now
		if err := e.store.Update(ctx, session); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}
		e.log.Info("session %s recovered as paused", session.ID)
	}
	return nil
}
