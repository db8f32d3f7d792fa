package domain

import "time"

// CookingSession is one user's in-progress walk-through of a recipe. It
// is owned exclusively by the session engine while active; terminal
// sessions are never mutated again.
type CookingSession struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	RecipeID string `json:"recipeId"`

	Status           SessionStatus `json:"status"`
	CurrentStepIndex int           `json:"currentStepIndex"` // zero-based

	StartedAt   time.Time  `json:"startedAt"`
	PausedAt    *time.Time `json:"pausedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	// CurrentStepStartedAt records when the current step became active.
	// Boot recovery uses it to recompute a timer's remaining time after
	// the in-memory registry has been lost.
	CurrentStepStartedAt time.Time `json:"currentStepStartedAt"`

	// TotalPausedSeconds accumulates whole seconds spent paused.
	// Monotonically non-decreasing.
	TotalPausedSeconds int64 `json:"totalPausedSeconds"`

	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns an independent copy of the session.
func (s *CookingSession) Clone() *CookingSession {
	out := *s
	if s.PausedAt != nil {
		t := *s.PausedAt
		out.PausedAt = &t
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		out.CompletedAt = &t
	}
	return &out
}

// SessionStatus tracks the lifecycle of a cooking session.
type SessionStatus int

const (
	SessionActive SessionStatus = iota
	SessionPaused
	SessionCompleted
	SessionCancelled
)

// Terminal reports whether the status permits no further transitions.
func (s SessionStatus) Terminal() bool {
	return s == SessionCompleted || s == SessionCancelled
}

// String returns a human-readable session status.
func (s SessionStatus) String() string {
	switch s {
	case SessionActive:
		return "active"
	case SessionPaused:
		return "paused"
	case SessionCompleted:
		return "completed"
	case SessionCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}
