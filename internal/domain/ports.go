package domain

import "context"

// StepSource provides the ordered cooking steps for a recipe.
// Implementations can be in-memory (seeded), database-backed, or
// LLM-generated. Steps are returned sorted by StepNumber.
type StepSource interface {
	StepsForRecipe(ctx context.Context, recipeID string) ([]CookingStep, error)
}

// SessionStore persists cooking sessions. Implementations can be
// in-memory or BadgerDB-backed. Get returns ErrNotFound for unknown IDs.
type SessionStore interface {
	Create(ctx context.Context, session *CookingSession) error
	Get(ctx context.Context, id string) (*CookingSession, error)
	Update(ctx context.Context, session *CookingSession) error
	Delete(ctx context.Context, id string) error
	// ListActive returns sessions with active or paused status, used for
	// recovery after a process restart.
	ListActive(ctx context.Context) ([]*CookingSession, error)
}

// Notification is a formatted message ready for delivery. Metadata
// carries enough context (session, step, kind) for a client to route a
// tap action.
type Notification struct {
	Title    string            `json:"title"`
	Body     string            `json:"body"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// NotificationSender delivers a notification to a user. Implementations
// can push to Telegram, a mobile push gateway, or just the log. Delivery
// is fire-and-forget from the engine's point of view: the dispatcher
// logs failures and never propagates them into state transitions.
type NotificationSender interface {
	Send(ctx context.Context, userID string, n Notification) error
}
