package domain

import "errors"

// Sentinel errors used across layers.
var (
	// ErrNotFound is returned when a session or recipe lookup misses.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState is returned when a transition is attempted from a
	// status that forbids it, e.g. resuming a session that is not paused.
	ErrInvalidState = errors.New("invalid session state for operation")
	// ErrNoSteps is returned when a session is started for a recipe with
	// no cooking steps.
	ErrNoSteps = errors.New("recipe has no cooking steps")
	// ErrAlreadyExists is returned when creating a session whose ID is
	// already stored.
	ErrAlreadyExists = errors.New("already exists")
)
