// Package domain defines the core types and interfaces for the cooking
// session service. All other packages depend on domain; domain depends
// on nothing.
package domain

import (
	"fmt"
	"time"
)

// CookingStep is one instruction unit of a recipe. Steps are produced by
// the step catalog and are never mutated by the session engine.
type CookingStep struct {
	ID              string `json:"id"`
	RecipeID        string `json:"recipeId"`
	StepNumber      int    `json:"stepNumber"` // 1-based, unique within a recipe
	Description     string `json:"description"`
	Instructions    string `json:"instructions"`
	IsTimerRequired bool   `json:"isTimerRequired"`
	DurationMinutes int    `json:"durationMinutes,omitempty"`
	DurationSeconds int    `json:"durationSeconds,omitempty"`
}

// TimerDuration returns the step's countdown duration. A timer-required
// step with a non-positive total behaves as untimed and returns 0.
func (s CookingStep) TimerDuration() time.Duration {
	if !s.IsTimerRequired {
		return 0
	}
	total := time.Duration(s.DurationMinutes)*time.Minute +
		time.Duration(s.DurationSeconds)*time.Second
	if total <= 0 {
		return 0
	}
	return total
}

// DurationLabel renders the step's configured duration as compact tokens
// ("5m", "30s", "5m 30s"). Returns "" when the step has no duration.
func (s CookingStep) DurationLabel() string {
	switch {
	case s.DurationMinutes > 0 && s.DurationSeconds > 0:
		return fmt.Sprintf("%dm %ds", s.DurationMinutes, s.DurationSeconds)
	case s.DurationMinutes > 0:
		return fmt.Sprintf("%dm", s.DurationMinutes)
	case s.DurationSeconds > 0:
		return fmt.Sprintf("%ds", s.DurationSeconds)
	default:
		return ""
	}
}
