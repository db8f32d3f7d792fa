package notify

import (
	"fmt"
	"strconv"

	"github.com/platekit/cooksession/internal/domain"
)

// Notification kinds carried in metadata so clients can route tap actions.
const (
	kindStepStart       = "step_start"
	kindStepComplete    = "step_complete"
	kindCookingComplete = "cooking_complete"
)

// stepStartNotification announces a step the user should begin. The body
// carries the full instructions plus a timer label for timed steps.
func stepStartNotification(step domain.CookingStep) domain.Notification {
	body := step.Instructions
	if step.IsTimerRequired {
		if label := step.DurationLabel(); label != "" {
			body += fmt.Sprintf("\n\n⏰ Timer: %s", label)
		}
	}
	return domain.Notification{
		Title: fmt.Sprintf("Step %d: %s", step.StepNumber, step.Description),
		Body:  body,
	}
}

// stepCompleteNotification announces that a timed step finished.
func stepCompleteNotification(step domain.CookingStep) domain.Notification {
	return domain.Notification{
		Title: fmt.Sprintf("Step %d done!", step.StepNumber),
		Body:  fmt.Sprintf("%s is finished. Move on when you're ready.", step.Description),
	}
}

// completionNotification congratulates the user when the whole recipe is
// done. Distinct from per-step completion messages.
func completionNotification() domain.Notification {
	return domain.Notification{
		Title: "Cooking complete! 🎉",
		Body:  "You've finished every step. Plate up and enjoy your meal.",
	}
}

// stepMetadata tags a notification with enough context for the client to
// open the right session screen.
func stepMetadata(kind string, session *domain.CookingSession, step domain.CookingStep, stepIndex int) map[string]string {
	return map[string]string{
		"type":        kind,
		"sessionId":   session.ID,
		"recipeId":    session.RecipeID,
		"stepIndex":   strconv.Itoa(stepIndex),
		"stepId":      step.ID,
		"description": step.Description,
	}
}
