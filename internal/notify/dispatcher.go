// Package notify formats session notifications and hands them to the
// delivery transport. Formatting policy lives here so the engine never
// builds user-facing text. Delivery failures are logged and swallowed: a
// failed notification must never block or revert a state transition.
package notify

import (
	"context"

	"github.com/platekit/cooksession/internal/domain"
	"github.com/platekit/cooksession/internal/logger"
)

// Dispatcher formats and sends session notifications. Stateless.
type Dispatcher struct {
	sender domain.NotificationSender
	log    *logger.Logger
}

// NewDispatcher creates a dispatcher that delivers through sender.
func NewDispatcher(sender domain.NotificationSender, log *logger.Logger) *Dispatcher {
	return &Dispatcher{sender: sender, log: log}
}

// StepStarted announces the session's new current step.
func (d *Dispatcher) StepStarted(ctx context.Context, session *domain.CookingSession, step domain.CookingStep) {
	n := stepStartNotification(step)
	n.Metadata = stepMetadata(kindStepStart, session, step, session.CurrentStepIndex)
	d.send(ctx, session, n)
}

// StepCompleted announces that a timed step's countdown elapsed.
func (d *Dispatcher) StepCompleted(ctx context.Context, session *domain.CookingSession, step domain.CookingStep) {
	n := stepCompleteNotification(step)
	n.Metadata = stepMetadata(kindStepComplete, session, step, session.CurrentStepIndex)
	d.send(ctx, session, n)
}

// CookingComplete congratulates the user after the final timed step.
func (d *Dispatcher) CookingComplete(ctx context.Context, session *domain.CookingSession) {
	n := completionNotification()
	n.Metadata = map[string]string{
		"type":      kindCookingComplete,
		"sessionId": session.ID,
		"recipeId":  session.RecipeID,
	}
	d.send(ctx, session, n)
}

func (d *Dispatcher) send(ctx context.Context, session *domain.CookingSession, n domain.Notification) {
	if err := d.sender.Send(ctx, session.UserID, n); err != nil {
		d.log.Error("notify: delivering %q to user %s: %v", n.Title, session.UserID, err)
		return
	}
	d.log.Debug("notify: delivered %q to user %s", n.Title, session.UserID)
}
