package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/platekit/cooksession/internal/domain"
	"github.com/platekit/cooksession/internal/logger"
)

// captureSender records deliveries for assertions.
type captureSender struct {
	mu   sync.Mutex
	sent []domain.Notification
	err  error
}

func (c *captureSender) Send(_ context.Context, userID string, n domain.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, n)
	return nil
}

func testSession() *domain.CookingSession {
	return &domain.CookingSession{
		ID:       "sess-1",
		UserID:   "42",
		RecipeID: "tomato-soup",
		Status:   domain.SessionActive,
	}
}

func TestStepStartedIncludesTimerLabel(t *testing.T) {
	sender := &captureSender{}
	d := NewDispatcher(sender, logger.New(logger.LevelOff, nil))

	step := domain.CookingStep{
		ID:              "ts-1",
		RecipeID:        "tomato-soup",
		StepNumber:      1,
		Description:     "Simmer the base",
		Instructions:    "Bring to a gentle simmer and cover.",
		IsTimerRequired: true,
		DurationMinutes: 5,
		DurationSeconds: 30,
	}
	d.StepStarted(context.Background(), testSession(), step)

	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(sender.sent))
	}
	n := sender.sent[0]
	if n.Title != "Step 1: Simmer the base" {
		t.Fatalf("unexpected title: %q", n.Title)
	}
	if !strings.Contains(n.Body, "⏰ Timer: 5m 30s") {
		t.Fatalf("expected timer label in body, got %q", n.Body)
	}
	if n.Metadata["type"] != "step_start" || n.Metadata["stepIndex"] != "0" {
		t.Fatalf("unexpected metadata: %v", n.Metadata)
	}
}

func TestStepStartedUntimedHasNoLabel(t *testing.T) {
	sender := &captureSender{}
	d := NewDispatcher(sender, logger.New(logger.LevelOff, nil))

	step := domain.CookingStep{
		StepNumber:   2,
		Description:  "Chop the onions",
		Instructions: "Dice finely.",
	}
	d.StepStarted(context.Background(), testSession(), step)

	if strings.Contains(sender.sent[0].Body, "⏰") {
		t.Fatalf("expected no timer label for untimed step, got %q", sender.sent[0].Body)
	}
}

func TestStepStartedZeroDurationTimerHasNoLabel(t *testing.T) {
	sender := &captureSender{}
	d := NewDispatcher(sender, logger.New(logger.LevelOff, nil))

	step := domain.CookingStep{
		StepNumber:      3,
		Description:     "Season to taste",
		Instructions:    "Salt and pepper.",
		IsTimerRequired: true, // but no duration configured
	}
	d.StepStarted(context.Background(), testSession(), step)

	if strings.Contains(sender.sent[0].Body, "⏰") {
		t.Fatalf("expected no timer label without a duration, got %q", sender.sent[0].Body)
	}
}

func TestCompletionNotificationIsDistinct(t *testing.T) {
	sender := &captureSender{}
	d := NewDispatcher(sender, logger.New(logger.LevelOff, nil))

	step := domain.CookingStep{StepNumber: 4, Description: "Rest the dish"}
	sess := testSession()
	d.StepCompleted(context.Background(), sess, step)
	d.CookingComplete(context.Background(), sess)

	if len(sender.sent) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(sender.sent))
	}
	if sender.sent[0].Title == sender.sent[1].Title {
		t.Fatal("step-complete and cooking-complete titles must differ")
	}
	if sender.sent[1].Metadata["type"] != "cooking_complete" {
		t.Fatalf("unexpected metadata: %v", sender.sent[1].Metadata)
	}
}

func TestDeliveryFailureIsSwallowed(t *testing.T) {
	sender := &captureSender{err: errors.New("gateway down")}
	d := NewDispatcher(sender, logger.New(logger.LevelOff, nil))

	// Must not panic or propagate.
	d.StepStarted(context.Background(), testSession(), domain.CookingStep{StepNumber: 1})
	d.CookingComplete(context.Background(), testSession())
}

func TestDurationLabel(t *testing.T) {
	tests := []struct {
		name    string
		minutes int
		seconds int
		want    string
	}{
		{"minutes only", 5, 0, "5m"},
		{"seconds only", 0, 30, "30s"},
		{"both", 5, 30, "5m 30s"},
		{"neither", 0, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			step := domain.CookingStep{DurationMinutes: tt.minutes, DurationSeconds: tt.seconds}
			if got := step.DurationLabel(); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
