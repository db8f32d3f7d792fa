package notify

import (
	"context"

	"github.com/platekit/cooksession/internal/domain"
	"github.com/platekit/cooksession/internal/logger"
)

// Compile-time interface check.
var _ domain.NotificationSender = (*LogSender)(nil)

// LogSender writes notifications to the log. Used in development and as
// the fallback when no delivery transport is configured.
type LogSender struct {
	log *logger.Logger
}

// NewLogSender creates a log-backed sender.
func NewLogSender(log *logger.Logger) *LogSender {
	return &LogSender{log: log}
}

// Send logs the notification and reports success.
func (l *LogSender) Send(ctx context.Context, userID string, n domain.Notification) error {
	l.log.Info("notification for %s: %s: %s", userID, n.Title, n.Body)
	return nil
}
