// Package notify contains NotificationSink implementations.
package notify

import (
	"context"
	"log/slog"

	"github.com/example/redress/internal/ports/secondary"
)

// SlogSink is a NotificationSink that records notifications in the
// structured log. Delivery is fire and forget: there is nothing to fail.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates a log-backed notification sink.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger.With("component", "notify")}
}

// Notify records the notification.
func (s *SlogSink) Notify(ctx context.Context, subjectID, message string) {
	s.logger.Info("notification", "subject", subjectID, "message", message)
}

// Ensure SlogSink implements the interface
var _ secondary.NotificationSink = (*SlogSink)(nil)
