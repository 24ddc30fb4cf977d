package secondary

import (
	"context"
	"time"
)

// Action kinds the engine submits to the outside world.
const (
	ActionDispute             = "dispute"
	ActionStatusRequest       = "status-request"
	ActionRegulatoryComplaint = "regulatory-complaint"
)

// Action is an outbound request built by the orchestrator or scheduler.
// It is opaque to the engine beyond success/failure and a reference id.
type Action struct {
	Kind        string
	ExecutionID string
	SubjectID   string
	ItemID      string
	StrategyID  string
	Round       int
	Summary     string
}

// SubmissionReceipt acknowledges a submitted action.
type SubmissionReceipt struct {
	Ref         string
	SubmittedAt time.Time
}

// ActionSubmitter submits actions to the external bureau/letter system.
// Submissions are fallible, retryable side effects; implementations must
// honor context cancellation and deadlines.
type ActionSubmitter interface {
	Submit(ctx context.Context, action Action) (*SubmissionReceipt, error)
}

// NotificationSink delivers fire-and-forget reminders to subjects.
// Failures are swallowed by the implementation; they never propagate.
type NotificationSink interface {
	Notify(ctx context.Context, subjectID, message string)
}

// Clock supplies the current time. Scoring and state-machine logic never
// read system time directly, so both stay deterministically testable.
type Clock interface {
	Now() time.Time
}

// SystemClock is the real clock.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time { return time.Now() }

var _ Clock = SystemClock{}
