package primary

import (
	"context"
	"time"
)

// SchedulerService sweeps due triggers and fires escalation actions.
type SchedulerService interface {
	// Sweep processes every trigger due at now exactly once and returns a
	// summary. Duplicate deliveries of the same (trigger, dueAt) are
	// skipped, not re-fired.
	Sweep(ctx context.Context, now time.Time) (*SweepResult, error)

	// Run sweeps on the configured poll interval until ctx is cancelled.
	Run(ctx context.Context) error
}

// SweepResult summarizes one scheduler pass.
type SweepResult struct {
	Due     int
	Fired   int
	Skipped int
	Errors  []string
}

// Trigger represents a scheduled escalation event at the port boundary.
type Trigger struct {
	ID          string
	ExecutionID string
	Type        string
	DueAt       time.Time
	Enabled     bool
	FiredAt     *time.Time
	CreatedAt   time.Time
}
