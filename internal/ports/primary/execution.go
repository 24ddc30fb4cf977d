package primary

import (
	"context"
	"time"
)

// ExecutionService drives execution state machines.
type ExecutionService interface {
	// Start commits a recommendation: it creates an execution and runs it
	// through submission into the awaiting-response sub-state.
	Start(ctx context.Context, req StartExecutionRequest) (*Execution, error)

	// Get retrieves an execution with its step history.
	Get(ctx context.Context, executionID string) (*Execution, error)

	// List lists executions with optional filters.
	List(ctx context.Context, filters ExecutionFilters) ([]*Execution, error)

	// Cancel requests cooperative cancellation. Running executions cancel
	// between steps only; terminal executions are rejected.
	Cancel(ctx context.Context, executionID string) error

	// Retry re-runs a running execution whose last step failed with a
	// transient external error, resuming from the recorded step.
	Retry(ctx context.Context, executionID string) (*Execution, error)

	// Fail explicitly marks a stalled execution failed, for callers that
	// decide a transient failure is in fact terminal.
	Fail(ctx context.Context, executionID, reason string) error

	// RecordResponse records a counterparty response arriving out of band
	// and drives the execution through outcome evaluation to completion.
	RecordResponse(ctx context.Context, req RecordResponseRequest) (*Execution, error)

	// ListTriggers returns all escalation triggers scheduled for an
	// execution, newest first, fired and disabled ones included.
	ListTriggers(ctx context.Context, executionID string) ([]*Trigger, error)
}

// StartExecutionRequest commits a subject to a strategy for an item.
type StartExecutionRequest struct {
	ItemID     string `validate:"required"`
	SubjectID  string `validate:"required"`
	StrategyID string `validate:"required"`
}

// RecordResponseRequest records a counterparty response for an execution.
type RecordResponseRequest struct {
	ExecutionID string `validate:"required"`
	Outcome     string `validate:"required,oneof=deleted updated verified no-change"`
	Detail      string
}

// Execution statuses. pending -> running -> {completed|failed}; cancelled
// is reachable from pending or running only.
const (
	ExecutionStatusPending   = "pending"
	ExecutionStatusRunning   = "running"
	ExecutionStatusCompleted = "completed"
	ExecutionStatusFailed    = "failed"
	ExecutionStatusCancelled = "cancelled"
)

// Step names, in execution order.
const (
	StepValidatePrerequisites = "validate-prerequisites"
	StepAcquireFreshContext   = "acquire-fresh-context"
	StepPerformAction         = "perform-action"
	StepAwaitResponse         = "await-response"
	StepEvaluateOutcome       = "evaluate-outcome"
	StepRecommendNext         = "recommend-next-strategy"
)

// Step statuses.
const (
	StepStatusRunning   = "running"
	StepStatusCompleted = "completed"
	StepStatusFailed    = "failed"
	StepStatusSkipped   = "skipped"
)

// Response outcomes accepted by RecordResponse.
const (
	OutcomeDeleted  = "deleted"
	OutcomeUpdated  = "updated"
	OutcomeVerified = "verified"
	OutcomeNoChange = "no-change"
)

// Execution represents an execution at the port boundary.
type Execution struct {
	ID                 string
	ItemID             string
	StrategyID         string
	SubjectID          string
	Status             string
	CurrentStep        string
	Round              int
	NextStrategyID     string // empty means none recommended
	SubmissionReceipt  string
	SubmittedAt        *time.Time
	ResponseRecordedAt *time.Time
	CreatedAt          time.Time
	CompletedAt        *time.Time
	Steps              []Step
}

// Step is one entry in an execution's step history.
type Step struct {
	Seq         int
	Name        string
	Status      string
	StartedAt   time.Time
	CompletedAt *time.Time
	Result      string
	Error       string
}

// ExecutionFilters contains filter options for listing executions.
type ExecutionFilters struct {
	SubjectID string
	ItemID    string
	Status    string
}
