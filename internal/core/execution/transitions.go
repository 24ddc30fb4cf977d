package execution

import (
	"time"

	"github.com/example/redress/internal/ports/primary"
)

// PipelineOrder is the strict step order within a running execution.
// Outcome evaluation and next-strategy recommendation only run once a
// response arrives, so they are not part of the driven pipeline.
var PipelineOrder = []string{
	primary.StepValidatePrerequisites,
	primary.StepAcquireFreshContext,
	primary.StepPerformAction,
	primary.StepAwaitResponse,
}

// StepIndex returns the pipeline position of the named step, or 0 when the
// name is empty or unknown so a fresh execution starts from the top.
func StepIndex(name string) int {
	for i, step := range PipelineOrder {
		if step == name {
			return i
		}
	}
	return 0
}

// TransitionResult captures a status transition and its side effect on the
// completion timestamp.
type TransitionResult struct {
	NewStatus   string
	CompletedAt *time.Time // Set when transitioning to a terminal status
}

// ApplyStatusTransition applies a status transition and returns the result.
// Terminal statuses stamp CompletedAt; the caller passes the current time
// to enable testing.
func ApplyStatusTransition(newStatus string, now time.Time) TransitionResult {
	result := TransitionResult{NewStatus: newStatus}
	if IsTerminal(newStatus) {
		result.CompletedAt = &now
	}
	return result
}

// InitialStatus returns the initial status for a new execution.
func InitialStatus() string {
	return primary.ExecutionStatusPending
}
