// Package execution contains the pure business logic for execution state
// transitions. This is part of the Functional Core - no I/O, only pure
// functions.
package execution

import (
	"fmt"

	"github.com/example/redress/internal/ports/primary"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string // Human-readable reason (populated when not allowed)
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// StateContext provides the execution state needed for guard evaluation.
type StateContext struct {
	ExecutionID    string
	Status         string
	CurrentStep    string
	LastStepFailed bool
}

// IsTerminal reports whether the status admits no further transitions.
func IsTerminal(status string) bool {
	switch status {
	case primary.ExecutionStatusCompleted, primary.ExecutionStatusFailed, primary.ExecutionStatusCancelled:
		return true
	}
	return false
}

// CanCancel evaluates whether an execution can be cancelled.
// Rule: terminal executions cannot be cancelled.
func CanCancel(ctx StateContext) GuardResult {
	if IsTerminal(ctx.Status) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("execution %s is already %s", ctx.ExecutionID, ctx.Status),
		}
	}
	return GuardResult{Allowed: true}
}

// CanRetry evaluates whether an execution can be retried.
// Rule: only a running execution whose last step failed can be retried.
func CanRetry(ctx StateContext) GuardResult {
	if ctx.Status != primary.ExecutionStatusRunning {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("execution %s is not running (status: %s)", ctx.ExecutionID, ctx.Status),
		}
	}
	if !ctx.LastStepFailed {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("execution %s has no failed step to retry", ctx.ExecutionID),
		}
	}
	return GuardResult{Allowed: true}
}

// CanFail evaluates whether an execution can be explicitly marked failed.
// Rule: only pending or running executions can be failed.
func CanFail(ctx StateContext) GuardResult {
	if ctx.Status != primary.ExecutionStatusRunning && ctx.Status != primary.ExecutionStatusPending {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("execution %s is not in progress (status: %s)", ctx.ExecutionID, ctx.Status),
		}
	}
	return GuardResult{Allowed: true}
}

// CanRecordResponse evaluates whether a counterparty response can be
// recorded. Rule: the execution must be parked at await-response.
func CanRecordResponse(ctx StateContext) GuardResult {
	if ctx.Status != primary.ExecutionStatusRunning || ctx.CurrentStep != primary.StepAwaitResponse {
		return GuardResult{
			Allowed: false,
			Reason: fmt.Sprintf("execution %s is not awaiting a response (status: %s, step: %s)",
				ctx.ExecutionID, ctx.Status, ctx.CurrentStep),
		}
	}
	return GuardResult{Allowed: true}
}
