package execution

import (
	"testing"

	"github.com/example/redress/internal/ports/primary"
)

func TestIsTerminal(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{primary.ExecutionStatusPending, false},
		{primary.ExecutionStatusRunning, false},
		{primary.ExecutionStatusCompleted, true},
		{primary.ExecutionStatusFailed, true},
		{primary.ExecutionStatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			if got := IsTerminal(tt.status); got != tt.want {
				t.Errorf("IsTerminal(%q) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestCanCancel(t *testing.T) {
	tests := []struct {
		name        string
		ctx         StateContext
		wantAllowed bool
	}{
		{
			name:        "pending execution can be cancelled",
			ctx:         StateContext{ExecutionID: "e1", Status: primary.ExecutionStatusPending},
			wantAllowed: true,
		},
		{
			name:        "running execution can be cancelled",
			ctx:         StateContext{ExecutionID: "e1", Status: primary.ExecutionStatusRunning},
			wantAllowed: true,
		},
		{
			name:        "completed execution cannot be cancelled",
			ctx:         StateContext{ExecutionID: "e1", Status: primary.ExecutionStatusCompleted},
			wantAllowed: false,
		},
		{
			name:        "cancelled execution cannot be cancelled again",
			ctx:         StateContext{ExecutionID: "e1", Status: primary.ExecutionStatusCancelled},
			wantAllowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanCancel(tt.ctx)

			if result.Allowed != tt.wantAllowed {
				t.Errorf("CanCancel() Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}

			err := result.Error()
			if tt.wantAllowed && err != nil {
				t.Errorf("CanCancel().Error() = %v, want nil", err)
			}
			if !tt.wantAllowed && err == nil {
				t.Error("CanCancel().Error() = nil, want error")
			}
		})
	}
}

func TestCanRetry(t *testing.T) {
	tests := []struct {
		name        string
		ctx         StateContext
		wantAllowed bool
	}{
		{
			name: "running execution with failed last step can retry",
			ctx: StateContext{
				ExecutionID:    "e1",
				Status:         primary.ExecutionStatusRunning,
				LastStepFailed: true,
			},
			wantAllowed: true,
		},
		{
			name: "running execution without failed step cannot retry",
			ctx: StateContext{
				ExecutionID: "e1",
				Status:      primary.ExecutionStatusRunning,
			},
			wantAllowed: false,
		},
		{
			name: "failed execution cannot retry",
			ctx: StateContext{
				ExecutionID:    "e1",
				Status:         primary.ExecutionStatusFailed,
				LastStepFailed: true,
			},
			wantAllowed: false,
		},
		{
			name: "pending execution cannot retry",
			ctx: StateContext{
				ExecutionID: "e1",
				Status:      primary.ExecutionStatusPending,
			},
			wantAllowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanRetry(tt.ctx)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("CanRetry() Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
		})
	}
}

func TestCanFail(t *testing.T) {
	tests := []struct {
		name        string
		status      string
		wantAllowed bool
	}{
		{"pending can fail", primary.ExecutionStatusPending, true},
		{"running can fail", primary.ExecutionStatusRunning, true},
		{"completed cannot fail", primary.ExecutionStatusCompleted, false},
		{"cancelled cannot fail", primary.ExecutionStatusCancelled, false},
		{"failed cannot fail again", primary.ExecutionStatusFailed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanFail(StateContext{ExecutionID: "e1", Status: tt.status})
			if result.Allowed != tt.wantAllowed {
				t.Errorf("CanFail() Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
		})
	}
}

func TestCanRecordResponse(t *testing.T) {
	tests := []struct {
		name        string
		ctx         StateContext
		wantAllowed bool
	}{
		{
			name: "running at await-response accepts a response",
			ctx: StateContext{
				ExecutionID: "e1",
				Status:      primary.ExecutionStatusRunning,
				CurrentStep: primary.StepAwaitResponse,
			},
			wantAllowed: true,
		},
		{
			name: "running at an earlier step rejects a response",
			ctx: StateContext{
				ExecutionID: "e1",
				Status:      primary.ExecutionStatusRunning,
				CurrentStep: primary.StepPerformAction,
			},
			wantAllowed: false,
		},
		{
			name: "completed execution rejects a response",
			ctx: StateContext{
				ExecutionID: "e1",
				Status:      primary.ExecutionStatusCompleted,
				CurrentStep: primary.StepAwaitResponse,
			},
			wantAllowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanRecordResponse(tt.ctx)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("CanRecordResponse() Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
		})
	}
}
