package execution

import (
	"testing"
	"time"

	"github.com/example/redress/internal/ports/primary"
)

func TestApplyStatusTransition(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		newStatus     string
		wantCompleted bool
	}{
		{"running does not stamp completion", primary.ExecutionStatusRunning, false},
		{"completed stamps completion", primary.ExecutionStatusCompleted, true},
		{"failed stamps completion", primary.ExecutionStatusFailed, true},
		{"cancelled stamps completion", primary.ExecutionStatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ApplyStatusTransition(tt.newStatus, now)

			if result.NewStatus != tt.newStatus {
				t.Errorf("ApplyStatusTransition() NewStatus = %q, want %q", result.NewStatus, tt.newStatus)
			}

			if tt.wantCompleted {
				if result.CompletedAt == nil {
					t.Fatal("ApplyStatusTransition() CompletedAt = nil, want set")
				}
				if !result.CompletedAt.Equal(now) {
					t.Errorf("ApplyStatusTransition() CompletedAt = %v, want %v", result.CompletedAt, now)
				}
			} else if result.CompletedAt != nil {
				t.Errorf("ApplyStatusTransition() CompletedAt = %v, want nil", result.CompletedAt)
			}
		})
	}
}

func TestStepIndex(t *testing.T) {
	tests := []struct {
		name string
		step string
		want int
	}{
		{"empty name starts from the top", "", 0},
		{"unknown name starts from the top", "no-such-step", 0},
		{"first step", primary.StepValidatePrerequisites, 0},
		{"submission step", primary.StepPerformAction, 2},
		{"parking step", primary.StepAwaitResponse, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StepIndex(tt.step); got != tt.want {
				t.Errorf("StepIndex(%q) = %d, want %d", tt.step, got, tt.want)
			}
		})
	}
}

func TestInitialStatus(t *testing.T) {
	if got := InitialStatus(); got != primary.ExecutionStatusPending {
		t.Errorf("InitialStatus() = %q, want %q", got, primary.ExecutionStatusPending)
	}
}
