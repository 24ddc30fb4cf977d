// Package outbox is a file-based ActionSubmitter: each outbound action is
// serialized as JSON into an outbox directory for the surrounding letter
// and filing system to pick up.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/example/redress/internal/ports/secondary"
)

// Submitter implements secondary.ActionSubmitter by writing action files.
type Submitter struct {
	dir   string
	clock secondary.Clock
}

// NewSubmitter creates a file-based submitter writing into dir.
func NewSubmitter(dir string, clock secondary.Clock) *Submitter {
	return &Submitter{dir: dir, clock: clock}
}

type actionEnvelope struct {
	Receipt     string `json:"receipt"`
	Kind        string `json:"kind"`
	ExecutionID string `json:"execution_id"`
	SubjectID   string `json:"subject_id"`
	ItemID      string `json:"item_id"`
	StrategyID  string `json:"strategy_id"`
	Round       int    `json:"round"`
	Summary     string `json:"summary"`
	SubmittedAt string `json:"submitted_at"`
}

// Submit writes the action to the outbox and returns a receipt.
func (s *Submitter) Submit(ctx context.Context, action secondary.Action) (*secondary.SubmissionReceipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create outbox directory: %w", err)
	}

	now := s.clock.Now()
	ref := uuid.NewString()
	envelope := actionEnvelope{
		Receipt:     ref,
		Kind:        action.Kind,
		ExecutionID: action.ExecutionID,
		SubjectID:   action.SubjectID,
		ItemID:      action.ItemID,
		StrategyID:  action.StrategyID,
		Round:       action.Round,
		Summary:     action.Summary,
		SubmittedAt: now.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}

	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal action: %w", err)
	}

	path := filepath.Join(s.dir, fmt.Sprintf("%s-%s.json", action.Kind, ref))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write action file: %w", err)
	}

	return &secondary.SubmissionReceipt{Ref: ref, SubmittedAt: now}, nil
}

// Ensure Submitter implements the interface
var _ secondary.ActionSubmitter = (*Submitter)(nil)
