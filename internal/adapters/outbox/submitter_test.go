package outbox

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/redress/internal/ports/secondary"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func testAction() secondary.Action {
	return secondary.Action{
		Kind:        secondary.ActionDispute,
		ExecutionID: "e1",
		SubjectID:   "s1",
		ItemID:      "i1",
		StrategyID:  "factual-dispute",
		Round:       0,
		Summary:     "factual-dispute against Axiom Recovery LLC",
	}
}

func TestSubmitWritesEnvelope(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	submitter := NewSubmitter(dir, fixedClock{now: now})

	receipt, err := submitter.Submit(context.Background(), testAction())
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.Ref)
	assert.True(t, receipt.SubmittedAt.Equal(now))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "dispute-"))

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(data, &envelope))
	assert.Equal(t, receipt.Ref, envelope["receipt"])
	assert.Equal(t, "dispute", envelope["kind"])
	assert.Equal(t, "e1", envelope["execution_id"])
	assert.Equal(t, "factual-dispute", envelope["strategy_id"])
	assert.Equal(t, "2024-06-01T12:00:00Z", envelope["submitted_at"])
}

func TestSubmitCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "outbox")
	submitter := NewSubmitter(dir, fixedClock{now: time.Now()})

	_, err := submitter.Submit(context.Background(), testAction())
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestSubmitDistinctReceipts(t *testing.T) {
	dir := t.TempDir()
	submitter := NewSubmitter(dir, fixedClock{now: time.Now()})

	first, err := submitter.Submit(context.Background(), testAction())
	require.NoError(t, err)
	second, err := submitter.Submit(context.Background(), testAction())
	require.NoError(t, err)
	assert.NotEqual(t, first.Ref, second.Ref)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestSubmitHonorsCancelledContext(t *testing.T) {
	dir := t.TempDir()
	submitter := NewSubmitter(dir, fixedClock{now: time.Now()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := submitter.Submit(ctx, testAction())
	assert.ErrorIs(t, err, context.Canceled)

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}
