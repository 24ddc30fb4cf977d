package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/redress/internal/ports/secondary"
)

// TriggerRepository implements secondary.TriggerRepository with SQLite.
// A partial unique index on (execution_id) WHERE enabled = 1 backs the
// single-enabled-trigger invariant.
type TriggerRepository struct {
	db *sql.DB
}

// NewTriggerRepository creates a new SQLite trigger repository.
func NewTriggerRepository(db *sql.DB) *TriggerRepository {
	return &TriggerRepository{db: db}
}

// Schedule disables any enabled trigger for the execution and persists the
// given trigger as the one enabled timer, in a single transaction.
func (r *TriggerRepository) Schedule(ctx context.Context, trigger *secondary.TriggerRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE triggers SET enabled = 0 WHERE execution_id = ? AND enabled = 1`,
		trigger.ExecutionID,
	); err != nil {
		return fmt.Errorf("failed to disable previous triggers: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO triggers (id, execution_id, trigger_type, due_at, enabled) VALUES (?, ?, ?, ?, 1)`,
		trigger.ID,
		trigger.ExecutionID,
		trigger.Type,
		trigger.DueAt,
	); err != nil {
		return fmt.Errorf("failed to create trigger: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit trigger schedule: %w", err)
	}
	return nil
}

// ListDue returns enabled triggers with due_at <= now, oldest first.
func (r *TriggerRepository) ListDue(ctx context.Context, now time.Time) ([]*secondary.TriggerRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, execution_id, trigger_type, due_at, enabled, fired_at, created_at
		 FROM triggers WHERE enabled = 1 AND due_at <= ? ORDER BY due_at ASC`,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list due triggers: %w", err)
	}
	defer rows.Close()

	return scanTriggers(rows)
}

// Fire atomically disables the trigger identified by (id, dueAt) and
// stamps fired_at. The conditional update is the idempotency gate: a
// duplicate delivery finds zero rows to update and reports not-fired.
func (r *TriggerRepository) Fire(ctx context.Context, id string, dueAt time.Time, now time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE triggers SET enabled = 0, fired_at = ? WHERE id = ? AND due_at = ? AND enabled = 1`,
		now, id, dueAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to fire trigger: %w", err)
	}

	affected, _ := result.RowsAffected()
	return affected > 0, nil
}

// DisableForExecution disables all enabled triggers for an execution.
func (r *TriggerRepository) DisableForExecution(ctx context.Context, executionID string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE triggers SET enabled = 0 WHERE execution_id = ? AND enabled = 1`,
		executionID,
	); err != nil {
		return fmt.Errorf("failed to disable triggers: %w", err)
	}
	return nil
}

// ListByExecution returns all triggers for an execution, newest first.
func (r *TriggerRepository) ListByExecution(ctx context.Context, executionID string) ([]*secondary.TriggerRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, execution_id, trigger_type, due_at, enabled, fired_at, created_at
		 FROM triggers WHERE execution_id = ? ORDER BY created_at DESC`,
		executionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list triggers: %w", err)
	}
	defer rows.Close()

	return scanTriggers(rows)
}

func scanTriggers(rows *sql.Rows) ([]*secondary.TriggerRecord, error) {
	var triggers []*secondary.TriggerRecord
	for rows.Next() {
		var (
			record  secondary.TriggerRecord
			enabled int
			firedAt sql.NullTime
		)
		if err := rows.Scan(&record.ID, &record.ExecutionID, &record.Type, &record.DueAt, &enabled, &firedAt, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan trigger: %w", err)
		}
		record.Enabled = enabled != 0
		if firedAt.Valid {
			record.FiredAt = &firedAt.Time
		}
		triggers = append(triggers, &record)
	}
	return triggers, rows.Err()
}

// Ensure TriggerRepository implements the interface
var _ secondary.TriggerRepository = (*TriggerRepository)(nil)
