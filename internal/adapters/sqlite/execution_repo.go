package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/example/redress/internal/ports/secondary"
)

// ExecutionRepository implements secondary.ExecutionRepository with SQLite.
// Saves are compare-and-swap on the version column so concurrent writers
// can never blind-overwrite each other.
type ExecutionRepository struct {
	db *sql.DB
}

// NewExecutionRepository creates a new SQLite execution repository.
func NewExecutionRepository(db *sql.DB) *ExecutionRepository {
	return &ExecutionRepository{db: db}
}

// Create persists a new execution at version 1.
func (r *ExecutionRepository) Create(ctx context.Context, execution *secondary.ExecutionRecord) error {
	execution.Version = 1
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO executions (id, item_id, strategy_id, subject_id, status, current_step, round, next_strategy_id, submission_receipt, submitted_at, response_recorded_at, cancel_requested, version, created_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		execution.ID,
		execution.ItemID,
		execution.StrategyID,
		execution.SubjectID,
		execution.Status,
		nullString(execution.CurrentStep),
		execution.Round,
		nullString(execution.NextStrategyID),
		nullString(execution.SubmissionReceipt),
		nullTime(execution.SubmittedAt),
		nullTime(execution.ResponseRecordedAt),
		boolToInt(execution.CancelRequested),
		execution.Version,
		execution.CreatedAt,
		nullTime(execution.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create execution: %w", err)
	}
	return nil
}

// GetByID retrieves an execution with its step history.
func (r *ExecutionRepository) GetByID(ctx context.Context, id string) (*secondary.ExecutionRecord, error) {
	record, err := r.scanExecution(r.db.QueryRowContext(ctx,
		`SELECT id, item_id, strategy_id, subject_id, status, current_step, round, next_strategy_id, submission_receipt, submitted_at, response_recorded_at, cancel_requested, version, created_at, completed_at
		 FROM executions WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("execution %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get execution: %w", err)
	}

	if err := r.loadSteps(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// List retrieves executions matching the given filters, newest first.
// Step histories are loaded for each returned execution.
func (r *ExecutionRepository) List(ctx context.Context, filters secondary.ExecutionFilters) ([]*secondary.ExecutionRecord, error) {
	query := `SELECT id, item_id, strategy_id, subject_id, status, current_step, round, next_strategy_id, submission_receipt, submitted_at, response_recorded_at, cancel_requested, version, created_at, completed_at
		 FROM executions WHERE 1=1`
	args := []any{}

	if filters.SubjectID != "" {
		query += " AND subject_id = ?"
		args = append(args, filters.SubjectID)
	}
	if filters.ItemID != "" {
		query += " AND item_id = ?"
		args = append(args, filters.ItemID)
	}
	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}
	defer rows.Close()

	var executions []*secondary.ExecutionRecord
	for rows.Next() {
		record, err := r.scanExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan execution: %w", err)
		}
		executions = append(executions, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, record := range executions {
		if err := r.loadSteps(ctx, record); err != nil {
			return nil, err
		}
	}
	return executions, nil
}

// Save persists the execution via compare-and-swap on the version column.
// New step rows are appended; existing rows are immutable history.
func (r *ExecutionRepository) Save(ctx context.Context, execution *secondary.ExecutionRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE executions SET status = ?, current_step = ?, round = ?, next_strategy_id = ?, submission_receipt = ?, submitted_at = ?, response_recorded_at = ?, cancel_requested = ?, completed_at = ?, version = version + 1
		 WHERE id = ? AND version = ?`,
		execution.Status,
		nullString(execution.CurrentStep),
		execution.Round,
		nullString(execution.NextStrategyID),
		nullString(execution.SubmissionReceipt),
		nullTime(execution.SubmittedAt),
		nullTime(execution.ResponseRecordedAt),
		boolToInt(execution.CancelRequested),
		nullTime(execution.CompletedAt),
		execution.ID,
		execution.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to save execution: %w", err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return secondary.ErrStateConflict
	}

	for _, step := range execution.Steps {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO execution_steps (id, execution_id, seq, name, status, started_at, completed_at, result, error)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(execution_id, seq) DO NOTHING`,
			uuid.NewString(),
			execution.ID,
			step.Seq,
			step.Name,
			step.Status,
			step.StartedAt,
			nullTime(step.CompletedAt),
			nullString(step.Result),
			nullString(step.Error),
		)
		if err != nil {
			return fmt.Errorf("failed to save step %d: %w", step.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit execution save: %w", err)
	}

	execution.Version++
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ExecutionRepository) scanExecution(row rowScanner) (*secondary.ExecutionRecord, error) {
	var (
		currentStep     sql.NullString
		nextStrategy    sql.NullString
		receipt         sql.NullString
		submittedAt     sql.NullTime
		respondedAt     sql.NullTime
		cancelRequested int
		completedAt     sql.NullTime
	)

	record := &secondary.ExecutionRecord{}
	err := row.Scan(&record.ID, &record.ItemID, &record.StrategyID, &record.SubjectID, &record.Status,
		&currentStep, &record.Round, &nextStrategy, &receipt, &submittedAt, &respondedAt,
		&cancelRequested, &record.Version, &record.CreatedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	record.CurrentStep = currentStep.String
	record.NextStrategyID = nextStrategy.String
	record.SubmissionReceipt = receipt.String
	if submittedAt.Valid {
		record.SubmittedAt = &submittedAt.Time
	}
	if respondedAt.Valid {
		record.ResponseRecordedAt = &respondedAt.Time
	}
	record.CancelRequested = cancelRequested != 0
	if completedAt.Valid {
		record.CompletedAt = &completedAt.Time
	}
	return record, nil
}

func (r *ExecutionRepository) loadSteps(ctx context.Context, record *secondary.ExecutionRecord) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seq, name, status, started_at, completed_at, result, error
		 FROM execution_steps WHERE execution_id = ? ORDER BY seq ASC`,
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to load steps: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			step        secondary.StepRecord
			completedAt sql.NullTime
			result      sql.NullString
			stepErr     sql.NullString
		)
		if err := rows.Scan(&step.Seq, &step.Name, &step.Status, &step.StartedAt, &completedAt, &result, &stepErr); err != nil {
			return fmt.Errorf("failed to scan step: %w", err)
		}
		if completedAt.Valid {
			step.CompletedAt = &completedAt.Time
		}
		step.Result = result.String
		step.Error = stepErr.String
		record.Steps = append(record.Steps, step)
	}
	return rows.Err()
}

// Ensure ExecutionRepository implements the interface
var _ secondary.ExecutionRepository = (*ExecutionRepository)(nil)
