// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/redress/internal/catalog"
	"github.com/example/redress/internal/ports/secondary"
)

// RecordStore implements secondary.RecordStore with SQLite.
type RecordStore struct {
	db *sql.DB
}

// NewRecordStore creates a new SQLite record store.
func NewRecordStore(db *sql.DB) *RecordStore {
	return &RecordStore{db: db}
}

// GetItem retrieves an item with its dispute history.
func (r *RecordStore) GetItem(ctx context.Context, id string) (*secondary.Item, error) {
	var (
		itemType   string
		openedAt   sql.NullTime
		reportedAt sql.NullTime
		theftFlag  int
	)

	item := &secondary.Item{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, subject_id, item_type, furnisher, balance_cents, payment_status, opened_at, reported_at, identity_theft_flag FROM items WHERE id = ?`,
		id,
	).Scan(&item.ID, &item.SubjectID, &itemType, &item.Furnisher, &item.BalanceCents, &item.PaymentStatus, &openedAt, &reportedAt, &theftFlag)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("item %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	item.Type = catalog.ItemType(itemType)
	if openedAt.Valid {
		item.OpenedAt = openedAt.Time
	}
	if reportedAt.Valid {
		item.ReportedAt = reportedAt.Time
	}
	item.IdentityTheftFlag = theftFlag != 0

	rows, err := r.db.QueryContext(ctx,
		`SELECT disputed_at, status FROM item_disputes WHERE item_id = ? ORDER BY disputed_at ASC`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load dispute history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry secondary.DisputeEntry
		if err := rows.Scan(&entry.DisputedAt, &entry.Status); err != nil {
			return nil, fmt.Errorf("failed to scan dispute entry: %w", err)
		}
		item.DisputeHistory = append(item.DisputeHistory, entry)
	}

	return item, rows.Err()
}

// GetSubjectProfile retrieves a subject profile by id.
func (r *RecordStore) GetSubjectProfile(ctx context.Context, id string) (*secondary.SubjectProfile, error) {
	profile := &secondary.SubjectProfile{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, plan_tier FROM subjects WHERE id = ?`,
		id,
	).Scan(&profile.ID, &profile.PlanTier)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("subject %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subject: %w", err)
	}

	return profile, nil
}

// AttemptedStrategies returns the strategy ids already tried against an item.
func (r *RecordStore) AttemptedStrategies(ctx context.Context, itemID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT strategy_id FROM strategy_attempts WHERE item_id = ? ORDER BY attempted_at ASC`,
		itemID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempted strategies: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan attempted strategy: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// RecordAttempt marks a strategy as attempted against an item. Duplicate
// attempts are a no-op.
func (r *RecordStore) RecordAttempt(ctx context.Context, subjectID, itemID, strategyID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO strategy_attempts (id, subject_id, item_id, strategy_id, attempted_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(item_id, strategy_id) DO NOTHING`,
		uuid.NewString(), subjectID, itemID, strategyID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}

// Ensure RecordStore implements the interface
var _ secondary.RecordStore = (*RecordStore)(nil)
