// Package secondary defines the contracts the engine consumes: the record
// store, execution and trigger persistence, the action submitter, the
// notification sink and the clock.
package secondary

import (
	"context"
	"errors"
	"time"

	"github.com/example/redress/internal/catalog"
)

// ErrStateConflict is returned by compare-and-swap saves when the record
// was modified concurrently. The writer must reload and re-evaluate.
var ErrStateConflict = errors.New("state conflict: record modified concurrently")

// Payment status values for items.
const (
	PaymentStatusCurrent    = "current"
	PaymentStatusLate       = "late"
	PaymentStatusChargeOff  = "charge-off"
	PaymentStatusCollection = "collection"
)

// Subscription plan tiers.
const (
	PlanTierStandard = "standard"
	PlanTierPlus     = "plus"
	PlanTierPremium  = "premium"
)

// DisputeEntry is one entry in an item's prior dispute history.
type DisputeEntry struct {
	DisputedAt time.Time
	Status     string // 'pending', 'verified', 'deleted', 'updated', 'no-response'
}

// Item is a flagged record as read from the record store. The engine never
// writes items; they are owned by the surrounding system.
type Item struct {
	ID                string
	SubjectID         string
	Type              catalog.ItemType
	Furnisher         string
	BalanceCents      int64
	PaymentStatus     string
	OpenedAt          time.Time // zero when unknown
	ReportedAt        time.Time // zero when unknown
	IdentityTheftFlag bool
	DisputeHistory    []DisputeEntry // ordered by DisputedAt ascending
}

// Age returns the item's age at now, measured from OpenedAt, falling back
// to ReportedAt when the opening date is unknown.
func (i *Item) Age(now time.Time) time.Duration {
	ref := i.OpenedAt
	if ref.IsZero() {
		ref = i.ReportedAt
	}
	if ref.IsZero() {
		return 0
	}
	return now.Sub(ref)
}

// SubjectProfile is the read-only subject record feeding scoring.
type SubjectProfile struct {
	ID       string
	PlanTier string
}

// RecordStore reads items and subject profiles and tracks which strategies
// were already attempted against an item.
type RecordStore interface {
	// GetItem retrieves an item with its dispute history.
	GetItem(ctx context.Context, id string) (*Item, error)

	// GetSubjectProfile retrieves a subject profile by id.
	GetSubjectProfile(ctx context.Context, id string) (*SubjectProfile, error)

	// AttemptedStrategies returns the strategy ids already tried against an item.
	AttemptedStrategies(ctx context.Context, itemID string) ([]string, error)

	// RecordAttempt marks a strategy as attempted against an item.
	// Recording the same attempt twice is a no-op.
	RecordAttempt(ctx context.Context, subjectID, itemID, strategyID string) error
}

// StepRecord is one entry in an execution's ordered step history.
type StepRecord struct {
	Seq         int
	Name        string
	Status      string // 'running', 'completed', 'failed', 'skipped'
	StartedAt   time.Time
	CompletedAt *time.Time
	Result      string
	Error       string
}

// ExecutionRecord is an execution as stored in persistence.
type ExecutionRecord struct {
	ID                 string
	ItemID             string
	StrategyID         string
	SubjectID          string
	Status             string // 'pending', 'running', 'completed', 'failed', 'cancelled'
	CurrentStep        string
	Round              int
	NextStrategyID     string // empty means null
	SubmissionReceipt  string
	SubmittedAt        *time.Time
	ResponseRecordedAt *time.Time
	CancelRequested    bool
	Version            int
	CreatedAt          time.Time
	CompletedAt        *time.Time
	Steps              []StepRecord // ordered by Seq
}

// ExecutionFilters contains filter options for listing executions.
type ExecutionFilters struct {
	SubjectID string
	ItemID    string
	Status    string
}

// ExecutionRepository persists execution state machines.
type ExecutionRepository interface {
	// Create persists a new execution at version 1.
	Create(ctx context.Context, execution *ExecutionRecord) error

	// GetByID retrieves an execution with its step history.
	GetByID(ctx context.Context, id string) (*ExecutionRecord, error)

	// List retrieves executions matching the given filters, newest first.
	List(ctx context.Context, filters ExecutionFilters) ([]*ExecutionRecord, error)

	// Save persists the execution via compare-and-swap on Version. On
	// success the record's Version is incremented in place. Returns
	// ErrStateConflict when the stored version differs.
	Save(ctx context.Context, execution *ExecutionRecord) error
}

// Trigger types driving time-based escalation.
const (
	TriggerFollowUp           = "follow-up"
	TriggerEscalateRegulatory = "escalate-regulatory"
	TriggerAdvanceRound       = "advance-round"
)

// TriggerRecord is a scheduled escalation event as stored in persistence.
type TriggerRecord struct {
	ID          string
	ExecutionID string
	Type        string
	DueAt       time.Time
	Enabled     bool
	FiredAt     *time.Time
	CreatedAt   time.Time
}

// TriggerRepository persists scheduled triggers. Implementations enforce
// the single-enabled-trigger-per-execution invariant.
type TriggerRepository interface {
	// Schedule disables any enabled trigger for the execution and persists
	// the given trigger as the one enabled timer.
	Schedule(ctx context.Context, trigger *TriggerRecord) error

	// ListDue returns enabled triggers with due_at <= now, oldest first.
	ListDue(ctx context.Context, now time.Time) ([]*TriggerRecord, error)

	// Fire atomically disables the trigger identified by (id, dueAt) and
	// stamps fired_at. Returns false when the trigger was already fired or
	// disabled, which callers treat as a duplicate delivery.
	Fire(ctx context.Context, id string, dueAt time.Time, now time.Time) (bool, error)

	// DisableForExecution disables all enabled triggers for an execution.
	DisableForExecution(ctx context.Context, executionID string) error

	// ListByExecution returns all triggers for an execution, newest first.
	ListByExecution(ctx context.Context, executionID string) ([]*TriggerRecord, error)
}
