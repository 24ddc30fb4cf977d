package app

import (
	"log/slog"
	"time"

	"github.com/example/redress/internal/catalog"
	"github.com/example/redress/internal/ports/secondary"
)

// Prerequisite predicate names. The catalog references these by name; the
// registry maps each name to an independent, unit-testable function.
const (
	PredPriorVerifiedDispute   = "has-prior-verified-dispute"
	PredThirdPartyCollection   = "is-third-party-collection"
	PredBureauResponseOverdue  = "bureau-response-overdue"
	PredExceedsStatutePeriod   = "exceeds-statute-period"
	PredIdentityTheftIndicator = "has-identity-theft-indicators"
	PredPositivePaymentHistory = "has-positive-payment-history"
)

// statutePeriod is the reporting window after which adverse items are
// considered obsolete.
const statutePeriod = 7 * 365 * 24 * time.Hour

// responseWindow is how long a counterparty has to answer a dispute before
// its silence becomes actionable.
const responseWindow = 30 * 24 * time.Hour

// Predicate evaluates one named prerequisite against an item and profile.
type Predicate func(item *secondary.Item, profile *secondary.SubjectProfile, now time.Time) bool

// PredicateRegistry dispatches prerequisite names to predicate functions.
type PredicateRegistry struct {
	predicates map[string]Predicate
	logger     *slog.Logger
}

// NewPredicateRegistry returns the registry with the built-in predicates.
func NewPredicateRegistry(logger *slog.Logger) *PredicateRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &PredicateRegistry{
		logger: logger.With("component", "predicates"),
		predicates: map[string]Predicate{
			PredPriorVerifiedDispute:   hasPriorVerifiedDispute,
			PredThirdPartyCollection:   isThirdPartyCollection,
			PredBureauResponseOverdue:  bureauResponseOverdue,
			PredExceedsStatutePeriod:   exceedsStatutePeriod,
			PredIdentityTheftIndicator: hasIdentityTheftIndicators,
			PredPositivePaymentHistory: hasPositivePaymentHistory,
		},
	}
}

// Evaluate runs the named predicate. Unknown names evaluate true and log a
// configuration warning; they never hard-fail a selection.
func (r *PredicateRegistry) Evaluate(name string, item *secondary.Item, profile *secondary.SubjectProfile, now time.Time) bool {
	pred, ok := r.predicates[name]
	if !ok {
		r.logger.Warn("unknown prerequisite, treating as satisfied", "name", name)
		return true
	}
	return pred(item, profile, now)
}

// Known reports whether the name is registered.
func (r *PredicateRegistry) Known(name string) bool {
	_, ok := r.predicates[name]
	return ok
}

// ValidateCatalog checks every prerequisite name the catalog references
// and logs a configuration warning for each unknown one. Unknown names are
// permissive at evaluation time, so this is the place they get caught.
func (r *PredicateRegistry) ValidateCatalog(c catalog.Catalog) []string {
	var unknown []string
	for _, s := range c.All() {
		for _, name := range s.Prerequisites {
			if !r.Known(name) {
				unknown = append(unknown, name)
				r.logger.Warn("catalog references unknown prerequisite",
					"strategy", s.ID, "name", name)
			}
		}
	}
	return unknown
}

func hasPriorVerifiedDispute(item *secondary.Item, _ *secondary.SubjectProfile, _ time.Time) bool {
	for _, d := range item.DisputeHistory {
		if d.Status == "verified" {
			return true
		}
	}
	return false
}

func isThirdPartyCollection(item *secondary.Item, _ *secondary.SubjectProfile, _ time.Time) bool {
	return item.Type == catalog.ItemTypeCollection
}

// bureauResponseOverdue is true when the most recent dispute is still
// pending past the statutory response window.
func bureauResponseOverdue(item *secondary.Item, _ *secondary.SubjectProfile, now time.Time) bool {
	if len(item.DisputeHistory) == 0 {
		return false
	}
	last := item.DisputeHistory[len(item.DisputeHistory)-1]
	if last.Status != "pending" {
		return false
	}
	return now.Sub(last.DisputedAt) > responseWindow
}

func exceedsStatutePeriod(item *secondary.Item, _ *secondary.SubjectProfile, now time.Time) bool {
	return item.Age(now) > statutePeriod
}

func hasIdentityTheftIndicators(item *secondary.Item, _ *secondary.SubjectProfile, _ time.Time) bool {
	return item.IdentityTheftFlag
}

// hasPositivePaymentHistory gates goodwill requests to isolated derogatory
// marks on otherwise-performing accounts.
func hasPositivePaymentHistory(item *secondary.Item, _ *secondary.SubjectProfile, _ time.Time) bool {
	return item.PaymentStatus == secondary.PaymentStatusCurrent ||
		item.PaymentStatus == secondary.PaymentStatusLate
}
