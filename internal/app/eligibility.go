package app

import (
	"time"

	"github.com/example/redress/internal/catalog"
	"github.com/example/redress/internal/ports/secondary"
)

// EligibilityFilter narrows the catalog to strategies applicable to an
// item given the subject's history. It is pure: safe to call repeatedly.
type EligibilityFilter struct {
	catalog    catalog.Catalog
	predicates *PredicateRegistry
}

// NewEligibilityFilter creates a filter over the given catalog.
func NewEligibilityFilter(c catalog.Catalog, predicates *PredicateRegistry) *EligibilityFilter {
	return &EligibilityFilter{catalog: c, predicates: predicates}
}

// Eligible returns, in catalog order, every active strategy that targets
// the item's type, has not already been attempted against the item, and
// whose prerequisites all hold. An empty result is a normal outcome.
func (f *EligibilityFilter) Eligible(item *secondary.Item, profile *secondary.SubjectProfile, attempted []string, now time.Time) []*catalog.Strategy {
	tried := make(map[string]bool, len(attempted))
	for _, id := range attempted {
		tried[id] = true
	}

	var eligible []*catalog.Strategy
	for _, s := range f.catalog.All() {
		if !s.Active || tried[s.ID] || !s.Targets(item.Type) {
			continue
		}
		if f.prerequisitesMet(s, item, profile, now) {
			eligible = append(eligible, s)
		}
	}
	return eligible
}

// prerequisitesMet requires every named prerequisite to hold. An empty
// prerequisite list means eligible by default.
func (f *EligibilityFilter) prerequisitesMet(s *catalog.Strategy, item *secondary.Item, profile *secondary.SubjectProfile, now time.Time) bool {
	for _, name := range s.Prerequisites {
		if !f.predicates.Evaluate(name, item, profile, now) {
			return false
		}
	}
	return true
}
