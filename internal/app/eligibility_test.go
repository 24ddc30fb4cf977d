package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/example/redress/internal/catalog"
	"github.com/example/redress/internal/ports/secondary"
)

func newTestFilter() *EligibilityFilter {
	reg := NewPredicateRegistry(nil)
	return NewEligibilityFilter(catalog.Builtin(), reg)
}

func eligibleIDs(f *EligibilityFilter, item *secondary.Item, profile *secondary.SubjectProfile, attempted []string, now time.Time) []string {
	strategies := f.Eligible(item, profile, attempted, now)
	ids := make([]string, len(strategies))
	for i, s := range strategies {
		ids[i] = s.ID
	}
	return ids
}

func TestEligibleNeverCrossesItemType(t *testing.T) {
	f := newTestFilter()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	profile := &secondary.SubjectProfile{ID: "s1", PlanTier: secondary.PlanTierStandard}

	inquiry := &secondary.Item{
		ID:            "i1",
		Type:          catalog.ItemTypeInquiry,
		PaymentStatus: secondary.PaymentStatusCurrent,
		OpenedAt:      now.AddDate(-1, 0, 0),
	}

	for _, s := range f.Eligible(inquiry, profile, nil, now) {
		assert.True(t, s.Targets(catalog.ItemTypeInquiry), "strategy %s does not target inquiries", s.ID)
	}
}

func TestEligibleExcludesAttempted(t *testing.T) {
	f := newTestFilter()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	profile := &secondary.SubjectProfile{ID: "s1", PlanTier: secondary.PlanTierStandard}

	item := &secondary.Item{
		ID:            "i1",
		Type:          catalog.ItemTypeCollection,
		PaymentStatus: secondary.PaymentStatusCollection,
		OpenedAt:      now.AddDate(-3, 0, 0),
	}

	before := eligibleIDs(f, item, profile, nil, now)
	assert.Contains(t, before, "debt-validation")

	after := eligibleIDs(f, item, profile, []string{"debt-validation"}, now)
	assert.NotContains(t, after, "debt-validation")
	assert.Len(t, after, len(before)-1)
}

func TestEligibleEnforcesPrerequisites(t *testing.T) {
	f := newTestFilter()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	profile := &secondary.SubjectProfile{ID: "s1", PlanTier: secondary.PlanTierStandard}

	young := &secondary.Item{
		ID:            "i1",
		Type:          catalog.ItemTypeAccount,
		PaymentStatus: secondary.PaymentStatusChargeOff,
		OpenedAt:      now.AddDate(-2, 0, 0),
	}
	assert.NotContains(t, eligibleIDs(f, young, profile, nil, now), "obsolete-information")
	// Charge-off also blocks the goodwill path.
	assert.NotContains(t, eligibleIDs(f, young, profile, nil, now), "goodwill-adjustment")

	obsolete := &secondary.Item{
		ID:            "i2",
		Type:          catalog.ItemTypeAccount,
		PaymentStatus: secondary.PaymentStatusChargeOff,
		OpenedAt:      now.AddDate(-8, 0, 0),
	}
	assert.Contains(t, eligibleIDs(f, obsolete, profile, nil, now), "obsolete-information")
}

func TestEligiblePreservesCatalogOrder(t *testing.T) {
	f := newTestFilter()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	profile := &secondary.SubjectProfile{ID: "s1", PlanTier: secondary.PlanTierStandard}

	item := &secondary.Item{
		ID:            "i1",
		Type:          catalog.ItemTypeCollection,
		PaymentStatus: secondary.PaymentStatusCollection,
		OpenedAt:      now.AddDate(-3, 0, 0),
	}

	ids := eligibleIDs(f, item, profile, nil, now)
	expected := []string{"factual-dispute", "debt-validation", "identity-theft-block", "pay-for-delete"}
	assert.Equal(t, expected, ids)
}

func TestEligibleSkipsInactiveStrategies(t *testing.T) {
	reg := NewPredicateRegistry(nil)
	c, err := catalog.NewStaticCatalog([]*catalog.Strategy{
		{ID: "active", Tier: 1, TargetItems: []catalog.ItemType{catalog.ItemTypeAccount}, Active: true},
		{ID: "retired", Tier: 1, TargetItems: []catalog.ItemType{catalog.ItemTypeAccount}, Active: false},
	})
	assert.NoError(t, err)
	f := NewEligibilityFilter(c, reg)

	item := &secondary.Item{ID: "i1", Type: catalog.ItemTypeAccount}
	ids := eligibleIDs(f, item, &secondary.SubjectProfile{}, nil, time.Now())
	assert.Equal(t, []string{"active"}, ids)
}
