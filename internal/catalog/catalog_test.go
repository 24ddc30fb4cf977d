package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticCatalogByID(t *testing.T) {
	c := Builtin()

	s, err := c.ByID("factual-dispute")
	require.NoError(t, err)
	assert.Equal(t, "Factual Accuracy Dispute", s.Name)
	assert.Equal(t, 1, s.Tier)

	_, err = c.ByID("no-such-strategy")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStaticCatalogByTier(t *testing.T) {
	c := Builtin()

	tier1 := c.ByTier(1)
	require.Len(t, tier1, 2)
	assert.Equal(t, "obsolete-information", tier1[0].ID)
	assert.Equal(t, "factual-dispute", tier1[1].ID)

	assert.Empty(t, c.ByTier(7))
}

func TestStaticCatalogByItemType(t *testing.T) {
	c := Builtin()

	for _, s := range c.ByItemType(ItemTypeInquiry) {
		assert.True(t, s.Targets(ItemTypeInquiry), "strategy %s returned for inquiry but does not target it", s.ID)
	}

	collections := c.ByItemType(ItemTypeCollection)
	ids := make([]string, len(collections))
	for i, s := range collections {
		ids[i] = s.ID
	}
	assert.Contains(t, ids, "debt-validation")
	assert.Contains(t, ids, "pay-for-delete")
	assert.NotContains(t, ids, "inquiry-challenge")
}

func TestNewStaticCatalogRejectsDuplicates(t *testing.T) {
	_, err := NewStaticCatalog([]*Strategy{
		{ID: "dup", Tier: 1},
		{ID: "dup", Tier: 2},
	})
	assert.Error(t, err)
}

// The builtin table is data, not code: sanity-check the bounds the scoring
// math relies on.
func TestBuiltinTableIntegrity(t *testing.T) {
	c := Builtin()
	all := c.All()
	require.NotEmpty(t, all)

	for _, s := range all {
		assert.NotEmpty(t, s.ID)
		assert.NotEmpty(t, s.Name)
		assert.NotEmpty(t, s.LegalBasis, "strategy %s", s.ID)
		assert.NotEmpty(t, s.TargetItems, "strategy %s", s.ID)
		assert.NotEmpty(t, s.Timeline, "strategy %s", s.ID)
		assert.Greater(t, s.BaseSuccessRate, 0.0, "strategy %s", s.ID)
		assert.LessOrEqual(t, s.BaseSuccessRate, 1.0, "strategy %s", s.ID)
		assert.GreaterOrEqual(t, s.Tier, 1, "strategy %s", s.ID)
		assert.LessOrEqual(t, s.Tier, 7, "strategy %s", s.ID)
		assert.True(t, s.Active, "strategy %s", s.ID)
	}
}

func TestAllReturnsACopy(t *testing.T) {
	c := Builtin()
	first := c.All()
	first[0] = nil

	again := c.All()
	assert.NotNil(t, again[0])
}
