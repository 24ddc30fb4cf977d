// Package primary defines the service interfaces and boundary types the
// engine exposes to callers.
package primary

import "context"

// SelectionService ranks applicable strategies for an item.
type SelectionService interface {
	// Recommend returns eligible strategies for the item, ranked by
	// adjusted success probability times impact. An empty result is a
	// normal outcome, not an error.
	Recommend(ctx context.Context, req RecommendRequest) ([]*Recommendation, error)
}

// RecommendRequest identifies the item and subject to recommend for.
type RecommendRequest struct {
	ItemID    string `validate:"required"`
	SubjectID string `validate:"required"`
	Limit     int    `validate:"gte=0"` // 0 means no limit
}

// Recommendation is a ranked, scored strategy for an item. It is derived
// data, produced fresh on every call and never persisted as truth.
type Recommendation struct {
	StrategyID                 string
	StrategyName               string
	ItemID                     string
	Tier                       int
	AdjustedSuccessProbability float64
	ImpactScore                float64
	Reasoning                  []string
	ExpectedTimeline           string
	Contraindications          []string
}
