package app

import (
	"fmt"
	"sort"
	"time"

	"github.com/example/redress/internal/catalog"
	"github.com/example/redress/internal/ports/primary"
	"github.com/example/redress/internal/ports/secondary"
)

// Scoring thresholds. Balances are in cents.
const (
	probabilityCeiling = 0.95

	agePenaltyThreshold     = 5 * 365 * 24 * time.Hour
	ageDeepPenaltyThreshold = 10 * 365 * 24 * time.Hour

	balancePenaltyCents     = 10_000_00
	balanceDeepPenaltyCents = 50_000_00
	balanceImpactCents      = 1_000_00

	frivolousWindow = 30 * 24 * time.Hour
)

// ScoringEngine computes adjusted success probabilities and impact scores
// for eligible strategies and ranks them. All methods are pure.
type ScoringEngine struct{}

// NewScoringEngine creates a scoring engine.
func NewScoringEngine() *ScoringEngine {
	return &ScoringEngine{}
}

// Score produces a recommendation for one strategy against one item.
func (e *ScoringEngine) Score(s *catalog.Strategy, item *secondary.Item, profile *secondary.SubjectProfile, now time.Time) *primary.Recommendation {
	complexity := itemComplexityMultiplier(item, now)
	boost := profileMultiplier(profile)

	adjusted := s.BaseSuccessRate * complexity * boost
	if adjusted > probabilityCeiling {
		adjusted = probabilityCeiling
	}

	return &primary.Recommendation{
		StrategyID:                 s.ID,
		StrategyName:               s.Name,
		ItemID:                     item.ID,
		Tier:                       s.Tier,
		AdjustedSuccessProbability: adjusted,
		ImpactScore:                impactScore(s, item),
		Reasoning:                  reasoning(s, adjusted),
		ExpectedTimeline:           s.Timeline,
		Contraindications:          contraindications(s, item, now),
	}
}

// Rank scores every strategy and sorts descending by probability times
// impact. The sort is stable, so equal scores keep catalog order.
func (e *ScoringEngine) Rank(strategies []*catalog.Strategy, item *secondary.Item, profile *secondary.SubjectProfile, now time.Time) []*primary.Recommendation {
	recs := make([]*primary.Recommendation, len(strategies))
	for i, s := range strategies {
		recs[i] = e.Score(s, item, profile, now)
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].AdjustedSuccessProbability*recs[i].ImpactScore >
			recs[j].AdjustedSuccessProbability*recs[j].ImpactScore
	})
	return recs
}

// itemComplexityMultiplier applies independent multiplicative penalties
// for age, balance and payment status. Within a category the deeper
// threshold supersedes the shallower one. Multiplication is commutative,
// so the application order never changes the result.
func itemComplexityMultiplier(item *secondary.Item, now time.Time) float64 {
	m := 1.0

	age := item.Age(now)
	switch {
	case age > ageDeepPenaltyThreshold:
		m *= 0.8
	case age > agePenaltyThreshold:
		m *= 0.9
	}

	switch {
	case item.BalanceCents > balanceDeepPenaltyCents:
		m *= 0.8
	case item.BalanceCents > balancePenaltyCents:
		m *= 0.9
	}

	switch item.PaymentStatus {
	case secondary.PaymentStatusChargeOff:
		m *= 0.8
	case secondary.PaymentStatusCollection:
		m *= 0.7
	}

	return m
}

func profileMultiplier(profile *secondary.SubjectProfile) float64 {
	switch profile.PlanTier {
	case secondary.PlanTierPlus:
		return 1.1
	case secondary.PlanTierPremium:
		return 1.2
	default:
		return 1.0
	}
}

// impactScore composes the tier, item-type and balance contributions and
// clamps the result to [0, 1].
func impactScore(s *catalog.Strategy, item *secondary.Item) float64 {
	score := 0.5
	score += float64(6-s.Tier) * 0.1

	switch item.Type {
	case catalog.ItemTypePublicRecord:
		score += 0.3
	case catalog.ItemTypeCollection:
		score += 0.2
	case catalog.ItemTypeAccount:
		score += 0.1
	}

	if item.BalanceCents > balanceImpactCents {
		score += 0.1
	}
	if item.BalanceCents > balancePenaltyCents {
		score += 0.2
	}

	if score > 1.0 {
		score = 1.0
	}
	if score < 0 {
		score = 0
	}
	return score
}

// reasoning produces the ordered human-readable facts attached to a
// recommendation. Derived text only; never used in ranking.
func reasoning(s *catalog.Strategy, adjusted float64) []string {
	out := []string{
		fmt.Sprintf("historical base success rate %.0f%%", s.BaseSuccessRate*100),
		s.LegalBasis,
	}

	switch {
	case adjusted < s.BaseSuccessRate:
		out = append(out, fmt.Sprintf("item complexity lowers the expected success rate to %.0f%%", adjusted*100))
	case adjusted > s.BaseSuccessRate:
		out = append(out, fmt.Sprintf("subscription tier raises the expected success rate to %.0f%%", adjusted*100))
	default:
		out = append(out, "expected success rate matches the historical baseline")
	}

	for i, tactic := range s.KeyTactics {
		if i == 2 {
			break
		}
		out = append(out, "key tactic: "+tactic)
	}
	return out
}

func contraindications(s *catalog.Strategy, item *secondary.Item, now time.Time) []string {
	var out []string

	recent := 0
	for _, d := range item.DisputeHistory {
		if now.Sub(d.DisputedAt) <= frivolousWindow {
			recent++
		}
	}
	if recent >= 2 {
		out = append(out, "recent disputes may appear frivolous")
	}

	if s.ID == "identity-theft-block" && !item.IdentityTheftFlag {
		out = append(out, "no identity theft indicators on file; a block demand without a report will be rejected")
	}

	return out
}
