package app

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/example/redress/internal/ports/primary"
	"github.com/example/redress/internal/ports/secondary"
)

// SelectionServiceImpl implements the SelectionService interface.
type SelectionServiceImpl struct {
	store    secondary.RecordStore
	filter   *EligibilityFilter
	engine   *ScoringEngine
	clock    secondary.Clock
	validate *validator.Validate
}

// NewSelectionService creates a SelectionService with injected dependencies.
func NewSelectionService(store secondary.RecordStore, filter *EligibilityFilter, engine *ScoringEngine, clock secondary.Clock) *SelectionServiceImpl {
	return &SelectionServiceImpl{
		store:    store,
		filter:   filter,
		engine:   engine,
		clock:    clock,
		validate: validator.New(),
	}
}

// Recommend returns ranked recommendations for an item. Selection is pure
// given the store reads, so failed calls are always safe to retry.
func (s *SelectionServiceImpl) Recommend(ctx context.Context, req primary.RecommendRequest) ([]*primary.Recommendation, error) {
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	item, err := s.store.GetItem(ctx, req.ItemID)
	if err != nil {
		return nil, fmt.Errorf("item not found: %w", err)
	}

	profile, err := s.store.GetSubjectProfile(ctx, req.SubjectID)
	if err != nil {
		return nil, fmt.Errorf("subject not found: %w", err)
	}

	attempted, err := s.store.AttemptedStrategies(ctx, req.ItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempted strategies: %w", err)
	}

	now := s.clock.Now()
	eligible := s.filter.Eligible(item, profile, attempted, now)
	recs := s.engine.Rank(eligible, item, profile, now)

	if req.Limit > 0 && len(recs) > req.Limit {
		recs = recs[:req.Limit]
	}
	return recs, nil
}

// Ensure SelectionServiceImpl implements the interface
var _ primary.SelectionService = (*SelectionServiceImpl)(nil)
