// Package catalog holds the immutable registry of remediation strategies.
package catalog

import (
	"errors"
	"fmt"
)

// ItemType enumerates the kinds of flagged records a strategy can target.
type ItemType string

const (
	ItemTypeAccount      ItemType = "account"
	ItemTypeInquiry      ItemType = "inquiry"
	ItemTypePublicRecord ItemType = "public-record"
	ItemTypeCollection   ItemType = "collection"
)

// ErrNotFound is returned when a strategy id is unknown to the catalog.
var ErrNotFound = errors.New("strategy not found")

// Strategy is a catalogued remediation tactic. Strategies are immutable
// after load; callers must not mutate the returned values.
type Strategy struct {
	ID              string
	Name            string
	Tactic          string
	LegalBasis      string
	BaseSuccessRate float64
	Tier            int // 1-7, lower is higher priority
	TargetItems     []ItemType
	KeyTactics      []string
	Prerequisites   []string
	Timeline        string
	Active          bool
}

// Targets reports whether the strategy applies to the given item type.
func (s *Strategy) Targets(t ItemType) bool {
	for _, tt := range s.TargetItems {
		if tt == t {
			return true
		}
	}
	return false
}

// Catalog is the injectable lookup interface over the strategy registry.
type Catalog interface {
	// ByID returns the strategy with the given id, or ErrNotFound.
	ByID(id string) (*Strategy, error)

	// ByTier returns all strategies of the given tier in catalog order.
	ByTier(tier int) []*Strategy

	// ByItemType returns all strategies targeting the item type in catalog order.
	ByItemType(t ItemType) []*Strategy

	// All returns every strategy in catalog order.
	All() []*Strategy
}

// StaticCatalog is an in-memory Catalog backed by a fixed table.
type StaticCatalog struct {
	strategies []*Strategy
	byID       map[string]*Strategy
}

// NewStaticCatalog builds a catalog from the given table, preserving order.
// Duplicate ids are rejected.
func NewStaticCatalog(strategies []*Strategy) (*StaticCatalog, error) {
	byID := make(map[string]*Strategy, len(strategies))
	for _, s := range strategies {
		if _, exists := byID[s.ID]; exists {
			return nil, fmt.Errorf("duplicate strategy id %q", s.ID)
		}
		byID[s.ID] = s
	}
	return &StaticCatalog{strategies: strategies, byID: byID}, nil
}

// ByID returns the strategy with the given id.
func (c *StaticCatalog) ByID(id string) (*Strategy, error) {
	s, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("strategy %s: %w", id, ErrNotFound)
	}
	return s, nil
}

// ByTier returns all strategies of the given tier in catalog order.
func (c *StaticCatalog) ByTier(tier int) []*Strategy {
	var out []*Strategy
	for _, s := range c.strategies {
		if s.Tier == tier {
			out = append(out, s)
		}
	}
	return out
}

// ByItemType returns all strategies targeting the item type in catalog order.
func (c *StaticCatalog) ByItemType(t ItemType) []*Strategy {
	var out []*Strategy
	for _, s := range c.strategies {
		if s.Targets(t) {
			out = append(out, s)
		}
	}
	return out
}

// All returns every strategy in catalog order.
func (c *StaticCatalog) All() []*Strategy {
	out := make([]*Strategy, len(c.strategies))
	copy(out, c.strategies)
	return out
}

// Ensure StaticCatalog implements the interface
var _ Catalog = (*StaticCatalog)(nil)
