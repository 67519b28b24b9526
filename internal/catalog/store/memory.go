package store

import (
	"context"
	"strings"
	"sync"

	"basketwise/internal/catalog/models"
	"basketwise/pkg/domain"
	"basketwise/pkg/platform/sentinel"
)

// InMemory holds products behind a RWMutex, preserving insertion order so
// catalog iteration (and therefore evaluator tie-breaking) is deterministic.
type InMemory struct {
	mu       sync.RWMutex
	products map[domain.ProductID]*models.Product
	order    []domain.ProductID
}

// NewInMemory creates an empty in-memory catalog store.
func NewInMemory() *InMemory {
	return &InMemory{products: make(map[domain.ProductID]*models.Product)}
}

// Upsert inserts or replaces a product.
func (s *InMemory) Upsert(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[p.ID]; !exists {
		s.order = append(s.order, p.ID)
	}
	s.products[p.ID] = p.Clone()
	return nil
}

// FindByID returns one product.
func (s *InMemory) FindByID(_ context.Context, id domain.ProductID) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return p.Clone(), nil
}

// ListByRegion returns products for a region, optionally filtered by
// category, in insertion order.
func (s *InMemory) ListByRegion(_ context.Context, regionID domain.RegionID, category string) ([]*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Product, 0)
	for _, id := range s.order {
		p := s.products[id]
		if p.RegionID != regionID {
			continue
		}
		if category != "" && !strings.EqualFold(p.Category, category) {
			continue
		}
		out = append(out, p.Clone())
	}
	return out, nil
}

// ListAll returns the whole catalog in insertion order. The bundle matcher
// uses this for its deliberately unscoped "best anywhere" search.
func (s *InMemory) ListAll(_ context.Context) ([]*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Product, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.products[id].Clone())
	}
	return out, nil
}
