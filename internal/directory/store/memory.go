package store

import (
	"context"
	"strings"
	"sync"

	"basketwise/internal/directory/models"
	"basketwise/pkg/domain"
	"basketwise/pkg/platform/sentinel"
)

// InMemory holds regions and stores behind a RWMutex. It doubles as the
// static fallback dataset when the postgres directory is unreachable.
type InMemory struct {
	mu      sync.RWMutex
	regions map[domain.RegionID]*models.Region
	order   []domain.RegionID
	stores  map[domain.StoreID]*models.Store
	byOrder []domain.StoreID
}

// NewInMemory creates an empty in-memory directory store.
func NewInMemory() *InMemory {
	return &InMemory{
		regions: make(map[domain.RegionID]*models.Region),
		stores:  make(map[domain.StoreID]*models.Store),
	}
}

// UpsertRegion inserts or replaces a region.
func (s *InMemory) UpsertRegion(_ context.Context, region *models.Region) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.regions[region.ID]; !exists {
		s.order = append(s.order, region.ID)
	}
	cp := *region
	s.regions[region.ID] = &cp
	return nil
}

// UpsertStore inserts or replaces a store. The referenced region must exist.
func (s *InMemory) UpsertStore(_ context.Context, st *models.Store) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.regions[st.RegionID]; !ok {
		return sentinel.ErrNotFound
	}
	if _, exists := s.stores[st.ID]; !exists {
		s.byOrder = append(s.byOrder, st.ID)
	}
	cp := *st
	s.stores[st.ID] = &cp
	return nil
}

// ListRegions returns all regions in insertion order.
func (s *InMemory) ListRegions(_ context.Context) ([]*models.Region, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Region, 0, len(s.order))
	for _, id := range s.order {
		cp := *s.regions[id]
		out = append(out, &cp)
	}
	return out, nil
}

// FindRegionBySlug returns the region with the given slug (case-insensitive).
func (s *InMemory) FindRegionBySlug(_ context.Context, slug string) (*models.Region, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.order {
		r := s.regions[id]
		if strings.EqualFold(r.Slug, slug) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// ListStoresByRegion returns stores whose RegionID matches, or whose District
// is one of the region's legacy units, in insertion order.
func (s *InMemory) ListStoresByRegion(_ context.Context, region *models.Region) ([]*models.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Store, 0)
	for _, id := range s.byOrder {
		st := s.stores[id]
		if st.RegionID == region.ID || inLegacyUnits(region, st.District) {
			cp := *st
			out = append(out, &cp)
		}
	}
	return out, nil
}

func inLegacyUnits(region *models.Region, district string) bool {
	for _, unit := range region.LegacyUnits {
		if strings.EqualFold(unit, district) {
			return true
		}
	}
	return false
}
