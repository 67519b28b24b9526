package store

import (
	"context"
	"strings"
	"sync"

	"basketwise/internal/signup/models"
	"basketwise/pkg/domain"
	"basketwise/pkg/platform/sentinel"
)

// InMemory holds signups behind a RWMutex, enforcing one signup per
// (email, region) pair like the postgres unique constraint.
type InMemory struct {
	mu      sync.RWMutex
	signups []*models.Signup
}

// NewInMemory creates an empty in-memory signup store.
func NewInMemory() *InMemory {
	return &InMemory{}
}

// Insert adds a signup, rejecting a duplicate email for the same region.
func (s *InMemory) Insert(_ context.Context, signup *models.Signup) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.signups {
		if existing.RegionID == signup.RegionID && strings.EqualFold(existing.Email, signup.Email) {
			return sentinel.ErrConflict
		}
	}
	cp := *signup
	s.signups = append(s.signups, &cp)
	return nil
}

// CountByRegion returns the number of signups for a region.
func (s *InMemory) CountByRegion(_ context.Context, regionID domain.RegionID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, signup := range s.signups {
		if signup.RegionID == regionID {
			count++
		}
	}
	return count, nil
}
