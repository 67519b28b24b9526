package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"basketwise/internal/platform/metrics"
	"basketwise/internal/signup/events"
	"basketwise/internal/signup/models"
	"basketwise/pkg/domain"
	dErrors "basketwise/pkg/domain-errors"
	"basketwise/pkg/email"
	"basketwise/pkg/platform/sentinel"
)

// Store is the signup persistence contract.
type Store interface {
	Insert(ctx context.Context, signup *models.Signup) error
	CountByRegion(ctx context.Context, regionID domain.RegionID) (int, error)
}

// Subscriber receives the new live count after each accepted signup.
type Subscriber func(count int)

// Service registers waitlist signups and maintains live per-region counts.
// The count is a locally held counter primed from the store and incremented
// on each accepted insert; subscribers are notified synchronously.
type Service struct {
	store     Store
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger

	mu     sync.Mutex
	counts map[domain.RegionID]int
	primed map[domain.RegionID]bool
	subs   map[domain.RegionID]map[uint64]Subscriber
	subSeq uint64
}

func New(store Store, publisher events.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		counts:    make(map[domain.RegionID]int),
		primed:    make(map[domain.RegionID]bool),
		subs:      make(map[domain.RegionID]map[uint64]Subscriber),
	}
}

// Register validates and persists a waitlist signup. The email format check
// runs locally before any store or network call. A blank name is derived
// from the email address.
func (s *Service) Register(ctx context.Context, name, emailAddr string, regionID domain.RegionID) (*models.Signup, error) {
	// Lowercase so the (email, region) uniqueness rule is case-insensitive
	// across store implementations.
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if !email.Validate(emailAddr) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid email address")
	}
	if regionID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "region is required")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		first, last := email.DeriveNameFromEmail(emailAddr)
		name = first + " " + last
	}

	signup := &models.Signup{
		ID:        domain.SignupID(uuid.New()),
		Name:      name,
		Email:     emailAddr,
		RegionID:  regionID,
		CreatedAt: time.Now(),
	}

	if err := s.store.Insert(ctx, signup); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email already on the waitlist for this region")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register signup")
	}

	if s.metrics != nil {
		s.metrics.IncrementSignupsCreated()
	}

	count := s.bump(ctx, regionID)
	s.notify(regionID, count)

	if err := s.publisher.PublishSignup(ctx, signup); err != nil {
		// Event delivery is best-effort; the signup itself succeeded.
		s.logger.WarnContext(ctx, "signup event publish failed",
			"signup_id", signup.ID.String(), "error", err.Error())
	}

	return signup, nil
}

// Count returns the live waitlist count for a region. A store failure
// degrades to the locally held counter.
func (s *Service) Count(ctx context.Context, regionID domain.RegionID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.primeLocked(ctx, regionID)
}

// Subscribe registers a live count listener. The returned cancel func
// removes exactly this listener, regardless of how many others came and
// went in the meantime.
func (s *Service) Subscribe(regionID domain.RegionID, fn Subscriber) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subSeq++
	id := s.subSeq
	if s.subs[regionID] == nil {
		s.subs[regionID] = make(map[uint64]Subscriber)
	}
	s.subs[regionID][id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs[regionID], id)
	}
}

// bump records an accepted insert. On first touch the stored count already
// includes the fresh row, so priming replaces the increment.
func (s *Service) bump(ctx context.Context, regionID domain.RegionID) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.primed[regionID] {
		if stored, err := s.store.CountByRegion(ctx, regionID); err == nil {
			s.counts[regionID] = stored
			s.primed[regionID] = true
			return stored
		}
	}
	s.counts[regionID]++
	return s.counts[regionID]
}

// primeLocked loads the stored count once per region; later reads serve the
// local counter.
func (s *Service) primeLocked(ctx context.Context, regionID domain.RegionID) int {
	if !s.primed[regionID] {
		if stored, err := s.store.CountByRegion(ctx, regionID); err == nil {
			if stored > s.counts[regionID] {
				s.counts[regionID] = stored
			}
			s.primed[regionID] = true
		}
	}
	return s.counts[regionID]
}

func (s *Service) notify(regionID domain.RegionID, count int) {
	s.mu.Lock()
	subs := make([]Subscriber, 0, len(s.subs[regionID]))
	for _, fn := range s.subs[regionID] {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(count)
	}
}
