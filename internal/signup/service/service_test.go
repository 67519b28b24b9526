package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	directory "basketwise/internal/directory/store"
	"basketwise/internal/signup/events"
	"basketwise/internal/signup/models"
	"basketwise/internal/signup/store"
	"basketwise/pkg/domain"
	dErrors "basketwise/pkg/domain-errors"
)

// countingStore wraps the in-memory store and records Insert calls so the
// tests can assert validation short-circuits before persistence.
type countingStore struct {
	*store.InMemory
	inserts int
}

func (c *countingStore) Insert(ctx context.Context, signup *models.Signup) error {
	c.inserts++
	return c.InMemory.Insert(ctx, signup)
}

// recordingPublisher captures published signups.
type recordingPublisher struct {
	published []*models.Signup
	fail      bool
}

func (p *recordingPublisher) PublishSignup(_ context.Context, signup *models.Signup) error {
	if p.fail {
		return errors.New("broker unreachable")
	}
	p.published = append(p.published, signup)
	return nil
}

func (p *recordingPublisher) Close() {}

type ServiceSuite struct {
	suite.Suite
	store     *countingStore
	publisher *recordingPublisher
	svc       *Service
	ctx       context.Context
}

func (s *ServiceSuite) SetupTest() {
	s.store = &countingStore{InMemory: store.NewInMemory()}
	s.publisher = &recordingPublisher{}
	s.svc = New(s.store, s.publisher, nil, slog.New(slog.DiscardHandler))
	s.ctx = context.Background()
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) TestRegister() {
	signup, err := s.svc.Register(s.ctx, "Asha Verma", "asha@example.com", directory.RegionJaipur)
	s.Require().NoError(err)
	s.Equal("Asha Verma", signup.Name)
	s.False(signup.ID.IsNil())
	s.Equal(1, s.svc.Count(s.ctx, directory.RegionJaipur))

	s.Run("signup event published", func() {
		s.Require().Len(s.publisher.published, 1)
		s.Equal(signup.ID, s.publisher.published[0].ID)
	})
}

// TestEmailValidatedBeforeStore verifies a malformed email never reaches
// persistence: the format check is local and runs first.
func (s *ServiceSuite) TestEmailValidatedBeforeStore() {
	cases := []string{"", "no-at-sign", "two@@signs.com", "user@nodot", "spaces in@mail.com"}
	for _, addr := range cases {
		_, err := s.svc.Register(s.ctx, "Name", addr, directory.RegionJaipur)
		s.Require().Error(err, addr)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest), addr)
	}
	s.Zero(s.store.inserts, "no store call for rejected email")
}

func (s *ServiceSuite) TestBlankNameDerivedFromEmail() {
	signup, err := s.svc.Register(s.ctx, "  ", "ravi.kumar@example.com", directory.RegionShimla)
	s.Require().NoError(err)
	s.NotEmpty(signup.Name)
	s.NotEqual("  ", signup.Name)
}

func (s *ServiceSuite) TestDuplicateConflict() {
	_, err := s.svc.Register(s.ctx, "A", "dup@example.com", directory.RegionJaipur)
	s.Require().NoError(err)

	s.Run("same region rejects, case-insensitive", func() {
		_, err := s.svc.Register(s.ctx, "B", "DUP@example.com", directory.RegionJaipur)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Equal(1, s.svc.Count(s.ctx, directory.RegionJaipur))
	})

	s.Run("another region accepts the same email", func() {
		_, err := s.svc.Register(s.ctx, "A", "dup@example.com", directory.RegionLudhiana)
		s.Require().NoError(err)
	})
}

func (s *ServiceSuite) TestSubscribersNotified() {
	var seen []int
	cancel := s.svc.Subscribe(directory.RegionJaipur, func(count int) {
		seen = append(seen, count)
	})

	_, err := s.svc.Register(s.ctx, "A", "one@example.com", directory.RegionJaipur)
	s.Require().NoError(err)
	_, err = s.svc.Register(s.ctx, "B", "two@example.com", directory.RegionJaipur)
	s.Require().NoError(err)

	s.Equal([]int{1, 2}, seen)

	s.Run("cancel stops delivery", func() {
		cancel()
		_, err := s.svc.Register(s.ctx, "C", "three@example.com", directory.RegionJaipur)
		s.Require().NoError(err)
		s.Equal([]int{1, 2}, seen)
	})

	s.Run("other regions do not notify", func() {
		other := 0
		s.svc.Subscribe(directory.RegionShimla, func(int) { other++ })
		_, err := s.svc.Register(s.ctx, "D", "four@example.com", directory.RegionJaipur)
		s.Require().NoError(err)
		s.Zero(other)
	})
}

// TestCancelRemovesOnlyItsSubscriber: cancelling one listener must not
// detach or misroute any listener registered after it.
func (s *ServiceSuite) TestCancelRemovesOnlyItsSubscriber() {
	var first, second, third int
	cancelFirst := s.svc.Subscribe(directory.RegionJaipur, func(int) { first++ })
	cancelSecond := s.svc.Subscribe(directory.RegionJaipur, func(int) { second++ })
	s.svc.Subscribe(directory.RegionJaipur, func(int) { third++ })

	cancelFirst()
	_, err := s.svc.Register(s.ctx, "A", "one@example.com", directory.RegionJaipur)
	s.Require().NoError(err)
	s.Zero(first)
	s.Equal(1, second)
	s.Equal(1, third)

	s.Run("a later cancel still removes the right listener", func() {
		cancelSecond()
		_, err := s.svc.Register(s.ctx, "B", "two@example.com", directory.RegionJaipur)
		s.Require().NoError(err)
		s.Zero(first)
		s.Equal(1, second)
		s.Equal(2, third)
	})

	s.Run("cancel is idempotent", func() {
		cancelSecond()
		_, err := s.svc.Register(s.ctx, "C", "three@example.com", directory.RegionJaipur)
		s.Require().NoError(err)
		s.Equal(1, second)
		s.Equal(3, third)
	})
}

// TestPublishFailureDoesNotFailSignup: event delivery is best-effort.
func (s *ServiceSuite) TestPublishFailureDoesNotFailSignup() {
	s.publisher.fail = true

	signup, err := s.svc.Register(s.ctx, "A", "ok@example.com", directory.RegionJaipur)
	s.Require().NoError(err)
	s.NotNil(signup)
	s.Equal(1, s.svc.Count(s.ctx, directory.RegionJaipur))
}

func (s *ServiceSuite) TestCountPrimesFromStore() {
	seeded := store.NewInMemory()
	for _, addr := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		err := seeded.Insert(s.ctx, &models.Signup{
			ID:       domain.SignupID{},
			Email:    addr,
			RegionID: directory.RegionJaipur,
		})
		s.Require().NoError(err)
	}

	svc := New(seeded, s.publisher, nil, slog.New(slog.DiscardHandler))
	s.Equal(3, svc.Count(s.ctx, directory.RegionJaipur))

	s.Run("a new signup increments, not double-counts", func() {
		_, err := svc.Register(s.ctx, "D", "d@x.com", directory.RegionJaipur)
		s.Require().NoError(err)
		s.Equal(4, svc.Count(s.ctx, directory.RegionJaipur))
	})
}

var _ events.Publisher = (*recordingPublisher)(nil)
