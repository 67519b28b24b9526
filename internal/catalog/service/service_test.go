package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"basketwise/internal/catalog/models"
	"basketwise/internal/catalog/store"
	directory "basketwise/internal/directory/store"
	"basketwise/pkg/domain"
	dErrors "basketwise/pkg/domain-errors"
)

type failingStore struct{}

var errConnRefused = errors.New("dial tcp: connection refused")

func (failingStore) Upsert(context.Context, *models.Product) error { return errConnRefused }
func (failingStore) FindByID(context.Context, domain.ProductID) (*models.Product, error) {
	return nil, errConnRefused
}
func (failingStore) ListByRegion(context.Context, domain.RegionID, string) ([]*models.Product, error) {
	return nil, errConnRefused
}
func (failingStore) ListAll(context.Context) ([]*models.Product, error) {
	return nil, errConnRefused
}

// fakeCache is an in-process Cache with counters for hit-path assertions.
type fakeCache struct {
	values map[string][]byte
	gets   int
	sets   int
}

func newFakeCache() *fakeCache { return &fakeCache{values: make(map[string][]byte)} }

func (c *fakeCache) GetCached(_ context.Context, key string) ([]byte, error) {
	c.gets++
	return c.values[key], nil
}

func (c *fakeCache) SetCached(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.sets++
	c.values[key] = value
	return nil
}

type ServiceSuite struct {
	suite.Suite
	seeded *store.InMemory
	ctx    context.Context
	logger *slog.Logger
}

func (s *ServiceSuite) SetupTest() {
	s.seeded = store.NewInMemory()
	store.SeedCatalog(s.seeded)
	s.ctx = context.Background()
	s.logger = slog.New(slog.DiscardHandler)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) TestProductsDegradeToFallback() {
	svc := New(failingStore{}, s.seeded, s.logger)

	products := svc.Products(s.ctx, directory.RegionTricity, "")
	s.Require().NotEmpty(products)

	s.Run("category filter applies on the fallback path too", func() {
		dairy := svc.Products(s.ctx, directory.RegionTricity, "Dairy")
		s.Require().NotEmpty(dairy)
		for _, p := range dairy {
			s.Equal("Dairy", p.Category)
		}
	})

	s.Run("both stores failing yields an empty catalog, not an error", func() {
		broken := New(failingStore{}, failingStore{}, s.logger)
		s.Empty(broken.Products(s.ctx, directory.RegionTricity, ""))
	})
}

func (s *ServiceSuite) TestCacheReadThrough() {
	cache := newFakeCache()
	svc := New(s.seeded, s.seeded, s.logger, WithCache(cache, time.Minute))

	first := svc.Products(s.ctx, directory.RegionTricity, "")
	s.Require().NotEmpty(first)
	s.Equal(1, cache.sets, "miss populates the cache")

	second := svc.Products(s.ctx, directory.RegionTricity, "")
	s.Equal(1, cache.sets, "hit does not rewrite")
	s.Equal(len(first), len(second))

	s.Run("cached products round-trip their price maps", func() {
		for i := range first {
			s.Equal(first[i].ID, second[i].ID)
			s.Equal(first[i].Prices, second[i].Prices)
		}
	})
}

func (s *ServiceSuite) TestProductNotFound() {
	svc := New(s.seeded, s.seeded, s.logger)

	_, err := svc.Product(s.ctx, domain.ProductID{})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestUpsertValidation() {
	svc := New(s.seeded, s.seeded, s.logger)

	s.Run("name required", func() {
		err := svc.Upsert(s.ctx, &models.Product{RegionID: directory.RegionTricity})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("region required", func() {
		err := svc.Upsert(s.ctx, &models.Product{Name: "Ghee"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("negative price rejected", func() {
		err := svc.Upsert(s.ctx, &models.Product{
			Name:     "Ghee",
			RegionID: directory.RegionTricity,
			Prices: map[domain.StoreID]domain.Cents{
				directory.StoreGreenBasket: -100,
			},
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("valid product gets an id", func() {
		p := &models.Product{
			Name:     "Desi Ghee",
			Category: "Dairy",
			RegionID: directory.RegionTricity,
			Prices: map[domain.StoreID]domain.Cents{
				directory.StoreGreenBasket: 64900,
			},
		}
		s.Require().NoError(svc.Upsert(s.ctx, p))
		s.False(p.ID.IsNil())

		got, err := svc.Product(s.ctx, p.ID)
		s.Require().NoError(err)
		s.Equal("Desi Ghee", got.Name)
	})
}
