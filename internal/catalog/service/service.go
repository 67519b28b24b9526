package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"basketwise/internal/catalog/models"
	"basketwise/internal/platform/metrics"
	"basketwise/pkg/domain"
	dErrors "basketwise/pkg/domain-errors"
)

// Store is the catalog persistence contract.
type Store interface {
	Upsert(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, id domain.ProductID) (*models.Product, error)
	ListByRegion(ctx context.Context, regionID domain.RegionID, category string) ([]*models.Product, error)
	ListAll(ctx context.Context) ([]*models.Product, error)
}

// Cache is the read-through cache contract, satisfied by the wrapped redis
// client. A nil Cache disables caching.
type Cache interface {
	GetCached(ctx context.Context, key string) ([]byte, error)
	SetCached(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type Option func(*Service)

// WithCache enables the read-through region catalog cache.
func WithCache(cache Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache
		s.cacheTTL = ttl
	}
}

// WithMetrics wires catalog fetch outcome counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// Service serves the product catalog. A primary fetch failure degrades to
// the seeded fallback dataset: the client sees a stale catalog rather than
// an error.
type Service struct {
	primary  Store
	fallback Store
	cache    Cache
	cacheTTL time.Duration
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func New(primary, fallback Store, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Products returns the catalog for a region, optionally filtered by
// category. Failures degrade: primary error falls back to the bundled
// dataset, and a fallback error yields an empty catalog, never an error.
func (s *Service) Products(ctx context.Context, regionID domain.RegionID, category string) []*models.Product {
	key := fmt.Sprintf("catalog:%s:%s", regionID, category)

	if s.cache != nil {
		if raw, err := s.cache.GetCached(ctx, key); err == nil && raw != nil {
			var products []*models.Product
			if err := json.Unmarshal(raw, &products); err == nil {
				s.countFetch("hit")
				return products
			}
		}
	}

	products, err := s.primary.ListByRegion(ctx, regionID, category)
	if err != nil {
		s.logger.WarnContext(ctx, "catalog fetch failed, using fallback dataset",
			"region_id", regionID.String(), "error", err.Error())
		s.countFetch("fallback")
		products, err = s.fallback.ListByRegion(ctx, regionID, category)
		if err != nil {
			return nil
		}
		return products
	}
	s.countFetch("miss")

	if s.cache != nil {
		if raw, err := json.Marshal(products); err == nil {
			// Best-effort: a failed cache write never surfaces.
			_ = s.cache.SetCached(ctx, key, raw, s.cacheTTL)
		}
	}
	return products
}

// AllProducts returns the whole catalog across regions, for the bundle
// matcher's global search. Same degradation contract as Products.
func (s *Service) AllProducts(ctx context.Context) []*models.Product {
	products, err := s.primary.ListAll(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "catalog fetch failed, using fallback dataset", "error", err.Error())
		products, err = s.fallback.ListAll(ctx)
		if err != nil {
			return nil
		}
	}
	return products
}

// Product returns one product by ID.
func (s *Service) Product(ctx context.Context, id domain.ProductID) (*models.Product, error) {
	p, err := s.primary.FindByID(ctx, id)
	if err != nil {
		p, err = s.fallback.FindByID(ctx, id)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeNotFound, "unknown product: "+id.String())
		}
	}
	return p, nil
}

// Upsert validates and persists a product (admin surface).
func (s *Service) Upsert(ctx context.Context, p *models.Product) error {
	if p.Name == "" {
		return dErrors.New(dErrors.CodeBadRequest, "product name is required")
	}
	if p.RegionID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "product region is required")
	}
	for storeID, cents := range p.Prices {
		if cents < 0 {
			return dErrors.New(dErrors.CodeBadRequest,
				"negative price for store "+storeID.String())
		}
	}
	if p.ID.IsNil() {
		p.ID = domain.ProductID(uuid.New())
	}
	if err := s.primary.Upsert(ctx, p); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save product")
	}
	return nil
}

func (s *Service) countFetch(outcome string) {
	if s.metrics != nil {
		s.metrics.CatalogFetches.WithLabelValues(outcome).Inc()
	}
}
