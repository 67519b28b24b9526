package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"basketwise/internal/directory/models"
	"basketwise/internal/geo"
	"basketwise/pkg/domain"
	dErrors "basketwise/pkg/domain-errors"
	"basketwise/pkg/platform/sentinel"
)

// Store is the directory persistence contract. Both the in-memory and the
// postgres implementations satisfy it.
type Store interface {
	UpsertRegion(ctx context.Context, region *models.Region) error
	UpsertStore(ctx context.Context, st *models.Store) error
	ListRegions(ctx context.Context) ([]*models.Region, error)
	FindRegionBySlug(ctx context.Context, slug string) (*models.Region, error)
	ListStoresByRegion(ctx context.Context, region *models.Region) ([]*models.Store, error)
}

// Service resolves regions and scoped store sets. A remote fetch failure
// degrades to the seeded fallback dataset instead of surfacing an error:
// stale directory data still renders a usable catalog.
type Service struct {
	primary       Store
	fallback      Store
	locator       geo.Locator
	defaultRegion string
	logger        *slog.Logger
}

// New creates a directory service. fallback may equal primary when no remote
// directory is configured.
func New(primary, fallback Store, locator geo.Locator, defaultRegion string, logger *slog.Logger) *Service {
	return &Service{
		primary:       primary,
		fallback:      fallback,
		locator:       locator,
		defaultRegion: defaultRegion,
		logger:        logger,
	}
}

// Regions lists all known regions, falling back to the bundled dataset when
// the primary store errors.
func (s *Service) Regions(ctx context.Context) []*models.Region {
	regions, err := s.primary.ListRegions(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "region fetch failed, using fallback dataset", "error", err.Error())
		regions, err = s.fallback.ListRegions(ctx)
		if err != nil {
			return nil
		}
	}
	return regions
}

// RegionBySlug resolves a region. Unknown slugs are a CodeNotFound domain
// error; infrastructure failures degrade to the fallback dataset first.
func (s *Service) RegionBySlug(ctx context.Context, slug string) (*models.Region, error) {
	region, err := s.primary.FindRegionBySlug(ctx, slug)
	if err == nil {
		return region, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.WarnContext(ctx, "region lookup failed, using fallback dataset",
			"slug", slug, "error", err.Error())
	}
	region, err = s.fallback.FindRegionBySlug(ctx, slug)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "unknown region: "+slug)
	}
	return region, nil
}

// StoresInScope returns the stores relevant to price computation for a
// region and optional sub-area. A merged metro region also resolves stores
// still tagged with either legacy administrative unit. An absent region is
// not an error, simply "no stores known yet".
func (s *Service) StoresInScope(ctx context.Context, region *models.Region, subArea string) []*models.Store {
	if region == nil {
		return nil
	}

	stores, err := s.primary.ListStoresByRegion(ctx, region)
	if err != nil {
		s.logger.WarnContext(ctx, "store fetch failed, using fallback dataset",
			"region", region.Slug, "error", err.Error())
		stores, err = s.fallback.ListStoresByRegion(ctx, region)
		if err != nil {
			return nil
		}
	}

	if subArea == "" || strings.EqualFold(subArea, models.SubAreaAll) {
		return stores
	}
	scoped := stores[:0]
	for _, st := range stores {
		if strings.EqualFold(st.Locality, subArea) {
			scoped = append(scoped, st)
		}
	}
	return scoped
}

// NearestRegion ranks regions by distance from the caller's position. Any
// locator failure or timeout deterministically yields the configured default
// region, with no retry.
func (s *Service) NearestRegion(ctx context.Context) (*models.Region, error) {
	pos, err := s.locator.CurrentPosition(ctx)
	if err != nil {
		s.logger.InfoContext(ctx, "geolocation unavailable, using default region",
			"default", s.defaultRegion)
		return s.RegionBySlug(ctx, s.defaultRegion)
	}

	regions := s.Regions(ctx)
	if len(regions) == 0 {
		return s.RegionBySlug(ctx, s.defaultRegion)
	}

	nearest := regions[0]
	best := geo.Distance(pos, geo.Position{Lat: nearest.Lat, Lng: nearest.Lng})
	for _, r := range regions[1:] {
		if d := geo.Distance(pos, geo.Position{Lat: r.Lat, Lng: r.Lng}); d < best {
			nearest, best = r, d
		}
	}
	return nearest, nil
}

// UpsertRegion validates and persists a region (admin surface).
func (s *Service) UpsertRegion(ctx context.Context, region *models.Region) error {
	if region.Name == "" || region.Slug == "" {
		return dErrors.New(dErrors.CodeBadRequest, "region name and slug are required")
	}
	if !models.ValidTier(region.Tier) {
		return dErrors.New(dErrors.CodeBadRequest, "unknown region tier: "+string(region.Tier))
	}
	if region.LaunchReadiness < 0 || region.LaunchReadiness > 100 {
		return dErrors.New(dErrors.CodeBadRequest, "launch readiness must be between 0 and 100")
	}
	if region.ID.IsNil() {
		region.ID = domain.RegionID(uuid.New())
	}
	if err := s.primary.UpsertRegion(ctx, region); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save region")
	}
	return nil
}

// UpsertStore validates and persists a store (admin surface).
func (s *Service) UpsertStore(ctx context.Context, st *models.Store) error {
	if st.Name == "" {
		return dErrors.New(dErrors.CodeBadRequest, "store name is required")
	}
	if st.RegionID.IsNil() {
		return dErrors.New(dErrors.CodeBadRequest, "store region is required")
	}
	if st.ID.IsNil() {
		st.ID = domain.StoreID(uuid.New())
	}
	if err := s.primary.UpsertStore(ctx, st); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeBadRequest, "store references an unknown region")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save store")
	}
	return nil
}
