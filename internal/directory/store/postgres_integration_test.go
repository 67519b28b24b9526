//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"basketwise/internal/directory/models"
	"basketwise/internal/platform/postgres"
	"basketwise/pkg/domain"
	"basketwise/pkg/platform/sentinel"
	"basketwise/pkg/testutil/containers"
)

type PostgresSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *Postgres
	ctx   context.Context
}

func (s *PostgresSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T(), postgres.Schema)
	s.store = NewPostgres(s.pg.DB)
	s.ctx = context.Background()
}

func (s *PostgresSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(s.ctx, "stores", "regions"))
}

func TestPostgresSuite(t *testing.T) {
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) seedTricity() *models.Region {
	region := &models.Region{
		ID:          domain.RegionID(uuid.New()),
		Name:        "Tricity",
		Slug:        "tricity",
		Tier:        models.TierActive,
		LegacyUnits: []string{"Chandigarh", "Mohali"},
	}
	s.Require().NoError(s.store.UpsertRegion(s.ctx, region))
	return region
}

func (s *PostgresSuite) TestRegionRoundTrip() {
	s.seedTricity()

	got, err := s.store.FindRegionBySlug(s.ctx, "tricity")
	s.Require().NoError(err)
	s.Equal("Tricity", got.Name)
	s.Equal([]string{"Chandigarh", "Mohali"}, got.LegacyUnits)

	s.Run("unknown slug", func() {
		_, err := s.store.FindRegionBySlug(s.ctx, "atlantis")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("upsert replaces", func() {
		region, err := s.store.FindRegionBySlug(s.ctx, "tricity")
		s.Require().NoError(err)
		region.LaunchReadiness = 95
		s.Require().NoError(s.store.UpsertRegion(s.ctx, region))

		again, err := s.store.FindRegionBySlug(s.ctx, "tricity")
		s.Require().NoError(err)
		s.Equal(95, again.LaunchReadiness)
	})
}

func (s *PostgresSuite) TestStoreScope() {
	region := s.seedTricity()

	other := &models.Region{
		ID:   domain.RegionID(uuid.New()),
		Name: "Delhi NCR", Slug: "delhi-ncr", Tier: models.TierActive,
	}
	s.Require().NoError(s.store.UpsertRegion(s.ctx, other))

	inRegion := &models.Store{
		ID: domain.StoreID(uuid.New()), Name: "GreenBasket",
		RegionID: region.ID, District: "Chandigarh", Locality: "Sector 17",
	}
	byDistrict := &models.Store{
		ID: domain.StoreID(uuid.New()), Name: "Mohali Fresh",
		RegionID: other.ID, District: "mohali", Locality: "Phase 3",
	}
	unrelated := &models.Store{
		ID: domain.StoreID(uuid.New()), Name: "CapitalMart",
		RegionID: other.ID, District: "New Delhi", Locality: "CP",
	}
	for _, st := range []*models.Store{inRegion, byDistrict, unrelated} {
		s.Require().NoError(s.store.UpsertStore(s.ctx, st))
	}

	stores, err := s.store.ListStoresByRegion(s.ctx, region)
	s.Require().NoError(err)

	ids := make([]domain.StoreID, 0, len(stores))
	for _, st := range stores {
		ids = append(ids, st.ID)
	}
	s.Contains(ids, inRegion.ID)
	s.Contains(ids, byDistrict.ID, "legacy unit match is case-insensitive")
	s.NotContains(ids, unrelated.ID)
}

func (s *PostgresSuite) TestStoreRequiresRegion() {
	st := &models.Store{
		ID: domain.StoreID(uuid.New()), Name: "Orphan Mart",
		RegionID: domain.RegionID(uuid.New()),
	}
	err := s.store.UpsertStore(s.ctx, st)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
