//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"basketwise/internal/catalog/models"
	dmodels "basketwise/internal/directory/models"
	directory "basketwise/internal/directory/store"
	"basketwise/internal/platform/postgres"
	"basketwise/pkg/domain"
	"basketwise/pkg/platform/sentinel"
	"basketwise/pkg/testutil/containers"
)

type PostgresSuite struct {
	suite.Suite
	pg       *containers.PostgresContainer
	store    *Postgres
	regionID domain.RegionID
	ctx      context.Context
}

func (s *PostgresSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T(), postgres.Schema)
	s.store = NewPostgres(s.pg.DB)
	s.ctx = context.Background()
}

func (s *PostgresSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(s.ctx, "prices", "products", "regions"))

	s.regionID = domain.RegionID(uuid.New())
	dir := directory.NewPostgres(s.pg.DB)
	s.Require().NoError(dir.UpsertRegion(s.ctx, &dmodels.Region{
		ID: s.regionID, Name: "Tricity", Slug: "tricity", Tier: dmodels.TierActive,
	}))
}

func TestPostgresSuite(t *testing.T) {
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) TestProductRoundTrip() {
	storeA := domain.StoreID(uuid.New())
	storeB := domain.StoreID(uuid.New())

	p := &models.Product{
		ID:       domain.ProductID(uuid.New()),
		Name:     "Whole Wheat Atta",
		Brand:    "Aashirvaad",
		Category: "Staples",
		Unit:     "5 kg",
		Tags:     []string{"staple", "flour"},
		RegionID: s.regionID,
		Prices: map[domain.StoreID]domain.Cents{
			storeA: 24500,
			storeB: 23900,
		},
	}
	s.Require().NoError(s.store.Upsert(s.ctx, p))

	got, err := s.store.FindByID(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(p.Name, got.Name)
	s.Equal(p.Prices, got.Prices)

	// Dangling store references persist: prices carry no FK onto stores.
	s.Len(got.Prices, 2)
}

func (s *PostgresSuite) TestUpsertReplacesPrices() {
	storeA := domain.StoreID(uuid.New())
	storeB := domain.StoreID(uuid.New())

	p := &models.Product{
		ID:       domain.ProductID(uuid.New()),
		Name:     "Milk",
		Category: "Dairy",
		RegionID: s.regionID,
		Prices:   map[domain.StoreID]domain.Cents{storeA: 6600},
	}
	s.Require().NoError(s.store.Upsert(s.ctx, p))

	p.Prices = map[domain.StoreID]domain.Cents{storeB: 6400}
	s.Require().NoError(s.store.Upsert(s.ctx, p))

	got, err := s.store.FindByID(s.ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(map[domain.StoreID]domain.Cents{storeB: 6400}, got.Prices,
		"stale prices are dropped on upsert")
}

func (s *PostgresSuite) TestListByRegion() {
	for _, spec := range []struct {
		name, category string
	}{
		{"Atta", "Staples"},
		{"Milk", "Dairy"},
		{"Paneer", "Dairy"},
	} {
		s.Require().NoError(s.store.Upsert(s.ctx, &models.Product{
			ID: domain.ProductID(uuid.New()), Name: spec.name,
			Category: spec.category, RegionID: s.regionID,
		}))
	}

	all, err := s.store.ListByRegion(s.ctx, s.regionID, "")
	s.Require().NoError(err)
	s.Len(all, 3)

	s.Run("category filter is case-insensitive", func() {
		dairy, err := s.store.ListByRegion(s.ctx, s.regionID, "dairy")
		s.Require().NoError(err)
		s.Len(dairy, 2)
	})

	s.Run("other regions excluded", func() {
		none, err := s.store.ListByRegion(s.ctx, domain.RegionID(uuid.New()), "")
		s.Require().NoError(err)
		s.Empty(none)
	})
}

func (s *PostgresSuite) TestFindByIDNotFound() {
	_, err := s.store.FindByID(s.ctx, domain.ProductID(uuid.New()))
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
