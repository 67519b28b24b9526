package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"basketwise/internal/directory/models"
	"basketwise/internal/directory/store"
	"basketwise/internal/geo"
	"basketwise/internal/geo/mocks"
	dErrors "basketwise/pkg/domain-errors"
)

// failingStore simulates an unreachable remote directory.
type failingStore struct{}

var errConnRefused = errors.New("dial tcp: connection refused")

func (failingStore) UpsertRegion(context.Context, *models.Region) error { return errConnRefused }
func (failingStore) UpsertStore(context.Context, *models.Store) error   { return errConnRefused }
func (failingStore) ListRegions(context.Context) ([]*models.Region, error) {
	return nil, errConnRefused
}
func (failingStore) FindRegionBySlug(context.Context, string) (*models.Region, error) {
	return nil, errConnRefused
}
func (failingStore) ListStoresByRegion(context.Context, *models.Region) ([]*models.Store, error) {
	return nil, errConnRefused
}

type ServiceSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	locator  *mocks.MockLocator
	fallback *store.InMemory
	ctx      context.Context
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.locator = mocks.NewMockLocator(s.ctrl)
	s.fallback = store.NewInMemory()
	store.SeedDirectory(s.fallback)
	s.ctx = context.Background()
}

func (s *ServiceSuite) newService(primary Store) *Service {
	return New(primary, s.fallback, s.locator, "tricity", slog.New(slog.DiscardHandler))
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) TestFallbackOnPrimaryFailure() {
	svc := s.newService(failingStore{})

	s.Run("regions degrade to the seeded dataset", func() {
		regions := svc.Regions(s.ctx)
		s.Require().NotEmpty(regions)
		s.Equal("tricity", regions[0].Slug)
	})

	s.Run("region lookup degrades", func() {
		region, err := svc.RegionBySlug(s.ctx, "jaipur")
		s.Require().NoError(err)
		s.Equal(store.RegionJaipur, region.ID)
	})

	s.Run("store scope degrades", func() {
		region, err := svc.RegionBySlug(s.ctx, "tricity")
		s.Require().NoError(err)
		s.Len(svc.StoresInScope(s.ctx, region, ""), 4)
	})
}

func (s *ServiceSuite) TestRegionBySlugNotFound() {
	svc := s.newService(s.fallback)

	_, err := svc.RegionBySlug(s.ctx, "atlantis")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestStoresInScope() {
	svc := s.newService(s.fallback)
	region, err := svc.RegionBySlug(s.ctx, "tricity")
	s.Require().NoError(err)

	s.Run("nil region yields no stores", func() {
		s.Nil(svc.StoresInScope(s.ctx, nil, ""))
	})

	s.Run("sub-area filters by locality, case-insensitive", func() {
		stores := svc.StoresInScope(s.ctx, region, "sector 17")
		s.Require().Len(stores, 1)
		s.Equal(store.StoreGreenBasket, stores[0].ID)
	})

	s.Run("the All sentinel disables the filter", func() {
		s.Len(svc.StoresInScope(s.ctx, region, models.SubAreaAll), 4)
	})

	s.Run("unknown sub-area yields empty scope", func() {
		s.Empty(svc.StoresInScope(s.ctx, region, "Sector 99"))
	})
}

func (s *ServiceSuite) TestNearestRegion() {
	svc := s.newService(s.fallback)

	s.Run("ranks by haversine distance", func() {
		// Near Jaipur.
		s.locator.EXPECT().CurrentPosition(gomock.Any()).
			Return(geo.Position{Lat: 26.9, Lng: 75.8}, nil)

		region, err := svc.NearestRegion(s.ctx)
		s.Require().NoError(err)
		s.Equal("jaipur", region.Slug)
	})

	s.Run("locator failure yields the default region", func() {
		s.locator.EXPECT().CurrentPosition(gomock.Any()).
			Return(geo.Position{}, geo.ErrUnavailable)

		region, err := svc.NearestRegion(s.ctx)
		s.Require().NoError(err)
		s.Equal("tricity", region.Slug)
	})
}

func (s *ServiceSuite) TestUpsertValidation() {
	svc := s.newService(s.fallback)

	s.Run("store requires a name", func() {
		err := svc.UpsertStore(s.ctx, &models.Store{RegionID: store.RegionTricity})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("store requires a known region", func() {
		err := svc.UpsertStore(s.ctx, &models.Store{Name: "Orphan Mart"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("region tier must be known", func() {
		err := svc.UpsertRegion(s.ctx, &models.Region{
			Name: "Ambala", Slug: "ambala", Tier: "imaginary",
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("valid store gets an id", func() {
		st := &models.Store{
			Name:     "New Mart",
			RegionID: store.RegionTricity,
			District: "Chandigarh",
			Locality: "Sector 22",
		}
		s.Require().NoError(svc.UpsertStore(s.ctx, st))
		s.False(st.ID.IsNil())
	})
}
