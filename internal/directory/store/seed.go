package store

import (
	"context"

	"github.com/google/uuid"

	"basketwise/internal/directory/models"
	"basketwise/pkg/domain"
)

// Fixed IDs so the fallback dataset is stable across restarts and the seeded
// catalog can reference seeded stores.
var (
	RegionTricity  = domain.RegionID(uuid.MustParse("0b1f6a82-9c6e-4f7a-8e21-3d3a2f1c0001"))
	RegionDelhi    = domain.RegionID(uuid.MustParse("0b1f6a82-9c6e-4f7a-8e21-3d3a2f1c0002"))
	RegionJaipur   = domain.RegionID(uuid.MustParse("0b1f6a82-9c6e-4f7a-8e21-3d3a2f1c0003"))
	RegionLudhiana = domain.RegionID(uuid.MustParse("0b1f6a82-9c6e-4f7a-8e21-3d3a2f1c0004"))
	RegionShimla   = domain.RegionID(uuid.MustParse("0b1f6a82-9c6e-4f7a-8e21-3d3a2f1c0005"))

	StoreGreenBasket = domain.StoreID(uuid.MustParse("5e8c2d10-77ab-4b3e-9f02-6c4b8e9d0001"))
	StoreDailyMandi  = domain.StoreID(uuid.MustParse("5e8c2d10-77ab-4b3e-9f02-6c4b8e9d0002"))
	StoreUrbanGrocer = domain.StoreID(uuid.MustParse("5e8c2d10-77ab-4b3e-9f02-6c4b8e9d0003"))
	StoreValueBazaar = domain.StoreID(uuid.MustParse("5e8c2d10-77ab-4b3e-9f02-6c4b8e9d0004"))
	StoreCapitalMart = domain.StoreID(uuid.MustParse("5e8c2d10-77ab-4b3e-9f02-6c4b8e9d0005"))
)

// SeedDirectory fills an in-memory directory with the bundled fallback
// dataset used when the remote directory is unreachable.
func SeedDirectory(s *InMemory) {
	ctx := context.Background()

	regions := []*models.Region{
		{
			ID: RegionTricity, Name: "Tricity", Slug: "tricity",
			Lat: 30.7333, Lng: 76.7794, Tier: models.TierActive,
			LaunchReadiness: 92,
			// Merged metro: stores still tagged with either legacy
			// administrative unit resolve to this region.
			LegacyUnits: []string{"Chandigarh", "Mohali"},
		},
		{
			ID: RegionDelhi, Name: "Delhi NCR", Slug: "delhi-ncr",
			Lat: 28.7041, Lng: 77.1025, Tier: models.TierActive,
			LaunchReadiness: 88,
		},
		{
			ID: RegionJaipur, Name: "Jaipur", Slug: "jaipur",
			Lat: 26.9124, Lng: 75.7873, Tier: models.TierBeta,
			LaunchReadiness: 55,
		},
		{
			ID: RegionLudhiana, Name: "Ludhiana", Slug: "ludhiana",
			Lat: 30.9010, Lng: 75.8573, Tier: models.TierSensing,
			LaunchReadiness: 20,
		},
		{
			ID: RegionShimla, Name: "Shimla", Slug: "shimla",
			Lat: 31.1048, Lng: 77.1734, Tier: models.TierDormant,
			LaunchReadiness: 5,
		},
	}
	for _, r := range regions {
		_ = s.UpsertRegion(ctx, r)
	}

	stores := []*models.Store{
		{
			ID: StoreGreenBasket, Name: "GreenBasket Sector 17", RegionID: RegionTricity,
			Chain: "GreenBasket", District: "Chandigarh", Locality: "Sector 17",
			Lat: 30.7410, Lng: 76.7820,
		},
		{
			ID: StoreDailyMandi, Name: "DailyMandi Phase 7", RegionID: RegionTricity,
			Chain: "DailyMandi", District: "Mohali", Locality: "Phase 7",
			Lat: 30.7046, Lng: 76.7179,
		},
		{
			ID: StoreUrbanGrocer, Name: "UrbanGrocer Sector 35", RegionID: RegionTricity,
			Chain: "UrbanGrocer", IsPremium: true, District: "Chandigarh", Locality: "Sector 35",
			Lat: 30.7256, Lng: 76.7605,
		},
		{
			ID: StoreValueBazaar, Name: "ValueBazaar Phase 5", RegionID: RegionTricity,
			Chain: "ValueBazaar", District: "Mohali", Locality: "Phase 5",
			Lat: 30.7081, Lng: 76.7022,
		},
		{
			ID: StoreCapitalMart, Name: "CapitalMart Connaught Place", RegionID: RegionDelhi,
			Chain: "CapitalMart", IsPremium: true, District: "New Delhi", Locality: "Connaught Place",
			Lat: 28.6315, Lng: 77.2167,
		},
	}
	for _, st := range stores {
		_ = s.UpsertStore(ctx, st)
	}
}
