package store

import (
	"context"

	"github.com/google/uuid"

	"basketwise/internal/catalog/models"
	directory "basketwise/internal/directory/store"
	"basketwise/pkg/domain"
)

func pid(s string) domain.ProductID { return domain.ProductID(uuid.MustParse(s)) }

// Seed product IDs, fixed so cart fixtures and price alerts survive restarts
// of a fallback-only deployment.
var (
	ProductAtta    = pid("9a4d3c20-16e5-4d0a-b1c9-8f7a5b6c0001")
	ProductMilk    = pid("9a4d3c20-16e5-4d0a-b1c9-8f7a5b6c0002")
	ProductPaneer  = pid("9a4d3c20-16e5-4d0a-b1c9-8f7a5b6c0003")
	ProductRice    = pid("9a4d3c20-16e5-4d0a-b1c9-8f7a5b6c0004")
	ProductTomato  = pid("9a4d3c20-16e5-4d0a-b1c9-8f7a5b6c0005")
	ProductOnion   = pid("9a4d3c20-16e5-4d0a-b1c9-8f7a5b6c0006")
	ProductButter  = pid("9a4d3c20-16e5-4d0a-b1c9-8f7a5b6c0007")
	ProductBread   = pid("9a4d3c20-16e5-4d0a-b1c9-8f7a5b6c0008")
	ProductEggs    = pid("9a4d3c20-16e5-4d0a-b1c9-8f7a5b6c0009")
	ProductMasala  = pid("9a4d3c20-16e5-4d0a-b1c9-8f7a5b6c0010")
	ProductCapital = pid("9a4d3c20-16e5-4d0a-b1c9-8f7a5b6c0011")
)

// SeedCatalog fills an in-memory catalog with the bundled fallback dataset.
// Prices reference the seeded directory stores.
func SeedCatalog(s *InMemory) {
	ctx := context.Background()

	products := []*models.Product{
		{
			ID: ProductAtta, Name: "Whole Wheat Atta", Brand: "Aashirvaad",
			Category: "Staples", Unit: "5 kg", Tags: []string{"staple", "flour"},
			RegionID: directory.RegionTricity,
			Prices: map[domain.StoreID]domain.Cents{
				directory.StoreGreenBasket: 24500,
				directory.StoreDailyMandi:  23900,
				directory.StoreValueBazaar: 24200,
			},
		},
		{
			ID: ProductMilk, Name: "Toned Milk", Brand: "Verka",
			Category: "Dairy", Unit: "1 L", Tags: []string{"dairy"},
			RegionID: directory.RegionTricity,
			Prices: map[domain.StoreID]domain.Cents{
				directory.StoreGreenBasket: 5600,
				directory.StoreDailyMandi:  5400,
				directory.StoreUrbanGrocer: 5800,
				directory.StoreValueBazaar: 5500,
			},
		},
		{
			ID: ProductPaneer, Name: "Fresh Paneer", Brand: "Verka",
			Category: "Dairy", Unit: "200 g", Tags: []string{"dairy", "protein"},
			RegionID: directory.RegionTricity,
			Prices: map[domain.StoreID]domain.Cents{
				directory.StoreGreenBasket: 9000,
				directory.StoreUrbanGrocer: 9800,
			},
		},
		{
			ID: ProductRice, Name: "Basmati Rice", Brand: "India Gate",
			Category: "Staples", Unit: "1 kg", Tags: []string{"staple", "rice"},
			RegionID: directory.RegionTricity,
			Prices: map[domain.StoreID]domain.Cents{
				directory.StoreDailyMandi:  14500,
				directory.StoreUrbanGrocer: 15900,
				directory.StoreValueBazaar: 14200,
			},
		},
		{
			ID: ProductTomato, Name: "Tomato", Brand: "",
			Category: "Vegetables", Unit: "1 kg", Tags: []string{"produce"},
			RegionID: directory.RegionTricity,
			Prices: map[domain.StoreID]domain.Cents{
				directory.StoreGreenBasket: 3200,
				directory.StoreDailyMandi:  2800,
				directory.StoreValueBazaar: 3000,
			},
		},
		{
			ID: ProductOnion, Name: "Onion", Brand: "",
			Category: "Vegetables", Unit: "1 kg", Tags: []string{"produce"},
			RegionID: directory.RegionTricity,
			Prices: map[domain.StoreID]domain.Cents{
				directory.StoreGreenBasket: 2600,
				directory.StoreDailyMandi:  2400,
				directory.StoreUrbanGrocer: 3100,
			},
		},
		{
			ID: ProductButter, Name: "Salted Butter", Brand: "Amul",
			Category: "Dairy", Unit: "500 g", Tags: []string{"dairy"},
			RegionID: directory.RegionTricity,
			Prices: map[domain.StoreID]domain.Cents{
				directory.StoreUrbanGrocer: 27500,
				directory.StoreValueBazaar: 26800,
			},
		},
		{
			ID: ProductBread, Name: "Brown Bread", Brand: "Harvest Gold",
			Category: "Bakery", Unit: "400 g", Tags: []string{"bakery"},
			RegionID: directory.RegionTricity,
			Prices: map[domain.StoreID]domain.Cents{
				directory.StoreGreenBasket: 5000,
				directory.StoreDailyMandi:  4800,
			},
		},
		{
			ID: ProductEggs, Name: "Farm Eggs", Brand: "",
			Category: "Dairy", Unit: "12 pc", Tags: []string{"protein"},
			RegionID: directory.RegionTricity,
			Prices: map[domain.StoreID]domain.Cents{
				directory.StoreDailyMandi:  8400,
				directory.StoreUrbanGrocer: 9600,
			},
		},
		{
			ID: ProductMasala, Name: "Garam Masala", Brand: "MDH",
			Category: "Spices", Unit: "100 g", Tags: []string{"spice"},
			RegionID: directory.RegionTricity,
			Prices: map[domain.StoreID]domain.Cents{
				directory.StoreGreenBasket: 8500,
				directory.StoreValueBazaar: 8200,
			},
		},
		{
			ID: ProductCapital, Name: "Toned Milk", Brand: "Mother Dairy",
			Category: "Dairy", Unit: "1 L", Tags: []string{"dairy"},
			RegionID: directory.RegionDelhi,
			Prices: map[domain.StoreID]domain.Cents{
				directory.StoreCapitalMart: 5700,
			},
		},
	}

	for _, p := range products {
		_ = s.Upsert(ctx, p)
	}
}
