package bundle

import (
	"sort"

	cmodels "basketwise/internal/catalog/models"
	"basketwise/internal/pricing"
	"basketwise/pkg/domain"
)

// Definition is a curated keyword list representing a themed kit. Static
// reference data, never mutated.
type Definition struct {
	ID       domain.BundleID
	Name     string
	Keywords []string
}

// Match resolves one keyword to the globally cheapest product+store pair.
type Match struct {
	Keyword     string
	ProductID   domain.ProductID
	ProductName string
	Store       pricing.StorePrice
}

// Result is a fully matched bundle: every keyword resolved. Partial bundles
// are never surfaced.
type Result struct {
	Definition Definition
	Matches    []Match
	TotalPrice domain.Cents
}

// matchKeyword finds the cheapest product+store pair among ALL products
// whose name or category contains the keyword. This is a deliberate global
// "best anywhere" search, not scoped to a region. Ties go to the first
// product in catalog order; within one product, to the lexically first
// store ID so results stay deterministic.
func matchKeyword(keyword string, products []*cmodels.Product) (Match, bool) {
	var best Match
	found := false
	for _, p := range products {
		if !p.MatchesKeyword(keyword) {
			continue
		}
		for _, storeID := range sortedStoreIDs(p.Prices) {
			price := p.Prices[storeID]
			if !found || price < best.Store.Price {
				best = Match{
					Keyword:     keyword,
					ProductID:   p.ID,
					ProductName: p.Name,
					Store:       pricing.StorePrice{StoreID: storeID, Price: price},
				}
				found = true
			}
		}
	}
	return best, found
}

func sortedStoreIDs(prices map[domain.StoreID]domain.Cents) []domain.StoreID {
	ids := make([]domain.StoreID, 0, len(prices))
	for id := range prices {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}
