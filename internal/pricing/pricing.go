// Package pricing is the valuation core: pure functions over an in-memory
// catalog snapshot and a scoped store set. Nothing here performs I/O, blocks,
// or returns an error; missing data always degrades to "less data".
package pricing

import (
	cmodels "basketwise/internal/catalog/models"
	dmodels "basketwise/internal/directory/models"
	"basketwise/pkg/domain"
)

// StorePrice is a resolved store/price pair for one product.
type StorePrice struct {
	StoreID domain.StoreID
	Price   domain.Cents
}

// Range is the min/max price of a product over a scoped store set.
type Range struct {
	Min domain.Cents
	Max domain.Cents
}

// Totals is a cart-level valuation over a scope.
type Totals struct {
	Best    domain.Cents
	Worst   domain.Cents
	Savings domain.Cents
}

// Line is the evaluator's view of a cart entry.
type Line struct {
	ProductID domain.ProductID
	Quantity  int
}

// CheapestStore selects the scoped store with the minimum recorded price for
// the product. Stores with no recorded price are skipped; a price entry
// referencing a store outside the scope is ignored by construction. Ties go
// to the first store in input order, so results are deterministic whenever
// the scope ordering is.
func CheapestStore(p *cmodels.Product, scope []*dmodels.Store) (StorePrice, bool) {
	var best StorePrice
	found := false
	for _, st := range scope {
		price, ok := p.PriceAt(st.ID)
		if !ok {
			continue
		}
		if !found || price < best.Price {
			best = StorePrice{StoreID: st.ID, Price: price}
			found = true
		}
	}
	return best, found
}

// CostliestStore is the max counterpart of CheapestStore, with the same
// skip and tie-break rules.
func CostliestStore(p *cmodels.Product, scope []*dmodels.Store) (StorePrice, bool) {
	var worst StorePrice
	found := false
	for _, st := range scope {
		price, ok := p.PriceAt(st.ID)
		if !ok {
			continue
		}
		if !found || price > worst.Price {
			worst = StorePrice{StoreID: st.ID, Price: price}
			found = true
		}
	}
	return worst, found
}

// PriceRange returns both extremes over the scoped set, or false when no
// scoped store has a price for the product.
func PriceRange(p *cmodels.Product, scope []*dmodels.Store) (Range, bool) {
	min, okMin := CheapestStore(p, scope)
	if !okMin {
		return Range{}, false
	}
	max, _ := CostliestStore(p, scope)
	return Range{Min: min.Price, Max: max.Price}, true
}

// CartTotals values a cart over a scope. For each line the min and max
// scoped price is multiplied by quantity and summed. A line whose product
// has no price at any scoped store contributes zero to both totals; it is
// excluded, never treated as a zero-price product. Lines referencing a
// product absent from the snapshot are excluded the same way.
func CartTotals(lines []Line, products map[domain.ProductID]*cmodels.Product, scope []*dmodels.Store) Totals {
	var t Totals
	for _, line := range lines {
		p, ok := products[line.ProductID]
		if !ok {
			continue
		}
		r, ok := PriceRange(p, scope)
		if !ok {
			continue
		}
		t.Best += r.Min.Mul(line.Quantity)
		t.Worst += r.Max.Mul(line.Quantity)
	}
	t.Savings = t.Worst - t.Best
	return t
}

// StoreTotal sums price*quantity at one store, with the same exclusion rule
// as CartTotals: a line with no price at this store contributes zero rather
// than being counted as free.
func StoreTotal(lines []Line, products map[domain.ProductID]*cmodels.Product, storeID domain.StoreID) domain.Cents {
	var total domain.Cents
	for _, line := range lines {
		p, ok := products[line.ProductID]
		if !ok {
			continue
		}
		price, ok := p.PriceAt(storeID)
		if !ok {
			continue
		}
		total += price.Mul(line.Quantity)
	}
	return total
}
