package models

import (
	"strings"

	"basketwise/pkg/domain"
)

// Product is a catalog record carrying its per-store price map. Prices is
// keyed by store ID; a key referencing an unknown store is tolerated (the
// catalog and the directory are fetched independently and may be transiently
// inconsistent) and simply skipped by the evaluator.
type Product struct {
	ID       domain.ProductID
	Name     string
	Brand    string
	Category string
	Unit     string
	Tags     []string
	ImageRef string
	RegionID domain.RegionID
	Prices   map[domain.StoreID]domain.Cents
}

// PriceAt returns the product's price at a store, and whether one is
// recorded there.
func (p *Product) PriceAt(storeID domain.StoreID) (domain.Cents, bool) {
	c, ok := p.Prices[storeID]
	return c, ok
}

// MatchesKeyword reports whether the product's name or category contains the
// keyword, case-insensitively. Used by the bundle matcher.
func (p *Product) MatchesKeyword(keyword string) bool {
	k := strings.ToLower(keyword)
	return strings.Contains(strings.ToLower(p.Name), k) ||
		strings.Contains(strings.ToLower(p.Category), k)
}

// HasTag reports whether the product carries the given tag.
func (p *Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe for callers to hold across store mutations.
func (p *Product) Clone() *Product {
	cp := *p
	cp.Tags = append([]string(nil), p.Tags...)
	cp.Prices = make(map[domain.StoreID]domain.Cents, len(p.Prices))
	for k, v := range p.Prices {
		cp.Prices[k] = v
	}
	return &cp
}
