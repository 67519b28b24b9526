package session

import (
	"sync"

	"basketwise/internal/alert"
	"basketwise/internal/cart"
	cmodels "basketwise/internal/catalog/models"
	dmodels "basketwise/internal/directory/models"
	"basketwise/internal/pricing"
	"basketwise/pkg/domain"
)

// Session is one shopper's mutable application state: the selected region
// and sub-area, the cart, the alert book, and the last installed snapshot of
// the region's products and scoped stores. All fields behind mu are written
// by exactly one operation at a time.
type Session struct {
	ID domain.SessionID

	// evaluator memoizes this session's cart valuation. Sessions never
	// share one: the memo is keyed on per-session version counters, which
	// only identify a cart state within their own session.
	evaluator *pricing.Evaluator

	mu      sync.Mutex
	region  *dmodels.Region
	subArea string
	cart    *cart.Ledger
	alerts  *alert.Book

	products       []*cmodels.Product
	scope          []*dmodels.Store
	catalogVersion uint64

	// refreshSeq guards concurrent refetches: each refresh takes the next
	// sequence number up front and only installs its result if no newer
	// refresh started meanwhile. A stale fetch never installs.
	refreshSeq uint64
}

func newSession(id domain.SessionID, region *dmodels.Region, evaluator *pricing.Evaluator) *Session {
	return &Session{
		ID:        id,
		evaluator: evaluator,
		region:    region,
		subArea:   dmodels.SubAreaAll,
		cart:      cart.NewLedger(),
		alerts:    alert.NewBook(),
	}
}

// Item is one cart entry joined with its catalog data and scoped price
// range. Priced is false when no store in scope carries the product.
type Item struct {
	Entry  cart.Entry
	Name   string
	Range  pricing.Range
	Priced bool
}

// StoreTotal is the cost of buying the entire cart at a single store.
// Complete is false when the store is missing a price for some line.
type StoreTotal struct {
	Store    *dmodels.Store
	Total    domain.Cents
	Complete bool
}

// Snapshot is a consistent read of a session with all derived values
// materialized: cart totals, per-store totals, and fired alerts.
type Snapshot struct {
	ID          domain.SessionID
	Region      *dmodels.Region
	SubArea     string
	Products    []*cmodels.Product
	Stores      []*dmodels.Store
	Items       []Item
	ItemCount   int
	Totals      pricing.Totals
	StoreTotals []StoreTotal
	Fired       []alert.Triggered
	Alerts      []alert.Alert
}

// productIndex builds the lookup the pricing functions consume.
// Caller holds s.mu.
func (s *Session) productIndex() map[domain.ProductID]*cmodels.Product {
	idx := make(map[domain.ProductID]*cmodels.Product, len(s.products))
	for _, p := range s.products {
		idx[p.ID] = p
	}
	return idx
}
