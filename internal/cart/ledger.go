// Package cart implements the session cart ledger: an insertion-ordered
// collection of product lines keyed uniquely by product ID.
package cart

import (
	"sync"

	"basketwise/internal/pricing"
	"basketwise/pkg/domain"
)

// Entry is one cart line. PinnedStoreID is the nil StoreID when the entry
// follows the default cheapest-store assumption.
type Entry struct {
	ProductID     domain.ProductID
	Quantity      int
	PinnedStoreID domain.StoreID
}

// Pinned reports whether the entry is pinned to an explicit store.
func (e Entry) Pinned() bool { return !e.PinnedStoreID.IsNil() }

// Ledger holds one session's cart. Entries are keyed uniquely by product ID
// and iterate in insertion order so display order is stable. The version
// counter advances on every mutation and keys valuation memoization.
type Ledger struct {
	mu      sync.Mutex
	entries map[domain.ProductID]*Entry
	order   []domain.ProductID
	version uint64
}

// NewLedger creates an empty cart ledger.
func NewLedger() *Ledger {
	return &Ledger{entries: make(map[domain.ProductID]*Entry)}
}

// Add puts one unit of a product in the cart. If the product is already
// present its quantity increments and the existing pinned store wins;
// a supplied pinned store only takes effect when none is set yet.
func (l *Ledger) Add(productID domain.ProductID, pinnedStoreID domain.StoreID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[productID]; ok {
		e.Quantity++
		if !e.Pinned() && !pinnedStoreID.IsNil() {
			e.PinnedStoreID = pinnedStoreID
		}
		l.version++
		return
	}

	l.entries[productID] = &Entry{
		ProductID:     productID,
		Quantity:      1,
		PinnedStoreID: pinnedStoreID,
	}
	l.order = append(l.order, productID)
	l.version++
}

// SetQuantity overwrites an entry's quantity. A quantity of zero or less is
// equivalent to Remove. Setting quantity on an absent product inserts it.
func (l *Ledger) SetQuantity(productID domain.ProductID, quantity int) {
	if quantity <= 0 {
		l.Remove(productID)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[productID]; ok {
		e.Quantity = quantity
	} else {
		l.entries[productID] = &Entry{ProductID: productID, Quantity: quantity}
		l.order = append(l.order, productID)
	}
	l.version++
}

// Remove deletes an entry. Removing an absent product is a no-op, not an
// error.
func (l *Ledger) Remove(productID domain.ProductID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.entries[productID]; !ok {
		return
	}
	delete(l.entries, productID)
	for i, id := range l.order {
		if id == productID {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	l.version++
}

// Clear drops every entry. An already empty ledger does not advance the
// version.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) == 0 {
		return
	}
	l.entries = make(map[domain.ProductID]*Entry)
	l.order = l.order[:0]
	l.version++
}

// ItemCount is the sum of quantities across all entries, not the entry
// count.
func (l *Ledger) ItemCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := 0
	for _, e := range l.entries {
		count += e.Quantity
	}
	return count
}

// Entries returns copies of all entries in insertion order.
func (l *Ledger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, *l.entries[id])
	}
	return out
}

// Lines projects the ledger into the evaluator's input shape.
func (l *Ledger) Lines() []pricing.Line {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]pricing.Line, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, pricing.Line{ProductID: id, Quantity: l.entries[id].Quantity})
	}
	return out
}

// Version returns the mutation counter for memoization keys.
func (l *Ledger) Version() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.version
}
