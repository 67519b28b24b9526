// Package alert tracks per-product price alerts. Alerts are transient,
// in-memory session state with no persistence.
package alert

import (
	"sync"

	cmodels "basketwise/internal/catalog/models"
	dmodels "basketwise/internal/directory/models"
	"basketwise/internal/pricing"
	"basketwise/pkg/domain"
)

// Alert is a target price watch on one product.
type Alert struct {
	ProductID   domain.ProductID
	TargetPrice domain.Cents
}

// Triggered is an alert whose current scoped cheapest price has reached the
// target.
type Triggered struct {
	Alert
	Current pricing.StorePrice
}

// Book holds a session's alerts, unique per product: re-adding replaces the
// prior alert for that product.
type Book struct {
	mu     sync.Mutex
	alerts map[domain.ProductID]domain.Cents
	order  []domain.ProductID
}

// NewBook creates an empty alert book.
func NewBook() *Book {
	return &Book{alerts: make(map[domain.ProductID]domain.Cents)}
}

// Set installs or replaces the alert for a product.
func (b *Book) Set(productID domain.ProductID, target domain.Cents) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.alerts[productID]; !exists {
		b.order = append(b.order, productID)
	}
	b.alerts[productID] = target
}

// Remove deletes a product's alert; absent alerts are a no-op.
func (b *Book) Remove(productID domain.ProductID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.alerts[productID]; !exists {
		return
	}
	delete(b.alerts, productID)
	for i, id := range b.order {
		if id == productID {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// List returns all alerts in insertion order.
func (b *Book) List() []Alert {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Alert, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, Alert{ProductID: id, TargetPrice: b.alerts[id]})
	}
	return out
}

// Check returns the alerts whose product currently sells at or below target
// in the given scope. Products missing from the snapshot or unpriced in
// scope simply don't trigger.
func (b *Book) Check(products map[domain.ProductID]*cmodels.Product, scope []*dmodels.Store) []Triggered {
	var fired []Triggered
	for _, a := range b.List() {
		p, ok := products[a.ProductID]
		if !ok {
			continue
		}
		best, ok := pricing.CheapestStore(p, scope)
		if !ok || best.Price > a.TargetPrice {
			continue
		}
		fired = append(fired, Triggered{Alert: a, Current: best})
	}
	return fired
}
