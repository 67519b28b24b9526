package alert

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cmodels "basketwise/internal/catalog/models"
	dmodels "basketwise/internal/directory/models"
	"basketwise/pkg/domain"
)

func TestBookReplaceSemantics(t *testing.T) {
	b := NewBook()
	p := domain.ProductID(uuid.New())

	b.Set(p, 500)
	b.Set(p, 300)

	alerts := b.List()
	require.Len(t, alerts, 1)
	assert.Equal(t, domain.Cents(300), alerts[0].TargetPrice)

	b.Remove(p)
	b.Remove(p) // no-op
	assert.Empty(t, b.List())
}

func TestBookCheck(t *testing.T) {
	store := domain.StoreID(uuid.New())
	scope := []*dmodels.Store{{ID: store}}

	cheap := &cmodels.Product{
		ID:     domain.ProductID(uuid.New()),
		Name:   "Milk",
		Prices: map[domain.StoreID]domain.Cents{store: 250},
	}
	pricey := &cmodels.Product{
		ID:     domain.ProductID(uuid.New()),
		Name:   "Butter",
		Prices: map[domain.StoreID]domain.Cents{store: 900},
	}
	snapshot := map[domain.ProductID]*cmodels.Product{
		cheap.ID:  cheap,
		pricey.ID: pricey,
	}

	b := NewBook()
	b.Set(cheap.ID, 300)
	b.Set(pricey.ID, 500)
	b.Set(domain.ProductID(uuid.New()), 100) // not in snapshot

	fired := b.Check(snapshot, scope)
	require.Len(t, fired, 1)
	assert.Equal(t, cheap.ID, fired[0].ProductID)
	assert.Equal(t, domain.Cents(250), fired[0].Current.Price)

	// No scope, nothing triggers.
	assert.Empty(t, b.Check(snapshot, nil))
}
