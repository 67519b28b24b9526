package pricing

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	cmodels "basketwise/internal/catalog/models"
	dmodels "basketwise/internal/directory/models"
	"basketwise/internal/platform/metrics"
	"basketwise/pkg/domain"
)

// Evaluator memoizes cart valuation on its inputs so repeated reads of an
// unchanged cart don't rerun the O(products x stores) scan. One slot only:
// the memo is a pure function of the latest (cart, catalog, scope) triple.
type Evaluator struct {
	tracer  trace.Tracer
	metrics *metrics.Metrics

	mu      sync.Mutex
	memoKey string
	memoVal Totals
	memoOK  bool
}

// NewEvaluator creates a memoizing evaluator. metrics may be nil.
func NewEvaluator(m *metrics.Metrics) *Evaluator {
	return &Evaluator{
		tracer:  otel.Tracer("basketwise/pricing"),
		metrics: m,
	}
}

// CartTotals returns the memoized valuation for the given versions, running
// a full pass only when (cartVersion, catalogVersion, scope) changed.
func (e *Evaluator) CartTotals(
	ctx context.Context,
	lines []Line,
	products map[domain.ProductID]*cmodels.Product,
	scope []*dmodels.Store,
	cartVersion, catalogVersion uint64,
) Totals {
	key := memoKey(cartVersion, catalogVersion, scope)

	e.mu.Lock()
	if e.memoOK && e.memoKey == key {
		t := e.memoVal
		e.mu.Unlock()
		return t
	}
	e.mu.Unlock()

	_, span := e.tracer.Start(ctx, "pricing.CartTotals",
		trace.WithAttributes(
			attribute.Int("cart.lines", len(lines)),
			attribute.Int("scope.stores", len(scope)),
		))
	defer span.End()

	start := time.Now()
	t := CartTotals(lines, products, scope)
	if e.metrics != nil {
		e.metrics.ValuationLatency.Observe(time.Since(start).Seconds())
	}

	e.mu.Lock()
	e.memoKey = key
	e.memoVal = t
	e.memoOK = true
	e.mu.Unlock()
	return t
}

func memoKey(cartVersion, catalogVersion uint64, scope []*dmodels.Store) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d|%d", cartVersion, catalogVersion)
	for _, st := range scope {
		b.WriteByte('|')
		b.WriteString(st.ID.String())
	}
	return b.String()
}
