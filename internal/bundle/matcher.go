package bundle

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	cmodels "basketwise/internal/catalog/models"
	"basketwise/internal/platform/metrics"
	"basketwise/pkg/domain"
	dErrors "basketwise/pkg/domain-errors"
)

// Matcher evaluates bundle definitions against the full catalog.
type Matcher struct {
	defs    []Definition
	tracer  trace.Tracer
	metrics *metrics.Metrics
}

// NewMatcher creates a matcher over a fixed definition set. metrics may be
// nil.
func NewMatcher(defs []Definition, m *metrics.Metrics) *Matcher {
	return &Matcher{
		defs:    defs,
		tracer:  otel.Tracer("basketwise/bundle"),
		metrics: m,
	}
}

// Definitions returns the static definition set.
func (m *Matcher) Definitions() []Definition {
	return m.defs
}

// Find returns the definition with the given ID.
func (m *Matcher) Find(id domain.BundleID) (Definition, error) {
	for _, d := range m.defs {
		if d.ID == id {
			return d, nil
		}
	}
	return Definition{}, dErrors.New(dErrors.CodeNotFound, "unknown bundle: "+id.String())
}

// MatchAll evaluates every definition against the catalog and returns only
// the fully matched ones: a bundle with any unresolved keyword is dropped
// entirely, even if its other keywords matched.
func (m *Matcher) MatchAll(ctx context.Context, products []*cmodels.Product) []Result {
	_, span := m.tracer.Start(ctx, "bundle.MatchAll",
		trace.WithAttributes(
			attribute.Int("bundles", len(m.defs)),
			attribute.Int("catalog.products", len(products)),
		))
	defer span.End()

	if m.metrics != nil {
		m.metrics.BundleMatchRuns.Inc()
	}

	var results []Result
	for _, def := range m.defs {
		if res, ok := m.match(def, products); ok {
			results = append(results, res)
		}
	}
	return results
}

// Match evaluates a single definition.
func (m *Matcher) Match(ctx context.Context, id domain.BundleID, products []*cmodels.Product) (Result, error) {
	def, err := m.Find(id)
	if err != nil {
		return Result{}, err
	}
	res, ok := m.match(def, products)
	if !ok {
		return Result{}, dErrors.New(dErrors.CodeNotFound, "bundle not available: "+def.Name)
	}
	return res, nil
}

func (m *Matcher) match(def Definition, products []*cmodels.Product) (Result, bool) {
	res := Result{Definition: def}
	for _, keyword := range def.Keywords {
		match, ok := matchKeyword(keyword, products)
		if !ok {
			return Result{}, false
		}
		res.Matches = append(res.Matches, match)
		res.TotalPrice += match.Store.Price
	}
	return res, true
}
