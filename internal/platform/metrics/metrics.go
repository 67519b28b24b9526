package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	SignupsCreated   prometheus.Counter
	CartMutations    *prometheus.CounterVec
	BundleMatchRuns  prometheus.Counter
	CatalogFetches   *prometheus.CounterVec
	RequestLatency   *prometheus.HistogramVec
	ValuationLatency prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		SignupsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "basketwise_signups_created_total",
			Help: "Total number of waitlist signups registered",
		}),
		CartMutations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "basketwise_cart_mutations_total",
			Help: "Cart ledger mutations by operation",
		}, []string{"op"}),
		BundleMatchRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "basketwise_bundle_match_runs_total",
			Help: "Full bundle matching passes over the catalog",
		}),
		CatalogFetches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "basketwise_catalog_fetches_total",
			Help: "Catalog fetches by outcome (hit, miss, fallback)",
		}, []string{"outcome"}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "basketwise_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
		ValuationLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "basketwise_cart_valuation_duration_seconds",
			Help:    "Full cart valuation pass latency",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// IncrementSignupsCreated increments the signups counter by 1.
func (m *Metrics) IncrementSignupsCreated() {
	m.SignupsCreated.Inc()
}

// ObserveCartMutation records one cart ledger mutation.
func (m *Metrics) ObserveCartMutation(op string) {
	m.CartMutations.WithLabelValues(op).Inc()
}
