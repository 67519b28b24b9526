package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"basketwise/internal/bundle"
	cmodels "basketwise/internal/catalog/models"
	"basketwise/internal/platform/metrics"
	"basketwise/internal/platform/middleware"
	"basketwise/internal/transport/http/shared"
)

// Matcher resolves bundle definitions against a product set.
type Matcher interface {
	Definitions() []bundle.Definition
	MatchAll(ctx context.Context, products []*cmodels.Product) []bundle.Result
}

// Catalog supplies the full product set bundles are matched against.
type Catalog interface {
	AllProducts(ctx context.Context) []*cmodels.Product
}

// Handler serves the matched bundle listing.
type Handler struct {
	logger  *slog.Logger
	matcher Matcher
	catalog Catalog
	metrics *metrics.Metrics
}

func New(matcher Matcher, catalog Catalog, m *metrics.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		matcher: matcher,
		catalog: catalog,
		metrics: m,
	}
}

// Register mounts the bundle routes.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recovery(h.logger))
		r.Use(middleware.RequestID)
		r.Use(middleware.Logger(h.logger))
		r.Use(middleware.Timeout(15 * time.Second))
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.Latency(h.metrics))
		r.Get("/bundles", h.handleListBundles)
	})
}

type matchResponse struct {
	Keyword     string `json:"keyword"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	StoreID     string `json:"store_id"`
	Price       int64  `json:"price"`
}

type bundleResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Keywords   []string        `json:"keywords"`
	Matches    []matchResponse `json:"matches,omitempty"`
	TotalPrice int64           `json:"total_price,omitempty"`
	Available  bool            `json:"available"`
}

// handleListBundles returns every definition, with matches filled in for the
// bundles that fully resolve. Partially matched bundles list as unavailable.
func (h *Handler) handleListBundles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	products := h.catalog.AllProducts(ctx)
	matched := make(map[string]bundle.Result)
	for _, res := range h.matcher.MatchAll(ctx, products) {
		matched[res.Definition.ID.String()] = res
	}

	defs := h.matcher.Definitions()
	out := make([]bundleResponse, 0, len(defs))
	for _, def := range defs {
		br := bundleResponse{
			ID:       def.ID.String(),
			Name:     def.Name,
			Keywords: def.Keywords,
		}
		if res, ok := matched[br.ID]; ok {
			br.Available = true
			br.TotalPrice = int64(res.TotalPrice)
			for _, m := range res.Matches {
				br.Matches = append(br.Matches, matchResponse{
					Keyword:     m.Keyword,
					ProductID:   m.ProductID.String(),
					ProductName: m.ProductName,
					StoreID:     m.Store.StoreID.String(),
					Price:       int64(m.Store.Price),
				})
			}
		}
		out = append(out, br)
	}
	shared.WriteJSON(w, http.StatusOK, out)
}
