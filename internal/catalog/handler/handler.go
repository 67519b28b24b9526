package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"basketwise/internal/catalog/models"
	dmodels "basketwise/internal/directory/models"
	"basketwise/internal/platform/metrics"
	"basketwise/internal/platform/middleware"
	"basketwise/internal/pricing"
	"basketwise/internal/transport/http/shared"
	"basketwise/pkg/domain"
	dErrors "basketwise/pkg/domain-errors"
)

// Service defines the catalog operations the handler exposes.
type Service interface {
	Products(ctx context.Context, regionID domain.RegionID, category string) []*models.Product
	Upsert(ctx context.Context, p *models.Product) error
}

// Directory resolves the region and store scope a product listing is priced
// against.
type Directory interface {
	RegionBySlug(ctx context.Context, slug string) (*dmodels.Region, error)
	StoresInScope(ctx context.Context, region *dmodels.Region, subArea string) []*dmodels.Store
}

// Handler serves the priced product listing and the admin product upsert.
type Handler struct {
	logger    *slog.Logger
	catalog   Service
	directory Directory
	metrics   *metrics.Metrics
	validator middleware.TokenValidator
}

func New(
	catalog Service,
	directory Directory,
	validator middleware.TokenValidator,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		logger:    logger,
		catalog:   catalog,
		directory: directory,
		metrics:   m,
		validator: validator,
	}
}

// Register mounts the catalog routes.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recovery(h.logger))
		r.Use(middleware.RequestID)
		r.Use(middleware.Logger(h.logger))
		r.Use(middleware.Timeout(15 * time.Second))
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.Latency(h.metrics))
		r.Get("/catalog/products", h.handleListProducts)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(h.validator, h.logger))
			r.Post("/admin/products", h.handleUpsertProduct)
		})
	})
}

type productResponse struct {
	ID       string                  `json:"id"`
	Name     string                  `json:"name"`
	Brand    string                  `json:"brand,omitempty"`
	Category string                  `json:"category"`
	Unit     string                  `json:"unit,omitempty"`
	Tags     []string                `json:"tags,omitempty"`
	ImageRef string                  `json:"image_ref,omitempty"`
	Prices   map[string]domain.Cents `json:"prices"`
	MinPrice *domain.Cents           `json:"min_price,omitempty"`
	MaxPrice *domain.Cents           `json:"max_price,omitempty"`
}

// toProductResponse prices the product against the scoped store set. A
// product with no price in scope still lists, with the range omitted.
func toProductResponse(p *models.Product, scope []*dmodels.Store) productResponse {
	out := productResponse{
		ID:       p.ID.String(),
		Name:     p.Name,
		Brand:    p.Brand,
		Category: p.Category,
		Unit:     p.Unit,
		Tags:     p.Tags,
		ImageRef: p.ImageRef,
		Prices:   make(map[string]domain.Cents, len(p.Prices)),
	}
	for storeID, price := range p.Prices {
		out.Prices[storeID.String()] = price
	}
	if r, ok := pricing.PriceRange(p, scope); ok {
		out.MinPrice = &r.Min
		out.MaxPrice = &r.Max
	}
	return out
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	region, err := h.directory.RegionBySlug(ctx, q.Get("region"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	scope := h.directory.StoresInScope(ctx, region, q.Get("subArea"))
	products := h.catalog.Products(ctx, region.ID, q.Get("category"))

	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p, scope))
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

type upsertProductRequest struct {
	ID       string                  `json:"id"`
	Name     string                  `json:"name"`
	Brand    string                  `json:"brand"`
	Category string                  `json:"category"`
	Unit     string                  `json:"unit"`
	Tags     []string                `json:"tags"`
	ImageRef string                  `json:"image_ref"`
	RegionID string                  `json:"region_id"`
	Prices   map[string]domain.Cents `json:"prices"`
}

func (h *Handler) handleUpsertProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req upsertProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	regionID, err := domain.ParseRegionID(req.RegionID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	p := &models.Product{
		Name:     req.Name,
		Brand:    req.Brand,
		Category: req.Category,
		Unit:     req.Unit,
		Tags:     req.Tags,
		ImageRef: req.ImageRef,
		RegionID: regionID,
		Prices:   make(map[domain.StoreID]domain.Cents, len(req.Prices)),
	}
	if req.ID != "" {
		id, err := domain.ParseProductID(req.ID)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		p.ID = id
	}
	for storeID, price := range req.Prices {
		id, err := domain.ParseStoreID(storeID)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		p.Prices[id] = price
	}

	if err := h.catalog.Upsert(ctx, p); err != nil {
		if dErrors.Is(err, dErrors.CodeBadRequest) || dErrors.Is(err, dErrors.CodeInvalidInput) {
			shared.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "product upsert failed",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to upsert product"))
		return
	}

	h.logger.InfoContext(ctx, "product upserted",
		"request_id", requestID,
		"product", p.Name,
		"admin", middleware.GetAdminSubject(ctx),
	)
	shared.WriteJSON(w, http.StatusOK, map[string]string{"id": p.ID.String()})
}
