package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"basketwise/internal/directory/models"
	"basketwise/internal/platform/metrics"
	"basketwise/internal/platform/middleware"
	"basketwise/internal/transport/http/shared"
	"basketwise/pkg/domain"
	dErrors "basketwise/pkg/domain-errors"
)

// Service defines the directory operations the handler exposes.
type Service interface {
	Regions(ctx context.Context) []*models.Region
	RegionBySlug(ctx context.Context, slug string) (*models.Region, error)
	StoresInScope(ctx context.Context, region *models.Region, subArea string) []*models.Store
	NearestRegion(ctx context.Context) (*models.Region, error)
	UpsertStore(ctx context.Context, st *models.Store) error
}

// Handler serves region and store discovery plus the admin store upsert.
type Handler struct {
	logger    *slog.Logger
	directory Service
	metrics   *metrics.Metrics
	validator middleware.TokenValidator
}

func New(directory Service, validator middleware.TokenValidator, m *metrics.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		logger:    logger,
		directory: directory,
		metrics:   m,
		validator: validator,
	}
}

// Register mounts the directory routes.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recovery(h.logger))
		r.Use(middleware.RequestID)
		r.Use(middleware.Logger(h.logger))
		r.Use(middleware.Timeout(15 * time.Second))
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.Latency(h.metrics))
		r.Get("/regions", h.handleListRegions)
		r.Get("/regions/nearest", h.handleNearestRegion)
		r.Get("/regions/{slug}/stores", h.handleListStores)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(h.validator, h.logger))
			r.Post("/admin/stores", h.handleUpsertStore)
		})
	})
}

type regionResponse struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Slug            string   `json:"slug"`
	Tier            string   `json:"tier"`
	Lat             float64  `json:"lat"`
	Lng             float64  `json:"lng"`
	WaitlistCount   int      `json:"waitlist_count"`
	LaunchReadiness int      `json:"launch_readiness"`
	LegacyUnits     []string `json:"legacy_units,omitempty"`
}

type storeResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Chain     string `json:"chain"`
	IsPremium bool   `json:"is_premium"`
	District  string `json:"district"`
	Locality  string `json:"locality"`
}

func toRegionResponse(r *models.Region) regionResponse {
	return regionResponse{
		ID:              r.ID.String(),
		Name:            r.Name,
		Slug:            r.Slug,
		Tier:            string(r.Tier),
		Lat:             r.Lat,
		Lng:             r.Lng,
		WaitlistCount:   r.WaitlistCount,
		LaunchReadiness: r.LaunchReadiness,
		LegacyUnits:     r.LegacyUnits,
	}
}

func toStoreResponse(st *models.Store) storeResponse {
	return storeResponse{
		ID:        st.ID.String(),
		Name:      st.Name,
		Chain:     st.Chain,
		IsPremium: st.IsPremium,
		District:  st.District,
		Locality:  st.Locality,
	}
}

func (h *Handler) handleListRegions(w http.ResponseWriter, r *http.Request) {
	regions := h.directory.Regions(r.Context())
	out := make([]regionResponse, 0, len(regions))
	for _, rg := range regions {
		out = append(out, toRegionResponse(rg))
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleNearestRegion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	region, err := h.directory.NearestRegion(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "nearest region lookup failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toRegionResponse(region))
}

func (h *Handler) handleListStores(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	region, err := h.directory.RegionBySlug(ctx, chi.URLParam(r, "slug"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	stores := h.directory.StoresInScope(ctx, region, r.URL.Query().Get("subArea"))
	out := make([]storeResponse, 0, len(stores))
	for _, st := range stores {
		out = append(out, toStoreResponse(st))
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

type upsertStoreRequest struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	RegionID  string  `json:"region_id"`
	Chain     string  `json:"chain"`
	IsPremium bool    `json:"is_premium"`
	District  string  `json:"district"`
	Locality  string  `json:"locality"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
}

func (h *Handler) handleUpsertStore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req upsertStoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	st := &models.Store{
		Name:      req.Name,
		Chain:     req.Chain,
		IsPremium: req.IsPremium,
		District:  req.District,
		Locality:  req.Locality,
		Lat:       req.Lat,
		Lng:       req.Lng,
	}

	regionID, err := domain.ParseRegionID(req.RegionID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	st.RegionID = regionID

	if req.ID != "" {
		id, err := domain.ParseStoreID(req.ID)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		st.ID = id
	}

	if err := h.directory.UpsertStore(ctx, st); err != nil {
		if dErrors.Is(err, dErrors.CodeBadRequest) || dErrors.Is(err, dErrors.CodeInvalidInput) {
			shared.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "store upsert failed",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to upsert store"))
		return
	}

	h.logger.InfoContext(ctx, "store upserted",
		"request_id", requestID,
		"store", st.Name,
		"admin", middleware.GetAdminSubject(ctx),
	)
	shared.WriteJSON(w, http.StatusOK, toStoreResponse(st))
}
