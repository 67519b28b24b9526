package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"basketwise/internal/bundle"
	"basketwise/internal/platform/metrics"
	"basketwise/internal/platform/middleware"
	"basketwise/internal/session"
	"basketwise/internal/transport/http/shared"
	"basketwise/pkg/domain"
	dErrors "basketwise/pkg/domain-errors"
)

// Service defines the session operations the handler exposes.
type Service interface {
	Create(ctx context.Context, slug string) (*session.Session, error)
	SelectRegion(ctx context.Context, id domain.SessionID, slug string) error
	SetSubArea(ctx context.Context, id domain.SessionID, subArea string) error
	Snapshot(ctx context.Context, id domain.SessionID) (*session.Snapshot, error)
	AddToCart(ctx context.Context, id domain.SessionID, productID domain.ProductID, pin domain.StoreID) error
	SetQuantity(ctx context.Context, id domain.SessionID, productID domain.ProductID, quantity int) error
	RemoveFromCart(ctx context.Context, id domain.SessionID, productID domain.ProductID) error
	AddBundle(ctx context.Context, id domain.SessionID, bundleID domain.BundleID) (bundle.Result, error)
	SetAlert(ctx context.Context, id domain.SessionID, productID domain.ProductID, target domain.Cents) error
	RemoveAlert(ctx context.Context, id domain.SessionID, productID domain.ProductID) error
	SavedProducts(ctx context.Context, id domain.SessionID) ([]domain.ProductID, error)
	SaveProduct(ctx context.Context, id domain.SessionID, productID domain.ProductID) error
	UnsaveProduct(ctx context.Context, id domain.SessionID, productID domain.ProductID) error
}

// Handler serves session lifecycle, cart, bundle, and alert endpoints.
type Handler struct {
	logger   *slog.Logger
	sessions Service
	metrics  *metrics.Metrics
}

func New(sessions Service, m *metrics.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		logger:   logger,
		sessions: sessions,
		metrics:  m,
	}
}

// Register mounts the session routes.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recovery(h.logger))
		r.Use(middleware.RequestID)
		r.Use(middleware.Logger(h.logger))
		r.Use(middleware.Timeout(15 * time.Second))
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.Latency(h.metrics))

		r.Post("/sessions", h.handleCreate)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Put("/region", h.handleSelectRegion)
			r.Put("/subarea", h.handleSetSubArea)
			r.Get("/cart", h.handleGetCart)
			r.Post("/cart/items", h.handleAddItem)
			r.Put("/cart/items/{productID}", h.handleSetQuantity)
			r.Delete("/cart/items/{productID}", h.handleRemoveItem)
			r.Post("/bundles/{bundleID}", h.handleAddBundle)
			r.Get("/alerts", h.handleListAlerts)
			r.Get("/alerts/triggered", h.handleTriggeredAlerts)
			r.Put("/alerts/{productID}", h.handleSetAlert)
			r.Delete("/alerts/{productID}", h.handleRemoveAlert)
			r.Get("/saved", h.handleListSaved)
			r.Put("/saved/{productID}", h.handleSaveProduct)
			r.Delete("/saved/{productID}", h.handleUnsaveProduct)
		})
	})
}

func sessionID(r *http.Request) (domain.SessionID, error) {
	return domain.ParseSessionID(chi.URLParam(r, "id"))
}

func productID(r *http.Request) (domain.ProductID, error) {
	return domain.ParseProductID(chi.URLParam(r, "productID"))
}

type itemResponse struct {
	ProductID string        `json:"product_id"`
	Name      string        `json:"name"`
	Quantity  int           `json:"quantity"`
	PinnedTo  string        `json:"pinned_to,omitempty"`
	MinPrice  *domain.Cents `json:"min_price,omitempty"`
	MaxPrice  *domain.Cents `json:"max_price,omitempty"`
}

type storeTotalResponse struct {
	StoreID  string       `json:"store_id"`
	Name     string       `json:"name"`
	Total    domain.Cents `json:"total"`
	Complete bool         `json:"complete"`
}

type alertResponse struct {
	ProductID   string       `json:"product_id"`
	TargetPrice domain.Cents `json:"target_price"`
}

type firedAlertResponse struct {
	alertResponse
	CurrentPrice domain.Cents `json:"current_price"`
	StoreID      string       `json:"store_id"`
}

type cartResponse struct {
	SessionID   string               `json:"session_id"`
	Region      string               `json:"region"`
	SubArea     string               `json:"sub_area"`
	Items       []itemResponse       `json:"items"`
	ItemCount   int                  `json:"item_count"`
	BestTotal   domain.Cents         `json:"best_total"`
	WorstTotal  domain.Cents         `json:"worst_total"`
	Savings     domain.Cents         `json:"savings"`
	StoreTotals []storeTotalResponse `json:"store_totals"`
	FiredAlerts []firedAlertResponse `json:"fired_alerts,omitempty"`
}

func toCartResponse(snap *session.Snapshot) cartResponse {
	out := cartResponse{
		SessionID:   snap.ID.String(),
		Region:      snap.Region.Slug,
		SubArea:     snap.SubArea,
		Items:       make([]itemResponse, 0, len(snap.Items)),
		ItemCount:   snap.ItemCount,
		BestTotal:   snap.Totals.Best,
		WorstTotal:  snap.Totals.Worst,
		Savings:     snap.Totals.Savings,
		StoreTotals: make([]storeTotalResponse, 0, len(snap.StoreTotals)),
	}
	for _, item := range snap.Items {
		ir := itemResponse{
			ProductID: item.Entry.ProductID.String(),
			Name:      item.Name,
			Quantity:  item.Entry.Quantity,
		}
		if item.Entry.Pinned() {
			ir.PinnedTo = item.Entry.PinnedStoreID.String()
		}
		if item.Priced {
			minP, maxP := item.Range.Min, item.Range.Max
			ir.MinPrice = &minP
			ir.MaxPrice = &maxP
		}
		out.Items = append(out.Items, ir)
	}
	for _, st := range snap.StoreTotals {
		out.StoreTotals = append(out.StoreTotals, storeTotalResponse{
			StoreID:  st.Store.ID.String(),
			Name:     st.Store.Name,
			Total:    st.Total,
			Complete: st.Complete,
		})
	}
	for _, fired := range snap.Fired {
		out.FiredAlerts = append(out.FiredAlerts, firedAlertResponse{
			alertResponse: alertResponse{
				ProductID:   fired.ProductID.String(),
				TargetPrice: fired.TargetPrice,
			},
			CurrentPrice: fired.Current.Price,
			StoreID:      fired.Current.StoreID.String(),
		})
	}
	return out
}

type createSessionRequest struct {
	Region string `json:"region"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createSessionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
			return
		}
	}

	sess, err := h.sessions.Create(ctx, req.Region)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	snap, err := h.sessions.Snapshot(ctx, sess.ID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toCartResponse(snap))
}

type selectRegionRequest struct {
	Region string `json:"region"`
}

func (h *Handler) handleSelectRegion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := sessionID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req selectRegionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Region == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "region is required"))
		return
	}

	if err := h.sessions.SelectRegion(ctx, id, req.Region); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setSubAreaRequest struct {
	SubArea string `json:"sub_area"`
}

func (h *Handler) handleSetSubArea(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := sessionID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req setSubAreaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.sessions.SetSubArea(ctx, id, req.SubArea); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := sessionID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	snap, err := h.sessions.Snapshot(ctx, id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toCartResponse(snap))
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	StoreID   string `json:"store_id"`
}

func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := sessionID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	pid, err := domain.ParseProductID(req.ProductID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var pin domain.StoreID
	if req.StoreID != "" {
		pin, err = domain.ParseStoreID(req.StoreID)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
	}

	if err := h.sessions.AddToCart(ctx, id, pid, pin); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) handleSetQuantity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := sessionID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	pid, err := productID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req setQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.sessions.SetQuantity(ctx, id, pid, req.Quantity); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := sessionID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	pid, err := productID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.sessions.RemoveFromCart(ctx, id, pid); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAddBundle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := sessionID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	bundleID, err := domain.ParseBundleID(chi.URLParam(r, "bundleID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	result, err := h.sessions.AddBundle(ctx, id, bundleID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "bundle applied",
		"request_id", middleware.GetRequestID(ctx),
		"session_id", id,
		"bundle", result.Definition.Name,
	)

	snap, err := h.sessions.Snapshot(ctx, id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toCartResponse(snap))
}

func (h *Handler) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := sessionID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	snap, err := h.sessions.Snapshot(ctx, id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	out := make([]alertResponse, 0, len(snap.Alerts))
	for _, a := range snap.Alerts {
		out = append(out, alertResponse{
			ProductID:   a.ProductID.String(),
			TargetPrice: a.TargetPrice,
		})
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleTriggeredAlerts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := sessionID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	snap, err := h.sessions.Snapshot(ctx, id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	out := make([]firedAlertResponse, 0, len(snap.Fired))
	for _, fired := range snap.Fired {
		out = append(out, firedAlertResponse{
			alertResponse: alertResponse{
				ProductID:   fired.ProductID.String(),
				TargetPrice: fired.TargetPrice,
			},
			CurrentPrice: fired.Current.Price,
			StoreID:      fired.Current.StoreID.String(),
		})
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

type setAlertRequest struct {
	TargetPrice domain.Cents `json:"target_price"`
}

func (h *Handler) handleSetAlert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := sessionID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	pid, err := productID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req setAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	if err := h.sessions.SetAlert(ctx, id, pid, req.TargetPrice); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type savedResponse struct {
	ProductIDs []string `json:"product_ids"`
}

func (h *Handler) handleListSaved(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := sessionID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	ids, err := h.sessions.SavedProducts(ctx, id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	out := savedResponse{ProductIDs: make([]string, 0, len(ids))}
	for _, pid := range ids {
		out.ProductIDs = append(out.ProductIDs, pid.String())
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleSaveProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := sessionID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	pid, err := productID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.sessions.SaveProduct(ctx, id, pid); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleUnsaveProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := sessionID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	pid, err := productID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.sessions.UnsaveProduct(ctx, id, pid); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRemoveAlert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := sessionID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	pid, err := productID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.sessions.RemoveAlert(ctx, id, pid); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
