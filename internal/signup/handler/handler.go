package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	dmodels "basketwise/internal/directory/models"
	"basketwise/internal/platform/metrics"
	"basketwise/internal/platform/middleware"
	"basketwise/internal/signup/models"
	"basketwise/internal/transport/http/shared"
	"basketwise/pkg/domain"
	dErrors "basketwise/pkg/domain-errors"
)

// Service defines the waitlist operations the handler exposes.
type Service interface {
	Register(ctx context.Context, name, email string, regionID domain.RegionID) (*models.Signup, error)
	Count(ctx context.Context, regionID domain.RegionID) int
}

// Directory resolves region slugs for signup requests.
type Directory interface {
	RegionBySlug(ctx context.Context, slug string) (*dmodels.Region, error)
}

// Handler serves waitlist signups and the live per-region count.
type Handler struct {
	logger    *slog.Logger
	signups   Service
	directory Directory
	metrics   *metrics.Metrics
}

func New(signups Service, directory Directory, m *metrics.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		logger:    logger,
		signups:   signups,
		directory: directory,
		metrics:   m,
	}
}

// Register mounts the signup routes.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recovery(h.logger))
		r.Use(middleware.RequestID)
		r.Use(middleware.Logger(h.logger))
		r.Use(middleware.Timeout(15 * time.Second))
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.Latency(h.metrics))
		r.Post("/signups", h.handleRegister)
		r.Get("/signups/count", h.handleCount)
	})
}

type registerRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Region string `json:"region"`
}

type registerResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Region string `json:"region"`
	Count  int    `json:"waitlist_count"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	region, err := h.directory.RegionBySlug(ctx, req.Region)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	signup, err := h.signups.Register(ctx, req.Name, req.Email, region.ID)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeBadRequest) || dErrors.Is(err, dErrors.CodeConflict) {
			h.logger.WarnContext(ctx, "signup rejected",
				"request_id", requestID,
				"region", region.Slug,
				"error", err.Error(),
			)
			shared.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "signup failed",
			"request_id", requestID,
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to register signup"))
		return
	}

	shared.WriteJSON(w, http.StatusCreated, registerResponse{
		ID:     signup.ID.String(),
		Name:   signup.Name,
		Email:  signup.Email,
		Region: region.Slug,
		Count:  h.signups.Count(ctx, region.ID),
	})
}

type countResponse struct {
	Region string `json:"region"`
	Count  int    `json:"count"`
}

func (h *Handler) handleCount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	region, err := h.directory.RegionBySlug(ctx, r.URL.Query().Get("region"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, countResponse{
		Region: region.Slug,
		Count:  h.signups.Count(ctx, region.ID),
	})
}
