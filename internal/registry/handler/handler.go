package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"renterverify/internal/platform/metrics"
	"renterverify/internal/platform/middleware"
	"renterverify/internal/registry/models"
	"renterverify/pkg/platform/httputil"
	"renterverify/pkg/requestcontext"
)

// Service defines the registry operations exposed over HTTP.
type Service interface {
	SetAdmin(ctx context.Context, caller, newAdmin models.Identity) error
	RequestVerification(ctx context.Context, caller models.Identity, businessName, businessID string) error
	ApproveVerification(ctx context.Context, caller, renter models.Identity) error
	RevokeVerification(ctx context.Context, caller, renter models.Identity) error
	IsVerified(ctx context.Context, renter models.Identity) (bool, error)
	VerificationDetails(ctx context.Context, renter models.Identity) (*models.VerificationRecord, error)
	CurrentAdmin(ctx context.Context) (models.Identity, error)
}

// Handler serves the registry endpoints.
type Handler struct {
	logger       *slog.Logger
	registry     Service
	metrics      *metrics.Metrics
	jwtValidator middleware.CallerValidator
}

func New(
	registry Service,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	jwtValidator middleware.CallerValidator) *Handler {
	return &Handler{
		logger:       logger,
		registry:     registry,
		metrics:      metrics,
		jwtValidator: jwtValidator,
	}
}

// Register mounts the registry routes under /registry.
func (h *Handler) Register(r chi.Router) {
	registryRouter := chi.NewRouter()
	registryRouter.Use(middleware.Recovery(h.logger))
	registryRouter.Use(middleware.RequestID)
	registryRouter.Use(middleware.RequestTime)
	registryRouter.Use(middleware.Logger(h.logger))
	registryRouter.Use(chimw.Timeout(30 * time.Second))
	registryRouter.Use(middleware.ContentTypeJSON)
	if h.metrics != nil {
		registryRouter.Use(middleware.LatencyMiddleware(h.metrics))
	}

	registryRouter.Get("/admin", h.handleGetAdmin)
	registryRouter.Get("/verifications/{renter}", h.handleGetDetails)
	registryRouter.Get("/verifications/{renter}/status", h.handleGetStatus)

	registryRouter.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Put("/admin", h.handleSetAdmin)
		r.Post("/verifications", h.handleRequestVerification)
		r.Post("/verifications/{renter}/approve", h.handleApprove)
		r.Post("/verifications/{renter}/revoke", h.handleRevoke)
	})

	r.Mount("/registry", registryRouter)
}

func (h *Handler) handleSetAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[models.SetAdminRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	newAdmin, err := models.ParseIdentity(req.NewAdmin)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.writeResult(w, r, "set admin", h.registry.SetAdmin(ctx, caller, newAdmin))
}

func (h *Handler) handleRequestVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[models.VerificationRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	h.writeResult(w, r, "request verification",
		h.registry.RequestVerification(ctx, caller, req.BusinessName, req.BusinessID))
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	renter, ok := h.renterParam(w, r)
	if !ok {
		return
	}
	h.writeResult(w, r, "approve verification", h.registry.ApproveVerification(r.Context(), caller, renter))
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.requireCaller(w, r)
	if !ok {
		return
	}
	renter, ok := h.renterParam(w, r)
	if !ok {
		return
	}
	h.writeResult(w, r, "revoke verification", h.registry.RevokeVerification(r.Context(), caller, renter))
}

func (h *Handler) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	renter, ok := h.renterParam(w, r)
	if !ok {
		return
	}

	verified, err := h.registry.IsVerified(ctx, renter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read verification status",
			"renter", renter.String(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.StatusResponse{
		Renter:     renter.String(),
		IsVerified: verified,
	})
}

func (h *Handler) handleGetDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	renter, ok := h.renterParam(w, r)
	if !ok {
		return
	}

	record, err := h.registry.VerificationDetails(ctx, renter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read verification details",
			"renter", renter.String(),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.DetailsResponse{
		Renter: renter.String(),
		Record: record,
	})
}

func (h *Handler) handleGetAdmin(w http.ResponseWriter, r *http.Request) {
	admin, err := h.registry.CurrentAdmin(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.AdminResponse{Admin: admin.String()})
}
