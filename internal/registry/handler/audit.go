package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"renterverify/internal/platform/middleware"
	dErrors "renterverify/pkg/domain-errors"
	"renterverify/pkg/platform/audit"
	"renterverify/pkg/platform/audit/publisher"
	"renterverify/pkg/platform/httputil"
)

// AuditLister reads back the audit trail of one subject.
type AuditLister interface {
	List(ctx context.Context, subject string) ([]audit.Event, error)
}

type auditEventResponse struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	Ordinal   uint64    `json:"ordinal"`
	Action    string    `json:"action"`
	Actor     string    `json:"actor"`
	Subject   string    `json:"subject"`
	Decision  string    `json:"decision"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

type auditTrailResponse struct {
	Subject string               `json:"subject"`
	Events  []auditEventResponse `json:"events"`
}

// AuditHandler serves the operator view of the registry audit trail.
type AuditHandler struct {
	lister   AuditLister
	opsToken string
	logger   *slog.Logger
}

func NewAuditHandler(lister AuditLister, opsToken string, logger *slog.Logger) *AuditHandler {
	return &AuditHandler{lister: lister, opsToken: opsToken, logger: logger}
}

// Register mounts GET /ops/audit/{subject} behind the ops token.
func (h *AuditHandler) Register(r chi.Router) {
	opsRouter := chi.NewRouter()
	opsRouter.Use(middleware.Recovery(h.logger))
	opsRouter.Use(middleware.RequestID)
	opsRouter.Use(middleware.RequireOpsToken(h.opsToken, h.logger))
	opsRouter.Get("/audit/{subject}", h.handleListAudit)

	r.Mount("/ops", opsRouter)
}

func (h *AuditHandler) handleListAudit(w http.ResponseWriter, r *http.Request) {
	subject, err := pathIdentity(r, "subject")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	events, err := h.lister.List(r.Context(), subject.String())
	if errors.Is(err, publisher.ErrNoLister) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "audit trail is streamed to Kafka and cannot be listed here"))
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list audit events", "error", err)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events"))
		return
	}

	resp := auditTrailResponse{Subject: subject.String(), Events: make([]auditEventResponse, 0, len(events))}
	for _, e := range events {
		resp.Events = append(resp.Events, auditEventResponse{
			ID:        e.ID,
			Category:  string(e.Category),
			Timestamp: e.Timestamp,
			Ordinal:   e.Ordinal,
			Action:    e.Action,
			Actor:     e.Actor,
			Subject:   e.Subject,
			Decision:  e.Decision,
			Reason:    e.Reason,
			RequestID: e.RequestID,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
