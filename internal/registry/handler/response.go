package handler

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"renterverify/internal/registry/models"
	dErrors "renterverify/pkg/domain-errors"
	"renterverify/pkg/platform/httputil"
	"renterverify/pkg/requestcontext"
)

// writeResult answers a mutation: {"ok":true}, a registry failure carrying
// its literal code, or a generic error response.
func (h *Handler) writeResult(w http.ResponseWriter, r *http.Request, operation string, err error) {
	if err == nil {
		httputil.WriteJSON(w, http.StatusOK, models.OKResponse{OK: true})
		return
	}

	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	if code, ok := models.ResultCodeOf(err); ok {
		h.logger.InfoContext(ctx, operation+" rejected",
			"result_code", int(code),
			"request_id", requestID,
		)
		description := ""
		if de, ok := dErrors.From(err); ok {
			description = de.Message
		}
		httputil.WriteJSON(w, resultStatus(code), models.FailureResponse{
			Err:              code,
			Error:            code.Slug(),
			ErrorDescription: description,
		})
		return
	}

	h.logger.ErrorContext(ctx, "failed to "+operation,
		"error", err,
		"request_id", requestID,
	)
	httputil.WriteError(w, err)
}

func resultStatus(code models.ResultCode) int {
	switch code {
	case models.ResultNotAuthorized:
		return http.StatusForbidden
	case models.ResultRenterNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}

// requireCaller reads the identity placed on the context by RequireAuth.
func (h *Handler) requireCaller(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	ctx := r.Context()
	raw := requestcontext.Caller(ctx)
	if raw == "" {
		h.logger.ErrorContext(ctx, "caller missing from context despite auth middleware",
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return "", false
	}
	caller, err := models.ParseIdentity(raw)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "token subject is not a valid identity"))
		return "", false
	}
	return caller, true
}

func (h *Handler) renterParam(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	renter, err := pathIdentity(r, "renter")
	if err != nil {
		httputil.WriteError(w, err)
		return "", false
	}
	return renter, true
}

// pathIdentity reads an identity from a route parameter. chi routes on the
// raw path whenever the request carries escapes, leaving the parameter
// percent-encoded; otherwise it is already decoded.
func pathIdentity(r *http.Request, name string) (models.Identity, error) {
	raw := chi.URLParam(r, name)
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(raw)
		if err != nil {
			return "", dErrors.New(dErrors.CodeInvalidInput, "identity is not a valid path segment")
		}
		raw = unescaped
	}
	return models.ParseIdentity(raw)
}
