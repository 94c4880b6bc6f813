package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	dErrors "renterverify/pkg/domain-errors"
	"renterverify/pkg/platform/httputil"
	"renterverify/pkg/requestcontext"
)

// OpsTokenHeader carries the operator token for /ops endpoints.
const OpsTokenHeader = "X-Ops-Token"

// RequireOpsToken guards operator endpoints with a static shared token.
// An empty expected token rejects every request.
func RequireOpsToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(OpsTokenHeader)
			if expectedToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				ctx := r.Context()
				logger.WarnContext(ctx, "ops token mismatch",
					"request_id", requestcontext.RequestID(ctx),
					"client_ip", ClientIP(r),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "ops token required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
