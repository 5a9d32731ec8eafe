package auth

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/rhuss/pforte/pkg/observability"
)

// RequirePermission creates middleware that gates a route behind a named
// capability. It is only meaningful after the API key pipeline: a request
// without an attached key record is rejected with AUTH_REQUIRED before any
// permission set is inspected. A key holding the admin capability passes
// every gate.
func RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := APIKeyFromContext(r.Context())
			if key == nil {
				WriteRejection(w, Reject(CodeAuthRequired, "authentication required"))
				return
			}

			if !key.HasPermission(permission) {
				slog.Warn("permission denied",
					"key_id", key.ID,
					"permission", permission,
					"path", r.URL.Path,
				)
				observability.PermissionDeniedTotal.WithLabelValues(permission).Inc()
				WriteRejection(w, Reject(CodeInsufficientPermissions,
					fmt.Sprintf("missing required permission %q", permission)))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
