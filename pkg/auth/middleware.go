package auth

import (
	"log/slog"
	"net/http"

	"github.com/rhuss/pforte/pkg/observability"
)

// Middleware creates HTTP middleware from a CredentialVerifier and optional
// RateLimiter. It checks the bypass list, runs the verifier, attaches the
// principal to the request context, and finalizes the response itself on
// any rejection. A panic below the verifier is downgraded to the generic
// service-fault rejection so callers never see a raw internal fault.
func Middleware(verifier CredentialVerifier, limiter RateLimiter, bypassEndpoints []string) func(http.Handler) http.Handler {
	bypass := make(map[string]bool, len(bypassEndpoints))
	for _, ep := range bypassEndpoints {
		bypass[ep] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bypass[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			defer func() {
				if rec := recover(); rec != nil {
					slog.Error("authentication panic",
						"path", r.URL.Path,
						"panic", rec,
					)
					observability.AuthRejectionsTotal.WithLabelValues(CodeServiceError).Inc()
					WriteRejection(w, ServiceError())
				}
			}()

			principal, rej := verifier.Verify(r.Context(), r)

			if rej != nil {
				slog.Warn("authentication rejected",
					"code", rej.Code,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)
				observability.AuthRejectionsTotal.WithLabelValues(rej.Code).Inc()
				WriteRejection(w, rej)
				return
			}

			// Validate the principal before trusting it.
			if principal == nil || principal.Account == nil || principal.Account.ID == "" {
				slog.Error("verifier returned success without an account")
				observability.AuthRejectionsTotal.WithLabelValues(CodeServiceError).Inc()
				WriteRejection(w, ServiceError())
				return
			}

			slog.Debug("authentication succeeded",
				"account_id", principal.Account.ID,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)
			observability.AuthSuccessTotal.Inc()

			// Rate limiting (if configured).
			if limiter != nil {
				if err := limiter.Allow(r.Context(), principal); err != nil {
					slog.Warn("rate limit exceeded", "account_id", principal.Account.ID)
					observability.RateLimitRejectedTotal.Inc()
					WriteRejection(w, Reject(CodeRateLimited, "rate limit exceeded"))
					return
				}
			}

			ctx := SetPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// DefaultBypassEndpoints lists endpoints that skip authentication.
var DefaultBypassEndpoints = []string{"/healthz", "/readyz", "/metrics"}
