package middleware

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/school-store/internal"
	"github.com/frahmantamala/school-store/internal/auth"
	"github.com/frahmantamala/school-store/internal/transport"
	"github.com/frahmantamala/school-store/pkg/metrics"
)

// RequirePolicy resolves the policy when the route is registered; an unknown
// name panics during startup rather than denying at request time.
func RequirePolicy(engine *auth.PolicyEngine, name string, lg *slog.Logger) func(http.Handler) http.Handler {
	policy := engine.MustRequire(name)
	base := transport.NewBaseHandler(lg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.ClaimsFromContext(r.Context())
			if !ok {
				base.WriteAppError(w, internal.ErrInvalidToken)
				return
			}

			if !policy.SatisfiedBy(claims) {
				metrics.AuthorizationDenials.WithLabelValues(policy.Name).Inc()
				base.Logger.Warn("access denied: policy not satisfied",
					"user_id", claims.UserID,
					"policy", policy.Name,
					"required_permissions", policy.Requires,
					"user_permissions", claims.Permissions)
				base.WriteAppError(w, internal.ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole checks a role membership claim, used by admin-only routes.
func RequireRole(role string, lg *slog.Logger) func(http.Handler) http.Handler {
	if _, ok := auth.CanonicalRole(role); !ok {
		panic("unknown role " + role)
	}
	base := transport.NewBaseHandler(lg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := auth.ClaimsFromContext(r.Context())
			if !ok {
				base.WriteAppError(w, internal.ErrInvalidToken)
				return
			}

			if !claims.HasRole(role) {
				metrics.AuthorizationDenials.WithLabelValues("role:" + role).Inc()
				base.Logger.Warn("access denied: missing role", "user_id", claims.UserID, "required_role", role)
				base.WriteAppError(w, internal.ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
