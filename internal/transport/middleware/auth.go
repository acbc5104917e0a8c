package middleware

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/school-store/internal"
	"github.com/frahmantamala/school-store/internal/auth"
	"github.com/frahmantamala/school-store/internal/transport"
	"github.com/frahmantamala/school-store/pkg/logger"
)

type TokenVerifier interface {
	Verify(token string) (auth.ClaimSet, error)
}

// Authenticate verifies the bearer token and stores its claim set in the
// request context. No store lookup happens here.
func Authenticate(verifier TokenVerifier, lg *slog.Logger) func(http.Handler) http.Handler {
	base := transport.NewBaseHandler(lg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := transport.BearerToken(r)
			if token == "" {
				base.WriteAppError(w, internal.ErrInvalidToken.WithMessage("missing authorization token"))
				return
			}

			claims, err := verifier.Verify(token)
			if err != nil {
				base.Logger.Warn("token verification failed", "error", err, "path", r.URL.Path)
				base.WriteAppError(w, err)
				return
			}

			ctx := auth.WithClaims(r.Context(), claims)
			ctx = logger.With(ctx, "user_id", claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
