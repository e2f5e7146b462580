package middleware

import (
	"net/http"
	"strings"

	"github.com/fooddealsberlin/backend/api/responses"
	pkgauth "github.com/fooddealsberlin/backend/pkg/auth"
	"github.com/fooddealsberlin/backend/pkg/config"
	pkgerrors "github.com/fooddealsberlin/backend/pkg/errors"
	"github.com/fooddealsberlin/backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the claims.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithUserID(r.Context(), claims.UserID.String())
			ctx = WithUsername(ctx, claims.Username)

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":  claims.UserID.String(),
					"username": claims.Username,
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth seeds the context with claims when a valid bearer token is
// present but lets anonymous requests through. The feed is public; voting
// state is only attached for signed-in users.
func OptionalAuth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				// A present-but-bad token is rejected rather than treated
				// as anonymous, so clients notice expired sessions.
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithUserID(r.Context(), claims.UserID.String())
			ctx = WithUsername(ctx, claims.Username)
			if logg != nil {
				ctx = logg.WithUserID(ctx, claims.UserID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}
