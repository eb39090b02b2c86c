package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"padel-server/internal/account"
	"padel-server/internal/shared/errors"
	"padel-server/internal/shared/response"
)

type contextKey string

const UserContextKey contextKey = "user"

func JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := slog.With(
			"middleware", "jwt",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)
		logger.Debug("Processing JWT authentication")

		cookie, err := r.Cookie("auth_token")
		if err != nil {
			response.Error(w, r, logger, errors.Unauthorized("authentication required"))
			return
		}

		claims, err := account.ValidateJWT(cookie.Value)
		if err != nil {
			response.Error(w, r, logger, errors.Unauthorized("invalid token"))
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		logger.Debug("JWT authentication successful",
			"account_id", claims.AccountID,
			"role", claims.Role)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserFromContext returns the verified claims, or nil outside JWTMiddleware.
func GetUserFromContext(r *http.Request) *account.Claims {
	if claims, ok := r.Context().Value(UserContextKey).(*account.Claims); ok {
		return claims
	}
	return nil
}
