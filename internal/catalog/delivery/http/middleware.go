package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/stoktakip/catalog-view/pkg/auth"
	"github.com/stoktakip/catalog-view/pkg/logger"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	UsernameKey contextKey = "username"
)

// OptionalAuthMiddleware resolves the user identity from a Bearer token when
// one is present. Requests without a token proceed anonymously: the view
// still renders, with favorite flags uniformly false.
func OptionalAuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := auth.ValidateToken(parts[1])
		if err != nil {
			logger.Logger.Warn().Err(err).Msg("Invalid token on catalog request, treating as anonymous")
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, UsernameKey, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// RequireAuthMiddleware rejects requests without a resolved identity. Used
// for the favorite toggle, which carries the user id to the inventory
// service.
func RequireAuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return OptionalAuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		if UserIDFromContext(r.Context()) == "" {
			respondJSON(w, http.StatusUnauthorized, Response{
				Success: false,
				Error:   "Authentication required",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserIDFromContext returns the resolved user id, or "" for anonymous
// requests
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(UserIDKey).(string); ok {
		return id
	}
	return ""
}
