package controllers

import (
	"context"
	"net/http"

	"github.com/nuxeo/mkto-pd-sync-app/internal/models"
	"github.com/nuxeo/mkto-pd-sync-app/internal/services"
)

type contextKey string

const apiKeyContextKey contextKey = "api_key"

// AuthMiddleware validates the api_key query parameter against the
// key store and attaches the key record to the request context.
func AuthMiddleware(auth *services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey, err := auth.ValidateAPIKey(r.URL.Query().Get("api_key"))
			if err != nil {
				respondError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
				return
			}

			ctx := context.WithValue(r.Context(), apiKeyContextKey, apiKey)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func apiKeyFromContext(ctx context.Context) *models.APIKey {
	apiKey, _ := ctx.Value(apiKeyContextKey).(*models.APIKey)
	return apiKey
}
