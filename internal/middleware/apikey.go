package middleware

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"moderation-api/internal/pkg/errors"
	"moderation-api/internal/services"
)

// APIKeyMiddleware authenticates the x-api-key header, enforces the
// daily quota, and meters the request for billing. The admitted key is
// placed on the request context for the handlers downstream.
func APIKeyMiddleware(usageService services.APIUsageService) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawKey := r.Header.Get("x-api-key")
			if rawKey == "" {
				http.Error(w, "API key is required", http.StatusUnauthorized)
				return
			}

			apiKey, quota, err := usageService.AdmitAndMeter(r.Context(), rawKey)
			if err != nil {
				if errors.Is(err, errors.ErrQuotaExceeded) {
					setRateLimitHeaders(w, quota)
					http.Error(w, "Daily request limit exceeded", http.StatusTooManyRequests)
					return
				}
				http.Error(w, "Invalid API key", http.StatusUnauthorized)
				return
			}

			setRateLimitHeaders(w, quota)

			ctx := services.WithAPIKeyContext(r.Context(), apiKey)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func setRateLimitHeaders(w http.ResponseWriter, quota *services.QuotaState) {
	if quota == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", quota.Limit))
	w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", quota.Remaining))
	w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", quota.ResetsAt.Unix()))
}
