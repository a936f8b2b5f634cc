package middleware

import (
	"net/http"
	"strings"

	"moderation-api/internal/services"
)

// AdminMiddleware admits either a personal admin JWT (Authorization
// bearer) or the rotating ops token (x-admin-token header). The
// resolved identity is placed on the request context.
func AdminMiddleware(authService services.AdminAuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var identity *services.AdminIdentity
			var err error

			if tokenString := extractTokenFromHeader(r); tokenString != "" {
				identity, err = authService.VerifyAdminToken(tokenString)
			} else if opsToken := r.Header.Get("x-admin-token"); opsToken != "" {
				identity, err = authService.VerifyOpsToken(opsToken)
			} else {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := services.WithAdminContext(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractTokenFromHeader(r *http.Request) string {
	bearerToken := r.Header.Get("Authorization")
	if len(strings.Split(bearerToken, " ")) == 2 {
		return strings.Split(bearerToken, " ")[1]
	}
	return ""
}
