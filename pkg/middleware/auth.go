package middleware

import (
	"net/http"
	"strings"

	"cinema-reservation/pkg/utils"

	"go.uber.org/zap"
)

// BearerToken extracts the bearer token and forwards it in the request context.
// Tokens are validated by the booking backend, not here.
func BearerToken(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			scheme, token, ok := strings.Cut(authHeader, " ")
			token = strings.TrimSpace(token)
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				logger.Warn("Malformed authorization header",
					zap.String("path", r.URL.Path),
					zap.String("ip", r.RemoteAddr),
				)
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			ctx := utils.SetTokenContext(r.Context(), token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalBearerToken forwards a well-formed bearer token when one is sent and
// lets the request through either way. navigator.sendBeacon cannot set headers.
func OptionalBearerToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		token = strings.TrimSpace(token)
		if ok && strings.EqualFold(scheme, "Bearer") && token != "" {
			r = r.WithContext(utils.SetTokenContext(r.Context(), token))
		}
		next.ServeHTTP(w, r)
	})
}
