package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS lets the seat page call the API from its own origin, including the
// keepalive cancel sent while the page unloads.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	credentials := true
	for _, o := range allowedOrigins {
		if o == "*" {
			// browsers reject credentialed requests against a wildcard origin
			credentials = false
		}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: credentials,
		MaxAge:           300,
	})
}
