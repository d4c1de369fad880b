package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS opens the API to the LIFF front end origins.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{
			"Accept", "Content-Type", IdempotencyHeader, RequestIDHeader,
			LineUserIDHeader, AdminSecretHeader,
		},
		ExposedHeaders: []string{RequestIDHeader, "Retry-After"},
		MaxAge:         300,
	})
}
