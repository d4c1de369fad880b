package middleware

import (
	"mime"
	"net/http"

	"salonbook/pkg/logger"
)

// ContentTypeValidation requires application/json on mutating requests
// that carry a body. Bodiless POSTs such as the cron drain pass through.
func ContentTypeValidation(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isMutating(r.Method) && r.ContentLength != 0 {
				mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
				if mediaType != "application/json" {
					log.Warn("Invalid Content-Type header",
						"request_id", RequestIDFromContext(r.Context()),
						"content_type", mediaType,
						"path", r.URL.Path,
						"method", r.Method,
					)
					writeJSONError(w, http.StatusUnsupportedMediaType, `{"error":"Content-Type must be application/json","code":"UNSUPPORTED_MEDIA_TYPE"}`)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
