package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vanchuyen/driver-gateway/internal/auth"
	"github.com/vanchuyen/driver-gateway/internal/observability"
)

// Recover converts a handler panic into a normalized INTERNAL_ERROR response
// so no internal state ever reaches the client, and reports the fault.
func Recover(logger *observability.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				err := fmt.Errorf("panic serving %s %s: %v", r.Method, r.URL.Path, rec)
				logger.Error("handler panic", map[string]any{
					"method": r.Method,
					"path":   r.URL.Path,
					"panic":  fmt.Sprint(rec),
				})
				observability.CaptureError(err)

				internal := auth.ErrInternal()
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(internal.HTTPStatus())
				_ = json.NewEncoder(w).Encode(map[string]any{
					"success":    false,
					"error_code": string(internal.Code),
					"message":    internal.Message,
				})
			}()
			next.ServeHTTP(w, r)
		})
	}
}
