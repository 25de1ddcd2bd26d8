package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/vanchuyen/driver-gateway/internal/auth"
	"github.com/vanchuyen/driver-gateway/internal/model"
)

type contextKey string

const profileKey contextKey = "driver_profile"

// BearerAuth verifies the opaque bearer token and attaches the issued
// profile snapshot to the request context. Errors use the profile endpoint's
// envelope: {"error":{"code","message"}}.
func BearerAuth(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			scheme, token, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
				writeAuthError(w, auth.ErrUnauthorized())
				return
			}

			profile, authErr := svc.VerifyAccess(strings.TrimSpace(token))
			if authErr != nil {
				writeAuthError(w, authErr)
				return
			}

			ctx := context.WithValue(r.Context(), profileKey, &profile)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetProfile returns the profile attached by BearerAuth.
func GetProfile(ctx context.Context) (*model.Profile, bool) {
	p, ok := ctx.Value(profileKey).(*model.Profile)
	return p, ok
}

func writeAuthError(w http.ResponseWriter, authErr *auth.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(authErr.HTTPStatus())
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"code":    string(authErr.Code),
			"message": authErr.Message,
		},
	})
}
