package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/vanchuyen/driver-gateway/internal/auth"
	"github.com/vanchuyen/driver-gateway/internal/middleware"
	"github.com/vanchuyen/driver-gateway/internal/model"
)

// Relation names accepted by the include selector.
const (
	relPosition       = "position"
	relLicense        = "license"
	relVehicle        = "vehicle"
	relSalary         = "salary"
	relInsurance      = "insurance"
	relTodaySummary   = "today_summary"
	relTodayShipments = "today_shipments"
)

type profileMeta struct {
	ServerTime string `json:"server_time"`
	TokenType  string `json:"token_type"`
}

type profileResponse struct {
	Data model.Profile `json:"data"`
	Meta profileMeta   `json:"meta"`
}

// HandleMe handles GET /auth/me. The include query selects which relation
// sub-objects are returned; absent it, all relations are omitted.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	profile, ok := middleware.GetProfile(r.Context())
	if !ok || profile == nil {
		writeAuthEnvelopeError(w, auth.ErrUnauthorized())
		return
	}

	filtered := filterProfile(*profile, r.URL.Query().Get("include"))

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, profileResponse{
		Data: filtered,
		Meta: profileMeta{
			ServerTime: time.Now().UTC().Format(time.RFC3339),
			TokenType:  "Bearer",
		},
	})
}

// filterProfile strips every relation sub-object not named by the selector.
// Runs on a copy; the caller's profile is untouched.
func filterProfile(p model.Profile, includeParam string) model.Profile {
	out := p.Clone()

	include := make(map[string]bool)
	for _, raw := range strings.Split(includeParam, ",") {
		if key := normalizeIncludeToken(raw); key != "" {
			include[key] = true
		}
	}

	if !include[relPosition] {
		out.Position = nil
	}
	if !include[relLicense] {
		out.License = nil
	}
	if !include[relVehicle] {
		out.Vehicle = nil
	}
	if !include[relSalary] {
		out.Salary = nil
	}
	if !include[relInsurance] {
		out.Insurance = nil
	}
	if !include[relTodaySummary] {
		out.TodaySummary = nil
	}
	if !include[relTodayShipments] {
		out.TodayShipments = nil
	}
	return out
}

// normalizeIncludeToken maps a raw selector token to a relation name.
// "vehicles" is accepted as an alias for "vehicle".
func normalizeIncludeToken(token string) string {
	t := strings.ToLower(strings.TrimSpace(token))
	if t == "vehicles" {
		return relVehicle
	}
	switch t {
	case relPosition, relLicense, relVehicle, relSalary, relInsurance, relTodaySummary, relTodayShipments:
		return t
	}
	return ""
}

func writeAuthEnvelopeError(w http.ResponseWriter, authErr *auth.Error) {
	writeJSON(w, authErr.HTTPStatus(), map[string]any{
		"error": map[string]string{
			"code":    string(authErr.Code),
			"message": authErr.Message,
		},
	})
}
