package handlers

import "net/http"

// HealthHandler reports process liveness.
type HealthHandler struct{}

// NewHealthHandler creates the health endpoint.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
