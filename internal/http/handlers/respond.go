package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/vanchuyen/driver-gateway/internal/auth"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// flowError is the error envelope of the driver flows.
type flowError struct {
	Success   bool   `json:"success"`
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

func writeFlowError(w http.ResponseWriter, authErr *auth.Error) {
	writeJSON(w, authErr.HTTPStatus(), flowError{
		Success:   false,
		ErrorCode: string(authErr.Code),
		Message:   authErr.Message,
	})
}

// overridesFromRequest extracts the test-override headers that client test
// suites use to force specific branches.
func overridesFromRequest(r *http.Request) auth.Overrides {
	return auth.Overrides{
		ForceRateLimit:  r.Header.Get("x-test-rate") == "1",
		OTPAttempts:     intHeader(r, "x-otp-attempts"),
		ResendCount:     intHeader(r, "x-resend-count"),
		SecsSinceResend: intHeader(r, "x-last-resend-secs"),
	}
}

func intHeader(r *http.Request, name string) *int {
	raw := r.Header.Get(name)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &n
}

// clientAddr extracts the client address for rate limiting.
func clientAddr(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		ips := strings.Split(forwarded, ",")
		return strings.TrimSpace(ips[0])
	}
	return r.RemoteAddr
}
