package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/vanchuyen/driver-gateway/internal/auth"
	"github.com/vanchuyen/driver-gateway/internal/model"
	"github.com/vanchuyen/driver-gateway/internal/observability"
)

// AuthHandler exposes the driver auth flows over HTTP. Handlers parse the
// body, call the auth service and format the response; all decisions live in
// the service.
type AuthHandler struct {
	svc    *auth.Service
	logger *observability.Logger
}

// NewAuthHandler creates the auth endpoints.
func NewAuthHandler(svc *auth.Service, logger *observability.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger}
}

type loginRequest struct {
	LicensePlate string `json:"license_plate"`
	PhoneNumber  string `json:"phone_number"`
	Password     string `json:"password"`
}

type driverPayload struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	PhoneNumber  string `json:"phone_number"`
	LicensePlate string `json:"license_plate,omitempty"`
	Status       string `json:"status"`
}

type loginGrantData struct {
	Driver           driverPayload `json:"driver"`
	AccessToken      string        `json:"access_token"`
	TokenType        string        `json:"token_type"`
	ExpiresIn        int           `json:"expires_in"`
	RefreshToken     string        `json:"refresh_token"`
	RefreshExpiresIn int           `json:"refresh_expires_in"`
}

type loginChallengeData struct {
	SessionID    string `json:"session_id"`
	OTPExpiresIn int    `json:"otp_expires_in"`
	DevOTP       string `json:"dev_otp,omitempty"`
}

// HandleLogin handles POST /driver/login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFlowError(w, &auth.Error{Code: auth.CodeBadRequest, Message: "Thiếu tham số: license_plate, phone_number, password"})
		return
	}

	result, authErr := h.svc.Login(r.Context(), auth.LoginInput{
		LicensePlate: strings.TrimSpace(req.LicensePlate),
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		Password:     req.Password,
		ClientAddr:   clientAddr(r),
		Overrides:    overridesFromRequest(r),
	})
	if authErr != nil {
		h.logFailure("login failed", req.PhoneNumber, authErr)
		writeFlowError(w, authErr)
		return
	}

	if result.Challenge != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Đã gửi mã OTP",
			"data": loginChallengeData{
				SessionID:    result.Challenge.SessionID,
				OTPExpiresIn: result.Challenge.ExpiresIn,
				DevOTP:       result.Challenge.DevCode,
			},
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Đăng nhập thành công",
		"data": loginGrantData{
			Driver:           driverToPayload(result.Driver, true),
			AccessToken:      result.Grant.AccessToken,
			TokenType:        "Bearer",
			ExpiresIn:        result.Grant.ExpiresIn,
			RefreshToken:     result.Grant.RefreshToken,
			RefreshExpiresIn: result.Grant.RefreshExpiresIn,
		},
	})
}

type verifyOTPRequest struct {
	SessionID string `json:"session_id"`
	OTPCode   string `json:"otp_code"`
}

type verifyOTPResponse struct {
	Success     bool          `json:"success"`
	Message     string        `json:"message"`
	TokenType   string        `json:"token_type"`
	AccessToken string        `json:"access_token"`
	ExpiresIn   int           `json:"expires_in"`
	RefreshToken string       `json:"refresh_token"`
	Driver      driverPayload `json:"driver"`
	Vehicle     model.Vehicle `json:"vehicle"`
	Permissions []string      `json:"permissions"`
}

// HandleVerifyOTP handles POST /driver/verify-otp.
func (h *AuthHandler) HandleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFlowError(w, &auth.Error{Code: auth.CodeBadRequest, Message: "Thiếu tham số: session_id, otp_code"})
		return
	}

	result, authErr := h.svc.VerifyOTP(r.Context(), auth.VerifyOTPInput{
		SessionID:  strings.TrimSpace(req.SessionID),
		OTPCode:    strings.TrimSpace(req.OTPCode),
		ClientAddr: clientAddr(r),
		Overrides:  overridesFromRequest(r),
	})
	if authErr != nil {
		writeFlowError(w, authErr)
		return
	}

	writeJSON(w, http.StatusOK, verifyOTPResponse{
		Success:      true,
		Message:      "Xác thực OTP thành công",
		TokenType:    "Bearer",
		AccessToken:  result.Grant.AccessToken,
		ExpiresIn:    result.Grant.ExpiresIn,
		RefreshToken: result.Grant.RefreshToken,
		Driver:       driverToPayload(result.Driver, false),
		Vehicle:      result.Vehicle,
		Permissions:  result.Permissions,
	})
}

type resendOTPRequest struct {
	SessionID string `json:"session_id"`
}

// HandleResendOTP handles POST /driver/resend-otp.
func (h *AuthHandler) HandleResendOTP(w http.ResponseWriter, r *http.Request) {
	var req resendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFlowError(w, &auth.Error{Code: auth.CodeBadRequest, Message: "Thiếu tham số: session_id"})
		return
	}

	result, authErr := h.svc.ResendOTP(r.Context(), auth.ResendInput{
		SessionID:  strings.TrimSpace(req.SessionID),
		ClientAddr: clientAddr(r),
		Overrides:  overridesFromRequest(r),
	})
	if authErr != nil {
		writeFlowError(w, authErr)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    "OTP đã được gửi lại",
		"expired_in": result.ExpiresIn,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// HandleRefresh handles POST /driver/token/refresh.
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFlowError(w, &auth.Error{Code: auth.CodeBadRequest, Message: "Thiếu refresh_token"})
		return
	}

	result, authErr := h.svc.Refresh(r.Context(), auth.RefreshInput{
		RefreshToken: strings.TrimSpace(req.RefreshToken),
		ClientAddr:   clientAddr(r),
		Overrides:    overridesFromRequest(r),
	})
	if authErr != nil {
		writeFlowError(w, authErr)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token_type":   "Bearer",
		"access_token": result.AccessToken,
		"expires_in":   result.ExpiresIn,
	})
}

func (h *AuthHandler) logFailure(message, phone string, authErr *auth.Error) {
	h.logger.Info(message, map[string]any{
		"phone":      observability.MaskPhone(phone),
		"error_code": string(authErr.Code),
	})
}

func driverToPayload(d model.Driver, withPlate bool) driverPayload {
	p := driverPayload{
		ID:          d.ID,
		Name:        d.Name,
		PhoneNumber: d.PhoneNumber,
		Status:      string(d.Status),
	}
	if withPlate {
		p.LicensePlate = d.LicensePlate
	}
	return p
}
