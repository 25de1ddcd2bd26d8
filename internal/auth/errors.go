package auth

import (
	"fmt"
	"net/http"
)

// Code is a machine-readable error code of the auth taxonomy. The set is
// closed: every failure leaving this package carries exactly one of these.
type Code string

const (
	CodeBadRequest         Code = "BAD_REQUEST"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeInvalidToken       Code = "INVALID_TOKEN"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeInvalidAccount     Code = "INVALID_ACCOUNT"
	CodeTokenExpired       Code = "TOKEN_EXPIRED"
	CodeTokenRevoked       Code = "TOKEN_REVOKED"
	CodeAccountInactive    Code = "ACCOUNT_INACTIVE"
	CodeVehicleNotAllowed  Code = "VEHICLE_NOT_ALLOWED"
	CodeVehicleInactive    Code = "VEHICLE_INACTIVE"
	CodeSessionNotFound    Code = "SESSION_NOT_FOUND"
	CodeAlreadyVerified    Code = "ALREADY_VERIFIED"
	CodeOTPExpired         Code = "OTP_EXPIRED"
	CodeOTPInvalid         Code = "OTP_INVALID"
	CodeOTPLocked          Code = "OTP_LOCKED"
	CodeAccountLocked      Code = "ACCOUNT_LOCKED"
	CodeRateLimited        Code = "RATE_LIMITED"
	CodeInternal           Code = "INTERNAL_ERROR"
)

// Error is a classified auth failure carrying a fixed code and an
// operator-facing message.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// HTTPStatus maps the code to its HTTP status. The mapping is part of the
// public contract and must not drift.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeUnauthorized, CodeInvalidToken, CodeInvalidCredentials,
		CodeInvalidAccount, CodeTokenExpired, CodeTokenRevoked:
		return http.StatusUnauthorized
	case CodeAccountInactive, CodeVehicleNotAllowed, CodeVehicleInactive:
		return http.StatusForbidden
	case CodeSessionNotFound:
		return http.StatusNotFound
	case CodeAlreadyVerified:
		return http.StatusConflict
	case CodeOTPExpired:
		return http.StatusGone
	case CodeOTPInvalid:
		return http.StatusUnauthorized
	case CodeAccountLocked, CodeOTPLocked:
		return http.StatusLocked
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func newError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func newErrorf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Canonical messages. These are client-visible strings; changing them breaks
// mobile clients that match on text.
const (
	msgRateLimited       = "Bạn thao tác quá nhanh. Vui lòng thử lại sau."
	msgInvalidAccount    = "Biển số xe hoặc số điện thoại không hợp lệ"
	msgAccountInactive   = "Tài khoản đang không hoạt động. Vui lòng liên hệ hỗ trợ."
	msgAccountLocked     = "Tài khoản bị khoá tạm thời do nhập sai quá số lần cho phép. Vui lòng thử lại sau."
	msgWrongPassword     = "Mật khẩu không đúng"
	msgSessionNotFound   = "Phiên không tồn tại hoặc đã bị xoá."
	msgOTPExpired        = "OTP đã hết hạn. Vui lòng yêu cầu mã mới."
	msgSessionExpired    = "Phiên đăng nhập đã hết hạn. Vui lòng đăng nhập lại."
	msgOTPLocked         = "Phiên bị khoá tạm thời do nhập sai quá số lần cho phép. Vui lòng thử lại sau."
	msgAlreadyVerified   = "Phiên đã được xác thực. Không thể gửi lại OTP."
	msgVehicleNotAllowed = "Phương tiện không được phép hoạt động."
	msgVehicleInactive   = "Phương tiện đang không hoạt động."
	msgRefreshExpired    = "Refresh token đã hết hạn."
	msgRefreshRevoked    = "Refresh token đã bị thu hồi."
	msgAccessInvalid     = "Access token không hợp lệ."
	msgAccessExpired     = "Access token đã hết hạn."
	msgMissingAuthHeader = "Thiếu hoặc sai Authorization header."
	msgInternal          = "Lỗi hệ thống"
)

// ErrInternal is the normalized form of any unexpected lower-layer fault.
// Nothing about the fault itself is exposed to the client.
func ErrInternal() *Error {
	return newError(CodeInternal, msgInternal)
}

// ErrUnauthorized signals a missing or malformed Authorization header.
func ErrUnauthorized() *Error {
	return newError(CodeUnauthorized, msgMissingAuthHeader)
}
