package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/vanchuyen/driver-gateway/internal/model"
	"github.com/vanchuyen/driver-gateway/internal/repo"
)

// DriverPermissions granted to every authenticated driver session.
var DriverPermissions = []string{"trip.view", "trip.accept", "trip.update_location"}

// Overrides carries the test-override signals the transport layer is allowed
// to pass through. They exist for black-box client test suites and force
// specific branches; production clients never set them.
type Overrides struct {
	ForceRateLimit bool
	OTPAttempts    *int
	ResendCount    *int
	SecsSinceResend *int
}

// Service composes the rate limiter, lockout tracker, OTP session store and
// token store into the login, OTP and refresh flows. Every failure it
// returns is one kind of the closed taxonomy.
type Service struct {
	drivers repo.DriverRepo
	rate    *RateLimiter
	lockout *LockoutTracker
	otp     *OtpSessionStore
	tokens  *TokenStore

	// report receives unexpected lower-layer faults after they have been
	// normalized to INTERNAL_ERROR. Never exposed to the client.
	report func(error)
}

// NewService wires the auth engine. All state lives in the injected stores;
// the service itself is stateless.
func NewService(drivers repo.DriverRepo, rate *RateLimiter, lockout *LockoutTracker, otp *OtpSessionStore, tokens *TokenStore) *Service {
	return &Service{
		drivers: drivers,
		rate:    rate,
		lockout: lockout,
		otp:     otp,
		tokens:  tokens,
		report:  func(error) {},
	}
}

// SetReporter installs a sink for normalized internal faults.
func (s *Service) SetReporter(report func(error)) {
	if report != nil {
		s.report = report
	}
}

func (s *Service) internal(err error) *Error {
	s.report(err)
	return ErrInternal()
}

func (s *Service) throttle(clientAddr string, ov Overrides) *Error {
	if ov.ForceRateLimit || !s.rate.Allow(clientAddr) {
		return newError(CodeRateLimited, msgRateLimited)
	}
	return nil
}

// LoginInput is a parsed login request.
type LoginInput struct {
	LicensePlate string
	PhoneNumber  string
	Password     string
	ClientAddr   string
	Overrides    Overrides
}

// OTPChallenge describes a pending OTP step issued by login.
type OTPChallenge struct {
	SessionID string
	ExpiresIn int
	// DevCode carries the plaintext code only when the OTP store runs in
	// dev mode; otherwise it is empty and the code goes to the delivery
	// channel alone.
	DevCode string
}

// LoginResult is a successful login: either a direct token grant or an OTP
// challenge, never both.
type LoginResult struct {
	Driver    model.Driver
	Grant     *TokenGrant
	Challenge *OTPChallenge
}

// Login verifies credentials for the (phone, plate) identifier and either
// issues tokens or opens an OTP challenge. Step order is fixed: rate limit,
// validation, account match, status, lockout pre-check, password, lockout
// update, issuance.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, *Error) {
	if err := s.throttle(in.ClientAddr, in.Overrides); err != nil {
		return nil, err
	}
	if in.LicensePlate == "" || in.PhoneNumber == "" || in.Password == "" {
		return nil, newError(CodeBadRequest, "Thiếu tham số: license_plate, phone_number, password")
	}

	phone := NormalizePhone(in.PhoneNumber)
	plate := NormalizePlate(in.LicensePlate)
	id := Identifier{Phone: phone, Plate: plate}

	driver, err := s.drivers.FindByPhoneAndPlate(ctx, phone, plate)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, newError(CodeInvalidAccount, msgInvalidAccount)
		}
		return nil, s.internal(err)
	}
	if driver.Status != model.DriverActive {
		return nil, newError(CodeAccountInactive, msgAccountInactive)
	}

	if locked, _ := s.lockout.Locked(id); locked {
		return nil, newError(CodeAccountLocked, msgAccountLocked)
	}

	ok := subtle.ConstantTimeCompare([]byte(HashPassword(in.Password)), []byte(driver.PasswordHash)) == 1

	if locked, _ := s.lockout.Evaluate(id, ok); locked {
		return nil, newError(CodeAccountLocked, msgAccountLocked)
	}
	if !ok {
		return nil, newError(CodeInvalidCredentials, msgWrongPassword)
	}

	if driver.RequiresOTP {
		sessionID, code, err := s.otp.Create(driver.ID)
		if err != nil {
			return nil, s.internal(err)
		}
		challenge := &OTPChallenge{SessionID: sessionID, ExpiresIn: s.otp.TTLSeconds()}
		if s.otp.DevMode() {
			challenge.DevCode = code
		}
		return &LoginResult{Driver: driver, Challenge: challenge}, nil
	}

	profile, err := s.profileFor(ctx, driver)
	if err != nil {
		return nil, s.internal(err)
	}
	grant, err := s.tokens.Issue(profile)
	if err != nil {
		return nil, s.internal(err)
	}
	return &LoginResult{Driver: driver, Grant: &grant}, nil
}

// VerifyOTPInput is a parsed OTP verification request.
type VerifyOTPInput struct {
	SessionID  string
	OTPCode    string
	ClientAddr string
	Overrides  Overrides
}

// VerifyOTPResult is a successful OTP verification.
type VerifyOTPResult struct {
	Driver      model.Driver
	Vehicle     model.Vehicle
	Permissions []string
	Grant       TokenGrant
}

// VerifyOTP checks the code for a pending session and issues tokens. Expiry
// beats lock, lock beats the code comparison; a locked or expired session
// never reveals whether the code was correct.
func (s *Service) VerifyOTP(ctx context.Context, in VerifyOTPInput) (*VerifyOTPResult, *Error) {
	if err := s.throttle(in.ClientAddr, in.Overrides); err != nil {
		return nil, err
	}
	if in.SessionID == "" || in.OTPCode == "" {
		return nil, newError(CodeBadRequest, "Thiếu tham số: session_id, otp_code")
	}
	if in.Overrides.OTPAttempts != nil {
		s.otp.SetFailedAttempts(in.SessionID, *in.Overrides.OTPAttempts)
	}

	driverID, authErr := s.otp.Lookup(in.SessionID)
	if authErr != nil {
		return nil, authErr
	}

	driver, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, newError(CodeInvalidAccount, msgInvalidAccount)
		}
		return nil, s.internal(err)
	}
	if driver.Status != model.DriverActive {
		return nil, newError(CodeAccountInactive, msgAccountInactive)
	}
	if !driver.VehicleAllowed {
		return nil, newError(CodeVehicleNotAllowed, msgVehicleNotAllowed)
	}
	vehicle, err := s.drivers.VehicleByID(ctx, driver.VehicleID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, newError(CodeVehicleNotAllowed, msgVehicleNotAllowed)
		}
		return nil, s.internal(err)
	}
	if vehicle.Status != model.VehicleActive {
		return nil, newError(CodeVehicleInactive, msgVehicleInactive)
	}

	if _, authErr := s.otp.Verify(in.SessionID, in.OTPCode); authErr != nil {
		return nil, authErr
	}

	profile, err := s.profileFor(ctx, driver)
	if err != nil {
		return nil, s.internal(err)
	}
	grant, err := s.tokens.Issue(profile)
	if err != nil {
		return nil, s.internal(err)
	}
	return &VerifyOTPResult{
		Driver:      driver,
		Vehicle:     vehicle,
		Permissions: DriverPermissions,
		Grant:       grant,
	}, nil
}

// ResendInput is a parsed OTP resend request.
type ResendInput struct {
	SessionID  string
	ClientAddr string
	Overrides  Overrides
}

// ResendResult reports the unchanged challenge lifetime after a re-delivery.
type ResendResult struct {
	ExpiresIn int
}

// ResendOTP re-delivers the pending challenge, enforcing the per-session cap
// and cooldown. The code and expiry stay fixed.
func (s *Service) ResendOTP(ctx context.Context, in ResendInput) (*ResendResult, *Error) {
	if err := s.throttle(in.ClientAddr, in.Overrides); err != nil {
		return nil, err
	}
	if in.SessionID == "" {
		return nil, newError(CodeBadRequest, "Thiếu tham số: session_id")
	}
	if in.Overrides.ResendCount != nil || in.Overrides.SecsSinceResend != nil {
		count := 0
		if in.Overrides.ResendCount != nil {
			count = *in.Overrides.ResendCount
		}
		last := time.Time{}
		if in.Overrides.SecsSinceResend != nil {
			last = time.Now().Add(-time.Duration(*in.Overrides.SecsSinceResend) * time.Second)
		}
		s.otp.SetResendState(in.SessionID, count, last)
	}

	if authErr := s.otp.Resend(in.SessionID); authErr != nil {
		return nil, authErr
	}
	return &ResendResult{ExpiresIn: s.otp.TTLSeconds()}, nil
}

// RefreshInput is a parsed token refresh request.
type RefreshInput struct {
	RefreshToken string
	ClientAddr   string
	Overrides    Overrides
}

// RefreshResult is a newly minted access token. The refresh token is not
// rotated; it stays valid until its own expiry.
type RefreshResult struct {
	AccessToken string
	ExpiresIn   int
}

// Refresh exchanges a live refresh token for a fresh access token bound to a
// current profile snapshot.
func (s *Service) Refresh(ctx context.Context, in RefreshInput) (*RefreshResult, *Error) {
	if err := s.throttle(in.ClientAddr, in.Overrides); err != nil {
		return nil, err
	}
	if in.RefreshToken == "" {
		return nil, newError(CodeBadRequest, "Thiếu refresh_token")
	}

	driverID, authErr := s.tokens.VerifyRefresh(in.RefreshToken)
	if authErr != nil {
		return nil, authErr
	}

	profile, err := s.drivers.ProfileByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, newError(CodeInvalidAccount, msgInvalidAccount)
		}
		return nil, s.internal(err)
	}

	token, expiresIn, err := s.tokens.IssueAccess(profile)
	if err != nil {
		return nil, s.internal(err)
	}
	return &RefreshResult{AccessToken: token, ExpiresIn: expiresIn}, nil
}

// VerifyAccess resolves a bearer token to its issued profile snapshot.
func (s *Service) VerifyAccess(token string) (model.Profile, *Error) {
	return s.tokens.VerifyAccess(token)
}

// profileFor fetches the full profile for a driver, falling back to the bare
// directory fields when the profile store has no richer record.
func (s *Service) profileFor(ctx context.Context, driver model.Driver) (model.Profile, error) {
	profile, err := s.drivers.ProfileByID(ctx, driver.ID)
	if err == nil {
		return profile, nil
	}
	if errors.Is(err, repo.ErrNotFound) {
		return model.Profile{
			ID:           driver.ID,
			Name:         driver.Name,
			PhoneNumber:  driver.PhoneNumber,
			LicensePlate: driver.LicensePlate,
			Status:       driver.Status,
		}, nil
	}
	return model.Profile{}, err
}
