package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
)

// devOTPCode is the pinned code when the store runs in dev mode.
const devOTPCode = "123456"

// otpSession is one OTP challenge. A session is terminal once verified or
// past its expiry; expiry is checked lazily on access.
type otpSession struct {
	driverID       int
	codeHash       []byte
	expiresAt      time.Time
	failedAttempts int
	lockUntil      time.Time
	verified       bool
	resendCount    int
	lastResendAt   time.Time
}

// OtpSessionStore holds OTP challenge state keyed by session id. Only the
// salted hash of a code is kept; the plaintext exists just long enough to
// hand to the delivery channel.
type OtpSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*otpSession

	ttl            time.Duration
	maxAttempts    int
	lockDuration   time.Duration
	resendMax      int
	resendCooldown time.Duration
	salt           string
	devMode        bool
	now            func() time.Time
}

// OtpConfig tunes the OTP challenge lifecycle.
type OtpConfig struct {
	TTL            time.Duration
	MaxAttempts    int
	LockDuration   time.Duration
	ResendMax      int
	ResendCooldown time.Duration
	Salt           string
	// DevMode pins every code to "123456" so clients can be exercised
	// without a delivery channel.
	DevMode bool
}

// NewOtpSessionStore creates an empty session store.
func NewOtpSessionStore(cfg OtpConfig) *OtpSessionStore {
	if cfg.TTL <= 0 {
		cfg.TTL = 300 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.LockDuration <= 0 {
		cfg.LockDuration = 15 * time.Minute
	}
	if cfg.ResendMax <= 0 {
		cfg.ResendMax = 3
	}
	if cfg.ResendCooldown <= 0 {
		cfg.ResendCooldown = 60 * time.Second
	}
	return &OtpSessionStore{
		sessions:       make(map[string]*otpSession),
		ttl:            cfg.TTL,
		maxAttempts:    cfg.MaxAttempts,
		lockDuration:   cfg.LockDuration,
		resendMax:      cfg.ResendMax,
		resendCooldown: cfg.ResendCooldown,
		salt:           cfg.Salt,
		devMode:        cfg.DevMode,
		now:            time.Now,
	}
}

// DevMode reports whether codes are pinned for client development.
func (s *OtpSessionStore) DevMode() bool {
	return s.devMode
}

// Lookup resolves a session to its driver after the same state checks as
// Verify, without consuming an attempt. The orchestrator uses it to run
// account and vehicle status checks before the code comparison.
func (s *OtpSessionStore) Lookup(sessionID string) (driverID int, authErr *Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return 0, newError(CodeSessionNotFound, msgSessionNotFound)
	}
	now := s.now()
	if now.After(sess.expiresAt) {
		return 0, newError(CodeOTPExpired, msgOTPExpired)
	}
	if !sess.lockUntil.IsZero() && now.Before(sess.lockUntil) {
		return 0, newError(CodeOTPLocked, msgOTPLocked)
	}
	if sess.verified {
		return 0, newError(CodeAlreadyVerified, msgAlreadyVerified)
	}
	return sess.driverID, nil
}

// TTLSeconds returns the challenge lifetime in whole seconds.
func (s *OtpSessionStore) TTLSeconds() int {
	return int(s.ttl / time.Second)
}

// Create opens a new challenge for the driver and returns the session id and
// the plaintext code for delivery.
func (s *OtpSessionStore) Create(driverID int) (sessionID, code string, err error) {
	code = devOTPCode
	if !s.devMode {
		code, err = generateOTPCode()
		if err != nil {
			return "", "", fmt.Errorf("generate otp: %w", err)
		}
	}
	sessionID = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, sess := range s.sessions {
		if now.After(sess.expiresAt) {
			delete(s.sessions, id)
		}
	}
	s.sessions[sessionID] = &otpSession{
		driverID:  driverID,
		codeHash:  hashOTP(sessionID, code, s.salt),
		expiresAt: now.Add(s.ttl),
	}
	return sessionID, code, nil
}

// Verify checks the supplied code against the session. A missing, expired or
// locked session fails before the code is even looked at, so those states
// never reveal whether the code was correct. On the first correct code the
// session becomes verified and no later attempt can succeed.
func (s *OtpSessionStore) Verify(sessionID, code string) (driverID int, authErr *Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return 0, newError(CodeSessionNotFound, msgSessionNotFound)
	}

	now := s.now()
	if now.After(sess.expiresAt) {
		return 0, newError(CodeOTPExpired, msgOTPExpired)
	}
	if !sess.lockUntil.IsZero() && now.Before(sess.lockUntil) {
		return 0, newError(CodeOTPLocked, msgOTPLocked)
	}
	if sess.verified {
		return 0, newError(CodeAlreadyVerified, msgAlreadyVerified)
	}

	if subtle.ConstantTimeCompare(hashOTP(sessionID, code, s.salt), sess.codeHash) != 1 {
		sess.failedAttempts++
		if sess.failedAttempts >= s.maxAttempts {
			sess.lockUntil = now.Add(s.lockDuration)
			return 0, newError(CodeOTPLocked, msgOTPLocked)
		}
		remaining := s.maxAttempts - sess.failedAttempts
		return 0, newErrorf(CodeOTPInvalid, "Mã OTP không đúng. Bạn còn %d lần thử.", remaining)
	}

	sess.verified = true
	sess.failedAttempts = 0
	return sess.driverID, nil
}

// Resend re-delivers the existing challenge. The code and expiry stay fixed;
// only the resend bookkeeping changes.
func (s *OtpSessionStore) Resend(sessionID string) *Error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return newError(CodeSessionNotFound, msgSessionNotFound)
	}

	now := s.now()
	if now.After(sess.expiresAt) {
		return newError(CodeOTPExpired, msgSessionExpired)
	}
	if !sess.lockUntil.IsZero() && now.Before(sess.lockUntil) {
		return newError(CodeOTPLocked, msgOTPLocked)
	}
	if sess.verified {
		return newError(CodeAlreadyVerified, msgAlreadyVerified)
	}

	if sess.resendCount >= s.resendMax {
		return newErrorf(CodeRateLimited,
			"Đã vượt quá số lần gửi lại OTP cho phép trong phiên (tối đa %d lần).", s.resendMax)
	}
	if !sess.lastResendAt.IsZero() {
		elapsed := now.Sub(sess.lastResendAt)
		if elapsed < s.resendCooldown {
			remain := int((s.resendCooldown - elapsed).Round(time.Second) / time.Second)
			return newErrorf(CodeRateLimited, "Bạn vừa yêu cầu OTP. Vui lòng thử lại sau %ds.", remain)
		}
	}

	sess.resendCount++
	sess.lastResendAt = now
	return nil
}

// SetFailedAttempts overrides the failure counter of a session. Used by the
// transport layer to honor explicit prior-attempt headers.
func (s *OtpSessionStore) SetFailedAttempts(sessionID string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sessionID]; ok {
		if n < 0 {
			n = 0
		}
		if n > s.maxAttempts-1 {
			n = s.maxAttempts - 1
		}
		sess.failedAttempts = n
	}
}

// SetResendState overrides the resend bookkeeping of a session. Used by the
// transport layer to honor explicit prior-resend headers.
func (s *OtpSessionStore) SetResendState(sessionID string, count int, last time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sessionID]; ok {
		if count < 0 {
			count = 0
		}
		sess.resendCount = count
		sess.lastResendAt = last
	}
}

func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// hashOTP returns SHA-256(session:code:salt). Binding the session id keeps a
// code captured for one session useless against another.
func hashOTP(sessionID, code, salt string) []byte {
	sum := sha256.Sum256([]byte(sessionID + ":" + code + ":" + salt))
	return sum[:]
}
