package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOtpStore() *OtpSessionStore {
	return NewOtpSessionStore(OtpConfig{
		TTL:            300 * time.Second,
		MaxAttempts:    3,
		LockDuration:   15 * time.Minute,
		ResendMax:      3,
		ResendCooldown: 60 * time.Second,
		Salt:           "test-salt",
		DevMode:        true,
	})
}

func TestOtpStore_VerifyHappyPath(t *testing.T) {
	s := newTestOtpStore()

	sessionID, code, err := s.Create(1024)
	require.NoError(t, err)
	assert.Equal(t, devOTPCode, code)

	driverID, authErr := s.Verify(sessionID, code)
	require.Nil(t, authErr)
	assert.Equal(t, 1024, driverID)
}

func TestOtpStore_RemainingAttemptsThenLock(t *testing.T) {
	s := newTestOtpStore()
	sessionID, _, err := s.Create(1)
	require.NoError(t, err)

	_, authErr := s.Verify(sessionID, "000000")
	require.NotNil(t, authErr)
	assert.Equal(t, CodeOTPInvalid, authErr.Code)
	assert.Equal(t, "Mã OTP không đúng. Bạn còn 2 lần thử.", authErr.Message)

	_, authErr = s.Verify(sessionID, "000000")
	require.NotNil(t, authErr)
	assert.Equal(t, CodeOTPInvalid, authErr.Code)
	assert.Equal(t, "Mã OTP không đúng. Bạn còn 1 lần thử.", authErr.Message)

	_, authErr = s.Verify(sessionID, "000000")
	require.NotNil(t, authErr)
	assert.Equal(t, CodeOTPLocked, authErr.Code, "3rd wrong code must lock the session")

	// Even the correct code fails while locked.
	_, authErr = s.Verify(sessionID, devOTPCode)
	require.NotNil(t, authErr)
	assert.Equal(t, CodeOTPLocked, authErr.Code)
}

func TestOtpStore_VerifiedIsTerminal(t *testing.T) {
	s := newTestOtpStore()
	sessionID, code, err := s.Create(1)
	require.NoError(t, err)

	_, authErr := s.Verify(sessionID, code)
	require.Nil(t, authErr)

	_, authErr = s.Verify(sessionID, code)
	require.NotNil(t, authErr)
	assert.Equal(t, CodeAlreadyVerified, authErr.Code, "a consumed session must never verify again")

	_, authErr = s.Verify(sessionID, "000000")
	require.NotNil(t, authErr)
	assert.Equal(t, CodeAlreadyVerified, authErr.Code, "a consumed session must not report OTP_INVALID")
}

func TestOtpStore_UnknownSession(t *testing.T) {
	s := newTestOtpStore()
	_, authErr := s.Verify("no-such-session", "123456")
	require.NotNil(t, authErr)
	assert.Equal(t, CodeSessionNotFound, authErr.Code)
}

func TestOtpStore_ExpiryBeatsLock(t *testing.T) {
	s := newTestOtpStore()

	now := time.Now()
	s.now = func() time.Time { return now }

	sessionID, _, err := s.Create(1)
	require.NoError(t, err)

	// Lock the session, then let it expire: expiry must win.
	for i := 0; i < 3; i++ {
		s.Verify(sessionID, "000000")
	}
	now = now.Add(301 * time.Second)

	_, authErr := s.Verify(sessionID, devOTPCode)
	require.NotNil(t, authErr)
	assert.Equal(t, CodeOTPExpired, authErr.Code)

	authErr = s.Resend(sessionID)
	require.NotNil(t, authErr)
	assert.Equal(t, CodeOTPExpired, authErr.Code)
}

func TestOtpStore_ResendCooldown(t *testing.T) {
	s := newTestOtpStore()

	now := time.Now()
	s.now = func() time.Time { return now }

	sessionID, _, err := s.Create(1)
	require.NoError(t, err)

	require.Nil(t, s.Resend(sessionID))

	authErr := s.Resend(sessionID)
	require.NotNil(t, authErr)
	assert.Equal(t, CodeRateLimited, authErr.Code)
	assert.Contains(t, authErr.Message, "Vui lòng thử lại sau")

	now = now.Add(61 * time.Second)
	assert.Nil(t, s.Resend(sessionID))
}

func TestOtpStore_ResendCap(t *testing.T) {
	s := newTestOtpStore()

	now := time.Now()
	s.now = func() time.Time { return now }

	sessionID, _, err := s.Create(1)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.Nil(t, s.Resend(sessionID))
		now = now.Add(61 * time.Second)
	}

	authErr := s.Resend(sessionID)
	require.NotNil(t, authErr)
	assert.Equal(t, CodeRateLimited, authErr.Code)
	assert.Contains(t, authErr.Message, "tối đa 3 lần")
}

func TestOtpStore_ResendAfterVerified(t *testing.T) {
	s := newTestOtpStore()
	sessionID, code, err := s.Create(1)
	require.NoError(t, err)

	_, authErr := s.Verify(sessionID, code)
	require.Nil(t, authErr)

	authErr = s.Resend(sessionID)
	require.NotNil(t, authErr)
	assert.Equal(t, CodeAlreadyVerified, authErr.Code)
}

func TestOtpStore_SeededAttemptsLockOnNextFailure(t *testing.T) {
	s := newTestOtpStore()
	sessionID, _, err := s.Create(1)
	require.NoError(t, err)

	s.SetFailedAttempts(sessionID, 2)

	_, authErr := s.Verify(sessionID, "000000")
	require.NotNil(t, authErr)
	assert.Equal(t, CodeOTPLocked, authErr.Code)
}

func TestHashOTP_Deterministic(t *testing.T) {
	h1 := hashOTP("sess", "123456", "salt")
	h2 := hashOTP("sess", "123456", "salt")
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 32)

	assert.NotEqual(t, h1, hashOTP("other", "123456", "salt"))
	assert.NotEqual(t, h1, hashOTP("sess", "654321", "salt"))
	assert.NotEqual(t, h1, hashOTP("sess", "123456", "pepper"))
}

func TestGenerateOTPCode_SixDigits(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := generateOTPCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		assert.GreaterOrEqual(t, code[0], byte('1'))
	}
}
