package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("OTP_SALT", "test-salt")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 10*time.Second, cfg.RateWindow)
	assert.Equal(t, 20, cfg.RateCapacity)
	assert.Equal(t, 15*time.Minute, cfg.FailWindow)
	assert.Equal(t, 5, cfg.MaxFails)
	assert.Equal(t, 300*time.Second, cfg.OTPTTL)
	assert.Equal(t, 3, cfg.OTPMaxAttempts)
	assert.Equal(t, 15*time.Minute, cfg.OTPLockDuration)
	assert.Equal(t, 3, cfg.ResendMax)
	assert.Equal(t, 60*time.Second, cfg.ResendCooldown)
	assert.Equal(t, time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, 720*time.Hour, cfg.RefreshTokenTTL)
}

func TestLoad_RequiresOTPSalt(t *testing.T) {
	t.Setenv("OTP_SALT", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("OTP_SALT", "test-salt")
	t.Setenv("PORT", "9090")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("RATE_CAPACITY", "50")
	t.Setenv("OTP_TTL", "2m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, 50, cfg.RateCapacity)
	assert.Equal(t, 2*time.Minute, cfg.OTPTTL)
}
