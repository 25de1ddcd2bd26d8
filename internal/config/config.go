package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	OTPSalt     string `env:"OTP_SALT,required"`
	DevMode     bool   `env:"DEV_MODE"`

	SentryDSN   string `env:"SENTRY_DSN"`
	Environment string `env:"APP_ENV" envDefault:"development"`

	// Request throttle per client address.
	RateWindow   time.Duration `env:"RATE_WINDOW" envDefault:"10s"`
	RateCapacity int           `env:"RATE_CAPACITY" envDefault:"20"`

	// Credential lockout per (phone, plate) identifier.
	FailWindow time.Duration `env:"FAIL_WINDOW" envDefault:"15m"`
	MaxFails   int           `env:"MAX_FAILS" envDefault:"5"`

	// OTP challenge lifecycle.
	OTPTTL          time.Duration `env:"OTP_TTL" envDefault:"300s"`
	OTPMaxAttempts  int           `env:"OTP_MAX_ATTEMPTS" envDefault:"3"`
	OTPLockDuration time.Duration `env:"OTP_LOCK_DURATION" envDefault:"15m"`
	ResendMax       int           `env:"OTP_RESEND_MAX" envDefault:"3"`
	ResendCooldown  time.Duration `env:"OTP_RESEND_COOLDOWN" envDefault:"60s"`

	// Token TTLs.
	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"1h"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"720h"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
