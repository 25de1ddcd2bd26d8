package observability

import (
	"time"

	"github.com/getsentry/sentry-go"
)

// InitSentry enables error reporting when a DSN is configured. An empty DSN
// leaves reporting disabled.
func InitSentry(dsn, environment string) error {
	if dsn == "" {
		return nil
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		AttachStacktrace: true,
	})
}

// CaptureError forwards an internal fault to Sentry. Safe to call when
// reporting is disabled.
func CaptureError(err error) {
	if err == nil {
		return
	}
	sentry.CaptureException(err)
}

// FlushSentry drains pending events before shutdown.
func FlushSentry() {
	sentry.Flush(2 * time.Second)
}
