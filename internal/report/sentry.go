package report

import (
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
)

// SetupSentry initialises the global Sentry client from SENTRY_DSN.
// An empty DSN leaves Sentry disabled; reporting calls become no-ops.
func SetupSentry(env, version string) error {
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              os.Getenv("SENTRY_DSN"),
		Environment:      env,
		Release:          "farecalc@" + version,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
	}); err != nil {
		return fmt.Errorf("sentry.Init: %w", err)
	}
	sentry.CaptureMessage("Fare route service started")
	return nil
}

func FlushSentry() {
	sentry.Flush(2 * time.Second)
}
