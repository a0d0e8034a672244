package report

import (
	"os"
	"runtime"
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/migodlcrz/mrt-system-sub000/internal/models"
)

// ConfigureScope sets global Sentry scope tags and context related to the runtime and host.
func ConfigureScope(env, version string) {
	sentry.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("service", "farecalc")
		scope.SetTag("env", env)
		scope.SetTag("app_version", version)
		scope.SetTag("go_version", runtime.Version())
		scope.SetTag("goarch", runtime.GOARCH)
		scope.SetContext("host_info", map[string]interface{}{
			"hostname": getHostname(),
		})
	})
}

// getHostname retrieves the system hostname.
// If the hostname cannot be determined, it returns "unknown".
func getHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return hostname
}

// ReportError reports err at the given level, sentry.LevelError by default.
func ReportError(err error, levels ...sentry.Level) {
	opts := SentryReportOptions{Level: sentry.LevelError}
	if len(levels) > 0 {
		opts.Level = levels[0]
	}
	ReportErrorWithSentryOptions(err, opts)
}

// SentryReportOptions provides optional data for reporting.
type SentryReportOptions struct {
	ExtraContext map[string]interface{}
	Tags         map[string]string
	Level        sentry.Level
	// Fingerprint overrides Sentry's grouping of the event.
	Fingerprint []string
}

// ReportErrorWithSentryOptions reports err in a scope carrying opts. A nil
// err is ignored.
func ReportErrorWithSentryOptions(err error, opts SentryReportOptions) {
	if err == nil {
		return
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		if opts.ExtraContext != nil {
			scope.SetContext("extra", opts.ExtraContext)
		}
		scope.SetTags(opts.Tags)
		if opts.Level != "" {
			scope.SetLevel(opts.Level)
		}
		if len(opts.Fingerprint) > 0 {
			scope.SetFingerprint(opts.Fingerprint)
		}
		sentry.CaptureException(err)
	})
}

// ReportNetworkError reports an error tied to one rail network, tagging it
// with the network id and name and attaching the station source URL.
func ReportNetworkError(err error, network models.Network, level sentry.Level) {
	ReportErrorWithSentryOptions(err, SentryReportOptions{
		Tags: map[string]string{
			"network_id":   strconv.Itoa(network.ID),
			"network_name": network.Name,
		},
		ExtraContext: map[string]interface{}{
			"source_url": network.SourceURL(),
		},
		Level: level,
		// One issue per network instead of one per error message.
		Fingerprint: []string{"{{ default }}", "network", strconv.Itoa(network.ID)},
	})
}
