package app

import (
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/migodlcrz/mrt-system-sub000/internal/metrics"
)

// latencyTrackingRoundTripper records the latency of every outgoing request
// in metrics.OutgoingLatency, labelled by URL (without query), method and
// status.
type latencyTrackingRoundTripper struct {
	next http.RoundTripper
}

func (rt *latencyTrackingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := rt.next.RoundTrip(req)
	duration := time.Since(start).Seconds()

	status := "error"
	if err == nil && resp != nil {
		status = strconv.Itoa(resp.StatusCode)
	}

	// Query strings may carry API keys.
	safeURL := req.URL.Scheme + "://" + req.URL.Host + req.URL.Path

	metrics.OutgoingLatency.WithLabelValues(safeURL, req.Method, status).Observe(duration)

	return resp, err
}

// NewPooledClient returns the HTTP client used for the station service,
// GTFS bundle and remote config requests.
//
// Idle connections are kept for 90s so the periodic refreshes reuse them.
// Dial and TLS handshakes time out after 5s, the whole request after
// timeout. GTFS bundles can be large, so callers pass a timeout that fits
// their biggest download.
func NewPooledClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 5 * time.Second,
	}

	return &http.Client{
		Transport: &latencyTrackingRoundTripper{next: transport},
		Timeout:   timeout,
	}
}
