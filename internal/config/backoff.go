package config

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"
)

// retryBaseDelay is the first wait of DoWithBackoff; each retry doubles it.
var retryBaseDelay = 100 * time.Millisecond

// DoWithBackoff sends req, retrying transport errors and 5xx responses with
// exponential backoff and jitter.
//
// maxRetries is the number of retries after the first attempt. A value <= 0
// retries until ctx is done. When the last attempt still gets a 5xx response
// that response is returned so the caller can report the status.
func DoWithBackoff(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	delay := retryBaseDelay

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))

		lastAttempt := maxRetries > 0 && attempt >= maxRetries
		if err == nil && (resp.StatusCode < http.StatusInternalServerError || lastAttempt) {
			return resp, nil
		}
		if err == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			err = fmt.Errorf("server returned status %d", resp.StatusCode)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if lastAttempt {
			return nil, fmt.Errorf("max retries exceeded after %d attempts: %w", attempt+1, err)
		}

		wait := delay + time.Duration(rand.Float64()*float64(delay)*jitterFactor)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		delay = calculateNewBackoffDelay(delay)
	}
}
