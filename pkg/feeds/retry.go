package feeds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hindinews/pkg/httpclient"
)

// RetryPolicy is exponential backoff over a fixed number of retries.
type RetryPolicy struct {
	Retries   int
	BaseDelay time.Duration
}

// DefaultRetryPolicy: two retries, 500ms then 1s.
var DefaultRetryPolicy = RetryPolicy{Retries: 2, BaseDelay: 500 * time.Millisecond}

// maxBodyBytes caps how much of a feed response is read.
const maxBodyBytes = 10 << 20

// getWithRetry downloads url, retrying transient failures with backoff.
func (f *FeedFetcher) getWithRetry(ctx context.Context, client *httpclient.HTTPClient, url string) ([]byte, error) {
	var lastErr error
	delay := f.retry.BaseDelay

	for attempt := 0; attempt <= f.retry.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		body, err := get(ctx, client, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable(err) || ctx.Err() != nil {
			break
		}
		f.logger.Debug("feed request failed, retrying", "url", url, "attempt", attempt+1, "error", err)
	}
	return nil, lastErr
}

func get(ctx context.Context, client *httpclient.HTTPClient, url string) ([]byte, error) {
	resp, cancel, err := client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer cancel()
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &errStatus{code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if strings.TrimSpace(string(body)) == "" {
		return nil, fmt.Errorf("empty response body")
	}
	return body, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
