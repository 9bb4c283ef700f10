package httpclient

import (
	"context"
	"net/http"
	"time"
)

// ClientType represents the header profile a client sends
type ClientType string

const (
	// FeedClient identifies itself honestly; feed hosts and news APIs expect it
	FeedClient ClientType = "feed"

	// BrowserClient uses browser-like headers so article pages serve full markup
	// instead of 403/406 bot pages
	BrowserClient ClientType = "browser"

	// APIClient only asks for JSON
	APIClient ClientType = "api"
)

// UserAgent is sent by FeedClient and APIClient requests
const UserAgent = "hindinews-ingest/1.0 (+https://github.com/hindinews; RSS reader)"

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// HTTPClient wraps an http.Client with a header profile and a per-request timeout
type HTTPClient struct {
	client     *http.Client
	clientType ClientType
	timeout    time.Duration
}

// NewClient creates a new HTTP client with the specified type.
// timeout bounds each request; zero means no bound beyond the caller's context.
func NewClient(clientType ClientType, timeout time.Duration) *HTTPClient {
	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// Follow up to 10 redirects
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	return &HTTPClient{
		client:     client,
		clientType: clientType,
		timeout:    timeout,
	}
}

// WithTransport swaps the round tripper, mainly for tests
func (c *HTTPClient) WithTransport(rt http.RoundTripper) *HTTPClient {
	c.client.Transport = rt
	return c
}

// Timeout is the per-request bound
func (c *HTTPClient) Timeout() time.Duration {
	return c.timeout
}

// Do executes an HTTP request with the appropriate headers for the client type.
// The caller owns the request context; use Get for a timeout-bounded GET.
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	c.setHeaders(req)
	return c.client.Do(req)
}

// Get issues a GET bounded by the client timeout. The returned cancel func must
// be called once the body has been consumed.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, context.CancelFunc, error) {
	cancel := context.CancelFunc(func() {})
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		cancel()
		return nil, nil, err
	}

	resp, err := c.Do(req)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return resp, cancel, nil
}

// setHeaders sets the appropriate headers based on client type
func (c *HTTPClient) setHeaders(req *http.Request) {
	switch c.clientType {
	case BrowserClient:
		req.Header.Set("User-Agent", browserUserAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "hi-IN,hi;q=0.9,en-US;q=0.8,en;q=0.7")
		req.Header.Set("Connection", "keep-alive")
		req.Header.Set("Upgrade-Insecure-Requests", "1")

	case FeedClient:
		req.Header.Set("User-Agent", UserAgent)
		req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5")

	case APIClient:
		req.Header.Set("User-Agent", UserAgent)
		req.Header.Set("Accept", "application/json")

	default:
		// Default: use Go's default User-Agent
	}
}
