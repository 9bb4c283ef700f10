package content

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"hindinews/pkg/httpclient"
)

const (
	DefaultBodyTimeout  = 15 * time.Second
	DefaultImageTimeout = 10 * time.Second

	maxPageBytes      = 5 << 20
	maxErrorPageBytes = 1024
)

// Enricher scrapes article pages for a full body and a representative image.
// Both lookups are best effort: any failure yields "".
type Enricher struct {
	bodyClient  *httpclient.HTTPClient
	imageClient *httpclient.HTTPClient
	logger      *slog.Logger
}

// NewEnricher creates an enricher with independent body and image timeouts
func NewEnricher(bodyTimeout, imageTimeout time.Duration, logger *slog.Logger) *Enricher {
	if bodyTimeout <= 0 {
		bodyTimeout = DefaultBodyTimeout
	}
	if imageTimeout <= 0 {
		imageTimeout = DefaultImageTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Enricher{
		bodyClient:  httpclient.NewClient(httpclient.BrowserClient, bodyTimeout),
		imageClient: httpclient.NewClient(httpclient.BrowserClient, imageTimeout),
		logger:      logger,
	}
}

// Enrich runs FetchBody and FetchImage concurrently and waits for both
func (e *Enricher) Enrich(ctx context.Context, pageURL string) (body, image string) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		body = e.FetchBody(ctx, pageURL)
	}()
	go func() {
		defer wg.Done()
		image = e.FetchImage(ctx, pageURL)
	}()
	wg.Wait()
	return body, image
}

// FetchBody returns the scraped article text, or "" on any failure
func (e *Enricher) FetchBody(ctx context.Context, pageURL string) string {
	html, err := fetchHTML(ctx, e.bodyClient, pageURL)
	if err != nil {
		e.logger.Debug("body fetch failed", "url", pageURL, "error", err)
		return ""
	}
	body := ExtractBody(html)
	if body == "" {
		e.logger.Debug("no article body found", "url", pageURL)
	}
	return body
}

// FetchImage returns an absolute image URL for the page, or "" on any failure
func (e *Enricher) FetchImage(ctx context.Context, pageURL string) string {
	html, err := fetchHTML(ctx, e.imageClient, pageURL)
	if err != nil {
		e.logger.Debug("image fetch failed", "url", pageURL, "error", err)
		return ""
	}
	return ExtractImage(html, pageURL)
}

// fetchHTML fetches HTML content from a URL using the given client
func fetchHTML(ctx context.Context, client *httpclient.HTTPClient, pageURL string) (string, error) {
	resp, cancel, err := client.Get(ctx, pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer cancel()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	bodyStr := string(body)
	if strings.TrimSpace(bodyStr) == "" {
		return "", fmt.Errorf("server returned empty response (status: %d)", resp.StatusCode)
	}
	// some hosts answer bot requests with a tiny 200 "Not Acceptable" page
	if len(bodyStr) < maxErrorPageBytes && strings.Contains(bodyStr, "Not Acceptable") {
		return "", fmt.Errorf("server returned an error page (status: %d)", resp.StatusCode)
	}

	return bodyStr, nil
}
