// Package feeds turns RSS feeds, news sitemaps and news APIs into article
// candidates.
//
// Fetching never fails from the caller's point of view: network errors,
// malformed payloads and empty feeds all produce an empty slice and a warning,
// so one bad source cannot abort a cycle.
package feeds

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"hindinews/pkg/domain"
	"hindinews/pkg/httpclient"
	"hindinews/pkg/sources"
)

// DefaultTimeout bounds a single feed request.
const DefaultTimeout = 15 * time.Second

// Fetcher is the candidate source used by the cycle orchestrator.
type Fetcher interface {
	Fetch(ctx context.Context, src sources.Source) []domain.Candidate
}

// Config tunes a FeedFetcher. Zero values take defaults.
type Config struct {
	Timeout time.Duration
	Retry   RetryPolicy
	// ItemCapOverride replaces every source's cap when > 0.
	ItemCapOverride int
}

// FeedFetcher fetches RSS and API sources over HTTP.
type FeedFetcher struct {
	feedClient  *httpclient.HTTPClient
	apiClient   *httpclient.HTTPClient
	retry       RetryPolicy
	capOverride int
	logger      *slog.Logger
	now         func() time.Time
}

var _ Fetcher = (*FeedFetcher)(nil)

// NewFeedFetcher builds a fetcher with a feed-profile and an API-profile client.
func NewFeedFetcher(cfg Config, logger *slog.Logger) *FeedFetcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retry == (RetryPolicy{}) {
		cfg.Retry = DefaultRetryPolicy
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedFetcher{
		feedClient:  httpclient.NewClient(httpclient.FeedClient, cfg.Timeout),
		apiClient:   httpclient.NewClient(httpclient.APIClient, cfg.Timeout),
		retry:       cfg.Retry,
		capOverride: cfg.ItemCapOverride,
		logger:      logger,
		now:         time.Now,
	}
}

// Fetch returns the newest candidates of one source, capped to its item limit.
func (f *FeedFetcher) Fetch(ctx context.Context, src sources.Source) []domain.Candidate {
	start := time.Now()
	log := f.logger.With("source", src.Key)

	items, err := f.fetch(ctx, src)
	if errors.Is(err, errNoAPIKey) {
		log.Debug("api source skipped", "reason", err)
		return nil
	}
	if err != nil {
		log.Warn("feed fetch failed", "error", err, "duration", time.Since(start))
		return nil
	}
	if len(items) == 0 {
		log.Warn("feed returned no usable items", "duration", time.Since(start))
		return nil
	}

	items = f.finalize(src, items)
	log.Debug("feed fetched", "items", len(items), "duration", time.Since(start))
	return items
}

func (f *FeedFetcher) fetch(ctx context.Context, src sources.Source) ([]domain.Candidate, error) {
	switch src.Kind {
	case sources.KindRSS, "":
		return f.fetchRSS(ctx, src)
	case sources.KindNewsData:
		return f.fetchNewsData(ctx, src)
	case sources.KindGNews:
		return f.fetchGNews(ctx, src)
	case sources.KindSitemap:
		return f.fetchSitemap(ctx, src)
	default:
		return nil, fmt.Errorf("unknown source kind %q", src.Kind)
	}
}

// finalize applies freshness, newest-first ordering and the item cap.
func (f *FeedFetcher) finalize(src sources.Source, items []domain.Candidate) []domain.Candidate {
	if src.MaxAge > 0 {
		cutoff := f.now().Add(-src.MaxAge)
		fresh := items[:0]
		for _, it := range items {
			if it.PublishedAt.After(cutoff) {
				fresh = append(fresh, it)
			}
		}
		items = fresh
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})

	limit := src.Cap()
	if f.capOverride > 0 {
		limit = sources.Source{ItemCap: f.capOverride}.Cap()
	}
	if len(items) > limit {
		items = items[:limit]
	}
	return items
}

// newCandidate applies the field fallbacks shared by every source kind.
// It returns false when no URL could be resolved.
func (f *FeedFetcher) newCandidate(src sources.Source, title, description, snippet, link, guid, image string, published *time.Time) (domain.Candidate, bool) {
	url := firstNonEmpty(link, guid)
	if url == "" {
		return domain.Candidate{}, false
	}

	title = firstNonEmpty(title, "No title")
	pub := f.now()
	if published != nil && !published.IsZero() {
		pub = *published
	}

	return domain.Candidate{
		Title:       title,
		Description: firstNonEmpty(description, snippet, title),
		URL:         url,
		Image:       image,
		PublishedAt: pub,
		Source:      firstNonEmpty(src.Name, src.Key),
		Priority:    src.Priority,
	}, true
}

// errStatus marks a non-2xx response; 5xx and 429 are retried.
type errStatus struct {
	code int
}

func (e *errStatus) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.code)
}

func retryable(err error) bool {
	var se *errStatus
	if errors.As(err, &se) {
		return se.code >= 500 || se.code == 429
	}
	return !errors.Is(err, context.Canceled)
}
