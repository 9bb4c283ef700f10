package feeds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"hindinews/pkg/domain"
	"hindinews/pkg/sources"
)

// errNoAPIKey is returned for API sources configured without a credential.
var errNoAPIKey = errors.New("api key not configured")

type newsDataResponse struct {
	Status  string          `json:"status"`
	Results json.RawMessage `json:"results"`
}

type newsDataArticle struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	ArticleID   string `json:"article_id"`
	Description string `json:"description"`
	Content     string `json:"content"`
	PubDate     string `json:"pubDate"`
	ImageURL    string `json:"image_url"`
}

// fetchNewsData queries a NewsData.io style endpoint. The payload is only
// trusted when status == "success".
func (f *FeedFetcher) fetchNewsData(ctx context.Context, src sources.Source) ([]domain.Candidate, error) {
	if src.APIKey == "" {
		return nil, errNoAPIKey
	}

	q := url.Values{}
	q.Set("apikey", src.APIKey)
	setIf(q, "language", src.Language)
	setIf(q, "country", src.Country)
	setIf(q, "q", src.Query)

	endpoint, err := withQuery(src.URL, q)
	if err != nil {
		return nil, err
	}

	body, err := f.getWithRetry(ctx, f.apiClient, endpoint)
	if err != nil {
		return nil, err
	}
	return f.parseNewsData(src, body)
}

func (f *FeedFetcher) parseNewsData(src sources.Source, body []byte) ([]domain.Candidate, error) {
	var resp newsDataResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode newsdata response: %w", err)
	}
	if resp.Status != "success" {
		return nil, fmt.Errorf("newsdata status %q", resp.Status)
	}

	var articles []newsDataArticle
	if err := json.Unmarshal(resp.Results, &articles); err != nil {
		return nil, fmt.Errorf("decode newsdata results: %w", err)
	}

	out := make([]domain.Candidate, 0, len(articles))
	for _, a := range articles {
		pub := parseAPITime(a.PubDate)
		c, ok := f.newCandidate(src, stripHTML(a.Title), stripHTML(a.Description), stripHTML(a.Content), a.Link, "", a.ImageURL, pub)
		if ok {
			out = append(out, c)
		}
	}
	return out, nil
}

type gnewsResponse struct {
	TotalArticles *int            `json:"totalArticles"`
	Articles      []gnewsArticle  `json:"articles"`
	Errors        json.RawMessage `json:"errors"`
}

type gnewsArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	Image       string `json:"image"`
	PublishedAt string `json:"publishedAt"`
}

// fetchGNews queries a GNews style endpoint. A response without a
// totalArticles field, or with errors, is rejected.
func (f *FeedFetcher) fetchGNews(ctx context.Context, src sources.Source) ([]domain.Candidate, error) {
	if src.APIKey == "" {
		return nil, errNoAPIKey
	}

	q := url.Values{}
	q.Set("apikey", src.APIKey)
	q.Set("max", strconv.Itoa(src.Cap()))
	setIf(q, "lang", src.Language)
	setIf(q, "country", src.Country)
	setIf(q, "q", src.Query)

	endpoint, err := withQuery(src.URL, q)
	if err != nil {
		return nil, err
	}

	body, err := f.getWithRetry(ctx, f.apiClient, endpoint)
	if err != nil {
		return nil, err
	}
	return f.parseGNews(src, body)
}

func (f *FeedFetcher) parseGNews(src sources.Source, body []byte) ([]domain.Candidate, error) {
	var resp gnewsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode gnews response: %w", err)
	}
	if len(resp.Errors) > 0 && string(resp.Errors) != "null" {
		return nil, fmt.Errorf("gnews errors: %s", string(resp.Errors))
	}
	if resp.TotalArticles == nil {
		return nil, fmt.Errorf("gnews response missing totalArticles")
	}

	out := make([]domain.Candidate, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		pub := parseAPITime(a.PublishedAt)
		c, ok := f.newCandidate(src, stripHTML(a.Title), stripHTML(a.Description), stripHTML(a.Content), a.URL, "", a.Image, pub)
		if ok {
			out = append(out, c)
		}
	}
	return out, nil
}

var apiTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC1123Z,
	time.RFC1123,
}

// parseAPITime returns nil when no layout matches; the caller then uses now.
func parseAPITime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range apiTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func withQuery(base string, q url.Values) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid source url %s: %w", base, err)
	}
	existing := u.Query()
	for k, vs := range q {
		existing[k] = vs
	}
	u.RawQuery = existing.Encode()
	return u.String(), nil
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}
