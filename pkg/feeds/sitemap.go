package feeds

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"hindinews/pkg/domain"
	"hindinews/pkg/sources"
)

// maxChildSitemaps bounds how many sitemaps of an index are followed.
const maxChildSitemaps = 3

// urlSet is a regular or Google News sitemap. Namespaced elements are
// matched by local name, so the news: and image: prefixes need no mapping.
type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Location string     `xml:"loc"`
	LastMod  string     `xml:"lastmod"`
	News     newsEntry  `xml:"news"`
	Images   []imageRef `xml:"image"`
}

type newsEntry struct {
	Title           string `xml:"title"`
	PublicationDate string `xml:"publication_date"`
	Keywords        string `xml:"keywords"`
}

type imageRef struct {
	Location string `xml:"loc"`
}

type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Sitemaps []sitemapRef `xml:"sitemap"`
}

type sitemapRef struct {
	Location string `xml:"loc"`
	LastMod  string `xml:"lastmod"`
}

// fetchSitemap reads a news sitemap. An index is resolved to its first few
// children; a child that fails is skipped.
func (f *FeedFetcher) fetchSitemap(ctx context.Context, src sources.Source) ([]domain.Candidate, error) {
	body, err := f.getWithRetry(ctx, f.feedClient, src.URL)
	if err != nil {
		return nil, err
	}
	if !isSitemapIndex(body) {
		return f.parseSitemap(src, body)
	}

	children, err := parseSitemapIndex(body)
	if err != nil {
		return nil, err
	}
	if len(children) == 0 {
		return nil, fmt.Errorf("sitemap index contained no sitemap URLs")
	}
	if len(children) > maxChildSitemaps {
		children = children[:maxChildSitemaps]
	}

	var all []domain.Candidate
	for _, child := range children {
		raw, err := f.getWithRetry(ctx, f.feedClient, child)
		if err != nil {
			f.logger.Debug("child sitemap failed", "source", src.Key, "url", child, "error", err)
			continue
		}
		items, err := f.parseSitemap(src, raw)
		if err != nil {
			f.logger.Debug("child sitemap unparsable", "source", src.Key, "url", child, "error", err)
			continue
		}
		all = append(all, items...)
	}
	return all, nil
}

func isSitemapIndex(body []byte) bool {
	head := body[:min(len(body), 512)]
	return bytes.Contains(head, []byte("<sitemapindex"))
}

func parseSitemapIndex(body []byte) ([]string, error) {
	var index sitemapIndex
	if err := xml.Unmarshal(body, &index); err != nil {
		return nil, fmt.Errorf("failed to decode sitemap index XML: %w", err)
	}

	urls := make([]string, 0, len(index.Sitemaps))
	for _, ref := range index.Sitemaps {
		if loc := strings.TrimSpace(ref.Location); loc != "" {
			urls = append(urls, loc)
		}
	}
	return urls, nil
}

// parseSitemap keeps only entries carrying a news title; plain sitemaps list
// section pages and tags that are not articles.
func (f *FeedFetcher) parseSitemap(src sources.Source, body []byte) ([]domain.Candidate, error) {
	var set urlSet
	if err := xml.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("failed to decode sitemap XML: %w", err)
	}

	out := make([]domain.Candidate, 0, len(set.URLs))
	for _, u := range set.URLs {
		title := strings.TrimSpace(u.News.Title)
		if title == "" {
			continue
		}
		var image string
		if len(u.Images) > 0 {
			image = strings.TrimSpace(u.Images[0].Location)
		}
		c, ok := f.newCandidate(src,
			title,
			strings.TrimSpace(u.News.Keywords),
			"",
			strings.TrimSpace(u.Location),
			"",
			image,
			sitemapTime(firstNonEmpty(u.News.PublicationDate, u.LastMod)),
		)
		if ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func sitemapTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return nil
	}
	return &t
}
