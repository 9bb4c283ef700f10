package filter

import (
	"net/url"
	"strings"

	"hindinews/pkg/domain"
)

// Filter decides whether a candidate survives into the cycle
type Filter interface {
	Keep(c domain.Candidate) bool
}

// Apply runs every filter over candidates in order and keeps those all filters
// accept. Filters are evaluated left to right and stop at the first rejection,
// so stateful filters only see candidates the earlier ones kept.
func Apply(candidates []domain.Candidate, filters ...Filter) []domain.Candidate {
	kept := make([]domain.Candidate, 0, len(candidates))

	for _, c := range candidates {
		keep := true
		for _, f := range filters {
			if !f.Keep(c) {
				keep = false
				break
			}
		}
		if keep {
			kept = append(kept, c)
		}
	}

	return kept
}

// HTTPURLFilter drops candidates whose URL is not absolute http(s)
type HTTPURLFilter struct{}

func NewHTTPURLFilter() *HTTPURLFilter {
	return &HTTPURLFilter{}
}

func (f *HTTPURLFilter) Keep(c domain.Candidate) bool {
	parsed, err := url.Parse(strings.TrimSpace(c.URL))
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

// BaseURLFilter filters out base/root URLs, which are section pages rather than stories
type BaseURLFilter struct{}

// NewBaseURLFilter creates a new base URL filter
func NewBaseURLFilter() *BaseURLFilter {
	return &BaseURLFilter{}
}

// Keep returns false if URL is a base/root URL
func (f *BaseURLFilter) Keep(c domain.Candidate) bool {
	parsed, err := url.Parse(c.URL)
	if err != nil {
		// If we can't parse it, don't filter it out (let it fail later if needed)
		return true
	}

	path := strings.Trim(parsed.Path, "/")
	return path != "" || parsed.RawQuery != ""
}

// DedupFilter keeps the first candidate seen for each URL. It is stateful;
// use a fresh one per cycle.
type DedupFilter struct {
	seen map[string]bool
}

func NewDedupFilter() *DedupFilter {
	return &DedupFilter{seen: make(map[string]bool)}
}

// Keep returns false if the URL was already kept
func (f *DedupFilter) Keep(c domain.Candidate) bool {
	if f.seen[c.URL] {
		return false
	}
	f.seen[c.URL] = true
	return true
}

// Dedup keeps the first occurrence of every URL, preserving order
func Dedup(candidates []domain.Candidate) []domain.Candidate {
	return Apply(candidates, NewDedupFilter())
}
