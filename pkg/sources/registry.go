package sources

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// Kind says how a source is fetched.
type Kind string

const (
	KindRSS      Kind = "rss"
	KindNewsData Kind = "newsdata"
	KindGNews    Kind = "gnews"
	KindSitemap  Kind = "sitemap" // Google News sitemap
)

// MaxItemCap bounds every source regardless of configuration.
const MaxItemCap = 200

// Source describes a single feed or news API endpoint.
type Source struct {
	Key      string        `yaml:"key"`
	Name     string        `yaml:"name"`
	Kind     Kind          `yaml:"kind"`
	Priority int           `yaml:"priority"`
	URL      string        `yaml:"url"`
	ItemCap  int           `yaml:"itemCap"`
	Language string        `yaml:"language"`
	Country  string        `yaml:"country"`
	Query    string        `yaml:"query"`
	MaxAge   time.Duration `yaml:"maxAge"`

	// APIKey is filled from the environment for API sources, never from YAML.
	APIKey string `yaml:"-"`
}

// IsAPI reports whether the source is a JSON news API.
func (s Source) IsAPI() bool {
	return s.Kind == KindNewsData || s.Kind == KindGNews
}

// Cap returns the effective item cap, always within (0, MaxItemCap].
func (s Source) Cap() int {
	if s.ItemCap <= 0 || s.ItemCap > MaxItemCap {
		return MaxItemCap
	}
	return s.ItemCap
}

// Registry is a static catalogue of sources keyed by Source.Key.
type Registry struct {
	sources map[string]Source
}

// NewRegistry builds a registry from the given sources. Later duplicates replace earlier ones.
func NewRegistry(list ...Source) *Registry {
	r := &Registry{sources: make(map[string]Source, len(list))}
	for _, s := range list {
		r.sources[s.Key] = s
	}
	return r
}

// Get returns a source by key.
func (r *Registry) Get(key string) (Source, bool) {
	s, ok := r.sources[key]
	return s, ok
}

// Len is the number of registered sources.
func (r *Registry) Len() int {
	return len(r.sources)
}

// Ordered returns sources by ascending priority, ties broken by key so the
// order is stable across runs.
func (r *Registry) Ordered() []Source {
	out := make([]Source, 0, len(r.sources))
	for _, s := range r.sources {
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].Key < out[j].Key
	})
	return out
}

type fileFormat struct {
	Sources []Source `yaml:"sources"`
}

// LoadFile reads a YAML source list. Entries are merged over base by key.
func LoadFile(path string, base []Source) ([]Source, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources file %s: %w", path, err)
	}

	var f fileFormat
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse sources file %s: %w", path, err)
	}

	merged := make([]Source, 0, len(base)+len(f.Sources))
	index := make(map[string]int, len(base))
	for _, s := range base {
		index[s.Key] = len(merged)
		merged = append(merged, s)
	}
	for _, s := range f.Sources {
		if s.Key == "" {
			return nil, fmt.Errorf("sources file %s: entry %q has no key", path, s.Name)
		}
		if s.Kind == "" {
			s.Kind = KindRSS
		}
		if i, ok := index[s.Key]; ok {
			merged[i] = s
			continue
		}
		index[s.Key] = len(merged)
		merged = append(merged, s)
	}
	return merged, nil
}
