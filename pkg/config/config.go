// Package config reads the process configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"hindinews/pkg/content"
	"hindinews/pkg/db"
	"hindinews/pkg/feeds"
	"hindinews/pkg/pipeline"
	"hindinews/pkg/rewrite"
	"hindinews/pkg/sources"
	"hindinews/pkg/worker"
)

// Provider is one AI provider's credentials. Providers without a key are
// not offered to the rewrite engine.
type Provider struct {
	Name   string
	APIKey string
	Model  string
}

type Config struct {
	LogLevel string
	HTTPAddr string

	Concurrency   int
	CycleInterval time.Duration
	InitialDelay  time.Duration
	MaxItems      int
	Retention     time.Duration

	FeedTimeout     time.Duration
	BodyTimeout     time.Duration
	ImageTimeout    time.Duration
	ProviderTimeout time.Duration
	ItemCapOverride int

	SourcesFile  string
	ImageBaseURL string

	NewsDataKey string
	GNewsKey    string

	Store     db.Config
	Providers []Provider
}

// Load reads .env (ENV_PATH, default ".env") when present, then the environment.
func Load() (*Config, error) {
	path := os.Getenv("ENV_PATH")
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		slog.Debug("Skipping .env ...", "path", path, "error", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from getenv
func FromEnv(getenv func(string) string) (*Config, error) {
	p := parser{getenv: getenv}

	cfg := &Config{
		LogLevel: p.str("LOG_LEVEL", "info"),
		HTTPAddr: p.str("HTTP_ADDR", ":8080"),

		Concurrency:   p.positiveInt("CONCURRENCY_LIMIT", worker.DefaultLimit),
		CycleInterval: p.duration("CYCLE_INTERVAL", pipeline.DefaultInterval),
		InitialDelay:  p.duration("INITIAL_DELAY", pipeline.DefaultInitialDelay),
		MaxItems:      p.positiveInt("MAX_ITEMS_PER_CYCLE", pipeline.DefaultMaxItems),
		Retention:     time.Duration(p.positiveInt("RETENTION_DAYS", 2)) * 24 * time.Hour,

		FeedTimeout:     p.duration("FEED_TIMEOUT", feeds.DefaultTimeout),
		BodyTimeout:     p.duration("BODY_TIMEOUT", content.DefaultBodyTimeout),
		ImageTimeout:    p.duration("IMAGE_TIMEOUT", content.DefaultImageTimeout),
		ProviderTimeout: p.duration("PROVIDER_TIMEOUT", rewrite.DefaultProviderTimeout),
		ItemCapOverride: p.number("SOURCE_ITEM_CAP", 0),

		SourcesFile:  p.str("SOURCES_FILE", ""),
		ImageBaseURL: p.str("DEFAULT_IMAGE_BASE", pipeline.DefaultImageBase),

		NewsDataKey: p.str("NEWSDATA_API_KEY", ""),
		GNewsKey:    p.str("GNEWS_API_KEY", ""),

		Store: db.Config{
			Backend:     p.str("STORE_BACKEND", db.BackendAuto),
			DatabaseURL: p.str("DATABASE_URL", ""),
			SupabaseURL: p.str("SUPABASE_URL", ""),
			SupabaseKey: p.str("SUPABASE_KEY", ""),
			MongoURI:    p.str("MONGO_URI", ""),
			MongoDB:     p.str("MONGO_DB", "hindinews"),
			Table:       p.str("ARTICLES_TABLE", "articles"),
		},
	}

	// preference order
	for _, pr := range []Provider{
		{Name: "groq", APIKey: p.str("GROQ_API_KEY", ""), Model: p.str("GROQ_MODEL", "llama-3.3-70b-versatile")},
		{Name: "openrouter", APIKey: p.str("OPENROUTER_API_KEY", ""), Model: p.str("OPENROUTER_MODEL", "meta-llama/llama-3.3-70b-instruct")},
		{Name: "openai", APIKey: p.str("OPENAI_API_KEY", ""), Model: p.str("OPENAI_MODEL", "gpt-4o-mini")},
		{Name: "gemini", APIKey: p.str("GEMINI_API_KEY", ""), Model: p.str("GEMINI_MODEL", "gemini-1.5-flash")},
	} {
		if pr.APIKey != "" {
			cfg.Providers = append(cfg.Providers, pr)
		}
	}

	if err := errors.Join(p.errs...); err != nil {
		return nil, err
	}
	switch cfg.Store.Backend {
	case db.BackendAuto, db.BackendPostgres, db.BackendSupabase, db.BackendMongo, db.BackendMemory:
	default:
		return nil, fmt.Errorf("STORE_BACKEND: unknown backend %q", cfg.Store.Backend)
	}
	return cfg, nil
}

// Sources returns the built-in catalogue merged with SourcesFile, with API
// keys filled in from the environment.
func (c *Config) Sources() ([]sources.Source, error) {
	list := sources.Defaults()
	if c.SourcesFile != "" {
		var err error
		list, err = sources.LoadFile(c.SourcesFile, list)
		if err != nil {
			return nil, err
		}
	}

	for i := range list {
		switch list[i].Kind {
		case sources.KindNewsData:
			list[i].APIKey = c.NewsDataKey
		case sources.KindGNews:
			list[i].APIKey = c.GNewsKey
		}
	}
	return list, nil
}

// RewriteProviders builds the configured providers in preference order
func (c *Config) RewriteProviders() []rewrite.Provider {
	var out []rewrite.Provider
	for _, p := range c.Providers {
		switch p.Name {
		case "groq":
			out = append(out, rewrite.NewChatProvider(rewrite.ChatConfig{Name: p.Name, Endpoint: rewrite.GroqEndpoint, Model: p.Model, APIKey: p.APIKey}))
		case "openrouter":
			out = append(out, rewrite.NewChatProvider(rewrite.ChatConfig{Name: p.Name, Endpoint: rewrite.OpenRouterEndpoint, Model: p.Model, APIKey: p.APIKey}))
		case "openai":
			out = append(out, rewrite.NewChatProvider(rewrite.ChatConfig{Name: p.Name, Endpoint: rewrite.OpenAIEndpoint, Model: p.Model, APIKey: p.APIKey}))
		case "gemini":
			out = append(out, rewrite.NewGeminiProvider(rewrite.GeminiConfig{Model: p.Model, APIKey: p.APIKey}))
		}
	}
	return out
}

// parser collects every malformed value instead of stopping at the first
type parser struct {
	getenv func(string) string
	errs   []error
}

func (p *parser) str(key, def string) string {
	if v := strings.TrimSpace(p.getenv(key)); v != "" {
		return v
	}
	return def
}

func (p *parser) number(key string, def int) int {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func (p *parser) positiveInt(key string, def int) int {
	n := p.number(key, def)
	if n <= 0 {
		p.errs = append(p.errs, fmt.Errorf("%s: must be positive, got %d", key, n))
		return def
	}
	return n
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	if d < 0 {
		p.errs = append(p.errs, fmt.Errorf("%s: must not be negative", key))
		return def
	}
	return d
}
