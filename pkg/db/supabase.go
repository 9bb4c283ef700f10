package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	supabase "github.com/supabase-community/supabase-go"

	"hindinews/pkg/domain"
)

// SupabaseConfig holds configuration for the Supabase REST (PostgREST) API.
type SupabaseConfig struct {
	// SupabaseURL is the project URL.
	// Example: "https://[project-ref].supabase.co"
	SupabaseURL string

	// SupabaseKey is the API key. The pipeline inserts and deletes rows, so
	// this is normally the service_role key.
	SupabaseKey string

	Table string
}

// SupabaseStore talks to the articles table through the Supabase SDK. The
// table is expected to exist with the same columns as the Postgres schema.
type SupabaseStore struct {
	client *supabase.Client
	table  string
}

var _ Store = (*SupabaseStore)(nil)

// NewSupabaseStore initializes the SDK client.
func NewSupabaseStore(cfg SupabaseConfig) (*SupabaseStore, error) {
	if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
		return nil, fmt.Errorf("supabase URL and key are required")
	}

	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, nil)
	if err != nil {
		return nil, fmt.Errorf("initialize supabase SDK: %w", err)
	}

	return &SupabaseStore{client: client, table: tableName(cfg.Table)}, nil
}

func (s *SupabaseStore) Exists(ctx context.Context, sourceURL string) (bool, error) {
	_, count, err := s.client.From(s.table).
		Select("id", "exact", true).
		Eq("source_url", sourceURL).
		Execute()
	if err != nil {
		return false, fmt.Errorf("query source_url: %w", err)
	}
	return count > 0, nil
}

// supabaseRow is the REST representation of a record.
type supabaseRow struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	SourceURL   string      `json:"source_url"`
	AIContent   string      `json:"ai_content"`
	ShortDesc   string      `json:"short_desc"`
	ImageURL    string      `json:"image_url"`
	PublishedAt string      `json:"published_at"`
	Region      string      `json:"region"`
	Genre       string      `json:"genre"`
	CreatedAt   string      `json:"created_at"`
	Meta        domain.Meta `json:"meta"`
}

func toSupabaseRow(rec domain.ArticleRecord) supabaseRow {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return supabaseRow{
		ID:          rec.ID,
		Title:       rec.Title,
		Slug:        rec.Slug,
		SourceURL:   rec.SourceURL,
		AIContent:   rec.AIContent,
		ShortDesc:   rec.ShortDesc,
		ImageURL:    rec.ImageURL,
		PublishedAt: rec.PublishedAt.UTC().Format(time.RFC3339),
		Region:      string(rec.Region),
		Genre:       string(rec.Genre),
		CreatedAt:   createdAt.UTC().Format(time.RFC3339),
		Meta:        rec.Meta,
	}
}

func (s *SupabaseStore) Insert(ctx context.Context, rec domain.ArticleRecord) error {
	_, _, err := s.client.From(s.table).
		Insert(toSupabaseRow(rec), false, "", "minimal", "").
		Execute()
	if err != nil {
		if isDuplicateMessage(err.Error()) {
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

func (s *SupabaseStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	_, count, err := s.client.From(s.table).
		Delete("minimal", "exact").
		Lt("created_at", cutoff.UTC().Format(time.RFC3339)).
		Execute()
	if err != nil {
		return 0, fmt.Errorf("delete old articles: %w", err)
	}
	return count, nil
}

func (s *SupabaseStore) Count(ctx context.Context) (int64, error) {
	_, count, err := s.client.From(s.table).
		Select("id", "exact", true).
		Execute()
	if err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return count, nil
}

func (s *SupabaseStore) Close(ctx context.Context) error {
	return nil
}

// isDuplicateMessage recognizes PostgREST's unique-violation error body
func isDuplicateMessage(msg string) bool {
	return strings.Contains(msg, uniqueViolation) || strings.Contains(strings.ToLower(msg), "duplicate key")
}
