package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hindinews/pkg/content"
	"hindinews/pkg/db"
	"hindinews/pkg/domain"
	"hindinews/pkg/rewrite"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockEnricher returns fixed results and counts calls
type mockEnricher struct {
	mu    sync.Mutex
	body  string
	image string
	calls int
}

func (m *mockEnricher) Enrich(ctx context.Context, pageURL string) (string, string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.body, m.image
}

// mockRewriter echoes its input as content and records what it was given
type mockRewriter struct {
	mu       sync.Mutex
	calls    int
	contents []string
}

func (m *mockRewriter) Rewrite(ctx context.Context, title, content string) domain.RewriteResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.contents = append(m.contents, content)
	body := strings.Repeat("यह खबर का विस्तृत विवरण है। ", 20)
	return domain.RewriteResult{Title: title, Content: body, Provider: "stub", WordCount: domain.CountWords(body), Success: true}
}

// failingStore fails every insert
type failingStore struct {
	*db.MemoryStore
}

func (f failingStore) Insert(ctx context.Context, rec domain.ArticleRecord) error {
	return errors.New("connection reset")
}

func candidate(url string) domain.Candidate {
	return domain.Candidate{
		Title:       "देहरादून में भारी बारिश",
		Description: "मौसम विभाग ने अलर्ट जारी किया",
		URL:         url,
		PublishedAt: time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
		Source:      "amarujala-uttarakhand",
		Priority:    1,
	}
}

func TestProcessor_InsertsRecord(t *testing.T) {
	store := db.NewMemoryStore()
	enricher := &mockEnricher{body: strings.Repeat("पूरी खबर का पाठ। ", 20), image: "https://img.example.com/page.jpg"}
	p := NewProcessor(store, enricher, &mockRewriter{}, ImagePolicy{}, quietLogger())

	outcome, err := p.Process(context.Background(), candidate("https://example.com/a"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeInserted, outcome)

	rec, ok := store.Get("https://example.com/a")
	require.True(t, ok)
	assert.Equal(t, "देहरादून में भारी बारिश", rec.Title)
	assert.Equal(t, "https://img.example.com/page.jpg", rec.ImageURL)
	assert.Equal(t, ImageFromPage, rec.Meta.ImageSource)
	assert.Equal(t, "stub", rec.Meta.AIProvider)
	assert.Equal(t, "amarujala-uttarakhand", rec.Meta.Source)
	assert.Equal(t, domain.RegionUttarakhand, rec.Region)
	assert.Equal(t, domain.GenreWeather, rec.Genre)
	assert.True(t, strings.HasPrefix(rec.Slug, "deharaadoon-men-bhaaree-baarish-"))
	assert.NotEmpty(t, rec.ID)
	assert.True(t, strings.HasSuffix(rec.Slug, "-"+strings.ReplaceAll(rec.ID, "-", "")[:8]), "slug suffix comes from the record id")
	assert.Equal(t, candidate("").PublishedAt, rec.PublishedAt)
	assert.LessOrEqual(t, domain.RuneLen(rec.ShortDesc), ShortDescLen+3)
}

func TestProcessor_SkipsStoredURLWithoutWork(t *testing.T) {
	store := db.NewMemoryStore()
	enricher := &mockEnricher{}
	rewriter := &mockRewriter{}
	p := NewProcessor(store, enricher, rewriter, ImagePolicy{}, quietLogger())
	ctx := context.Background()

	first, err := p.Process(ctx, candidate("https://example.com/a"))
	require.NoError(t, err)
	require.Equal(t, OutcomeInserted, first)

	second, err := p.Process(ctx, candidate("https://example.com/a"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, second)

	assert.Equal(t, 1, enricher.calls)
	assert.Equal(t, 1, rewriter.calls)
	n, _ := store.Count(ctx)
	assert.Equal(t, int64(1), n)
}

func TestProcessor_ShortBodyFallsBackToTitleAndDescription(t *testing.T) {
	rewriter := &mockRewriter{}
	p := NewProcessor(db.NewMemoryStore(), &mockEnricher{body: "too short"}, rewriter, ImagePolicy{}, quietLogger())

	_, err := p.Process(context.Background(), candidate("https://example.com/a"))
	require.NoError(t, err)

	require.Len(t, rewriter.contents, 1)
	assert.Equal(t, "देहरादून में भारी बारिश\n\nमौसम विभाग ने अलर्ट जारी किया", rewriter.contents[0])
}

func TestProcessor_FeedImageWins(t *testing.T) {
	store := db.NewMemoryStore()
	p := NewProcessor(store, &mockEnricher{image: "https://img.example.com/page.jpg"}, &mockRewriter{}, ImagePolicy{}, quietLogger())

	c := candidate("https://example.com/a")
	c.Image = "https://img.example.com/feed.jpg"
	_, err := p.Process(context.Background(), c)
	require.NoError(t, err)

	rec, _ := store.Get(c.URL)
	assert.Equal(t, "https://img.example.com/feed.jpg", rec.ImageURL)
	assert.Equal(t, ImageFromFeed, rec.Meta.ImageSource)
}

func TestProcessor_InsertFailureIsDropped(t *testing.T) {
	store := failingStore{db.NewMemoryStore()}
	p := NewProcessor(store, &mockEnricher{}, &mockRewriter{}, ImagePolicy{}, quietLogger())

	outcome, err := p.Process(context.Background(), candidate("https://example.com/a"))
	assert.Error(t, err)
	assert.Equal(t, OutcomeFailed, outcome)
}

// Feed item with only a title, a page that 404s and no AI providers.
func TestProcessor_EverythingFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	store := db.NewMemoryStore()
	enricher := content.NewEnricher(time.Second, time.Second, quietLogger())
	p := NewProcessor(store, enricher, rewrite.NewEngine(quietLogger()), ImagePolicy{BaseURL: "https://cdn.example.com/img"}, quietLogger())

	c := domain.Candidate{
		Title:       "पंचायत चुनाव घोषित",
		Description: "पंचायत चुनाव घोषित",
		URL:         server.URL + "/story/1",
		PublishedAt: time.Now(),
		Source:      "test",
	}
	outcome, err := p.Process(context.Background(), c)
	require.NoError(t, err)
	require.Equal(t, OutcomeInserted, outcome)

	rec, ok := store.Get(c.URL)
	require.True(t, ok)
	assert.Equal(t, rewrite.FallbackProvider, rec.Meta.AIProvider)
	assert.Equal(t, rewrite.FallbackWordCount, rec.Meta.WordCount)
	assert.Contains(t, rec.AIContent, "पंचायत चुनाव घोषित")
	assert.Equal(t, domain.GenrePolitics, rec.Genre)
	assert.Equal(t, ImageFromDefault, rec.Meta.ImageSource)
	assert.Equal(t, ImagePolicy{BaseURL: "https://cdn.example.com/img"}.For(rec.Genre, rec.Region), rec.ImageURL)
	assert.Equal(t, "https://cdn.example.com/img/politics.jpg", rec.ImageURL)
}

// Provider A times out, provider B returns a long Hindi article.
func TestProcessor_SlowProviderLosesToValidOne(t *testing.T) {
	body := strings.TrimSpace(strings.Repeat("शब्द ", 380))
	engine := rewrite.NewEngine(quietLogger(),
		rewrite.WithProvider(slowProvider{name: "A"}, 30*time.Millisecond),
		rewrite.WithProvider(fixedProvider{name: "B", text: "नया शीर्षक\n" + body}, time.Second),
	)

	store := db.NewMemoryStore()
	p := NewProcessor(store, &mockEnricher{}, engine, ImagePolicy{}, quietLogger())

	_, err := p.Process(context.Background(), candidate("https://example.com/b"))
	require.NoError(t, err)

	rec, _ := store.Get("https://example.com/b")
	assert.Equal(t, "B", rec.Meta.AIProvider)
	assert.Equal(t, 380, rec.Meta.WordCount)
	assert.Equal(t, "नया शीर्षक", rec.Title)
}

type slowProvider struct{ name string }

func (s slowProvider) Name() string { return s.name }

func (s slowProvider) Generate(ctx context.Context, title, content string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

type fixedProvider struct{ name, text string }

func (f fixedProvider) Name() string { return f.name }

func (f fixedProvider) Generate(ctx context.Context, title, content string) (string, error) {
	return f.text, nil
}

func TestShortDesc(t *testing.T) {
	assert.Equal(t, "छोटा पाठ", ShortDesc("छोटा   पाठ", 200))

	long := strings.Repeat("शब्द ", 100)
	got := ShortDesc(long, 20)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, domain.RuneLen(strings.TrimSuffix(got, "...")), 20)
	assert.NotContains(t, got, "शब्द शब...")
}

func TestSlug(t *testing.T) {
	id := "1b4e28ba-2fa1-11d2-883f-0016d3cca427"
	assert.Equal(t, "panchaayat-chunaav-ghoshit-1b4e28ba", Slug("पंचायत चुनाव घोषित", id))
	assert.Equal(t, "uttaraakhand-2025-bajat-1b4e28ba", Slug("उत्तराखंड: २०२५ बजट", id))
	assert.Equal(t, "breaking-news-1b4e28ba", Slug("  Breaking -- NEWS!! ", id))
	assert.Equal(t, "news-1b4e28ba", Slug("", id))
	assert.LessOrEqual(t, len(Slug(strings.Repeat("क", 200), id)), maxSlugBase+9)
}

func TestImagePolicy_NeverEmpty(t *testing.T) {
	policy := ImagePolicy{}
	genres := []domain.Genre{domain.GenreCrime, domain.GenreWeather, domain.GenreOther, domain.Genre("unknown")}
	regions := []domain.Region{domain.RegionUttarakhand, domain.RegionIndia, domain.RegionInternational, domain.Region("")}
	for _, g := range genres {
		for _, r := range regions {
			assert.NotEmpty(t, policy.For(g, r))
		}
	}

	assert.Equal(t, DefaultImageBase+"/uttarakhand.jpg", policy.For(domain.GenreOther, domain.RegionUttarakhand))
	assert.Equal(t, "https://cdn.example.com/crime.jpg", ImagePolicy{BaseURL: "https://cdn.example.com/"}.For(domain.GenreCrime, domain.RegionIndia))
	assert.Equal(t, DefaultImageBase+"/news.jpg", policy.For(domain.Genre("unknown"), domain.Region("")))
}
