package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"hindinews/pkg/classify"
	"hindinews/pkg/db"
	"hindinews/pkg/domain"
)

// MinBodyText is the shortest scraped body used as rewrite input; anything
// shorter is replaced by the candidate's own title and description.
const MinBodyText = 100

// ShortDescLen bounds ArticleRecord.ShortDesc, in runes.
const ShortDescLen = 200

// Image provenance recorded in Meta.ImageSource
const (
	ImageFromFeed    = "feed"
	ImageFromPage    = "scraped"
	ImageFromDefault = "default"
)

// ContentEnricher fetches a best-effort body and image for an article page
type ContentEnricher interface {
	Enrich(ctx context.Context, pageURL string) (body, image string)
}

// Rewriter produces publishable text for a title and body. It never fails.
type Rewriter interface {
	Rewrite(ctx context.Context, title, content string) domain.RewriteResult
}

// Outcome is what happened to one candidate
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeSkipped
	OutcomeInserted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Processor takes one candidate through the dedup check, enrichment,
// rewrite, classification and insert.
type Processor struct {
	store    db.Store
	enricher ContentEnricher
	rewriter Rewriter
	images   ImagePolicy
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// NewProcessor creates a processor writing to store
func NewProcessor(store db.Store, enricher ContentEnricher, rewriter Rewriter, images ImagePolicy, logger *slog.Logger) *Processor {
	return &Processor{
		store:    store,
		enricher: enricher,
		rewriter: rewriter,
		images:   images,
		logger:   logger.With("component", "processor"),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Process runs the per-item pipeline. A candidate already stored is skipped
// before any network work. Insert failures are logged and reported as
// OutcomeFailed; the caller does not retry.
func (p *Processor) Process(ctx context.Context, c domain.Candidate) (Outcome, error) {
	log := p.logger.With("url", c.URL, "source", c.Source)

	exists, err := p.store.Exists(ctx, c.URL)
	if err != nil {
		log.Error("dedup lookup failed", "error", err)
		return OutcomeFailed, fmt.Errorf("check existing: %w", err)
	}
	if exists {
		log.Debug("already stored, skipping")
		return OutcomeSkipped, nil
	}

	start := time.Now()
	enriched := p.enrich(ctx, c)
	log.Debug("enriched", "body_chars", domain.RuneLen(enriched.Body), "image_source", enriched.ImageSource, "duration", time.Since(start))

	result := p.rewriter.Rewrite(ctx, c.Title, enriched.Body)
	tags := classify.Classify(result.Title+"\n"+result.Content, c.URL)

	image := enriched.Image
	if image == "" {
		image = p.images.For(tags.Genre, tags.Region)
		enriched.ImageSource = ImageFromDefault
	}

	id := p.newID()
	rec := domain.ArticleRecord{
		ID:          id,
		Title:       result.Title,
		Slug:        Slug(result.Title, id),
		SourceURL:   c.URL,
		AIContent:   result.Content,
		ShortDesc:   ShortDesc(result.Content, ShortDescLen),
		ImageURL:    image,
		PublishedAt: c.PublishedAt,
		Region:      tags.Region,
		Genre:       tags.Genre,
		CreatedAt:   p.now(),
		Meta: domain.Meta{
			OriginalTitle: c.Title,
			Source:        c.Source,
			AIProvider:    result.Provider,
			WordCount:     result.WordCount,
			ImageSource:   enriched.ImageSource,
		},
	}

	if err := p.store.Insert(ctx, rec); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			log.Warn("stored concurrently, dropping", "error", err)
			return OutcomeSkipped, nil
		}
		log.Error("insert failed, dropping for this cycle", "error", err)
		return OutcomeFailed, fmt.Errorf("insert: %w", err)
	}

	log.Info("article stored", "provider", result.Provider, "genre", rec.Genre, "region", rec.Region,
		"words", result.WordCount, "duration", time.Since(start))
	return OutcomeInserted, nil
}

// enrich fetches the page and applies the body fallback. Image is left empty
// when neither the feed nor the page had one.
func (p *Processor) enrich(ctx context.Context, c domain.Candidate) domain.EnrichedContent {
	body, scraped := p.enricher.Enrich(ctx, c.URL)

	out := domain.EnrichedContent{Candidate: c, Body: strings.TrimSpace(body)}
	if domain.RuneLen(out.Body) < MinBodyText {
		out.Body = fallbackBody(c)
	}

	switch {
	case c.Image != "":
		out.Image, out.ImageSource = c.Image, ImageFromFeed
	case scraped != "":
		out.Image, out.ImageSource = scraped, ImageFromPage
	}
	return out
}

// fallbackBody joins title and description, skipping a description that only
// repeats the title.
func fallbackBody(c domain.Candidate) string {
	title := strings.TrimSpace(c.Title)
	desc := strings.TrimSpace(c.Description)
	if desc == "" || desc == title {
		return title
	}
	if title == "" {
		return desc
	}
	return title + "\n\n" + desc
}

// ShortDesc cuts content to at most n runes on a word boundary and marks the
// cut with "...".
func ShortDesc(content string, n int) string {
	content = strings.Join(strings.Fields(content), " ")
	if domain.RuneLen(content) <= n {
		return content
	}
	cut := domain.Truncate(content, n)
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:-।") + "..."
}
