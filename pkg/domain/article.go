package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Region tags an article by geography. Tiers are checked regional first.
type Region string

const (
	RegionUttarakhand   Region = "uttarakhand"
	RegionIndia         Region = "india"
	RegionInternational Region = "international"
)

// Genre is one of a fixed set of topics. GenreOther is the catch-all.
type Genre string

const (
	GenreCrime         Genre = "Crime"
	GenrePolitics      Genre = "Politics"
	GenreSports        Genre = "Sports"
	GenreEntertainment Genre = "Entertainment"
	GenreBusiness      Genre = "Business"
	GenreTechnology    Genre = "Technology"
	GenreHealth        Genre = "Health"
	GenreEnvironment   Genre = "Environment"
	GenreEducation     Genre = "Education"
	GenreLifestyle     Genre = "Lifestyle"
	GenreWeather       Genre = "Weather"
	GenreOther         Genre = "Other"
)

// Candidate is a news item discovered from a feed or API, before enrichment.
// URL is the dedup key for the whole cycle.
type Candidate struct {
	Title       string
	Description string
	URL         string
	Image       string // empty when the feed carried no image
	PublishedAt time.Time
	Source      string
	Priority    int // lower is more important
}

// EnrichedContent is a candidate with its best-effort body and image.
type EnrichedContent struct {
	Candidate   Candidate
	Body        string
	Image       string
	ImageSource string // feed, scraped or default
}

// RewriteResult is what the rewrite engine hands back for one article.
type RewriteResult struct {
	Title     string
	Content   string
	Provider  string
	WordCount int
	Success   bool
}

// ArticleRecord is the persisted unit. Created once, never updated by the pipeline.
type ArticleRecord struct {
	ID          string    `json:"id" bson:"_id"`
	Title       string    `json:"title" bson:"title"`
	Slug        string    `json:"slug" bson:"slug"`
	SourceURL   string    `json:"source_url" bson:"source_url"`
	AIContent   string    `json:"ai_content" bson:"ai_content"`
	ShortDesc   string    `json:"short_desc" bson:"short_desc"`
	ImageURL    string    `json:"image_url" bson:"image_url"`
	PublishedAt time.Time `json:"published_at" bson:"published_at"`
	Region      Region    `json:"region" bson:"region"`
	Genre       Genre     `json:"genre" bson:"genre"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	Meta        Meta      `json:"meta" bson:"meta"`
}

// Meta records provenance of a record.
type Meta struct {
	OriginalTitle string `json:"original_title" bson:"original_title"`
	Source        string `json:"source" bson:"source"`
	AIProvider    string `json:"ai_provider" bson:"ai_provider"`
	WordCount     int    `json:"word_count" bson:"word_count"`
	ImageSource   string `json:"image_source" bson:"image_source"`
}

// CountWords counts whitespace-delimited tokens.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// RuneLen is the length used for every content threshold.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
