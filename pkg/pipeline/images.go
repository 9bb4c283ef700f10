package pipeline

import (
	"strings"

	"hindinews/pkg/domain"
)

// DefaultImageBase is where the stock images are served from when no base is configured
const DefaultImageBase = "/static/images/defaults"

// ImagePolicy picks the stock image for an article that has none.
// Genre images win; GenreOther falls back to the region image.
type ImagePolicy struct {
	BaseURL string
}

var genreImages = map[domain.Genre]string{
	domain.GenreCrime:         "crime.jpg",
	domain.GenrePolitics:      "politics.jpg",
	domain.GenreSports:        "sports.jpg",
	domain.GenreEntertainment: "entertainment.jpg",
	domain.GenreBusiness:      "business.jpg",
	domain.GenreTechnology:    "technology.jpg",
	domain.GenreHealth:        "health.jpg",
	domain.GenreEnvironment:   "environment.jpg",
	domain.GenreEducation:     "education.jpg",
	domain.GenreLifestyle:     "lifestyle.jpg",
	domain.GenreWeather:       "weather.jpg",
}

var regionImages = map[domain.Region]string{
	domain.RegionUttarakhand:   "uttarakhand.jpg",
	domain.RegionIndia:         "india.jpg",
	domain.RegionInternational: "world.jpg",
}

// For returns a non-empty image URL
func (p ImagePolicy) For(genre domain.Genre, region domain.Region) string {
	name, ok := genreImages[genre]
	if !ok {
		name, ok = regionImages[region]
	}
	if !ok {
		name = "news.jpg"
	}

	base := strings.TrimSuffix(p.BaseURL, "/")
	if base == "" {
		base = DefaultImageBase
	}
	return base + "/" + name
}
