package content

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

const (
	// minRegionText is what a content-region selector must yield to be accepted
	minRegionText = 300
	// minParagraphText is the per-paragraph floor for the <p> fallback
	minParagraphText = 80
	// minParagraphsTotal is what the joined paragraphs must exceed
	minParagraphsTotal = 400
)

// bodySelectors are content regions tried in order; the first with enough text wins
var bodySelectors = []string{
	"article .article-body",
	"article .story-content",
	"[itemprop='articleBody']",
	".article-content",
	".article-body",
	".story-content",
	".story-details",
	".entry-content",
	".post-content",
	".news-content",
	".content-area",
	".td-post-content",
	"#content-body",
	"article",
	"main",
}

// imageMetaSelectors are tried before any in-page selector
var imageMetaSelectors = []string{
	"meta[property='og:image']",
	"meta[property='og:image:secure_url']",
	"meta[name='og:image']",
	"meta[name='twitter:image']",
	"meta[name='twitter:image:src']",
	"meta[property='twitter:image']",
	"link[rel='image_src']",
}

// imageSelectors are common featured-image placements
var imageSelectors = []string{
	".featured-image img",
	".post-thumbnail img",
	"img.wp-post-image",
	".article-image img",
	".story-image img",
	".main-image img",
	"article figure img",
	"figure img",
	"article img",
}

var boilerplate = regexp.MustCompile(`(?i)(copyright|©|all rights reserved|advertisement|sponsored|subscribe|विज्ञापन|सर्वाधिकार|adsbygoogle|googletag)`)

// stripSelectors are removed before any text is measured
const stripSelectors = "script, style, noscript, iframe, nav, header, footer, aside, form, .advertisement, .ads, .ad, .social-share, .related-news"

// ExtractBody pulls the article text out of a page: content-region selectors
// first, then a paragraph sweep, then readability as a last resort. Empty when
// nothing is long enough.
func ExtractBody(htmlContent string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}
	doc.Find(stripSelectors).Remove()

	for _, sel := range bodySelectors {
		var found string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := normalize(s.Text())
			if len([]rune(text)) > minRegionText {
				found = text
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}

	if text := paragraphText(doc); text != "" {
		return text
	}

	if text := readabilityText(htmlContent); len([]rune(text)) > minParagraphsTotal {
		return text
	}
	return ""
}

func readabilityText(htmlContent string) string {
	article, err := readability.FromReader(strings.NewReader(htmlContent), nil)
	if err != nil {
		return ""
	}
	return normalize(article.TextContent)
}

// paragraphText joins visible, non-boilerplate paragraphs
func paragraphText(doc *goquery.Document) string {
	var parts []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		text := normalize(s.Text())
		if len([]rune(text)) <= minParagraphText || boilerplate.MatchString(text) {
			return
		}
		parts = append(parts, text)
	})

	joined := strings.Join(parts, "\n\n")
	if len([]rune(joined)) <= minParagraphsTotal {
		return ""
	}
	return joined
}

// ExtractImage finds the representative image of a page, resolving relative
// URLs against pageURL. Candidates that cannot be made absolute are skipped.
func ExtractImage(htmlContent, pageURL string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}

	base, err := url.Parse(pageURL)
	if err != nil || !base.IsAbs() {
		base = nil
	}

	for _, sel := range imageMetaSelectors {
		s := doc.Find(sel).First()
		raw, ok := s.Attr("content")
		if !ok {
			raw, _ = s.Attr("href")
		}
		if u := resolveImage(base, raw); u != "" {
			return u
		}
	}

	for _, sel := range imageSelectors {
		var found string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			for _, attr := range []string{"src", "data-src", "data-lazy-src"} {
				if raw, ok := s.Attr(attr); ok {
					if u := resolveImage(base, raw); u != "" {
						found = u
						return false
					}
				}
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// resolveImage returns an absolute http(s) URL or "".
func resolveImage(base *url.URL, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "data:") {
		return ""
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if !ref.IsAbs() {
		if base == nil {
			return ""
		}
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" || ref.Host == "" {
		return ""
	}
	return ref.String()
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
