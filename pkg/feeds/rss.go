package feeds

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"

	"hindinews/pkg/domain"
	"hindinews/pkg/sources"
)

// fetchRSS downloads, repairs and parses an RSS/Atom feed.
func (f *FeedFetcher) fetchRSS(ctx context.Context, src sources.Source) ([]domain.Candidate, error) {
	body, err := f.getWithRetry(ctx, f.feedClient, src.URL)
	if err != nil {
		return nil, err
	}
	return f.parseRSS(src, string(body))
}

func (f *FeedFetcher) parseRSS(src sources.Source, raw string) ([]domain.Candidate, error) {
	feed, err := gofeed.NewParser().ParseString(RepairXML(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse RSS feed: %w", err)
	}
	if feed == nil || len(feed.Items) == 0 {
		return nil, nil
	}

	out := make([]domain.Candidate, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		c, ok := f.newCandidate(src,
			stripHTML(item.Title),
			stripHTML(item.Description),
			stripHTML(item.Content),
			item.Link,
			item.GUID,
			itemImage(item),
			publishedAt(item),
		)
		if ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func publishedAt(item *gofeed.Item) *time.Time {
	if item.PublishedParsed != nil {
		return item.PublishedParsed
	}
	return item.UpdatedParsed
}

// itemImage resolves an item image in fixed order: image enclosure,
// media:content, media:thumbnail, media:group content, feed image element,
// then the first <img> of any inline HTML. Relative URLs are resolved
// against the item link (or guid); anything still not absolute http(s) is skipped.
func itemImage(item *gofeed.Item) string {
	base, _ := url.Parse(firstNonEmpty(item.Link, item.GUID))
	for _, u := range imageCandidates(item) {
		if abs := absoluteURL(base, u); abs != "" {
			return abs
		}
	}
	return ""
}

func imageCandidates(item *gofeed.Item) []string {
	var out []string
	for _, enc := range item.Enclosures {
		if enc != nil && enc.URL != "" && strings.HasPrefix(strings.ToLower(enc.Type), "image/") {
			out = append(out, enc.URL)
		}
	}

	media := item.Extensions["media"]
	out = append(out, mediaURL(media["content"]), mediaURL(media["thumbnail"]))
	for _, group := range media["group"] {
		out = append(out, mediaURL(group.Children["content"]), mediaURL(group.Children["thumbnail"]))
	}

	if item.Image != nil {
		out = append(out, item.Image.URL)
	}
	for _, html := range []string{item.Content, item.Description} {
		out = append(out, firstImg(html))
	}
	return out
}

// absoluteURL returns raw as an absolute http(s) URL, or "".
func absoluteURL(base *url.URL, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "data:") {
		return ""
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if !ref.IsAbs() {
		if base == nil || !base.IsAbs() {
			return ""
		}
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" || ref.Host == "" {
		return ""
	}
	return ref.String()
}

// mediaURL picks the first media element that is an image or untyped.
func mediaURL(elems []ext.Extension) string {
	for _, e := range elems {
		u := e.Attrs["url"]
		if u == "" {
			continue
		}
		medium := strings.ToLower(e.Attrs["medium"])
		typ := strings.ToLower(e.Attrs["type"])
		if (medium == "" || medium == "image") && (typ == "" || strings.HasPrefix(typ, "image/")) {
			return u
		}
	}
	return ""
}

func firstImg(html string) string {
	if !strings.Contains(html, "<img") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	src, _ := doc.Find("img[src]").First().Attr("src")
	return strings.TrimSpace(src)
}

// stripHTML returns the visible text of an HTML fragment, whitespace-collapsed.
func stripHTML(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}

// RepairXML escapes bare '&' characters that do not start a named or
// numeric entity, which many publisher feeds emit. CDATA sections are copied
// through untouched since '&' is legal there.
func RepairXML(raw string) string {
	if !strings.Contains(raw, "&") {
		return raw
	}

	const cdataOpen, cdataClose = "<![CDATA[", "]]>"

	var b strings.Builder
	b.Grow(len(raw) + 64)
	for i := 0; i < len(raw); i++ {
		if raw[i] == '<' && strings.HasPrefix(raw[i:], cdataOpen) {
			end := strings.Index(raw[i+len(cdataOpen):], cdataClose)
			if end < 0 {
				// unterminated: leave the rest for the parser to reject
				b.WriteString(raw[i:])
				break
			}
			stop := i + len(cdataOpen) + end + len(cdataClose)
			b.WriteString(raw[i:stop])
			i = stop - 1
			continue
		}
		if raw[i] == '&' && !isEntity(raw[i+1:]) {
			b.WriteString("&amp;")
			continue
		}
		b.WriteByte(raw[i])
	}
	return b.String()
}

// isEntity reports whether rest (the text after '&') begins with
// name; or #digits; or #xhex;
func isEntity(rest string) bool {
	end := strings.IndexByte(rest, ';')
	if end <= 0 || end > 32 {
		return false
	}
	name := rest[:end]

	if name[0] == '#' {
		digits := name[1:]
		hex := false
		if len(digits) > 0 && (digits[0] == 'x' || digits[0] == 'X') {
			digits = digits[1:]
			hex = true
		}
		if digits == "" {
			return false
		}
		for _, r := range digits {
			switch {
			case r >= '0' && r <= '9':
			case hex && (r >= 'a' && r <= 'f' || r >= 'A' && r <= 'F'):
			default:
				return false
			}
		}
		return true
	}

	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
