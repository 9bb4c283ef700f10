package rewrite

import (
	"regexp"
	"strings"

	"hindinews/pkg/domain"
)

const (
	// MinAcceptedContent is the parsed body length a provider result must exceed.
	MinAcceptedContent = 250

	maxTitleLen      = 150
	shortTitleLen    = 100
	maxPreambleRunes = 120
)

var (
	htmlTag       = regexp.MustCompile(`<[^>]*>`)
	mdEmphasis    = regexp.MustCompile("(\\*\\*|__|\\*|`+|~~)")
	mdLinePrefix  = regexp.MustCompile(`^\s*(#{1,6}\s*|[-*+]\s+|>\s*)`)
	labelPrefix   = regexp.MustCompile(`(?i)^\s*(title|headline|heading|content|body|article|शीर्षक|हेडलाइन|समाचार|लेख|खबर)\s*[:：\-–]\s*`)
	preambleStart = regexp.MustCompile(`(?i)^\s*(here is|here's|here are|sure[,!.]|certainly[,!.]|below is)`)
	// Hindi headlines often open with these adverbs, so they only mark a
	// preamble together with a colon or a mention of the article itself.
	hindiPreamble = regexp.MustCompile(`^\s*(यहाँ|यहां|नीचे)`)
	preambleHint  = regexp.MustCompile(`(?i)([:：]\s*$|लेख|पुनर्लिखित|दोबारा लिख|article)`)
	sentenceEnd   = regexp.MustCompile(`[।.!?]`)
)

// ParseResponse turns a raw provider completion into a title and body.
// Line one is the title; everything after it is the body.
func ParseResponse(raw string) (title, content string) {
	raw = htmlTag.ReplaceAllString(raw, "\n")
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = mdLinePrefix.ReplaceAllString(line, "")
		line = mdEmphasis.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(lines) == 0 && isPreamble(line) {
			continue
		}
		line = strings.TrimSpace(labelPrefix.ReplaceAllString(line, ""))
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		return "", ""
	}
	return shortenTitle(strings.Trim(lines[0], `"'“”`)), strings.Join(lines[1:], "\n\n")
}

func isPreamble(line string) bool {
	if domain.RuneLen(line) > maxPreambleRunes {
		return false
	}
	if preambleStart.MatchString(line) {
		return true
	}
	return hindiPreamble.MatchString(line) && preambleHint.MatchString(line)
}

// shortenTitle keeps titles up to maxTitleLen; longer ones are cut to their
// first sentence, or to shortTitleLen runes when that is still too long.
func shortenTitle(title string) string {
	if domain.RuneLen(title) <= maxTitleLen {
		return title
	}
	if loc := sentenceEnd.FindStringIndex(title); loc != nil {
		first := strings.TrimSpace(title[:loc[1]])
		if domain.RuneLen(first) <= maxTitleLen {
			return first
		}
	}
	return strings.TrimSpace(domain.Truncate(title, shortTitleLen))
}
