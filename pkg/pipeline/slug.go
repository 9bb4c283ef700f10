package pipeline

import (
	"strings"
	"unicode"
)

const maxSlugBase = 80

// Slug builds a URL-safe slug from a (usually Hindi) title plus a short
// suffix taken from id, so no lookup is needed to keep slugs unique.
func Slug(title, id string) string {
	var b strings.Builder
	dash := false
	for _, r := range transliterate(title) {
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}

	base := strings.Trim(b.String(), "-")
	if len(base) > maxSlugBase {
		base = strings.Trim(base[:maxSlugBase], "-")
	}
	if base == "" {
		base = "news"
	}
	return base + "-" + slugSuffix(id)
}

func slugSuffix(id string) string {
	id = strings.ReplaceAll(strings.ToLower(id), "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return id
}

var consonants = map[rune]string{
	'क': "k", 'ख': "kh", 'ग': "g", 'घ': "gh", 'ङ': "n",
	'च': "ch", 'छ': "chh", 'ज': "j", 'झ': "jh", 'ञ': "n",
	'ट': "t", 'ठ': "th", 'ड': "d", 'ढ': "dh", 'ण': "n",
	'त': "t", 'थ': "th", 'द': "d", 'ध': "dh", 'न': "n",
	'प': "p", 'फ': "ph", 'ब': "b", 'भ': "bh", 'म': "m",
	'य': "y", 'र': "r", 'ल': "l", 'व': "v",
	'श': "sh", 'ष': "sh", 'स': "s", 'ह': "h",
	// precomposed nukta forms
	'\u0958': "q", '\u0959': "kh", '\u095A': "g", '\u095B': "z",
	'\u095C': "r", '\u095D': "rh", '\u095E': "f", '\u095F': "y",
}

var vowels = map[rune]string{
	'अ': "a", 'आ': "aa", 'इ': "i", 'ई': "ee", 'उ': "u", 'ऊ': "oo",
	'ऋ': "ri", 'ए': "e", 'ऐ': "ai", 'ओ': "o", 'औ': "au", 'ऑ': "o",
}

var matras = map[rune]string{
	'ा': "aa", 'ि': "i", 'ी': "ee", 'ु': "u", 'ू': "oo", 'ृ': "ri",
	'े': "e", 'ै': "ai", 'ो': "o", 'ौ': "au", 'ॉ': "o",
}

const (
	virama = '्'
	nukta  = '़'
)

// transliterate romanizes Devanagari loosely; other scripts pass through.
// The inherent vowel is dropped before a matra or virama and at word end.
func transliterate(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if c, ok := consonants[r]; ok {
			b.WriteString(c)
			next := i + 1
			if next < len(runes) && runes[next] == nukta {
				next++
				i++
			}
			if next < len(runes) && isDevanagariLetter(runes[next]) {
				if _, isMatra := matras[runes[next]]; !isMatra && runes[next] != virama {
					b.WriteByte('a')
				}
			}
			continue
		}
		if v, ok := vowels[r]; ok {
			b.WriteString(v)
			continue
		}
		if m, ok := matras[r]; ok {
			b.WriteString(m)
			continue
		}
		switch {
		case r == 'ं' || r == 'ँ':
			b.WriteByte('n')
		case r == 'ः':
			b.WriteByte('h')
		case r == virama || r == nukta:
		case r >= '०' && r <= '९':
			b.WriteRune('0' + (r - '०'))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isDevanagariLetter(r rune) bool {
	return r >= 0x0900 && r <= 0x097F && r != '।' && r != '॥' && !(r >= '०' && r <= '९')
}
