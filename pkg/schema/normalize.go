package schema

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// EmailKeys derives the two lookup keys for an email-bearing value:
// the lowercased full value, and the lowercased portion before the first '@'.
// An empty input yields two empty keys. Pure function.
func EmailKeys(value string) (fullKey, localKey string) {
	s := strings.ToLower(strings.TrimSpace(value))
	if s == "" {
		return "", ""
	}
	fullKey = s
	if at := strings.IndexByte(s, '@'); at >= 0 {
		localKey = s[:at]
	} else {
		localKey = s
	}
	return fullKey, localKey
}

// LocalPart returns the lowercased portion of value before the first '@'.
// A value without '@' is returned lowercased as-is.
func LocalPart(value string) string {
	_, local := EmailKeys(value)
	return local
}

// NormalizeName produces the canonical display form used for cross-source
// display dedup: lowercased, diacritics stripped, whitespace collapsed.
// Exact-match key only; no fuzzy matching is performed on it anywhere.
func NormalizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	if s == "" {
		return s
	}
	s = stripDiacritics(s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// stripDiacritics removes diacritical marks from a string by decomposing it
// into NFD form and dropping combining marks (unicode.Mn).
func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var result strings.Builder
	result.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		result.WriteRune(r)
	}
	return result.String()
}
