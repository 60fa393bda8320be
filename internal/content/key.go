package content

import (
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const keyDelimiter = ":"

// BuildKey derives the cache key for a (book, chapter, translation) triple.
//
// Components are trimmed, lower-cased and query-escaped, so the delimiter can
// never occur inside one of them. Equal triples (ignoring case) always map to
// the same key and distinct triples never collide.
func BuildKey(collectionID string, subUnit int, variantID string) string {
	parts := []string{
		url.QueryEscape(Lower(strings.TrimSpace(collectionID))),
		strconv.Itoa(subUnit),
		url.QueryEscape(Lower(strings.TrimSpace(variantID))),
	}
	// QueryEscape emits upper-case hex; input letters are already lower-case.
	return strings.ToLower(strings.Join(parts, keyDelimiter))
}

// Lower lower-cases s using Unicode case mapping.
// A Caser is stateful, so one is created per call.
func Lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// NormalizeName lower-cases s and removes every whitespace rune.
// "1 Corinthians" and "1corinthians" normalize to the same value.
func NormalizeName(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, Lower(s))
}
