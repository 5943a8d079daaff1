// Package normalizer canonicalises text for the search engine. Indexing and
// querying both go through Normalize/Tokenize so that lexically-equivalent
// spellings ("Férias" vs "ferias") collide under posting-list lookup.
package normalizer

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD, drops combining diacritical marks, and
// recomposes. Cedilla, tilde, and acute letters all fold to their plain
// Latin counterparts.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases s and strips diacritics. It is pure and idempotent.
func Normalize(s string) string {
	s = strings.ToLower(s)
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return out
}

// Tokenize normalises s, replaces every non-alphanumeric rune with a space,
// and returns the resulting words whose length is strictly greater than
// minLen. Query tokenisation uses minLen=2, keyword extraction minLen=3.
func Tokenize(s string, minLen int) []string {
	s = Normalize(s)
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return ' '
	}, s)
	fields := strings.Fields(s)
	tokens := fields[:0]
	for _, w := range fields {
		if len(w) > minLen {
			tokens = append(tokens, w)
		}
	}
	return tokens
}
