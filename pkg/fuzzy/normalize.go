// Package fuzzy provides song title and query normalization.
package fuzzy

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	parenRegex      = regexp.MustCompile(`\(.*?\)|\[.*?\]`)
	featRegex       = regexp.MustCompile(`(?i)\s*[\(\[]?\s*(?:feat\.?|ft\.?|featuring)\s+[^\)\]]*[\)\]]?\s*`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// CleanTitle strips parenthetical and bracketed chunks from a song title,
// e.g. "The Song (feat. B) [Live]" becomes "The Song". Used before lyric
// lookups, where annotations hurt search accuracy.
func (n *Normalizer) CleanTitle(title string) string {
	title = parenRegex.ReplaceAllString(title, "")
	title = whitespaceRegex.ReplaceAllString(title, " ")
	return strings.TrimSpace(title)
}

// NormalizeQuery folds diacritics and trims featuring credits to build a
// stable free-text search query.
func (n *Normalizer) NormalizeQuery(query string) string {
	query = norm.NFKD.String(query)

	var b strings.Builder
	for _, r := range query {
		if !unicode.IsMark(r) {
			b.WriteRune(r)
		}
	}
	query = b.String()

	query = featRegex.ReplaceAllString(query, " ")
	query = whitespaceRegex.ReplaceAllString(query, " ")
	return strings.TrimSpace(query)
}
