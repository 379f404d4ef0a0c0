package search

import (
	"strings"
	"unicode"
)

// ExcerptRadius is the number of characters kept on each side of a match.
const ExcerptRadius = 100

const ellipsis = "..."

// Excerpt returns the text around the first case-insensitive occurrence of
// query in body: up to ExcerptRadius characters before and after, trimmed and
// wrapped in ellipses. Offsets count characters, not bytes. It returns "" when
// query does not occur.
func Excerpt(body, query string) string {
	if query == "" {
		return ""
	}
	text := []rune(body)
	lowered := make([]rune, len(text))
	for i, r := range text {
		lowered[i] = unicode.ToLower(r)
	}
	needle := []rune(fold(query))

	i := indexRunes(lowered, needle)
	if i < 0 {
		return ""
	}
	start := max(0, i-ExcerptRadius)
	end := min(len(text), i+len(needle)+ExcerptRadius)
	return ellipsis + strings.TrimSpace(string(text[start:end])) + ellipsis
}
