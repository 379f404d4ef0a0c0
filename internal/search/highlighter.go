package search

import (
	"regexp"
	"strings"
)

// Highlight wraps every case-insensitive occurrence of query in text with before
// and after. The query is matched literally, so "." or "(" are not patterns.
func Highlight(text, query, before, after string) string {
	query = strings.TrimSpace(query)
	if query == "" || text == "" {
		return text
	}
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(query))
	if err != nil {
		return text
	}
	return re.ReplaceAllStringFunc(text, func(m string) string {
		return before + m + after
	})
}
