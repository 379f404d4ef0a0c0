package search

import (
	"strings"
	"unicode"
)

// fold lowercases s rune by rune, so rune offsets into the result line up
// with rune offsets into s.
func fold(s string) string {
	return strings.Map(unicode.ToLower, s)
}

func containsFolded(haystack, foldedNeedle string) bool {
	return strings.Contains(fold(haystack), foldedNeedle)
}

func equalFold(a, b string) bool {
	return fold(a) == fold(b)
}

// indexRunes returns the rune offset of the first occurrence of needle in
// haystack, or -1.
func indexRunes(haystack, needle []rune) int {
	n := len(needle)
	if n == 0 {
		return 0
	}
	for i := 0; i+n <= len(haystack); i++ {
		if haystack[i] == needle[0] && equalRunes(haystack[i:i+n], needle) {
			return i
		}
	}
	return -1
}

func equalRunes(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
