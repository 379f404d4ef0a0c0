package content

import (
	"regexp"
	"strconv"
	"strings"
)

// Heading is a second or third level markdown heading, used for a page outline.
type Heading struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Level int    `json:"level"`
}

var (
	headingPattern = regexp.MustCompile(`^(#{2,3})[ \t]+(.+?)[ \t#]*$`)
	nonIDChars     = regexp.MustCompile(`[^a-z0-9]+`)
)

// Headings extracts "##" and "###" headings from a markdown body, skipping
// fenced code blocks. Repeated ids get a numeric suffix.
func Headings(body string) []Heading {
	var out []Heading
	used := make(map[string]int)
	fence := ""
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if fence != "" {
			if strings.HasPrefix(trimmed, fence) {
				fence = ""
			}
			continue
		}
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			fence = trimmed[:3]
			continue
		}
		m := headingPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		text := strings.TrimSpace(m[2])
		id := HeadingID(text)
		if n, ok := used[id]; ok {
			used[id] = n + 1
			id = id + "-" + strconv.Itoa(n+1)
		} else {
			used[id] = 0
		}
		out = append(out, Heading{ID: id, Text: text, Level: len(m[1])})
	}
	return out
}

// HeadingID turns heading text into an anchor id.
func HeadingID(text string) string {
	return strings.Trim(nonIDChars.ReplaceAllString(strings.ToLower(text), "-"), "-")
}
