// Package cli provides output helpers for the tkdocs command.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dedkola/tk-docs-template/internal/models"
	"github.com/dedkola/tk-docs-template/internal/search"
	"github.com/dedkola/tk-docs-template/pkg/utils"
)

// SearchOutputFormat is the format for command output.
type SearchOutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText SearchOutputFormat = "text"
	// OutputCompact is one tab-separated line per item.
	OutputCompact SearchOutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON SearchOutputFormat = "json"
)

const (
	separator      = "─────────────────────────────────────────────────────────"
	descriptionMax = 160
)

// ParseFormat maps a flag value to a format.
func ParseFormat(s string) (SearchOutputFormat, error) {
	switch f := SearchOutputFormat(s); f {
	case OutputText, OutputCompact, OutputJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text, compact, or json", s)
	}
}

// WriteSearchResults writes search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, response)
	case OutputCompact:
		for _, m := range response.Results {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.Category, m.Document.Path(), m.Reason, m.Document.Title)
		}
		return nil
	default:
		writeSearchResultsText(w, response)
		return nil
	}
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	if response.Results == nil {
		fmt.Fprintln(w, "No search text or tag given.")
		return
	}
	target := fmt.Sprintf("%q", response.Query)
	if response.Mode == models.ModeTag {
		target = fmt.Sprintf("tag %q", response.Tag)
	}
	fmt.Fprintf(w, "\nFound %d results for %s in %dms\n\n", response.Total, target, response.QueryTimeMS)
	for _, m := range response.Results {
		writeOneResult(w, m, response.Query)
	}
	if response.Truncated {
		fmt.Fprintf(w, "... %d more\n", response.Total-len(response.Results))
	}
	if len(response.Results) == 0 {
		if response.DidYouMean != "" {
			fmt.Fprintf(w, "Did you mean %q?\n", response.DidYouMean)
		}
		for _, s := range response.Suggestions {
			fmt.Fprintf(w, "  %s  (/docs/%s)\n", s.Title, s.Slug)
		}
	}
}

func writeOneResult(w io.Writer, m *models.Match, query string) {
	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "[%s] %s  (%s)\n", m.Reason, m.Document.Title, m.Category)
	fmt.Fprintf(w, "%s\n", m.Document.URL())
	if m.Document.Description != "" {
		fmt.Fprintf(w, "%s\n", utils.Truncate(m.Document.Description, descriptionMax))
	}
	if len(m.Document.Tags) > 0 {
		fmt.Fprintf(w, "tags: %s\n", strings.Join(m.Document.Tags, ", "))
	}
	if m.Excerpt != "" {
		fmt.Fprintf(w, "\n%s\n", search.Highlight(m.Excerpt, query, "**", "**"))
	}
	fmt.Fprintln(w)
}

// WriteDocuments lists documents grouped under their category.
func WriteDocuments(w io.Writer, docs []*models.Document, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		if docs == nil {
			docs = []*models.Document{}
		}
		return writeJSON(w, docs)
	case OutputCompact:
		for _, d := range docs {
			fmt.Fprintf(w, "%s\t%s\t%s\n", d.Category, d.Path(), d.Title)
		}
		return nil
	default:
		category := ""
		for i, d := range docs {
			if i == 0 || d.Category != category {
				category = d.Category
				if i > 0 {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "%s\n", category)
			}
			fmt.Fprintf(w, "  %-32s %s\n", d.Path(), d.Title)
		}
		return nil
	}
}

// WriteTags writes tag counts, most used first.
func WriteTags(w io.Writer, tags []models.TagCount, format SearchOutputFormat) error {
	switch format {
	case OutputJSON:
		if tags == nil {
			tags = []models.TagCount{}
		}
		return writeJSON(w, tags)
	case OutputCompact:
		for _, t := range tags {
			fmt.Fprintf(w, "%s\t%d\n", t.Tag, t.Count)
		}
		return nil
	default:
		for _, t := range tags {
			fmt.Fprintf(w, "%4d  %s\n", t.Count, t.Tag)
		}
		return nil
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
