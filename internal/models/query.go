package models

import "strings"

// QueryMode says which filter a QueryState activates.
type QueryMode string

const (
	ModeNone QueryMode = "none"
	ModeTag  QueryMode = "tag"
	ModeText QueryMode = "text"
)

// QueryState is the live search input: a free-text query and an optional tag.
// An empty ActiveTag means no tag is selected.
type QueryState struct {
	TextQuery string `json:"search"`
	ActiveTag string `json:"tag"`
}

// Text returns the query as used for matching.
func (q QueryState) Text() string {
	return strings.TrimSpace(q.TextQuery)
}

// Mode resolves the active filter. A selected tag takes priority over text.
func (q QueryState) Mode() QueryMode {
	switch {
	case q.ActiveTag != "":
		return ModeTag
	case q.Text() != "":
		return ModeText
	default:
		return ModeNone
	}
}
