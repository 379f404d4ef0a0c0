package models

// MatchReason is the field that made a text query match a document.
type MatchReason string

const (
	ReasonTitle       MatchReason = "title"
	ReasonFolder      MatchReason = "folder"
	ReasonDescription MatchReason = "description"
	ReasonTag         MatchReason = "tag"
	ReasonContent     MatchReason = "content"
)

// Match is a single search hit.
type Match struct {
	Category string      `json:"category"`
	Document *Document   `json:"document"`
	Reason   MatchReason `json:"match_reason"`
	Excerpt  string      `json:"excerpt,omitempty"`
}

// Suggestion is a fuzzy "did you mean" hit offered when a text search finds nothing.
type Suggestion struct {
	Slug  string  `json:"slug"`
	Title string  `json:"title"`
	Score float64 `json:"score"`
}

// SearchResponse is the search API payload. Results is null when no filter is
// active and an empty array when a filter matched nothing.
type SearchResponse struct {
	Query       string       `json:"search"`
	Tag         string       `json:"tag"`
	Mode        QueryMode    `json:"mode"`
	Results     []*Match     `json:"results"`
	Total       int          `json:"total"`
	Truncated   bool         `json:"truncated,omitempty"`
	DidYouMean  string       `json:"did_you_mean,omitempty"`
	Suggestions []Suggestion `json:"suggestions,omitempty"`
	QueryTimeMS int64        `json:"query_time_ms"`
}
