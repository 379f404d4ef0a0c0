// Package search answers text and tag queries against a document index.
package search

import (
	"time"

	"go.uber.org/zap"

	"github.com/dedkola/tk-docs-template/internal/index"
	"github.com/dedkola/tk-docs-template/internal/metrics"
	"github.com/dedkola/tk-docs-template/internal/models"
)

// Suggester proposes alternatives when a text search finds nothing.
type Suggester interface {
	Suggest(query string, limit int) ([]models.Suggestion, error)
	DidYouMean(query string) string
}

// Request is a query plus presentation limits.
type Request struct {
	Query models.QueryState
	// Limit truncates the results; 0 means unbounded.
	Limit int
	// SuggestionLimit caps fuzzy suggestions on empty text results; 0 disables them.
	SuggestionLimit int
}

// Engine runs substring and tag search.
type Engine struct {
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithMetrics records every search.
func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine creates a search engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search returns the matches for q, or nil when q has no active filter.
// A filter that matches nothing returns an empty, non-nil slice.
//
// With a tag selected, documents whose tags equal it case-insensitively match
// with reason "tag" and text is ignored. Otherwise each document is tested
// against the trimmed text in a fixed order: title, category, description,
// tags, body. The first hit decides the reason and only body hits carry an
// excerpt. Results follow category order, then document order.
func (e *Engine) Search(idx *index.Index, q models.QueryState) []*models.Match {
	var matches []*models.Match
	switch q.Mode() {
	case models.ModeTag:
		matches = searchTag(idx, q.ActiveTag)
	case models.ModeText:
		matches = searchText(idx, q.Text())
	default:
		return nil
	}
	e.metrics.RecordSearch(string(q.Mode()), len(matches))
	return matches
}

// Execute runs Search and wraps the outcome in a response, applying the limit
// and asking sugg for alternatives when a text search found nothing.
// sugg may be nil.
func (e *Engine) Execute(idx *index.Index, req Request, sugg Suggester) *models.SearchResponse {
	start := time.Now()
	matches := e.Search(idx, req.Query)

	resp := &models.SearchResponse{
		Query:   req.Query.Text(),
		Tag:     req.Query.ActiveTag,
		Mode:    req.Query.Mode(),
		Results: matches,
		Total:   len(matches),
	}
	if req.Limit > 0 && len(matches) > req.Limit {
		resp.Results = matches[:req.Limit]
		resp.Truncated = true
	}

	if resp.Mode == models.ModeText && len(matches) == 0 && sugg != nil && req.SuggestionLimit > 0 {
		suggestions, err := sugg.Suggest(resp.Query, req.SuggestionLimit)
		if err != nil {
			e.logger.Warn("suggestions failed", zap.String("query", resp.Query), zap.Error(err))
		}
		resp.Suggestions = suggestions
		if dym := sugg.DidYouMean(resp.Query); dym != "" && dym != resp.Query {
			resp.DidYouMean = dym
		}
	}
	resp.QueryTimeMS = time.Since(start).Milliseconds()
	return resp
}

func searchTag(idx *index.Index, tag string) []*models.Match {
	matches := make([]*models.Match, 0)
	idx.Each(func(category string, doc *models.Document) bool {
		for _, t := range doc.Tags {
			if equalFold(t, tag) {
				matches = append(matches, &models.Match{
					Category: category,
					Document: doc,
					Reason:   models.ReasonTag,
				})
				break
			}
		}
		return true
	})
	return matches
}

func searchText(idx *index.Index, query string) []*models.Match {
	needle := fold(query)
	matches := make([]*models.Match, 0)
	idx.Each(func(category string, doc *models.Document) bool {
		if m := matchDocument(category, doc, query, needle); m != nil {
			matches = append(matches, m)
		}
		return true
	})
	return matches
}

// matchDocument applies the priority order to one document.
func matchDocument(category string, doc *models.Document, query, needle string) *models.Match {
	m := &models.Match{Category: category, Document: doc}
	switch {
	case containsFolded(doc.Title, needle):
		m.Reason = models.ReasonTitle
	case containsFolded(category, needle):
		m.Reason = models.ReasonFolder
	case containsFolded(doc.Description, needle):
		m.Reason = models.ReasonDescription
	case anyContainsFolded(doc.Tags, needle):
		m.Reason = models.ReasonTag
	case containsFolded(doc.Body, needle):
		m.Reason = models.ReasonContent
		m.Excerpt = Excerpt(doc.Body, query)
	default:
		return nil
	}
	return m
}

func anyContainsFolded(values []string, needle string) bool {
	for _, v := range values {
		if containsFolded(v, needle) {
			return true
		}
	}
	return false
}
