// Package keyword provides fuzzy lookups used to suggest documents and
// spelling corrections when a substring search finds nothing.
package keyword

// TermDictionary provides access to indexed terms for spell checking.
// This interface allows dependency injection for testing.
type TermDictionary interface {
	// GetAllTerms returns all unique terms in the index.
	GetAllTerms() ([]string, error)
	// GetTermFrequency returns the document frequency for a term.
	GetTermFrequency(term string) (int, error)
}

// Hit is a single fuzzy search hit, keyed by document slug.
type Hit struct {
	Slug  string
	Score float64
}
