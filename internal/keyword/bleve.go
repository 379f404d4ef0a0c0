package keyword

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/dedkola/tk-docs-template/internal/models"
)

// indexedFields are the document fields written to the fuzzy index.
var indexedFields = []string{"title", "description", "tags", "content"}

// BleveIndex is an in-memory Bleve index over one set of documents. It is
// built once and only read afterwards.
type BleveIndex struct {
	index  bleve.Index
	titles map[string]string
	terms  map[string]int
	spell  *SpellChecker
}

// NewBleveIndex indexes docs into a memory-only Bleve index.
func NewBleveIndex(docs []*models.Document, opts ...SpellCheckerOption) (*BleveIndex, error) {
	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) keeps dictionary
	// terms as readers typed them, which spelling suggestions depend on.
	textFieldMapping.Analyzer = standard.Name
	for _, f := range indexedFields {
		docMapping.AddFieldMappingsAt(f, textFieldMapping)
	}
	im.AddDocumentMapping("document", docMapping)
	im.DefaultType = "document"
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}

	b := &BleveIndex{index: index, titles: make(map[string]string, len(docs))}
	batch := index.NewBatch()
	for _, doc := range docs {
		slug := doc.Path()
		if _, dup := b.titles[slug]; dup {
			continue
		}
		b.titles[slug] = doc.Title
		if err := batch.Index(slug, map[string]interface{}{
			"title":       doc.Title,
			"description": doc.Description,
			"tags":        strings.Join(doc.Tags, " "),
			"content":     doc.Body,
		}); err != nil {
			_ = index.Close()
			return nil, fmt.Errorf("failed to index %s: %w", slug, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		_ = index.Close()
		return nil, fmt.Errorf("failed to write Bleve batch: %w", err)
	}

	if b.terms, err = b.loadTerms(); err != nil {
		_ = index.Close()
		return nil, err
	}
	b.spell = NewSpellChecker(b, opts...)
	return b, nil
}

// Search runs a fuzzy query over all indexed fields.
func (b *BleveIndex) Search(query string, limit, fuzziness int) ([]Hit, error) {
	if limit <= 0 {
		return nil, nil
	}
	if fuzziness <= 0 {
		fuzziness = 1
	}
	req := bleve.NewSearchRequest(buildFuzzyQuery(query, fuzziness))
	req.Size = limit
	results, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]Hit, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = Hit{Slug: hit.ID, Score: hit.Score}
	}
	return out, nil
}

// Suggest returns up to limit documents that fuzzily match query.
func (b *BleveIndex) Suggest(query string, limit int) ([]models.Suggestion, error) {
	hits, err := b.Search(query, limit, b.spell.maxDistance)
	if err != nil {
		return nil, err
	}
	out := make([]models.Suggestion, 0, len(hits))
	for _, h := range hits {
		out = append(out, models.Suggestion{Slug: h.Slug, Title: b.titles[h.Slug], Score: h.Score})
	}
	return out, nil
}

// DidYouMean returns query with misspelled terms replaced by their closest
// indexed term, or query itself when nothing better is known.
func (b *BleveIndex) DidYouMean(query string) string {
	return b.spell.GetSuggestedQuery(query)
}

// DocCount returns the number of indexed documents.
func (b *BleveIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close releases the index.
func (b *BleveIndex) Close() error {
	return b.index.Close()
}

// GetAllTerms returns every distinct term across the indexed fields.
func (b *BleveIndex) GetAllTerms() ([]string, error) {
	out := make([]string, 0, len(b.terms))
	for t := range b.terms {
		out = append(out, t)
	}
	return out, nil
}

// GetTermFrequency returns the highest per-field document frequency of term.
func (b *BleveIndex) GetTermFrequency(term string) (int, error) {
	return b.terms[strings.ToLower(term)], nil
}

func (b *BleveIndex) loadTerms() (map[string]int, error) {
	terms := make(map[string]int)
	for _, field := range indexedFields {
		dict, err := b.index.FieldDict(field)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s terms: %w", field, err)
		}
		for {
			entry, err := dict.Next()
			if err != nil || entry == nil {
				break
			}
			if c := int(entry.Count); c > terms[entry.Term] {
				terms[entry.Term] = c
			}
		}
		_ = dict.Close()
	}
	return terms, nil
}

func tokenizeQuery(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// buildFuzzyQuery matches any query term within fuzziness edits.
func buildFuzzyQuery(queryStr string, fuzziness int) blevequery.Query {
	terms := tokenizeQuery(queryStr)
	if len(terms) == 0 {
		return bleve.NewMatchNoneQuery()
	}
	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(term)
		fq.SetFuzziness(fuzziness)
		queries = append(queries, fq)
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewDisjunctionQuery(queries...)
}
