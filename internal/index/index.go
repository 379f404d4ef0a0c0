// Package index groups loaded documents by category.
package index

import (
	"sort"

	"github.com/dedkola/tk-docs-template/internal/models"
)

// Index maps categories to their documents. It is immutable once built and
// safe for concurrent readers.
type Index struct {
	categories []string
	groups     map[string][]*models.Document
	all        []*models.Document
	bySlug     map[string]*models.Document
}

// Build groups docs by category. Categories appear in order of first
// appearance and documents keep their input order within a category.
// The documents themselves are shared, not copied, and are never modified.
func Build(docs []*models.Document) *Index {
	idx := &Index{
		groups: make(map[string][]*models.Document),
		all:    make([]*models.Document, 0, len(docs)),
		bySlug: make(map[string]*models.Document, len(docs)),
	}
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		category := doc.Category
		if category == "" {
			category = models.CategoryFor(doc.Slug)
		}
		if _, ok := idx.groups[category]; !ok {
			idx.categories = append(idx.categories, category)
		}
		idx.groups[category] = append(idx.groups[category], doc)
		idx.all = append(idx.all, doc)
		if _, ok := idx.bySlug[doc.Path()]; !ok {
			idx.bySlug[doc.Path()] = doc
		}
	}
	return idx
}

// Categories returns category names in iteration order.
func (x *Index) Categories() []string {
	return append([]string(nil), x.categories...)
}

// Documents returns the documents of one category in discovery order.
func (x *Index) Documents(category string) []*models.Document {
	return append([]*models.Document(nil), x.groups[category]...)
}

// All returns every document in loader order.
func (x *Index) All() []*models.Document {
	return append([]*models.Document(nil), x.all...)
}

// Each calls fn for every document in category iteration order, then
// within-category order. It stops early when fn returns false.
func (x *Index) Each(fn func(category string, doc *models.Document) bool) {
	for _, category := range x.categories {
		for _, doc := range x.groups[category] {
			if !fn(category, doc) {
				return
			}
		}
	}
}

// Lookup finds a document by its slash-joined slug.
func (x *Index) Lookup(slug string) (*models.Document, bool) {
	doc, ok := x.bySlug[slug]
	return doc, ok
}

// Len returns the number of documents.
func (x *Index) Len() int {
	return len(x.all)
}

// TopTags returns the n most used tags, most frequent first. Ties keep the
// order in which tags were first seen. n <= 0 returns every tag.
func (x *Index) TopTags(n int) []models.TagCount {
	counts := make(map[string]int)
	var order []string
	x.Each(func(_ string, doc *models.Document) bool {
		for _, tag := range doc.Tags {
			if _, ok := counts[tag]; !ok {
				order = append(order, tag)
			}
			counts[tag]++
		}
		return true
	})

	out := make([]models.TagCount, len(order))
	for i, tag := range order {
		out[i] = models.TagCount{Tag: tag, Count: counts[tag]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
