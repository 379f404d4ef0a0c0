package server

import (
	"unicode"
	"unicode/utf8"

	"github.com/dedkola/tk-docs-template/internal/content"
	"github.com/dedkola/tk-docs-template/internal/models"
)

// Breadcrumb is one step of a document's trail. The last step has no link.
type Breadcrumb struct {
	Label string `json:"label"`
	Href  string `json:"href,omitempty"`
}

type documentPage struct {
	Document    *models.Document  `json:"document"`
	URL         string            `json:"url"`
	Headings    []content.Heading `json:"headings"`
	Breadcrumbs []Breadcrumb      `json:"breadcrumbs"`
}

func newDocumentPage(doc *models.Document) documentPage {
	headings := content.Headings(doc.Body)
	if headings == nil {
		headings = []content.Heading{}
	}
	return documentPage{
		Document:    doc,
		URL:         doc.URL(),
		Headings:    headings,
		Breadcrumbs: breadcrumbs(doc),
	}
}

// breadcrumbs returns Home, Docs, the category unless it is the root one, and the title.
func breadcrumbs(doc *models.Document) []Breadcrumb {
	crumbs := []Breadcrumb{
		{Label: "Home", Href: "/"},
		{Label: "Docs", Href: "/docs"},
	}
	if doc.Category != "" && doc.Category != models.RootCategory {
		crumbs = append(crumbs, Breadcrumb{Label: categoryLabel(doc.Category)})
	}
	return append(crumbs, Breadcrumb{Label: doc.Title})
}

// categoryLabel upper-cases the first letter of a category name.
func categoryLabel(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}
