// Package sitemap renders the sitemaps.org XML for the site.
package sitemap

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/dedkola/tk-docs-template/internal/models"
)

const namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Entry is one <url> element.
type Entry struct {
	Loc        string
	LastMod    time.Time
	ChangeFreq string
	Priority   float64
}

// Entries lists the site root, the docs landing page and every document.
// Landing pages use the newest document time, or now when there are none.
func Entries(baseURL string, docs []*models.Document, now time.Time) []Entry {
	base := strings.TrimRight(baseURL, "/")
	latest := time.Time{}
	for _, d := range docs {
		if d.UpdatedAt.After(latest) {
			latest = d.UpdatedAt
		}
	}
	if latest.IsZero() {
		latest = now
	}

	entries := make([]Entry, 0, len(docs)+2)
	entries = append(entries,
		Entry{Loc: base, LastMod: latest, ChangeFreq: "yearly", Priority: 1},
		Entry{Loc: base + "/docs", LastMod: latest, ChangeFreq: "monthly", Priority: 0.8},
	)
	for _, d := range docs {
		lastMod := d.UpdatedAt
		if lastMod.IsZero() {
			lastMod = now
		}
		entries = append(entries, Entry{
			Loc:        base + "/docs/" + escapeSlug(d.Slug),
			LastMod:    lastMod,
			ChangeFreq: "weekly",
			Priority:   0.5,
		})
	}
	return entries
}

// Build renders entries as a <urlset> document.
func Build(entries []Entry) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	urlset := doc.CreateElement("urlset")
	urlset.CreateAttr("xmlns", namespace)
	for _, e := range entries {
		u := urlset.CreateElement("url")
		u.CreateElement("loc").SetText(e.Loc)
		u.CreateElement("lastmod").SetText(e.LastMod.UTC().Format(time.RFC3339))
		if e.ChangeFreq != "" {
			u.CreateElement("changefreq").SetText(e.ChangeFreq)
		}
		u.CreateElement("priority").SetText(fmt.Sprintf("%.1f", e.Priority))
	}
	doc.Indent(2)
	return doc
}

// Write renders the sitemap for docs to w.
func Write(w io.Writer, baseURL string, docs []*models.Document, now time.Time) error {
	if _, err := Build(Entries(baseURL, docs, now)).WriteTo(w); err != nil {
		return fmt.Errorf("write sitemap: %w", err)
	}
	return nil
}

// Parse reads the <loc> values back from a urlset document.
func Parse(r io.Reader) ([]string, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("parsing sitemap XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty sitemap XML")
	}
	var locs []string
	for _, u := range root.SelectElements("url") {
		if loc := u.SelectElement("loc"); loc != nil {
			locs = append(locs, strings.TrimSpace(loc.Text()))
		}
	}
	return locs, nil
}

func escapeSlug(slug []string) string {
	parts := make([]string, len(slug))
	for i, s := range slug {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}
