// Package models defines core data structures for documents, queries, and search results.
package models

import (
	"strings"
	"time"
)

// RootCategory is the category of documents that live directly under the content root.
const RootCategory = "Root"

// Document is a content file with its parsed front matter.
type Document struct {
	Slug        []string   `json:"slug"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	Keywords    []string   `json:"keywords,omitempty"`
	Category    string     `json:"category"`
	Body        string     `json:"body,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
	SourcePath  string     `json:"-"`
}

// Path joins the slug segments with "/". It is the document's unique key.
func (d *Document) Path() string {
	return strings.Join(d.Slug, "/")
}

// URL is the site path the document is served under.
func (d *Document) URL() string {
	return "/docs/" + d.Path()
}

// Summary returns a shallow copy without the body, for listings.
func (d *Document) Summary() *Document {
	c := *d
	c.Body = ""
	return &c
}

// CategoryFor derives the category of a slug: its first segment when the slug
// is nested, RootCategory otherwise.
func CategoryFor(slug []string) string {
	if len(slug) > 1 {
		return slug[0]
	}
	return RootCategory
}

// TagCount is a tag and the number of documents carrying it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}
