// Package e2e provides end-to-end tests over a generated content tree.
package e2e

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CorpusDocument is one markdown file of the corpus.
type CorpusDocument struct {
	Category    string
	Name        string
	Title       string
	Description string
	Tags        []string
	Body        string
}

// Slug is the document's slash-joined slug.
func (d CorpusDocument) Slug() string {
	if d.Category == "" {
		return d.Name
	}
	return d.Category + "/" + d.Name
}

// Markdown renders the file with its front matter.
func (d CorpusDocument) Markdown() string {
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %q\n", d.Title)
	if d.Description != "" {
		fmt.Fprintf(&b, "description: %q\n", d.Description)
	}
	if len(d.Tags) > 0 {
		fmt.Fprintf(&b, "tags: [%s]\n", strings.Join(d.Tags, ", "))
	}
	b.WriteString("updatedAt: 2024-03-01\n")
	b.WriteString("---\n\n")
	b.WriteString(d.Body)
	b.WriteString("\n")
	return b.String()
}

// QueryTestCase is a query and the slugs that must be among its results.
type QueryTestCase struct {
	Search        string
	Tag           string
	ExpectedSlugs []string
	Description   string
}

// Corpus holds documents and query test cases for E2E tests.
type Corpus struct {
	Documents []CorpusDocument
	TestCases []QueryTestCase
}

// BuildCorpus returns a corpus spread over several categories plus a few
// root-level pages. Each body carries a phrase found nowhere else.
func BuildCorpus() *Corpus {
	topics := []struct {
		category, name, title, phrase string
		tags                          []string
	}{
		{"docker", "compose", "Docker Compose", "multi-container applications with one YAML file", []string{"docker", "containers"}},
		{"docker", "volumes", "Docker Volumes", "persist data outside the container layer", []string{"docker", "storage"}},
		{"docker", "networking", "Docker Networking", "bridge networks connect containers on one host", []string{"docker", "networking"}},
		{"kubernetes", "pods", "Pods", "the smallest deployable unit in a cluster", []string{"kubernetes", "containers"}},
		{"kubernetes", "services", "Services", "stable virtual IPs in front of pods", []string{"kubernetes", "networking"}},
		{"kubernetes", "ingress", "Ingress", "route external HTTP traffic into the cluster", []string{"kubernetes", "networking"}},
		{"kubernetes", "helm", "Helm Charts", "package manager templates for cluster releases", []string{"kubernetes", "packaging"}},
		{"nginx", "reverse-proxy", "Reverse Proxy", "forward requests to upstream application servers", []string{"nginx", "networking"}},
		{"nginx", "tls", "TLS Certificates", "terminate HTTPS with certificates from Let's Encrypt", []string{"nginx", "security"}},
		{"linux", "systemd", "systemd Units", "supervise long running daemons after boot", []string{"linux", "services"}},
		{"linux", "ssh", "SSH Keys", "passwordless login with ed25519 key pairs", []string{"linux", "security"}},
		{"linux", "cron", "Cron Jobs", "schedule recurring maintenance tasks", []string{"linux"}},
		{"monitoring", "prometheus", "Prometheus", "scrape time-series metrics from exporters", []string{"monitoring", "metrics"}},
		{"monitoring", "grafana", "Grafana Dashboards", "visualize panels built on metric queries", []string{"monitoring", "dashboards"}},
		{"monitoring", "alerting", "Alerting Rules", "page the on-call engineer when thresholds break", []string{"monitoring"}},
		{"git", "branching", "Branching", "trunk-based development with short-lived branches", []string{"git", "workflow"}},
		{"git", "rebase", "Interactive Rebase", "rewrite local history before opening a pull request", []string{"git"}},
		{"databases", "postgres-backup", "Postgres Backups", "point-in-time recovery from write-ahead log archives", []string{"postgres", "storage"}},
		{"databases", "redis", "Redis Cache", "in-memory key-value store for sessions", []string{"redis", "storage"}},
		{"", "getting-started", "Getting Started", "install the toolchain and clone the template", []string{"intro"}},
		{"", "faq", "FAQ", "answers to frequently asked questions about hosting", []string{"intro"}},
	}

	c := &Corpus{}
	for _, t := range topics {
		c.Documents = append(c.Documents, CorpusDocument{
			Category:    t.category,
			Name:        t.name,
			Title:       t.title,
			Description: fmt.Sprintf("Notes about %s.", strings.ToLower(t.title)),
			Tags:        t.tags,
			Body:        fmt.Sprintf("## Overview\n\nThis page explains how to %s.\n\n## Details\n\nSee the reference for more.", t.phrase),
		})
		c.TestCases = append(c.TestCases, QueryTestCase{
			Search:        t.phrase,
			ExpectedSlugs: []string{slugOf(t.category, t.name)},
			Description:   fmt.Sprintf("body phrase finds %s", t.name),
		})
	}
	c.TestCases = append(c.TestCases,
		QueryTestCase{Tag: "security", ExpectedSlugs: []string{"linux/ssh", "nginx/tls"}, Description: "tag lists every carrier"},
		QueryTestCase{Search: "kubernetes", ExpectedSlugs: []string{"kubernetes/pods", "kubernetes/helm"}, Description: "category name matches"},
		QueryTestCase{Search: "HELM", ExpectedSlugs: []string{"kubernetes/helm"}, Description: "case-insensitive title"},
	)
	return c
}

// Write creates the corpus files under root.
func (c *Corpus) Write(root string) error {
	for _, d := range c.Documents {
		path := filepath.Join(root, filepath.FromSlash(d.Slug())+".md")
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(d.Markdown()), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}

// Categories returns the distinct categories in corpus order, using "Root"
// for top-level pages.
func (c *Corpus) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range c.Documents {
		cat := d.Category
		if cat == "" {
			cat = "Root"
		}
		if !seen[cat] {
			seen[cat] = true
			out = append(out, cat)
		}
	}
	return out
}

func slugOf(category, name string) string {
	if category == "" {
		return name
	}
	return category + "/" + name
}
