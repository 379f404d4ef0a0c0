package content

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dedkola/tk-docs-template/internal/models"
)

func writeFile(t *testing.T, root, rel, body string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func slugs(docs []*models.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Path()
	}
	return out
}

func TestLoader_Load(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "intro.mdx", `---
title: "Getting Started"
description: 'Start here'
tags: [docker, " k8s ", docker]
keywords: setup, install , setup
publishedAt: 2024-03-01
updatedAt: "2024-04-02T10:00:00Z"
---

# Welcome

Body text.
`)
	writeFile(t, root, "docker/compose.md", "Compose without front matter.\n")
	writeFile(t, root, "docker/basics.mdx", "---\ntitle: Basics\n---\nDocker basics\n")
	writeFile(t, root, "notes.txt", "ignored")

	res, err := NewLoader().Load(root)
	require.NoError(t, err)
	assert.Empty(t, res.Problems)
	assert.Equal(t, []string{"docker/basics", "docker/compose", "intro"}, slugs(res.Documents))

	intro := res.Documents[2]
	assert.Equal(t, "Getting Started", intro.Title)
	assert.Equal(t, "Start here", intro.Description)
	assert.Equal(t, []string{"docker", "k8s"}, intro.Tags)
	assert.Equal(t, []string{"setup", "install"}, intro.Keywords)
	assert.Equal(t, models.RootCategory, intro.Category)
	assert.Equal(t, "# Welcome\n\nBody text.", intro.Body)
	require.NotNil(t, intro.PublishedAt)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *intro.PublishedAt)
	assert.Equal(t, time.Date(2024, 4, 2, 10, 0, 0, 0, time.UTC), intro.UpdatedAt)

	compose := res.Documents[1]
	assert.Equal(t, "compose", compose.Title)
	assert.Equal(t, "docker", compose.Category)
	assert.Equal(t, "Compose without front matter.", compose.Body)
	assert.Nil(t, compose.PublishedAt)
	assert.Nil(t, compose.Tags)
}

func TestLoader_UpdatedAtFallsBackToModTime(t *testing.T) {
	root := t.TempDir()
	p := writeFile(t, root, "page.md", "---\ntitle: Page\n---\nbody")
	mtime := time.Date(2023, 7, 8, 9, 10, 11, 0, time.UTC)
	require.NoError(t, os.Chtimes(p, mtime, mtime))

	res, err := NewLoader().Load(root)
	require.NoError(t, err)
	require.Len(t, res.Documents, 1)
	assert.True(t, res.Documents[0].UpdatedAt.Equal(mtime))
}

func TestLoader_DeterministicOrder(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"b/z.md", "a/y.md", "b/a.md", "c.md", "a/b/x.md"} {
		writeFile(t, root, rel, "text")
	}
	first, err := NewLoader().Load(root)
	require.NoError(t, err)
	second, err := NewLoader().Load(root)
	require.NoError(t, err)

	want := []string{"a/b/x", "a/y", "b/a", "b/z", "c"}
	assert.Equal(t, want, slugs(first.Documents))
	assert.Equal(t, want, slugs(second.Documents))
}

func TestLoader_DuplicateSlugsRejected(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "guide/setup.md", "---\ntitle: From md\n---\n")
	writeFile(t, root, "guide/setup.mdx", "---\ntitle: From mdx\n---\n")

	res, err := NewLoader().Load(root)
	require.NoError(t, err)
	require.Len(t, res.Documents, 1)
	assert.Equal(t, "From md", res.Documents[0].Title)
	require.Len(t, res.Problems, 1)
	assert.Equal(t, "guide/setup.mdx", res.Problems[0].Path)
	assert.Contains(t, res.Problems[0].Reason, "duplicate slug")

	seen := map[string]bool{}
	for _, d := range res.Documents {
		assert.False(t, seen[d.Path()], "slug %s loaded twice", d.Path())
		seen[d.Path()] = true
	}
}

func TestLoader_EmptySlugSkipped(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".md", "nameless")
	writeFile(t, root, "ok.md", "fine")

	res, err := NewLoader().Load(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, slugs(res.Documents))
	require.Len(t, res.Problems, 1)
	assert.Equal(t, "empty slug", res.Problems[0].Reason)
}

func TestLoader_MalformedFrontMatterFallsBack(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantBody string
	}{
		{
			name:     "invalid yaml",
			body:     "---\ntitle: [unclosed\n---\nStill here",
			wantBody: "---\ntitle: [unclosed\n---\nStill here",
		},
		{
			name:     "leading thematic break",
			body:     "---\nIntro prose: with a colon, and: more\n\nSecond paragraph.\n---\nafter",
			wantBody: "---\nIntro prose: with a colon, and: more\n\nSecond paragraph.\n---\nafter",
		},
		{
			name:     "unterminated block",
			body:     "---\ntitle: Lost\nno closing line",
			wantBody: "---\ntitle: Lost\nno closing line",
		},
		{
			name:     "bad date",
			body:     "---\nupdatedAt: someday\n---\ntext",
			wantBody: "text",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeFile(t, root, "broken.md", tt.body)

			res, err := NewLoader().Load(root)
			require.NoError(t, err)
			require.Len(t, res.Documents, 1)
			doc := res.Documents[0]
			assert.Equal(t, "broken", doc.Title)
			assert.Equal(t, tt.wantBody, doc.Body)
			assert.False(t, doc.UpdatedAt.IsZero())
			require.Len(t, res.Problems, 1)
			assert.Equal(t, "broken.md", res.Problems[0].Path)
		})
	}
}

func TestLoader_Exclude(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "drafts/wip.md", "draft")
	writeFile(t, root, "guide/_partial.md", "partial")
	writeFile(t, root, "guide/real.md", "real")

	res, err := NewLoader(WithExclude([]string{"drafts", "**/_*"})).Load(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"guide/real"}, slugs(res.Documents))
}

func TestLoader_Extensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.md", "a")
	writeFile(t, root, "b.MDX", "b")
	writeFile(t, root, "c.txt", "c")

	res, err := NewLoader().Load(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, slugs(res.Documents))

	res, err = NewLoader(WithExtensions([]string{".txt"})).Load(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, slugs(res.Documents))
}

func TestLoader_RootErrors(t *testing.T) {
	t.Run("missing root", func(t *testing.T) {
		_, err := NewLoader().Load(filepath.Join(t.TempDir(), "nope"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrRootNotFound))
	})

	t.Run("root is a file", func(t *testing.T) {
		p := writeFile(t, t.TempDir(), "file.md", "x")
		_, err := NewLoader().Load(p)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotDirectory))
	})

	t.Run("unreadable directory", func(t *testing.T) {
		if runtime.GOOS == "windows" || os.Geteuid() == 0 {
			t.Skip("permission bits are not enforced")
		}
		root := t.TempDir()
		writeFile(t, root, "locked/page.md", "x")
		locked := filepath.Join(root, "locked")
		require.NoError(t, os.Chmod(locked, 0o000))
		t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

		_, err := NewLoader().Load(root)
		assert.Error(t, err)
	})
}

func TestLoader_DoesNotReturnEmptyIndexForEmptyRoot(t *testing.T) {
	res, err := NewLoader().Load(t.TempDir())
	require.NoError(t, err)
	assert.NotNil(t, res.Documents)
	assert.Empty(t, res.Documents)
}
