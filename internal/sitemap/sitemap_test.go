package sitemap

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dedkola/tk-docs-template/internal/models"
)

func TestWriteAndParse(t *testing.T) {
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	docs := []*models.Document{
		{Slug: []string{"intro"}, UpdatedAt: older},
		{Slug: []string{"docker", "compose file"}, UpdatedAt: newer},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "https://docs.example.com/", docs, time.Now()))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, out, `xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"`)
	assert.Contains(t, out, "<lastmod>2024-06-01T12:00:00Z</lastmod>")

	locs, err := Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://docs.example.com",
		"https://docs.example.com/docs",
		"https://docs.example.com/docs/intro",
		"https://docs.example.com/docs/docker/compose%20file",
	}, locs)
}

func TestEntries(t *testing.T) {
	now := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	entries := Entries("http://x", nil, now)
	require.Len(t, entries, 2)
	assert.Equal(t, now, entries[0].LastMod)
	assert.Equal(t, 1.0, entries[0].Priority)
	assert.Equal(t, "monthly", entries[1].ChangeFreq)

	entries = Entries("http://x", []*models.Document{{Slug: []string{"a"}}}, now)
	require.Len(t, entries, 3)
	assert.Equal(t, now, entries[2].LastMod, "zero time falls back to now")
	assert.Equal(t, "weekly", entries[2].ChangeFreq)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(strings.NewReader("<urlset"))
	assert.Error(t, err)
	_, err = Parse(strings.NewReader(""))
	assert.Error(t, err)
}
