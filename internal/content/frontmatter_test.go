package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dedkola/tk-docs-template/internal/models"
)

func TestSplitFrontMatter(t *testing.T) {
	tests := []struct {
		name      string
		src       string
		wantMeta  string
		wantBody  string
		wantFound bool
		wantErr   bool
	}{
		{"no block", "just text", "", "just text", false, false},
		{"empty block", "---\n---\nbody", "", "\nbody", true, false},
		{"block", "---\ntitle: A\n---\nbody", "title: A\n", "\nbody", true, false},
		{"crlf", "---\r\ntitle: A\r\n---\r\nbody", "title: A\n", "\nbody", true, false},
		{"bom", "\ufeff---\ntitle: A\n---\nbody", "title: A\n", "\nbody", true, false},
		{"dashes inside value", "---\ntitle: a---b\n---\nbody", "title: a---b\n", "\nbody", true, false},
		{"unterminated", "---\ntitle: A", "", "---\ntitle: A", true, true},
		{"delimiter not first line", "text\n---\ntitle: A\n---", "", "text\n---\ntitle: A\n---", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, body, found, err := splitFrontMatter(tt.src)
			assert.Equal(t, tt.wantMeta, meta)
			assert.Equal(t, tt.wantBody, body)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestStringSet(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want []string
	}{
		{"nil", nil, nil},
		{"list", []any{"a", " b ", "a"}, []string{"a", "b"}},
		{"comma string", "a, b ,a,,c", []string{"a", "b", "c"}},
		{"case sensitive", []any{"Docker", "docker"}, []string{"Docker", "docker"}},
		{"number", 42, []string{"42"}},
		{"blank", " , ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stringSet(tt.in))
		})
	}
}

func TestTrimQuotes(t *testing.T) {
	assert.Equal(t, "Title", trimQuotes(`"Title"`))
	assert.Equal(t, "Title", trimQuotes(`'Title'`))
	assert.Equal(t, "It's", trimQuotes(`It's`))
	assert.Equal(t, "", trimQuotes(`""`))
}

func TestFrontMatter_Apply(t *testing.T) {
	fm, err := parseFrontMatter("title: '\"Quoted\"'\ntags: a, b\npublishedAt: Jan 2, 2024\n")
	require.NoError(t, err)

	doc := &models.Document{Title: "fallback"}
	require.NoError(t, fm.apply(doc))
	assert.Equal(t, "Quoted", doc.Title)
	assert.Equal(t, []string{"a", "b"}, doc.Tags)
	require.NotNil(t, doc.PublishedAt)
	assert.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), *doc.PublishedAt)
}

func TestFrontMatter_ApplyKeepsDefaultsOnError(t *testing.T) {
	fm, err := parseFrontMatter("title: [a, b]\nupdatedAt: not-a-date\n")
	require.NoError(t, err)

	updated := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	doc := &models.Document{Title: "fallback", UpdatedAt: updated}
	err = fm.apply(doc)
	require.Error(t, err)
	assert.Equal(t, "fallback", doc.Title)
	assert.Equal(t, updated, doc.UpdatedAt)
}

func TestFrontMatter_BlankTitleKeepsFilename(t *testing.T) {
	fm, err := parseFrontMatter("title: \"\"\n")
	require.NoError(t, err)
	doc := &models.Document{Title: "file-name"}
	require.NoError(t, fm.apply(doc))
	assert.Equal(t, "file-name", doc.Title)
}
