package e2e

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildCorpus_QueryTestCasesExist(t *testing.T) {
	c := BuildCorpus()
	if len(c.TestCases) == 0 {
		t.Fatal("expected at least one query test case")
	}
	for i, tc := range c.TestCases {
		if tc.Search == "" && tc.Tag == "" {
			t.Errorf("test case %d: no search and no tag", i)
		}
		if len(tc.ExpectedSlugs) == 0 {
			t.Errorf("test case %d: no expected slugs", i)
		}
	}
}

func TestBuildCorpus_UniqueSlugs(t *testing.T) {
	seen := make(map[string]bool)
	for _, d := range BuildCorpus().Documents {
		if seen[d.Slug()] {
			t.Errorf("duplicate slug %q", d.Slug())
		}
		seen[d.Slug()] = true
	}
}

func TestCorpus_Write(t *testing.T) {
	root := t.TempDir()
	c := BuildCorpus()
	if err := c.Write(root); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(root, "docker", "compose.md"))
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "---\ntitle: \"Docker Compose\"\n") {
		t.Errorf("unexpected front matter:\n%s", text)
	}
	if !strings.Contains(text, "tags: [docker, containers]") {
		t.Errorf("tags missing:\n%s", text)
	}
	if _, err := os.Stat(filepath.Join(root, "faq.md")); err != nil {
		t.Errorf("root page not written: %v", err)
	}
}
