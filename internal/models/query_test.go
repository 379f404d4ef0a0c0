package models

import (
	"testing"
)

func TestQueryState_Mode(t *testing.T) {
	tests := []struct {
		name  string
		query QueryState
		want  QueryMode
	}{
		{"empty", QueryState{}, ModeNone},
		{"whitespace only", QueryState{TextQuery: "   \t"}, ModeNone},
		{"text", QueryState{TextQuery: "docker"}, ModeText},
		{"tag", QueryState{ActiveTag: "k8s"}, ModeTag},
		{"tag wins over text", QueryState{TextQuery: "docker", ActiveTag: "k8s"}, ModeTag},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.Mode(); got != tt.want {
				t.Errorf("Mode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQueryState_Text(t *testing.T) {
	q := QueryState{TextQuery: "  helm chart \n"}
	if got := q.Text(); got != "helm chart" {
		t.Errorf("Text() = %q, want %q", got, "helm chart")
	}
}

func TestCategoryFor(t *testing.T) {
	tests := []struct {
		slug []string
		want string
	}{
		{[]string{"intro"}, RootCategory},
		{[]string{"docker", "compose"}, "docker"},
		{[]string{"Docker", "a", "b"}, "Docker"},
	}
	for _, tt := range tests {
		if got := CategoryFor(tt.slug); got != tt.want {
			t.Errorf("CategoryFor(%v) = %q, want %q", tt.slug, got, tt.want)
		}
	}
}

func TestDocument_Summary(t *testing.T) {
	d := &Document{Slug: []string{"a", "b"}, Title: "B", Body: "text"}
	s := d.Summary()
	if s.Body != "" {
		t.Errorf("Summary() kept body %q", s.Body)
	}
	if d.Body != "text" {
		t.Error("Summary() mutated the original document")
	}
	if got := d.Path(); got != "a/b" {
		t.Errorf("Path() = %q", got)
	}
	if got := d.URL(); got != "/docs/a/b" {
		t.Errorf("URL() = %q", got)
	}
}
