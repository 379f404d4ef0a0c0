package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeadings(t *testing.T) {
	body := "# Title\n\n## Install Docker\ntext\n### Step 1: Pull ##\n```sh\n## not a heading\n```\n## Install Docker\n#### too deep\n"
	got := Headings(body)
	want := []Heading{
		{ID: "install-docker", Text: "Install Docker", Level: 2},
		{ID: "step-1-pull", Text: "Step 1: Pull", Level: 3},
		{ID: "install-docker-1", Text: "Install Docker", Level: 2},
	}
	assert.Equal(t, want, got)
}

func TestHeadingID(t *testing.T) {
	tests := map[string]string{
		"Hello World":       "hello-world",
		"  What's new? ":    "what-s-new",
		"K8s & Docker (v2)": "k8s-docker-v2",
	}
	for in, want := range tests {
		assert.Equal(t, want, HeadingID(in), in)
	}
}
