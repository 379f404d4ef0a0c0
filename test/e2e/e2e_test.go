package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dedkola/tk-docs-template/internal/config"
	"github.com/dedkola/tk-docs-template/internal/content"
	"github.com/dedkola/tk-docs-template/internal/metrics"
	"github.com/dedkola/tk-docs-template/internal/models"
	"github.com/dedkola/tk-docs-template/internal/search"
	"github.com/dedkola/tk-docs-template/internal/server"
	"github.com/dedkola/tk-docs-template/internal/site"
	"github.com/dedkola/tk-docs-template/internal/sitemap"
	"github.com/dedkola/tk-docs-template/internal/watcher"
)

type stack struct {
	root   string
	corpus *Corpus
	site   *site.Site
	http   *httptest.Server
}

func startStack(t *testing.T) *stack {
	t.Helper()
	root := t.TempDir()
	corpus := BuildCorpus()
	if err := corpus.Write(root); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Content.Root = root
	cfg.Site.URL = "https://docs.example.com"

	m := metrics.NewMetrics()
	st := site.New(root, content.NewLoader(), site.WithMetrics(m))
	srv := server.NewServer(st, search.NewEngine(search.WithMetrics(m)), cfg, zap.NewNop(), m)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Sessions().Close()
	})
	return &stack{root: root, corpus: corpus, site: st, http: ts}
}

func (s *stack) get(t *testing.T, path string, v interface{}) {
	t.Helper()
	resp, err := http.Get(s.http.URL + path)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("GET %s: decode: %v", path, err)
	}
}

func (s *stack) search(t *testing.T, text, tag string) *models.SearchResponse {
	t.Helper()
	q := url.Values{}
	if text != "" {
		q.Set("search", text)
	}
	if tag != "" {
		q.Set("tag", tag)
	}
	var resp models.SearchResponse
	s.get(t, "/api/v1/search?"+q.Encode(), &resp)
	return &resp
}

func slugsOf(resp *models.SearchResponse) map[string]bool {
	out := make(map[string]bool)
	for _, m := range resp.Results {
		out[m.Document.Path()] = true
	}
	return out
}

func TestE2E_SearchReturnsCorrectResults(t *testing.T) {
	s := startStack(t)
	for _, tc := range s.corpus.TestCases {
		t.Run(tc.Description, func(t *testing.T) {
			resp := s.search(t, tc.Search, tc.Tag)
			got := slugsOf(resp)
			for _, want := range tc.ExpectedSlugs {
				if !got[want] {
					t.Errorf("search=%q tag=%q: %s missing from %v", tc.Search, tc.Tag, want, got)
				}
			}
		})
	}
}

func TestE2E_BodyMatchesCarryExcerpt(t *testing.T) {
	s := startStack(t)
	resp := s.search(t, "write-ahead log", "")
	if len(resp.Results) != 1 {
		t.Fatalf("want one result, got %d", len(resp.Results))
	}
	m := resp.Results[0]
	if m.Reason != models.ReasonContent {
		t.Errorf("reason = %s, want content", m.Reason)
	}
	if !strings.HasPrefix(m.Excerpt, "...") || !strings.Contains(m.Excerpt, "write-ahead log") {
		t.Errorf("excerpt = %q", m.Excerpt)
	}
}

func TestE2E_CategoriesCoverCorpus(t *testing.T) {
	s := startStack(t)
	var out struct {
		Categories []struct {
			Name      string `json:"name"`
			Documents int    `json:"documents"`
		} `json:"categories"`
	}
	s.get(t, "/api/v1/categories", &out)

	var got []string
	total := 0
	for _, c := range out.Categories {
		got = append(got, c.Name)
		total += c.Documents
	}
	want := s.corpus.Categories()
	sort.Strings(got)
	sort.Strings(want)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("categories = %v, want %v", got, want)
	}
	if total != len(s.corpus.Documents) {
		t.Errorf("documents = %d, want %d", total, len(s.corpus.Documents))
	}
}

func TestE2E_SitemapListsEveryDocument(t *testing.T) {
	s := startStack(t)
	resp, err := http.Get(s.http.URL + "/sitemap.xml")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	locs, err := sitemap.Parse(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if len(locs) != len(s.corpus.Documents)+2 {
		t.Errorf("sitemap has %d URLs, want %d", len(locs), len(s.corpus.Documents)+2)
	}
}

func TestE2E_WatcherReloadsContent(t *testing.T) {
	s := startStack(t)
	if resp := s.search(t, "zeppelin", ""); len(resp.Results) != 0 {
		t.Fatalf("unexpected results before write: %d", len(resp.Results))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := watcher.NewWatcher(s.root, []string{".md"}, func([]string) {
		_, _ = s.site.Reload()
	}, watcher.WithDebounce(20*time.Millisecond))
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	page := CorpusDocument{Category: "airships", Name: "zeppelin", Title: "Zeppelin", Body: "Rigid airships."}
	if err := os.MkdirAll(filepath.Join(s.root, "airships"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(s.root, "airships", "zeppelin.md"), []byte(page.Markdown()), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if resp := s.search(t, "zeppelin", ""); len(resp.Results) == 1 {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Fatal("new document never became searchable")
}

func TestE2E_NavigationSession(t *testing.T) {
	s := startStack(t)

	post := func(path string, body string) *http.Response {
		resp, err := http.Post(s.http.URL+path, "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		return resp
	}
	put := func(path string, body string) {
		req, _ := http.NewRequest(http.MethodPut, s.http.URL+path, strings.NewReader(body))
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("PUT %s: status %d", path, resp.StatusCode)
		}
	}

	resp := post("/api/v1/sessions", `{"path":"/docs","query":"tag=networking"}`)
	var view struct {
		ID    string `json:"id"`
		State struct {
			Search string `json:"search"`
			Tag    string `json:"tag"`
		} `json:"state"`
		Search *models.SearchResponse `json:"search"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if view.State.Tag != "networking" || view.Search == nil || len(view.Search.Results) != 4 {
		t.Fatalf("unexpected session: %+v", view)
	}

	base := "/api/v1/sessions/" + view.ID
	put(base+"/tag", `{"tag":""}`)
	put(base+"/query", `{"search":"grafana"}`)
	s.get(t, base, &view)
	if view.Search == nil || len(view.Search.Results) != 1 {
		t.Fatalf("text search through session: %+v", view.Search)
	}

	put(base+"/location", `{"path":"/docs/monitoring/grafana"}`)
	view.Search = nil
	s.get(t, base, &view)
	if view.State.Search != "" || view.Search != nil {
		t.Errorf("opening a page should reset the search: %+v", view)
	}
}
