package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dedkola/tk-docs-template/internal/models"
	"github.com/dedkola/tk-docs-template/internal/search"
	"github.com/dedkola/tk-docs-template/internal/site"
	"github.com/dedkola/tk-docs-template/internal/sitemap"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	problems := make([]map[string]string, 0, len(snap.Problems))
	for _, p := range snap.Problems {
		problems = append(problems, map[string]string{"path": p.Path, "reason": p.Reason})
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"version":          s.version,
		"site":             s.config.Site.Title,
		"root":             snap.Root,
		"cached":           s.site.Cached(),
		"documents":        snap.Index.Len(),
		"categories":       len(snap.Index.Categories()),
		"problems":         problems,
		"loaded_at":        snap.LoadedAt,
		"load_duration_ms": snap.Duration.Milliseconds(),
		"sessions":         s.sessions.Len(),
	})
}

type categoryView struct {
	Name      string `json:"name"`
	Label     string `json:"label"`
	Documents int    `json:"documents"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	cats := snap.Index.Categories()
	out := make([]categoryView, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryView{Name: c, Label: categoryLabel(c), Documents: len(snap.Index.Documents(c))})
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"categories": out})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	var docs []*models.Document
	if cat := r.URL.Query().Get("category"); cat != "" {
		docs = snap.Index.Documents(cat)
		if docs == nil {
			s.respondError(w, http.StatusNotFound, "category not found")
			return
		}
	} else {
		docs = snap.Index.All()
	}
	out := make([]*models.Document, len(docs))
	for i, d := range docs {
		out[i] = d.Summary()
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"documents": out, "total": len(out)})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	slug := chi.URLParam(r, "*")
	if unescaped, err := url.PathUnescape(slug); err == nil {
		slug = unescaped
	}
	doc, found := snap.Index.Lookup(slug)
	if !found {
		s.respondError(w, http.StatusNotFound, "document not found")
		return
	}
	s.respondJSON(w, http.StatusOK, newDocumentPage(doc))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intParam(q, "limit", s.config.Search.MaxResults)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	state := models.QueryState{TextQuery: q.Get("search"), ActiveTag: q.Get("tag")}
	s.logger.Debug("search request",
		zap.String("search", state.TextQuery),
		zap.String("tag", state.ActiveTag),
		zap.Int("limit", limit),
	)
	s.respondJSON(w, http.StatusOK, s.runSearch(snap, state, limit))
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r.URL.Query(), "limit", s.config.Search.TopTags)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"tags": snap.Index.TopTags(limit)})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	snap, err := s.site.Reload()
	if err != nil {
		s.logger.Error("reload failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "reloaded",
		"documents":   snap.Index.Len(),
		"problems":    len(snap.Problems),
		"duration_ms": snap.Duration.Milliseconds(),
	})
}

func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	if err := sitemap.Write(w, s.config.Site.URL, snap.Index.All(), time.Now()); err != nil {
		s.logger.Error("sitemap failed", zap.Error(err))
	}
}

// snapshot fetches the content to serve, answering 500 when it can not be loaded.
func (s *Server) snapshot(w http.ResponseWriter) (*site.Snapshot, bool) {
	snap, err := s.site.Snapshot()
	if err != nil {
		s.logger.Error("content unavailable", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return snap, true
}

func (s *Server) runSearch(snap *site.Snapshot, state models.QueryState, limit int) *models.SearchResponse {
	req := search.Request{Query: state, Limit: limit}
	var sugg search.Suggester
	if s.config.Search.SuggestionsOrDefault() && state.Mode() == models.ModeText {
		req.SuggestionLimit = s.config.Search.SuggestionLimit
		kw, err := snap.Keyword()
		if err != nil {
			s.logger.Warn("suggestion index unavailable", zap.Error(err))
		} else {
			sugg = kw
		}
	}
	return summarize(s.engine.Execute(snap.Index, req, sugg))
}

// summarize drops document bodies from results; excerpts stay.
func summarize(resp *models.SearchResponse) *models.SearchResponse {
	if resp.Results == nil {
		return resp
	}
	out := *resp
	out.Results = make([]*models.Match, len(resp.Results))
	for i, m := range resp.Results {
		c := *m
		c.Document = m.Document.Summary()
		out.Results[i] = &c
	}
	return &out
}

func intParam(q url.Values, name string, def int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return n, nil
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
