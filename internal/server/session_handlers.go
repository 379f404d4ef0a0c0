package server

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/dedkola/tk-docs-template/internal/models"
	"github.com/dedkola/tk-docs-template/internal/nav"
)

type sessionView struct {
	ID        string                 `json:"id"`
	State     nav.State              `json:"state"`
	Path      string                 `json:"path"`
	Query     string                 `json:"query"`
	URLWrites int                    `json:"url_writes"`
	Search    *models.SearchResponse `json:"search,omitempty"`
}

type locationRequest struct {
	Path  string `json:"path"`
	Query string `json:"query"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	query, err := url.ParseQuery(req.Query)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid query")
		return
	}
	if req.Path == "" {
		req.Path = "/docs"
	}
	sess, err := s.sessions.Create(req.Path, query)
	if err != nil {
		s.respondSessionError(w, err)
		return
	}
	s.respondSession(w, http.StatusCreated, sess)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	s.respondSession(w, http.StatusOK, sess)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		s.respondSessionError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleSessionQuery(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Search string `json:"search"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}
	sess.Store().SetTextQuery(req.Search)
	s.respondSession(w, http.StatusOK, sess)
}

func (s *Server) handleSessionTag(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Tag string `json:"tag"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}
	sess.Store().SetActiveTag(req.Tag)
	s.respondSession(w, http.StatusOK, sess)
}

func (s *Server) handleSessionLocation(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req locationRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	query, err := url.ParseQuery(req.Query)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid query")
		return
	}
	sess.Visit(req.Path, query)
	s.respondSession(w, http.StatusOK, sess)
}

func (s *Server) handleSessionPanel(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	// No "open" value toggles.
	var req struct {
		Open *bool `json:"open"`
	}
	if !s.decodeBody(w, r, &req) {
		return
	}
	if req.Open == nil {
		sess.Store().TogglePanel()
	} else {
		sess.Store().SetPanelOpen(*req.Open)
	}
	s.respondSession(w, http.StatusOK, sess)
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.respondSessionError(w, err)
		return nil, false
	}
	return sess, true
}

// respondSession answers with the session state and, when a filter is active,
// the search results it selects.
func (s *Server) respondSession(w http.ResponseWriter, status int, sess *Session) {
	state := sess.Store().State()
	path, query, writes := sess.loc.URL()
	view := sessionView{
		ID:        sess.ID,
		State:     state,
		Path:      path,
		Query:     query,
		URLWrites: writes,
	}
	if state.Query().Mode() != models.ModeNone {
		snap, ok := s.snapshot(w)
		if !ok {
			return
		}
		view.Search = s.runSearch(snap, state.Query(), s.config.Search.MaxResults)
	}
	s.respondJSON(w, status, view)
}

func (s *Server) respondSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrTooManySessions):
		s.respondError(w, http.StatusTooManyRequests, err.Error())
	default:
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}
