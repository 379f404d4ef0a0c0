package server

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dedkola/tk-docs-template/internal/metrics"
	"github.com/dedkola/tk-docs-template/internal/nav"
)

var (
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("session not found")
	// ErrTooManySessions is returned when the session limit is reached.
	ErrTooManySessions = errors.New("too many sessions")
)

const minSweepInterval = time.Second

// location is the URL a session's navigator writes to.
type location struct {
	mu     sync.Mutex
	path   string
	query  url.Values
	writes int
}

// ReplaceQuery implements nav.Navigator.
func (l *location) ReplaceQuery(q url.Values) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.query = q
	l.writes++
}

func (l *location) set(path string, q url.Values) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.path = path
	l.query = q
}

// URL returns the current path and query string.
func (l *location) URL() (path, query string, writes int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.path, l.query.Encode(), l.writes
}

// Session is the navigation state of one client page.
type Session struct {
	ID      string
	Created time.Time

	store *nav.Store
	loc   *location

	mu       sync.Mutex
	lastSeen time.Time
}

// Store returns the session's navigation store.
func (s *Session) Store() *nav.Store {
	return s.store
}

// Visit moves the session to path with query. Opening a document resets the
// search; any other page adopts the query parameters.
func (s *Session) Visit(path string, query url.Values) {
	if query == nil {
		query = url.Values{}
	}
	s.loc.set(path, query)
	if !s.store.Navigate(path) {
		s.store.SyncFromURL(query)
	}
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// SessionManager keeps navigation sessions by id and expires idle ones.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	max      int
	debounce time.Duration
	logger   *zap.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewSessionManager creates a manager. A zero ttl keeps sessions until
// deleted; a zero max is unlimited.
func NewSessionManager(ttl time.Duration, max int, debounce time.Duration, logger *zap.Logger, m *metrics.Metrics) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		max:      max,
		debounce: debounce,
		logger:   logger,
		metrics:  m,
		now:      time.Now,
	}
}

// Create starts a session at path and syncs its state from query.
func (m *SessionManager) Create(path string, query url.Values) (*Session, error) {
	m.mu.Lock()
	if m.max > 0 && len(m.sessions) >= m.max {
		m.mu.Unlock()
		return nil, ErrTooManySessions
	}
	now := m.now()
	loc := &location{}
	opts := []nav.Option{nav.WithLogger(m.logger)}
	if m.debounce > 0 {
		opts = append(opts, nav.WithDebounce(m.debounce))
	}
	sess := &Session{
		ID:       uuid.NewString(),
		Created:  now,
		store:    nav.NewStore(loc, opts...),
		loc:      loc,
		lastSeen: now,
	}
	m.sessions[sess.ID] = sess
	n := len(m.sessions)
	m.mu.Unlock()

	m.metrics.SetSessions(n)
	sess.Visit(path, query)
	m.logger.Debug("navigation session created", zap.String("id", sess.ID), zap.String("path", path))
	return sess, nil
}

// Get returns a live session and marks it as used.
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	now := m.now()
	if m.expired(sess, now) {
		_ = m.Delete(id)
		return nil, ErrSessionNotFound
	}
	sess.touch(now)
	return sess, nil
}

// Delete closes and removes a session.
func (m *SessionManager) Delete(id string) error {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	n := len(m.sessions)
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	sess.store.Close()
	m.metrics.SetSessions(n)
	return nil
}

// Len returns the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep removes expired sessions and returns how many were dropped.
func (m *SessionManager) Sweep() int {
	now := m.now()
	var stale []*Session
	m.mu.Lock()
	for id, sess := range m.sessions {
		if m.expired(sess, now) {
			stale = append(stale, sess)
			delete(m.sessions, id)
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	for _, sess := range stale {
		sess.store.Close()
	}
	if len(stale) > 0 {
		m.metrics.SetSessions(n)
		m.logger.Debug("navigation sessions expired", zap.Int("count", len(stale)))
	}
	return len(stale)
}

// Run sweeps expired sessions until ctx is done.
func (m *SessionManager) Run(ctx context.Context) {
	if m.ttl <= 0 {
		return
	}
	interval := m.ttl / 2
	if interval < minSweepInterval {
		interval = minSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

// Close drops every session.
func (m *SessionManager) Close() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, sess := range all {
		sess.store.Close()
	}
	m.metrics.SetSessions(0)
}

func (m *SessionManager) expired(sess *Session, now time.Time) bool {
	return m.ttl > 0 && now.Sub(sess.idleSince()) > m.ttl
}
