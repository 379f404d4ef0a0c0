// Package nav holds the navigation state of one page view (search text,
// selected tag, side panel) and keeps it in sync with the page URL.
package nav

import (
	"net/url"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dedkola/tk-docs-template/internal/models"
)

// DefaultDebounce is how long typing must pause before the URL is rewritten.
const DefaultDebounce = 300 * time.Millisecond

// State is the user-visible navigation state.
type State struct {
	TextQuery string `json:"search"`
	ActiveTag string `json:"tag"`
	PanelOpen bool   `json:"panel_open"`
}

// Query returns the search input derived from the state. A selected tag
// suppresses the text query without clearing it.
func (s State) Query() models.QueryState {
	return models.QueryState{TextQuery: s.TextQuery, ActiveTag: s.ActiveTag}
}

// Navigator applies URL writes.
type Navigator interface {
	// ReplaceQuery rewrites the query string of the current location in place,
	// without adding a history entry and without scrolling.
	ReplaceQuery(query url.Values)
}

// Store is an injectable navigation state handle. It is safe for concurrent use.
//
// Text edits reach the URL after a debounce window, last write wins. Tag
// changes reach it immediately. Reading state from the URL never writes the
// URL back.
type Store struct {
	mu       sync.Mutex
	state    State
	params   url.Values
	timer    *time.Timer
	gen      uint64
	closed   bool

	// lastWritten is the encoded query of the latest URL write. Navigators
	// may echo it back at any time, so it stays set after the write returns.
	lastWritten string

	// writeMu serializes URL writes so the last write carries the latest state.
	writeMu sync.Mutex

	nav      Navigator
	debounce time.Duration
	logger   *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithDebounce sets the delay between the last text edit and the URL write.
func WithDebounce(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore creates a Store that writes URL changes through nav.
func NewStore(nav Navigator, opts ...Option) *Store {
	s := &Store{
		nav:      nav,
		debounce: DefaultDebounce,
		logger:   zap.NewNop(),
		params:   url.Values{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetTextQuery records typed search text and schedules a URL write.
func (s *Store) SetTextQuery(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.state.TextQuery = q
	s.cancelLocked()
	gen := s.gen
	s.timer = time.AfterFunc(s.debounce, func() { s.flush(gen) })
}

// SetActiveTag selects a tag and writes the URL at once. The stored text
// query is kept. An empty tag clears the selection.
func (s *Store) SetActiveTag(tag string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.state.ActiveTag = tag
	// The immediate write carries the latest text too.
	s.cancelLocked()
	s.mu.Unlock()
	s.write(0, false)
}

// ClearTag removes the tag selection.
func (s *Store) ClearTag() {
	s.SetActiveTag("")
}

// SetPanelOpen opens or closes the side panel. The panel is not part of the URL.
func (s *Store) SetPanelOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.state.PanelOpen = open
	}
}

// TogglePanel flips the side panel and returns the new value.
func (s *Store) TogglePanel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.state.PanelOpen = !s.state.PanelOpen
	}
	return s.state.PanelOpen
}

// SyncFromURL adopts the search and tag parameters of the current URL, for
// the initial load and for back/forward navigation. It never writes the URL,
// and it drops any pending debounced write, which would carry older text.
// It reports whether the state changed.
func (s *Store) SyncFromURL(values url.Values) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	if s.lastWritten != "" && values.Encode() == s.lastWritten {
		// Echo of our own write. Newer typed text and its pending write stay.
		return false
	}
	s.lastWritten = ""
	s.params = EncodeQuery(values, State{})
	search, tag := ParseQuery(values)
	changed := s.state.TextQuery != search || s.state.ActiveTag != tag
	s.state.TextQuery = search
	s.state.ActiveTag = tag
	s.cancelLocked()
	return changed
}

// Navigate records a move to path. Opening a document clears the search and
// the tag and closes the panel. It reports whether the state was reset.
func (s *Store) Navigate(path string) bool {
	if !IsContentPage(path) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.cancelLocked()
	s.state = State{}
	s.params = url.Values{}
	s.lastWritten = ""
	return true
}

// Close drops pending writes. Later calls have no effect.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.closed = true
}

// cancelLocked stops the pending debounced write, if any.
func (s *Store) cancelLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Store) flush(gen uint64) {
	s.write(gen, true)
}

// write sends the current state to the navigator. Debounced writes pass their
// generation and are dropped when a newer edit or a sync superseded them.
func (s *Store) write(gen uint64, debounced bool) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.closed || (debounced && gen != s.gen) {
		s.mu.Unlock()
		return
	}
	if debounced {
		s.timer = nil
	}
	values := EncodeQuery(s.params, s.state)
	s.params = values
	s.lastWritten = values.Encode()
	state := s.state
	s.mu.Unlock()

	s.logger.Debug("navigation url write",
		zap.String("search", state.TextQuery),
		zap.String("tag", state.ActiveTag),
		zap.Bool("debounced", debounced),
	)
	s.nav.ReplaceQuery(values)
}
