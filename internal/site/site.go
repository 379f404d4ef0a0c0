// Package site owns the loaded document index: it loads the content root,
// builds the index and, in cached mode, keeps one immutable snapshot that is
// swapped atomically on reload.
package site

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/dedkola/tk-docs-template/internal/content"
	"github.com/dedkola/tk-docs-template/internal/index"
	"github.com/dedkola/tk-docs-template/internal/keyword"
	"github.com/dedkola/tk-docs-template/internal/metrics"
)

// ErrNotLoaded is returned by Current when nothing has been loaded yet.
var ErrNotLoaded = errors.New("content not loaded")

// Snapshot is one load of the content root. It is never modified after
// construction and may be shared by concurrent readers.
type Snapshot struct {
	Index    *index.Index
	Root     string
	Problems []content.Problem
	LoadedAt time.Time
	Duration time.Duration

	spellOpts []keyword.SpellCheckerOption
	kwOnce    sync.Once
	kw        *keyword.BleveIndex
	kwErr     error
}

// Keyword returns the fuzzy index for this snapshot, building it on first use.
func (s *Snapshot) Keyword() (*keyword.BleveIndex, error) {
	s.kwOnce.Do(func() {
		s.kw, s.kwErr = keyword.NewBleveIndex(s.Index.All(), s.spellOpts...)
	})
	return s.kw, s.kwErr
}

// Site loads and serves document snapshots.
type Site struct {
	root      string
	loader    *content.Loader
	cache     bool
	current   atomic.Pointer[Snapshot]
	group     singleflight.Group
	spellOpts []keyword.SpellCheckerOption
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// Option configures a Site.
type Option func(*Site)

// WithCache selects cached mode (one snapshot per process, replaced by
// Reload) or uncached mode (a fresh snapshot on every call).
func WithCache(enabled bool) Option {
	return func(s *Site) { s.cache = enabled }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Site) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records every load.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Site) { s.metrics = m }
}

// WithSpellCheckerOptions configures "did you mean" suggestions.
func WithSpellCheckerOptions(opts ...keyword.SpellCheckerOption) Option {
	return func(s *Site) { s.spellOpts = opts }
}

// New creates a Site for root. Nothing is loaded until the first Snapshot or Reload.
func New(root string, loader *content.Loader, opts ...Option) *Site {
	s := &Site{
		root:   root,
		loader: loader,
		cache:  true,
		logger: zap.NewNop(),
	}
	if s.loader == nil {
		s.loader = content.NewLoader()
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the content root.
func (s *Site) Root() string {
	return s.root
}

// Cached reports whether the site keeps a process-wide snapshot.
func (s *Site) Cached() bool {
	return s.cache
}

// Snapshot returns the documents to serve. In cached mode it returns the
// current snapshot, loading it on first use; otherwise it loads a new one.
func (s *Site) Snapshot() (*Snapshot, error) {
	if !s.cache {
		return s.load()
	}
	if snap := s.current.Load(); snap != nil {
		return snap, nil
	}
	return s.Reload()
}

// Current returns the cached snapshot without loading.
func (s *Site) Current() (*Snapshot, error) {
	if snap := s.current.Load(); snap != nil {
		return snap, nil
	}
	return nil, ErrNotLoaded
}

// Reload loads the content root again. Concurrent calls share one load. In
// cached mode a successful load replaces the current snapshot; a failed load
// keeps the previous one and returns the error.
func (s *Site) Reload() (*Snapshot, error) {
	v, err, _ := s.group.Do("reload", func() (interface{}, error) {
		snap, err := s.load()
		if err != nil {
			return nil, err
		}
		if s.cache {
			s.current.Store(snap)
		}
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

func (s *Site) load() (*Snapshot, error) {
	start := time.Now()
	res, err := s.loader.Load(s.root)
	duration := time.Since(start)
	if err != nil {
		s.metrics.RecordReload(err, duration, 0, 0)
		s.logger.Error("content load failed", zap.String("root", s.root), zap.Error(err))
		return nil, fmt.Errorf("load content: %w", err)
	}
	snap := &Snapshot{
		Index:     index.Build(res.Documents),
		Root:      res.Root,
		Problems:  res.Problems,
		LoadedAt:  time.Now(),
		Duration:  duration,
		spellOpts: s.spellOpts,
	}
	s.metrics.RecordReload(nil, duration, snap.Index.Len(), len(res.Problems))
	s.logger.Info("content loaded",
		zap.String("root", res.Root),
		zap.Int("documents", snap.Index.Len()),
		zap.Int("categories", len(snap.Index.Categories())),
		zap.Int("problems", len(res.Problems)),
		zap.Duration("duration", duration),
	)
	return snap, nil
}
