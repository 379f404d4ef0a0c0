// Package content loads documentation files from a content root into Documents.
package content

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/dedkola/tk-docs-template/internal/models"
)

var (
	// ErrRootNotFound is returned when the content root does not exist.
	ErrRootNotFound = errors.New("content root not found")
	// ErrNotDirectory is returned when the content root is not a directory.
	ErrNotDirectory = errors.New("content root is not a directory")
)

// DefaultExtensions are the content file extensions loaded when none are configured.
var DefaultExtensions = []string{".md", ".mdx"}

// Problem is a non-fatal issue found while loading a single file.
type Problem struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Result is the outcome of one load cycle. Documents are in discovery order.
type Result struct {
	Root      string             `json:"root"`
	Documents []*models.Document `json:"documents"`
	Problems  []Problem          `json:"problems,omitempty"`
}

// Loader walks a content root and parses every content file it finds.
type Loader struct {
	extensions []string
	exclude    []string
	logger     *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger used for per-file warnings.
func WithLogger(l *zap.Logger) LoaderOption {
	return func(ld *Loader) {
		if l != nil {
			ld.logger = l
		}
	}
}

// WithExtensions sets the recognized content extensions (e.g. ".md").
func WithExtensions(exts []string) LoaderOption {
	return func(ld *Loader) {
		if len(exts) > 0 {
			ld.extensions = exts
		}
	}
}

// WithExclude sets doublestar glob patterns, relative to the root, of paths to skip.
func WithExclude(patterns []string) LoaderOption {
	return func(ld *Loader) { ld.exclude = patterns }
}

// NewLoader creates a Loader.
func NewLoader(opts ...LoaderOption) *Loader {
	ld := &Loader{
		extensions: DefaultExtensions,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// Extensions returns the recognized content extensions.
func (ld *Loader) Extensions() []string {
	return ld.extensions
}

// Load walks root in lexical order and returns every document found.
// A missing root or an unreadable directory fails the whole load. Per-file
// problems (bad front matter, duplicate or empty slugs) are logged, recorded
// in the result and never fatal.
func (ld *Loader) Load(root string) (*Result, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absRoot)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, absRoot)
	}
	if err != nil {
		return nil, fmt.Errorf("stat content root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, absRoot)
	}
	if resolved, evalErr := filepath.EvalSymlinks(absRoot); evalErr == nil {
		absRoot = resolved
	}

	res := &Result{Root: absRoot, Documents: []*models.Document{}}
	seen := make(map[string]string)

	err = filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("read %s: %w", p, walkErr)
		}
		if p == absRoot {
			return nil
		}
		rel, relErr := filepath.Rel(absRoot, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if ld.excluded(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !extensionAllowed(path.Ext(rel), ld.extensions) {
			return nil
		}
		// Follow symlinks so only regular files are loaded.
		finfo, statErr := os.Stat(p)
		if statErr != nil || !finfo.Mode().IsRegular() {
			return nil
		}

		slug := slugFor(rel)
		if slug == nil {
			ld.problem(res, rel, "empty slug")
			return nil
		}
		key := strings.Join(slug, "/")
		if first, dup := seen[key]; dup {
			ld.problem(res, rel, fmt.Sprintf("duplicate slug %q, already loaded from %s", key, first))
			return nil
		}

		doc, parseErr := ld.parseFile(p, slug, finfo)
		if doc == nil {
			ld.problem(res, rel, parseErr.Error())
			return nil
		}
		if parseErr != nil {
			ld.problem(res, rel, parseErr.Error())
		}
		seen[key] = rel
		res.Documents = append(res.Documents, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	ld.logger.Debug("content loaded",
		zap.String("root", absRoot),
		zap.Int("documents", len(res.Documents)),
		zap.Int("problems", len(res.Problems)),
	)
	return res, nil
}

// parseFile reads and parses one file. A nil document means the file could not
// be read; a non-nil document with an error means metadata fell back to defaults.
func (ld *Loader) parseFile(p string, slug []string, info fs.FileInfo) (*models.Document, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	doc := &models.Document{
		Slug:       slug,
		Title:      slug[len(slug)-1],
		Category:   models.CategoryFor(slug),
		UpdatedAt:  info.ModTime().UTC(),
		SourcePath: p,
	}

	meta, body, found, err := splitFrontMatter(string(data))
	doc.Body = strings.TrimSpace(body)
	if err != nil || !found {
		return doc, err
	}
	fm, err := parseFrontMatter(meta)
	if err != nil {
		// Not metadata, e.g. a leading thematic break. The whole source is body.
		doc.Body = strings.TrimSpace(normalizeSource(string(data)))
		return doc, err
	}
	return doc, fm.apply(doc)
}

func (ld *Loader) problem(res *Result, rel, reason string) {
	ld.logger.Warn("content file problem", zap.String("path", rel), zap.String("reason", reason))
	res.Problems = append(res.Problems, Problem{Path: rel, Reason: reason})
}

func (ld *Loader) excluded(rel string) bool {
	for _, pattern := range ld.exclude {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// slugFor strips the extension from a slash-separated relative path and splits
// it into segments. It returns nil when any segment would be empty.
func slugFor(rel string) []string {
	stem := strings.TrimSuffix(rel, path.Ext(rel))
	segments := strings.Split(stem, "/")
	for _, s := range segments {
		if s == "" {
			return nil
		}
	}
	return segments
}

func extensionAllowed(ext string, allowed []string) bool {
	ext = strings.ToLower(ext)
	for _, a := range allowed {
		if strings.ToLower(a) == ext {
			return true
		}
	}
	return false
}
