// Package main is the tkdocs CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dedkola/tk-docs-template/internal/cli"
	"github.com/dedkola/tk-docs-template/internal/config"
	"github.com/dedkola/tk-docs-template/internal/content"
	"github.com/dedkola/tk-docs-template/internal/keyword"
	"github.com/dedkola/tk-docs-template/internal/metrics"
	"github.com/dedkola/tk-docs-template/internal/models"
	"github.com/dedkola/tk-docs-template/internal/search"
	"github.com/dedkola/tk-docs-template/internal/server"
	"github.com/dedkola/tk-docs-template/internal/site"
	"github.com/dedkola/tk-docs-template/internal/sitemap"
	"github.com/dedkola/tk-docs-template/internal/watcher"
	"github.com/dedkola/tk-docs-template/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/tkdocs/config.yaml"

// loadConfig loads config from path. When path is the default, config.yaml in
// the current directory wins if present, and a missing default file means
// built-in defaults. Returns the config and the path that was loaded, empty
// for defaults.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			return config.Default(), "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "list":
		runList()
	case "tags":
		runTags()
	case "sitemap":
		runSitemap()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("tkdocs version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (content reloads, requests, etc.)")
	root := fs.String("root", "", "content root (overrides config)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *root != "" {
		cfg.Content.Root = *root
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.String("content_root", cfg.Content.Root),
		zap.Bool("debug", debugMode),
	)

	components := initializeComponents(cfg, logger, metrics.NewMetrics())
	snap, err := components.Site.Snapshot()
	if err != nil {
		logger.Fatal("Failed to load content", zap.Error(err))
	}
	for _, p := range snap.Problems {
		logger.Warn("content problem", zap.String("path", p.Path), zap.String("reason", p.Reason))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Content.CacheOrDefault() && cfg.Content.WatchOrDefault() {
		watchSvc := watcher.NewWatcher(
			cfg.Content.Root,
			cfg.Content.Extensions,
			func(paths []string) {
				logger.Debug("content changed", zap.Strings("paths", paths))
				if _, err := components.Site.Reload(); err != nil {
					logger.Warn("content reload failed", zap.Error(err))
				}
			},
			watcher.WithLogger(logger),
			watcher.WithDebounce(cfg.Content.Debounce),
		)
		if err := watchSvc.Start(ctx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer watchSvc.Stop()
	}

	srv := server.NewServer(components.Site, components.Engine, cfg, logger, components.Metrics)
	srv.SetVersion(version)
	go func() {
		if err := srv.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
}

// printSearchUsage prints search subcommand usage.
func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: tkdocs search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Text queries match titles, categories, descriptions, tags and bodies, case-insensitively.
With --tag the query text is ignored and documents carrying the tag are listed.

Examples:
  tkdocs search docker compose
  tkdocs search --tag kubernetes
  tkdocs search --output compact nginx
  tkdocs search --server http://localhost:8080 proxy
`)
}

// buildSearchQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchConfigPathFromArgs returns the value of -config/--config from args if present, else defaultPath.
func searchConfigPathFromArgs(args []string, defaultPath string) string {
	for i, a := range args {
		if (a == "-config" || a == "--config") && i+1 < len(args) {
			return args[i+1]
		}
	}
	return defaultPath
}

// searchLimitDefaultFromConfig returns search.max_results from the config at
// path, or 0 (unbounded) when it can not be loaded.
func searchLimitDefaultFromConfig(path string) int {
	cfg, _, err := loadConfig(path)
	if err != nil || cfg == nil {
		return 0
	}
	return cfg.Search.MaxResults
}

// searchArgsReorder moves any flags (and their values) that appear after the query
// to the front of the slice so that flag.Parse() sees them. Go's flag package
// stops at the first non-flag argument, so "tkdocs search docker -tag k8s"
// would otherwise leave -tag unparsed.
func searchArgsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runSearch() {
	searchArgs := searchArgsReorder(os.Args[2:])
	configPath := searchConfigPathFromArgs(searchArgs, defaultConfigPath)

	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPathFlag := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = load the content root directly)")
	tag := fs.String("tag", "", "list documents carrying this tag (text is ignored)")
	limit := fs.Int("limit", searchLimitDefaultFromConfig(configPath), "max results (0 = all)")
	outputFormat := fs.String("output", "text", "output format: text (human-readable), compact (one result per line), or json (parseable)")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgs)

	state := models.QueryState{TextQuery: buildSearchQuery(fs.Args()), ActiveTag: *tag}
	if state.Mode() == models.ModeNone {
		printSearchUsage(fs)
		os.Exit(1)
	}
	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var response *models.SearchResponse
	if *serverURL != "" {
		response, err = searchViaHTTP(*serverURL, state, remoteSearchLimit(fs, *limit))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		components, cfg := localComponents(*configPathFlag)
		snap, err := components.Site.Snapshot()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load content: %v\n", err)
			os.Exit(1)
		}
		req := search.Request{Query: state, Limit: *limit}
		var sugg search.Suggester
		if cfg.Search.SuggestionsOrDefault() && state.Mode() == models.ModeText {
			req.SuggestionLimit = cfg.Search.SuggestionLimit
			if kw, kwErr := snap.Keyword(); kwErr == nil {
				sugg = kw
			}
		}
		response = components.Engine.Execute(snap.Index, req, sugg)
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

// remoteSearchLimit returns limit when --limit was given on the command line
// and -1 otherwise, so the server applies its own default.
func remoteSearchLimit(fs *flag.FlagSet, limit int) int {
	remote := -1
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "limit" {
			remote = limit
		}
	})
	return remote
}

// searchURL builds the GET /api/v1/search request URL. A negative limit is
// left out of the query.
func searchURL(serverURL string, state models.QueryState, limit int) string {
	q := url.Values{}
	if state.TextQuery != "" {
		q.Set("search", state.TextQuery)
	}
	if state.ActiveTag != "" {
		q.Set("tag", state.ActiveTag)
	}
	if limit >= 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	u := strings.TrimRight(serverURL, "/") + "/api/v1/search"
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func searchViaHTTP(serverURL string, state models.QueryState, limit int) (*models.SearchResponse, error) {
	var response models.SearchResponse
	if err := getJSON(searchURL(serverURL, state, limit), &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func runList() {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	category := fs.String("category", "", "only list this category")
	outputFormat := fs.String("output", "text", "output format: text, compact, or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	components, _ := localComponents(*configPath)
	snap, err := components.Site.Snapshot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load content: %v\n", err)
		os.Exit(1)
	}
	var docs []*models.Document
	if *category != "" {
		docs = snap.Index.Documents(*category)
		if len(docs) == 0 {
			fmt.Fprintf(os.Stderr, "Unknown category %q; categories: %s\n", *category, strings.Join(snap.Index.Categories(), ", "))
			os.Exit(1)
		}
	} else {
		snap.Index.Each(func(_ string, doc *models.Document) bool {
			docs = append(docs, doc)
			return true
		})
	}
	if err := cli.WriteDocuments(os.Stdout, docs, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runTags() {
	fs := flag.NewFlagSet("tags", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	limit := fs.Int("limit", -1, "number of tags (default from config search.top_tags, 0 = all)")
	outputFormat := fs.String("output", "text", "output format: text, compact, or json")
	_ = fs.Parse(os.Args[2:])

	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	components, cfg := localComponents(*configPath)
	snap, err := components.Site.Snapshot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load content: %v\n", err)
		os.Exit(1)
	}
	n := *limit
	if n < 0 {
		n = cfg.Search.TopTags
	}
	if err := cli.WriteTags(os.Stdout, snap.Index.TopTags(n), format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runSitemap() {
	fs := flag.NewFlagSet("sitemap", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	out := fs.String("out", "", "write to this file instead of stdout")
	siteURL := fs.String("url", "", "site base URL (overrides config site.url)")
	_ = fs.Parse(os.Args[2:])

	components, cfg := localComponents(*configPath)
	snap, err := components.Site.Snapshot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load content: %v\n", err)
		os.Exit(1)
	}
	base := cfg.Site.URL
	if *siteURL != "" {
		base = *siteURL
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create %s: %v\n", *out, err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}
	if err := sitemap.Write(w, base, snap.Index.All(), time.Now()); err != nil {
		fmt.Fprintf(os.Stderr, "Sitemap failed: %v\n", err)
		os.Exit(1)
	}
	if *out != "" {
		fmt.Printf("Wrote %d URLs to %s\n", snap.Index.Len()+2, *out)
	}
}

// statusResponse is the shape of GET /api/v1/status response.
type statusResponse struct {
	Version        string            `json:"version,omitempty"`
	Site           string            `json:"site,omitempty"`
	Root           string            `json:"root"`
	Cached         bool              `json:"cached"`
	Documents      int               `json:"documents"`
	Categories     int               `json:"categories"`
	Problems       []content.Problem `json:"problems"`
	LoadedAt       time.Time         `json:"loaded_at"`
	LoadDurationMS int64             `json:"load_duration_ms"`
	Sessions       int               `json:"sessions"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL (empty = load the content root directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
	} else {
		components, cfg := localComponents(*configPath)
		snap, err := components.Site.Snapshot()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load content: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{
			Version:        version,
			Site:           cfg.Site.Title,
			Root:           snap.Root,
			Cached:         components.Site.Cached(),
			Documents:      snap.Index.Len(),
			Categories:     len(snap.Index.Categories()),
			Problems:       snap.Problems,
			LoadedAt:       snap.LoadedAt,
			LoadDurationMS: snap.Duration.Milliseconds(),
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		writeStatusText(os.Stdout, &status)
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func writeStatusText(w io.Writer, status *statusResponse) {
	fmt.Fprintf(w, "root:              %s\n", status.Root)
	fmt.Fprintf(w, "documents:         %d\n", status.Documents)
	fmt.Fprintf(w, "categories:        %d\n", status.Categories)
	fmt.Fprintf(w, "cached:            %t\n", status.Cached)
	fmt.Fprintf(w, "loaded_at:         %s\n", status.LoadedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "load_duration_ms:  %d\n", status.LoadDurationMS)
	if status.Sessions > 0 {
		fmt.Fprintf(w, "sessions:          %d\n", status.Sessions)
	}
	if len(status.Problems) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "# %d problem(s)\n", len(status.Problems))
		for _, p := range status.Problems {
			fmt.Fprintf(w, "%s: %s\n", p.Path, p.Reason)
		}
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	var s statusResponse
	if err := getJSON(strings.TrimRight(serverURL, "/")+"/api/v1/status", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func getJSON(u string, v interface{}) error {
	resp, err := http.Get(u)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Components holds initialized services.
type Components struct {
	Metrics *metrics.Metrics
	Loader  *content.Loader
	Site    *site.Site
	Engine  *search.Engine
}

func initializeComponents(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) *Components {
	loader := content.NewLoader(
		content.WithLogger(logger),
		content.WithExtensions(cfg.Content.Extensions),
		content.WithExclude(cfg.Content.Exclude),
	)
	st := site.New(cfg.Content.Root, loader,
		site.WithCache(cfg.Content.CacheOrDefault()),
		site.WithLogger(logger),
		site.WithMetrics(m),
		site.WithSpellCheckerOptions(keyword.WithMaxDistance(cfg.Search.Fuzziness)),
	)
	engine := search.NewEngine(search.WithMetrics(m), search.WithLogger(logger))
	return &Components{
		Metrics: m,
		Loader:  loader,
		Site:    st,
		Engine:  engine,
	}
}

// localComponents loads config and builds components for one-shot commands,
// exiting on failure.
func localComponents(configPath string) (*Components, *config.Config) {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := zap.NewNop()
	if cfg.Debug {
		if logger, err = utils.NewLogger(true); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
	}
	return initializeComponents(cfg, logger, nil), cfg
}

func printUsage() {
	fmt.Println(`tkdocs - Docs site content index and search

Usage:
  tkdocs server [flags]           Start the HTTP server
  tkdocs search [flags] <query>   Search documents
  tkdocs list [flags]             List documents by category
  tkdocs tags [flags]             Show the most used tags
  tkdocs sitemap [flags]          Write sitemap.xml
  tkdocs status [flags]           Show content and index status
  tkdocs version                  Show version
  tkdocs help                     Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/tkdocs/config.yaml)
  --root string      Content root (overrides content.root)
  --debug            Enable debug logging

Search Flags:
  --config string    Config file path (also used for the default limit)
  --server string    Server URL; empty (default) loads the content root directly
  --tag string       List documents carrying this tag; text is ignored
  --limit int        Max results (default: search.max_results, 0 = all)
  --output string    Output format: text, compact or json (default: text)

List Flags:
  --category string  Only list this category
  --output string    Output format: text, compact or json (default: text)

Tags Flags:
  --limit int        Number of tags (default: search.top_tags, 0 = all)
  --output string    Output format: text, compact or json (default: text)

Sitemap Flags:
  --out string       Output file (default: stdout)
  --url string       Site base URL (default: site.url)

Status Flags:
  --server string    Server URL; empty (default) loads the content root directly
  --output string    Output format: text or json (default: text)

Examples:
  tkdocs server --root ./content
  tkdocs search docker compose
  tkdocs search --tag kubernetes --output json
  tkdocs list --category docker
  tkdocs tags --limit 20
  tkdocs sitemap --out public/sitemap.xml
  tkdocs status --server http://localhost:8080`)
}
