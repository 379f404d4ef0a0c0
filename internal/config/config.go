// Package config provides configuration loading and structs for the docs server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	Site       SiteConfig       `yaml:"site"`
	Content    ContentConfig    `yaml:"content"`
	Search     SearchConfig     `yaml:"search"`
	Navigation NavigationConfig `yaml:"navigation"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// SecurityHeaders toggles the default response security headers.
	SecurityHeaders *bool `yaml:"security_headers"`
}

// SecurityHeadersOrDefault returns whether to send security headers; defaults to true when unset.
func (s *ServerConfig) SecurityHeadersOrDefault() bool {
	if s.SecurityHeaders != nil {
		return *s.SecurityHeaders
	}
	return true
}

// SiteConfig describes the published site, used for absolute URLs.
type SiteConfig struct {
	Name        string `yaml:"name"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	URL         string `yaml:"url"`
}

// ContentConfig holds the content tree settings.
type ContentConfig struct {
	Root       string   `yaml:"root"`
	Extensions []string `yaml:"extensions"`
	// Exclude lists doublestar patterns relative to Root.
	Exclude []string `yaml:"exclude"`
	// Cache keeps one index for the process; when false every request reloads.
	Cache *bool `yaml:"cache"`
	// Watch reloads the cached index when files change.
	Watch    *bool         `yaml:"watch"`
	Debounce time.Duration `yaml:"debounce"`
}

// CacheOrDefault returns whether to cache the index; defaults to true when unset.
func (c *ContentConfig) CacheOrDefault() bool {
	if c.Cache != nil {
		return *c.Cache
	}
	return true
}

// WatchOrDefault returns whether to watch the content root; defaults to true when unset.
func (c *ContentConfig) WatchOrDefault() bool {
	if c.Watch != nil {
		return *c.Watch
	}
	return true
}

// SearchConfig holds search presentation settings.
type SearchConfig struct {
	// MaxResults truncates result lists; 0 means unbounded.
	MaxResults      int   `yaml:"max_results"`
	TopTags         int   `yaml:"top_tags"`
	Suggestions     *bool `yaml:"suggestions"`
	SuggestionLimit int   `yaml:"suggestion_limit"`
	Fuzziness       int   `yaml:"fuzziness"`
}

// SuggestionsOrDefault returns whether to offer fuzzy suggestions; defaults to true when unset.
func (s *SearchConfig) SuggestionsOrDefault() bool {
	if s.Suggestions != nil {
		return *s.Suggestions
	}
	return true
}

// NavigationConfig holds navigation session settings.
type NavigationConfig struct {
	Debounce    time.Duration `yaml:"debounce"`
	SessionTTL  time.Duration `yaml:"session_ttl"`
	MaxSessions int           `yaml:"max_sessions"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config dir: %w", err)
	}
	cfg.Content.Root = expandPath(cfg.Content.Root, configDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in configuration, with relative paths resolved
// against the working directory.
func Default() *Config {
	var cfg Config
	ApplyDefaults(&cfg)
	if cwd, err := os.Getwd(); err == nil {
		cfg.Content.Root = expandPath(cfg.Content.Root, cwd)
	}
	return &cfg
}

// Validate reports settings that can not work.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	for _, ext := range c.Content.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("content extension %q must start with a dot", ext)
		}
	}
	if c.Search.Fuzziness > 2 {
		return fmt.Errorf("search fuzziness %d exceeds 2", c.Search.Fuzziness)
	}
	return nil
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// expandPath converts a path to absolute. Paths starting with "~/" are relative
// to the home directory; other relative paths are relative to configDir.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return filepath.Join(configDir, path)
}
