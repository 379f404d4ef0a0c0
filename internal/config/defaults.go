package config

import "time"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 30 * time.Second
	}
	if cfg.Site.Name == "" {
		cfg.Site.Name = "Docs"
	}
	if cfg.Site.Title == "" {
		cfg.Site.Title = cfg.Site.Name
	}
	if cfg.Site.URL == "" {
		cfg.Site.URL = "http://localhost:3000"
	}
	if cfg.Content.Root == "" {
		cfg.Content.Root = "./content"
	}
	if cfg.Content.Extensions == nil {
		cfg.Content.Extensions = []string{".md", ".mdx"}
	}
	if cfg.Content.Debounce == 0 {
		cfg.Content.Debounce = 400 * time.Millisecond
	}
	if cfg.Search.TopTags == 0 {
		cfg.Search.TopTags = 10
	}
	if cfg.Search.SuggestionLimit == 0 {
		cfg.Search.SuggestionLimit = 5
	}
	if cfg.Search.Fuzziness == 0 {
		cfg.Search.Fuzziness = 1
	}
	if cfg.Navigation.Debounce == 0 {
		cfg.Navigation.Debounce = 300 * time.Millisecond
	}
	if cfg.Navigation.SessionTTL == 0 {
		cfg.Navigation.SessionTTL = 30 * time.Minute
	}
	if cfg.Navigation.MaxSessions == 0 {
		cfg.Navigation.MaxSessions = 10000
	}
}
