// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "paper-survey/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// SearchConfig holds settings for the aggregation engine.
type SearchConfig struct {
	HTTPConfig `mapstructure:",squash" yaml:",inline"`

	// PrimarySource is the backend always included in a search
	// (default "s2").
	PrimarySource string `json:"primary_source" yaml:"primary_source" mapstructure:"primary_source"`

	// SourceCap limits how many backends one search may select,
	// primary included (default 3).
	SourceCap int `json:"source_cap" yaml:"source_cap" mapstructure:"source_cap"`

	// MaxResultsLimit is the ceiling on a request's max_results.
	// Requests above it are rejected before any network call (default 100).
	MaxResultsLimit int `json:"max_results_limit" yaml:"max_results_limit" mapstructure:"max_results_limit"`

	// SemanticScholarAPIKey raises the Semantic Scholar rate ceiling and
	// enables deeper pagination.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty" mapstructure:"semantic_scholar_api_key"`

	// SemanticScholarRPS is the request rate toward Semantic Scholar
	// (default 0.5; conservative without an API key).
	SemanticScholarRPS float64 `json:"semantic_scholar_rps" yaml:"semantic_scholar_rps" mapstructure:"semantic_scholar_rps"`

	// PublicAPIRPS is the request rate toward the other public backends
	// (default 1.0).
	PublicAPIRPS float64 `json:"public_api_rps" yaml:"public_api_rps" mapstructure:"public_api_rps"`

	// OpenAlexEmail is sent as the mailto parameter for polite pool access.
	OpenAlexEmail string `json:"openalex_email,omitempty" yaml:"openalex_email,omitempty" mapstructure:"openalex_email"`

	// MaxPages bounds Semantic Scholar pagination per query. Zero selects
	// the default: 4 with an API key, 2 without.
	MaxPages int `json:"max_pages" yaml:"max_pages" mapstructure:"max_pages"`

	// EnrichAuthors enables the first-author prominence lookup before
	// ranking.
	EnrichAuthors bool `json:"enrich_authors" yaml:"enrich_authors" mapstructure:"enrich_authors"`
}

// TaskConfig holds settings for the in-memory task store.
type TaskConfig struct {
	// TTL is how long a finished task remains readable (default 30m).
	TTL time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`

	// CleanupInterval is how often expired tasks are evicted (default 5m).
	CleanupInterval time.Duration `json:"cleanup_interval" yaml:"cleanup_interval" mapstructure:"cleanup_interval"`
}

// ServerConfig holds settings for the HTTP surface.
type ServerConfig struct {
	Host string `json:"host" yaml:"host" mapstructure:"host"`
	Port int    `json:"port" yaml:"port" mapstructure:"port"`
}

// HistoryConfig holds settings for the completed-search archive.
type HistoryConfig struct {
	// Enabled turns the archive on; when false nothing is written.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Path is the SQLite database file (default "paper-survey.db").
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// Config groups all component configurations.
type Config struct {
	Search  SearchConfig  `json:"search" yaml:"search" mapstructure:"search"`
	Task    TaskConfig    `json:"task" yaml:"task" mapstructure:"task"`
	Server  ServerConfig  `json:"server" yaml:"server" mapstructure:"server"`
	History HistoryConfig `json:"history" yaml:"history" mapstructure:"history"`
}

// Defaults fills zero-valued fields with their documented defaults.
func (c *Config) Defaults() {
	if c.Search.Timeout <= 0 {
		c.Search.Timeout = 25 * time.Second
	}
	if c.Search.UserAgent == "" {
		c.Search.UserAgent = "paper-survey/0.1"
	}
	if c.Search.PrimarySource == "" {
		c.Search.PrimarySource = "s2"
	}
	if c.Search.SourceCap <= 0 {
		c.Search.SourceCap = 3
	}
	if c.Search.MaxResultsLimit <= 0 {
		c.Search.MaxResultsLimit = 100
	}
	if c.Search.SemanticScholarRPS <= 0 {
		c.Search.SemanticScholarRPS = 0.5
	}
	if c.Search.PublicAPIRPS <= 0 {
		c.Search.PublicAPIRPS = 1.0
	}
	if c.Task.TTL <= 0 {
		c.Task.TTL = 30 * time.Minute
	}
	if c.Task.CleanupInterval <= 0 {
		c.Task.CleanupInterval = 5 * time.Minute
	}
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.History.Path == "" {
		c.History.Path = "paper-survey.db"
	}
}
