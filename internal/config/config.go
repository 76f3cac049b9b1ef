// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load() layers a YAML file and environment variables on top.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// APIKey is the bearer token protected routes require. Empty leaves the
	// query surface closed.
	APIKey string `koanf:"api_key"`

	// DataURL points at the ranking dataset document over HTTP(S).
	DataURL string `koanf:"data_url"`

	// DataFile points at a local dataset document. Takes precedence over
	// DataURL when both are set.
	DataFile string `koanf:"data_file"`

	// RefreshIntervalSeconds sets how often the dataset is re-fetched.
	RefreshIntervalSeconds int `koanf:"refresh_interval_seconds"`

	// FetchTimeoutSeconds bounds a single dataset fetch.
	FetchTimeoutSeconds int `koanf:"fetch_timeout_seconds"`

	// DefaultPageLimit applies when a rankings request omits the limit.
	DefaultPageLimit int `koanf:"default_page_limit"`

	// MaxPageLimit caps the rankings page size.
	MaxPageLimit int `koanf:"max_page_limit"`

	// TopCompaniesLimit sets the size of top-companies responses.
	TopCompaniesLimit int `koanf:"top_companies_limit"`

	// RateLimitRequests allows this many requests per client IP per window.
	// Zero disables rate limiting.
	RateLimitRequests int `koanf:"rate_limit_requests"`

	// RateLimitWindowSeconds is the rate limit window length.
	RateLimitWindowSeconds int `koanf:"rate_limit_window_seconds"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:               "info",
		Addr:                   ":8080",
		RefreshIntervalSeconds: 600,
		FetchTimeoutSeconds:    15,
		DefaultPageLimit:       25,
		MaxPageLimit:           100,
		TopCompaniesLimit:      10,
		RateLimitRequests:      100,
		RateLimitWindowSeconds: 60,
	}
}
