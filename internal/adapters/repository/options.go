package repository

import (
	"net/http"
	"time"

	"github.com/openbi/rankindex/pkg/logger"
)

// LoaderOption applies a configuration option to the Loader.
type LoaderOption func(*Loader)

// WithURL sets the HTTP source of the dataset document.
func WithURL(url string) LoaderOption {
	return func(l *Loader) {
		l.url = url
	}
}

// WithFilePath sets a local file source. When set it takes precedence over
// the URL; useful for development and smoke testing.
func WithFilePath(path string) LoaderOption {
	return func(l *Loader) {
		l.filePath = path
	}
}

// WithHTTPClient replaces the HTTP client used for fetching.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(l *Loader) {
		if client != nil {
			l.client = client
		}
	}
}

// WithRefreshInterval sets how often the dataset is re-fetched.
func WithRefreshInterval(interval time.Duration) LoaderOption {
	return func(l *Loader) {
		if interval > 0 {
			l.interval = interval
		}
	}
}

// WithLogger sets a custom logger for the Loader.
func WithLogger(log logger.Logger) LoaderOption {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}
