package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if RANKINDEX_CONFIG is set
//  3. env (prefix RANKINDEX_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("RANKINDEX_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: RANKINDEX_ADDR, RANKINDEX_DATA_URL, ...
	// Map env keys like RANKINDEX_DATA_URL -> data_url (flat keys).
	// Underscores are preserved to match koanf tags on the struct.
	envProvider := env.Provider("RANKINDEX_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "rankindex_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DataURL == "" && c.DataFile == "":
		return fmt.Errorf("%w: data_url or data_file is required", ErrInvalidConfig)
	case c.RefreshIntervalSeconds <= 0:
		return fmt.Errorf("%w: refresh_interval_seconds must be positive", ErrInvalidConfig)
	case c.FetchTimeoutSeconds <= 0:
		return fmt.Errorf("%w: fetch_timeout_seconds must be positive", ErrInvalidConfig)
	case c.DefaultPageLimit <= 0 || c.MaxPageLimit <= 0 || c.TopCompaniesLimit <= 0:
		return fmt.Errorf("%w: page limits must be positive", ErrInvalidConfig)
	case c.DefaultPageLimit > c.MaxPageLimit:
		return fmt.Errorf("%w: default_page_limit must not exceed max_page_limit", ErrInvalidConfig)
	case c.RateLimitRequests < 0 || c.RateLimitWindowSeconds <= 0:
		return fmt.Errorf("%w: invalid rate limit settings", ErrInvalidConfig)
	}
	return nil
}
