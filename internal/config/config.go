// Package config defines the checker's configuration and how it is loaded.
package config

import (
	"errors"
	"time"

	"github.com/myusername/intralism-score-checker/pkg/catalogue"
	"github.com/myusername/intralism-score-checker/pkg/scraper"
)

// Sentinel error kinds for this package.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// BaseURL is the root of the ranking site.
	BaseURL string `koanf:"base_url"`

	// CataloguePath points at the ranked map CSV.
	CataloguePath string `koanf:"catalogue_path"`

	// MapLinkPrefix is prepended to catalogue map ids.
	MapLinkPrefix string `koanf:"map_link_prefix"`

	// RequestTimeout bounds each request to the ranking site.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	UserAgent string `koanf:"user_agent"`

	// Concurrency caps how many profiles are built at once.
	Concurrency int `koanf:"concurrency"`

	// SnapshotDir, when set, receives a copy of every fetched page.
	SnapshotDir string `koanf:"snapshot_dir"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		BaseURL:        scraper.DefaultBaseURL,
		CataloguePath:  "scores.csv",
		MapLinkPrefix:  catalogue.DefaultLinkPrefix,
		RequestTimeout: 30 * time.Second,
		UserAgent:      "intralism-score-checker",
		Concurrency:    2,
	}
}
