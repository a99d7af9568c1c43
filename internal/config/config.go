// Package config loads fis-results configuration.
//
// Values are layered, lowest precedence first: built-in defaults, an optional
// YAML file, then the FISRESULTS_RETRY_ATTEMPTS and FISRESULTS_TIMEOUT
// environment variables. Command-line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/pfrederiksen/fis-results/internal/fetcher"
	"github.com/pfrederiksen/fis-results/internal/logger"
	"github.com/pfrederiksen/fis-results/internal/normalizer"
	"github.com/pfrederiksen/fis-results/internal/resultcache"
	"github.com/pfrederiksen/fis-results/internal/scrape"
)

// Sentinel error kinds for this package
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

// Config contains process configuration
type Config struct {
	// URLTemplate is the result page URL with an {id} placeholder.
	URLTemplate string `koanf:"url_template"`

	// Timeout bounds a single page fetch.
	Timeout time.Duration `koanf:"timeout"`

	UserAgent string `koanf:"user_agent"`

	Retry RetryConfig `koanf:"retry"`

	// Schema selects the normalizer schema: individual or team.
	Schema string `koanf:"schema"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// ListenAddr configures the HTTP listen address of serve, e.g. ":8080".
	ListenAddr string `koanf:"listen_addr"`

	Cache CacheConfig `koanf:"cache"`

	// TraceEndpoint is an OTLP/HTTP URL; tracing is off when empty.
	TraceEndpoint string `koanf:"trace_endpoint"`
}

// RetryConfig mirrors scrape.RetryPolicy
type RetryConfig struct {
	Attempts        int           `koanf:"attempts"`
	InitialInterval time.Duration `koanf:"initial_interval"`
	MaxInterval     time.Duration `koanf:"max_interval"`
	Multiplier      float64       `koanf:"multiplier"`
	Jitter          float64       `koanf:"jitter"`
}

// CacheConfig sizes the session result cache
type CacheConfig struct {
	Size int           `koanf:"size"`
	TTL  time.Duration `koanf:"ttl"`
}

// New returns a Config holding the defaults
func New() *Config {
	policy := scrape.DefaultRetryPolicy()
	return &Config{
		URLTemplate: fetcher.DefaultURLTemplate,
		Timeout:     fetcher.DefaultTimeout,
		UserAgent:   fetcher.DefaultUserAgent,
		Retry: RetryConfig{
			Attempts:        policy.MaxAttempts,
			InitialInterval: policy.InitialInterval,
			MaxInterval:     policy.MaxInterval,
			Multiplier:      policy.Multiplier,
			Jitter:          policy.Jitter,
		},
		Schema:     normalizer.Individual.Name,
		LogLevel:   "info",
		ListenAddr: ":8080",
		Cache: CacheConfig{
			Size: resultcache.DefaultSize,
			TTL:  resultcache.DefaultTTL,
		},
	}
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	if _, err := fetcher.ValidateTemplate(c.URLTemplate); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidConfig, c.Timeout)
	}
	if err := c.RetryPolicy().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := normalizer.SchemaByName(c.Schema); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("%w: listen_addr must not be empty", ErrInvalidConfig)
	}
	if c.Cache.Size < 0 || c.Cache.TTL < 0 {
		return fmt.Errorf("%w: cache size and ttl must not be negative", ErrInvalidConfig)
	}
	return nil
}

// FetcherOptions returns the fetcher settings
func (c *Config) FetcherOptions() fetcher.Options {
	return fetcher.Options{
		URLTemplate: c.URLTemplate,
		Timeout:     c.Timeout,
		UserAgent:   c.UserAgent,
	}
}

// RetryPolicy returns the scrape retry policy
func (c *Config) RetryPolicy() scrape.RetryPolicy {
	return scrape.RetryPolicy{
		MaxAttempts:     c.Retry.Attempts,
		InitialInterval: c.Retry.InitialInterval,
		MaxInterval:     c.Retry.MaxInterval,
		Multiplier:      c.Retry.Multiplier,
		Jitter:          c.Retry.Jitter,
	}
}

// NormalizerSchema returns the selected schema
func (c *Config) NormalizerSchema() (normalizer.Schema, error) {
	return normalizer.SchemaByName(c.Schema)
}

// Level returns the parsed log level
func (c *Config) Level() (logger.Level, error) {
	return logger.ParseLevel(c.LogLevel)
}
