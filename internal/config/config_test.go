package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pfrederiksen/fis-results/internal/fetcher"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.URLTemplate != fetcher.DefaultURLTemplate {
		t.Errorf("URLTemplate = %q", cfg.URLTemplate)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Timeout)
	}
	if cfg.Retry.Attempts != 3 {
		t.Errorf("Retry.Attempts = %d, want 3", cfg.Retry.Attempts)
	}
	if cfg.Schema != "individual" {
		t.Errorf("Schema = %q, want individual", cfg.Schema)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfigFile(t, `
url_template: "https://www.live-timing.com/race2.php?r={id}"
timeout: 5s
schema: team
retry:
  attempts: 5
  initial_interval: 100ms
cache:
  ttl: 1m
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.URLTemplate != "https://www.live-timing.com/race2.php?r={id}" {
		t.Errorf("URLTemplate = %q", cfg.URLTemplate)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.Schema != "team" {
		t.Errorf("Schema = %q, want team", cfg.Schema)
	}
	if cfg.Retry.Attempts != 5 || cfg.Retry.InitialInterval != 100*time.Millisecond {
		t.Errorf("Retry = %+v", cfg.Retry)
	}
	// Keys absent from the file keep their defaults
	if cfg.Retry.MaxInterval != 5*time.Second || cfg.Retry.Multiplier != 2 {
		t.Errorf("Retry defaults lost: %+v", cfg.Retry)
	}
	if cfg.Cache.TTL != time.Minute || cfg.Cache.Size != 128 {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, "timeout: 5s\nretry:\n  attempts: 5\n")
	t.Setenv("FISRESULTS_RETRY_ATTEMPTS", "7")
	t.Setenv("FISRESULTS_TIMEOUT", "2s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Retry.Attempts != 7 {
		t.Errorf("Retry.Attempts = %d, want 7", cfg.Retry.Attempts)
	}
	if cfg.Timeout != 2*time.Second {
		t.Errorf("Timeout = %v, want 2s", cfg.Timeout)
	}
}

func TestLoad_IgnoresOtherEnv(t *testing.T) {
	t.Setenv("FISRESULTS_URL_TEMPLATE", "https://evil.example/{id}")
	t.Setenv("FISRESULTS_SCHEMA", "team")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.URLTemplate != fetcher.DefaultURLTemplate {
		t.Errorf("URLTemplate = %q, env must not override it", cfg.URLTemplate)
	}
	if cfg.Schema != "individual" {
		t.Errorf("Schema = %q, env must not override it", cfg.Schema)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"invalid yaml", "invalid: yaml: content: [", ErrLoadConfig},
		{"template without placeholder", "url_template: https://www.fis-ski.com/results\n", ErrInvalidConfig},
		{"unknown schema", "schema: relay\n", ErrInvalidConfig},
		{"zero attempts", "retry:\n  attempts: 0\n", ErrInvalidConfig},
		{"negative timeout", "timeout: -1s\n", ErrInvalidConfig},
		{"bad log level", "log_level: loud\n", ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfigFile(t, tt.content))
			if !errors.Is(err, tt.want) {
				t.Errorf("Load() error = %v, want %v", err, tt.want)
			}
			if cfg != nil {
				t.Error("Load() should not return a config on error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/non/existent/config.yaml"); !errors.Is(err, ErrLoadConfig) {
		t.Errorf("Load() error = %v, want ErrLoadConfig", err)
	}
}

func TestConfig_RetryPolicy(t *testing.T) {
	cfg := New()
	cfg.Retry.Attempts = 4
	cfg.Retry.Multiplier = 1

	policy := cfg.RetryPolicy()
	if policy.MaxAttempts != 4 || policy.Multiplier != 1 {
		t.Errorf("RetryPolicy() = %+v", policy)
	}
	if opts := cfg.FetcherOptions(); opts.Timeout != cfg.Timeout || opts.URLTemplate != cfg.URLTemplate {
		t.Errorf("FetcherOptions() = %+v", opts)
	}
}
