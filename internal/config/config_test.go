package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.API.BaseURL != DefaultBaseURL {
		t.Fatalf("base url = %q", cfg.API.BaseURL)
	}
	if cfg.API.MaxAttempts != 3 || cfg.API.RetryDelay() != 500*time.Millisecond {
		t.Fatalf("retry = %d / %s", cfg.API.MaxAttempts, cfg.API.RetryDelay())
	}
	if cfg.API.Timeout() != 10*time.Second {
		t.Fatalf("timeout = %s", cfg.API.Timeout())
	}
	if !slices.Equal(cfg.API.RetryableStatusCodes, []int{408, 429, 503, 504}) {
		t.Fatalf("codes = %v", cfg.API.RetryableStatusCodes)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeFile(t, `
api:
  base_url: http://mail.internal:8080/
  max_attempts: 5
  retry_delay_ms: 250
  retryable_status_codes: [502, 503]
display:
  default_label: STARRED
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.API.BaseURL != "http://mail.internal:8080" {
		t.Fatalf("base url = %q", cfg.API.BaseURL)
	}
	if cfg.API.MaxAttempts != 5 || cfg.API.RetryDelayMs != 250 {
		t.Fatalf("api = %+v", cfg.API)
	}
	if !slices.Equal(cfg.API.RetryableStatusCodes, []int{502, 503}) {
		t.Fatalf("codes = %v", cfg.API.RetryableStatusCodes)
	}
	if cfg.Display.DefaultLabel != "STARRED" || cfg.Display.StatusPollSec != DefaultStatusPollSec {
		t.Fatalf("display = %+v", cfg.Display)
	}
}

func TestLoadConfigInvalidNumbersFallBack(t *testing.T) {
	path := writeFile(t, `
api:
  max_attempts: lots
  retry_delay_ms: -20
  timeout_sec: 0
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.API.MaxAttempts != DefaultMaxAttempts ||
		cfg.API.RetryDelayMs != DefaultRetryDelayMs ||
		cfg.API.TimeoutSec != DefaultTimeoutSec {
		t.Fatalf("api = %+v", cfg.API)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("MAILAGENT_API_BASE_URL", "http://env:9000")
	t.Setenv("MAILAGENT_API_MAX_ATTEMPTS", "7")
	t.Setenv("MAILAGENT_API_RETRY_DELAY_MS", "soon")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.API.BaseURL != "http://env:9000" || cfg.API.MaxAttempts != 7 {
		t.Fatalf("api = %+v", cfg.API)
	}
	if cfg.API.RetryDelayMs != DefaultRetryDelayMs {
		t.Fatalf("retry delay = %d", cfg.API.RetryDelayMs)
	}
}

func TestLoadConfigMalformedYAML(t *testing.T) {
	path := writeFile(t, "api: [unclosed\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.API.BaseURL = "http://saved:5000"
	cfg.API.MaxAttempts = 4
	cfg.Metrics.Addr = "127.0.0.1:9101"

	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.API.BaseURL != "http://saved:5000" || loaded.API.MaxAttempts != 4 {
		t.Fatalf("api = %+v", loaded.API)
	}
	if loaded.Metrics.Addr != "127.0.0.1:9101" {
		t.Fatalf("metrics = %+v", loaded.Metrics)
	}
}
