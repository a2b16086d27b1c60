// Package config loads mailagent settings from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. MAILAGENT_API_BASE_URL.
const EnvPrefix = "MAILAGENT"

const (
	DefaultBaseURL       = "http://localhost:5000"
	DefaultTimeoutSec    = 10
	DefaultMaxAttempts   = 3
	DefaultRetryDelayMs  = 500
	DefaultStatusPollSec = 30
	DefaultMaxEmails     = 50
)

// APIConfig describes how to reach the backend and how hard to retry.
type APIConfig struct {
	// BaseURL is the root URL of the mail backend.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec is the per-attempt timeout of ordinary requests.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// MaxAttempts is the number of physical attempts per request.
	MaxAttempts int `mapstructure:"max_attempts" yaml:"max_attempts"`

	// RetryDelayMs is the fixed wait between attempts.
	RetryDelayMs int `mapstructure:"retry_delay_ms" yaml:"retry_delay_ms"`

	// RetryableStatusCodes are retried unless the body is a structured
	// backend error.
	RetryableStatusCodes []int `mapstructure:"retryable_status_codes" yaml:"retryable_status_codes"`
}

// Timeout returns TimeoutSec as a duration.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// RetryDelay returns RetryDelayMs as a duration.
func (c APIConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

// DisplayConfig holds UI preferences.
type DisplayConfig struct {
	Theme         string `mapstructure:"theme" yaml:"theme"`
	DefaultLabel  string `mapstructure:"default_label" yaml:"default_label"`
	StatusPollSec int    `mapstructure:"status_poll_sec" yaml:"status_poll_sec"`
	MaxEmails     int    `mapstructure:"max_emails" yaml:"max_emails"`
}

// LogConfig controls the log file. The terminal belongs to the UI, so
// logs never go to stdout.
type LogConfig struct {
	File  string `mapstructure:"file" yaml:"file"`
	Level string `mapstructure:"level" yaml:"level"`
}

// CacheConfig locates the offline SQLite cache.
type CacheConfig struct {
	Path     string `mapstructure:"path" yaml:"path"`
	Disabled bool   `mapstructure:"disabled" yaml:"disabled"`
}

// MetricsConfig enables the prometheus listener when Addr is set.
type MetricsConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Cache   CacheConfig   `mapstructure:"cache" yaml:"cache"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// Dir returns ~/.config/mailagent, or "." when the home directory is
// unknown.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "mailagent")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/mailagent/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Default returns the configuration used when no file exists.
func Default() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			BaseURL:              DefaultBaseURL,
			TimeoutSec:           DefaultTimeoutSec,
			MaxAttempts:          DefaultMaxAttempts,
			RetryDelayMs:         DefaultRetryDelayMs,
			RetryableStatusCodes: []int{408, 429, 503, 504},
		},
		Display: DisplayConfig{
			Theme:         "default",
			DefaultLabel:  "INBOX",
			StatusPollSec: DefaultStatusPollSec,
			MaxEmails:     DefaultMaxEmails,
		},
		Log: LogConfig{
			File:  filepath.Join(Dir(), "mailagent.log"),
			Level: "info",
		},
		Cache: CacheConfig{
			Path: filepath.Join(Dir(), "cache.db"),
		},
	}
}

// positiveIntKeys must hold positive integers. Anything else, including
// unparsable text from the file or the environment, falls back to the
// default instead of failing the load.
var positiveIntKeys = map[string]int{
	"api.timeout_sec":         DefaultTimeoutSec,
	"api.max_attempts":        DefaultMaxAttempts,
	"api.retry_delay_ms":      DefaultRetryDelayMs,
	"display.status_poll_sec": DefaultStatusPollSec,
	"display.max_emails":      DefaultMaxEmails,
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout_sec", d.API.TimeoutSec)
	v.SetDefault("api.max_attempts", d.API.MaxAttempts)
	v.SetDefault("api.retry_delay_ms", d.API.RetryDelayMs)
	v.SetDefault("api.retryable_status_codes", d.API.RetryableStatusCodes)
	v.SetDefault("display.theme", d.Display.Theme)
	v.SetDefault("display.default_label", d.Display.DefaultLabel)
	v.SetDefault("display.status_poll_sec", d.Display.StatusPollSec)
	v.SetDefault("display.max_emails", d.Display.MaxEmails)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("cache.path", d.Cache.Path)
	v.SetDefault("cache.disabled", false)
	v.SetDefault("metrics.addr", "")
	return v
}

// LoadConfig reads configuration from the given YAML file path using Viper,
// then applies MAILAGENT_* environment overrides. A missing file yields
// the defaults with overrides applied.
func LoadConfig(path string) (*AppConfig, error) {
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	for key, def := range positiveIntKeys {
		n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
		if err != nil || n <= 0 {
			n = def
		}
		v.Set(key, n)
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultBaseURL
	}
	if cfg.Display.DefaultLabel == "" {
		cfg.Display.DefaultLabel = "INBOX"
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", map[string]any{
		"base_url":               cfg.API.BaseURL,
		"timeout_sec":            cfg.API.TimeoutSec,
		"max_attempts":           cfg.API.MaxAttempts,
		"retry_delay_ms":         cfg.API.RetryDelayMs,
		"retryable_status_codes": cfg.API.RetryableStatusCodes,
	})
	v.Set("display", map[string]any{
		"theme":           cfg.Display.Theme,
		"default_label":   cfg.Display.DefaultLabel,
		"status_poll_sec": cfg.Display.StatusPollSec,
		"max_emails":      cfg.Display.MaxEmails,
	})
	v.Set("log", map[string]any{"file": cfg.Log.File, "level": cfg.Log.Level})
	v.Set("cache", map[string]any{"path": cfg.Cache.Path, "disabled": cfg.Cache.Disabled})
	v.Set("metrics", map[string]any{"addr": cfg.Metrics.Addr})

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
