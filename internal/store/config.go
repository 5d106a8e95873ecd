package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

const (
	BackendFiles  = "files"
	BackendSQLite = "sqlite"

	DefaultTick     = 250 * time.Millisecond
	DefaultCalendar = "primary"
)

// Config is the user configuration, read from YAML and then overridden by
// environment variables. Command-line flags are applied by the caller.
type Config struct {
	// Timezone is an IANA zone name or "Local".
	Timezone     string `yaml:"timezone,omitempty"`
	CacheDir     string `yaml:"cache_dir,omitempty"`
	CacheBackend string `yaml:"cache_backend,omitempty"`
	// Tick is the UI drain interval, as a Go duration string.
	Tick string `yaml:"tick,omitempty"`
	// RefreshCron schedules background refreshes; empty disables them.
	RefreshCron string `yaml:"refresh_cron,omitempty"`
	// ClientSecret is the OAuth client JSON downloaded from the Google console.
	ClientSecret    string `yaml:"client_secret,omitempty"`
	TokenDir        string `yaml:"token_dir,omitempty"`
	DefaultCalendar string `yaml:"default_calendar,omitempty"`
	LogLevel        string `yaml:"log_level,omitempty"`
}

type envOverrides struct {
	Timezone     string `env:"CALPERSONAL_TZ"`
	CacheDir     string `env:"CALPERSONAL_CACHE_DIR"`
	CacheBackend string `env:"CALPERSONAL_CACHE_BACKEND"`
	Tick         string `env:"CALPERSONAL_TICK"`
	RefreshCron  string `env:"CALPERSONAL_REFRESH_CRON"`
	LogLevel     string `env:"CALPERSONAL_LOG_LEVEL"`
	ClientSecret string `env:"GOOGLE_CLIENT_SECRET_FILE"`
}

func DefaultConfig() *Config {
	return &Config{
		Timezone:        "Local",
		CacheDir:        "~/.cache/calpersonal",
		CacheBackend:    BackendFiles,
		Tick:            DefaultTick.String(),
		ClientSecret:    "~/.config/calpersonal/client_secret.json",
		TokenDir:        "~/.config/calpersonal",
		DefaultCalendar: DefaultCalendar,
		LogLevel:        "info",
	}
}

// ConfigDir returns the directory holding config.yaml.
func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.config).
	if v := strings.TrimSpace(os.Getenv("CALPERSONAL_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "calpersonal"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadConfig reads path (empty means ConfigPath), applies environment
// overrides and normalizes. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	set := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	set(&c.Timezone, o.Timezone)
	set(&c.CacheDir, o.CacheDir)
	set(&c.CacheBackend, o.CacheBackend)
	set(&c.Tick, o.Tick)
	set(&c.RefreshCron, o.RefreshCron)
	set(&c.LogLevel, o.LogLevel)
	set(&c.ClientSecret, o.ClientSecret)
	return nil
}

// Normalize fills in missing values and expands ~ in paths.
func (c *Config) Normalize() error {
	def := DefaultConfig()
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.CacheDir == "" {
		c.CacheDir = def.CacheDir
	}
	switch strings.ToLower(strings.TrimSpace(c.CacheBackend)) {
	case BackendSQLite:
		c.CacheBackend = BackendSQLite
	default:
		c.CacheBackend = BackendFiles
	}
	if d, err := time.ParseDuration(c.Tick); err != nil || d <= 0 {
		c.Tick = def.Tick
	}
	if c.ClientSecret == "" {
		c.ClientSecret = def.ClientSecret
	}
	if c.TokenDir == "" {
		c.TokenDir = def.TokenDir
	}
	if c.DefaultCalendar == "" {
		c.DefaultCalendar = def.DefaultCalendar
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}

	for _, p := range []*string{&c.CacheDir, &c.ClientSecret, &c.TokenDir} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("expand %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// Location resolves the display timezone.
func (c *Config) Location() (*time.Location, error) {
	switch strings.TrimSpace(c.Timezone) {
	case "", "Local", "local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) TickInterval() time.Duration {
	d, err := time.ParseDuration(c.Tick)
	if err != nil || d <= 0 {
		return DefaultTick
	}
	return d
}

func (c *Config) LogPath() string {
	return filepath.Join(c.CacheDir, "calpersonal.log")
}
