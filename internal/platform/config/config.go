// Package config resolves web frontend settings from an optional YAML or
// TOML file and the environment. Environment variables win over the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/todo-1m/webclient/internal/platform/env"
)

const PathEnv = "TODO_WEB_CONFIG"

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	WebAddr          string
	APIBaseURL       string
	SessionSecret    string
	SessionStore     string
	SessionTTL       time.Duration
	DatabaseURL      string
	SQLitePath       string
	NATSURL          string
	Timezone         string
	Locale           string
	RequestTimeout   time.Duration
	ShutdownTimeout  time.Duration
	TracingExporter  string
	LogLevel         string
	ScopeTodosToUser bool
	DefaultLocation  string
}

// fileConfig mirrors Config with keys as they appear in config files.
type fileConfig struct {
	WebAddr          string `yaml:"web_addr" toml:"web_addr"`
	APIBaseURL       string `yaml:"api_base_url" toml:"api_base_url"`
	SessionSecret    string `yaml:"session_secret" toml:"session_secret"`
	SessionStore     string `yaml:"session_store" toml:"session_store"`
	SessionTTL       string `yaml:"session_ttl" toml:"session_ttl"`
	DatabaseURL      string `yaml:"database_url" toml:"database_url"`
	SQLitePath       string `yaml:"sqlite_path" toml:"sqlite_path"`
	NATSURL          string `yaml:"nats_url" toml:"nats_url"`
	Timezone         string `yaml:"timezone" toml:"timezone"`
	Locale           string `yaml:"locale" toml:"locale"`
	RequestTimeout   string `yaml:"request_timeout" toml:"request_timeout"`
	ShutdownTimeout  string `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
	TracingExporter  string `yaml:"tracing_exporter" toml:"tracing_exporter"`
	LogLevel         string `yaml:"log_level" toml:"log_level"`
	ScopeTodosToUser *bool  `yaml:"scope_todos_to_user" toml:"scope_todos_to_user"`
	DefaultLocation  string `yaml:"default_location" toml:"default_location"`
}

func Defaults() Config {
	return Config{
		WebAddr:         env.DefaultWebAddr,
		APIBaseURL:      env.DefaultAPIBaseURL,
		SessionSecret:   "dev-session-secret-change-me",
		SessionStore:    StoreMemory,
		SessionTTL:      24 * time.Hour,
		DatabaseURL:     env.DefaultDatabaseURL,
		SQLitePath:      env.DefaultSQLitePath,
		Timezone:        env.DefaultTimezone,
		Locale:          env.DefaultLocale,
		RequestTimeout:  10 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		TracingExporter: "none",
		LogLevel:        "info",
		DefaultLocation: "Istanbul",
	}
}

// Load reads path (or $TODO_WEB_CONFIG when path is empty), then applies
// environment overrides. A missing path means defaults plus environment.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		path = os.Getenv(PathEnv)
	}
	if path != "" {
		if err := loadFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	cfg.SessionStore = strings.ToLower(strings.TrimSpace(cfg.SessionStore))
	return cfg, cfg.Validate()
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return fmt.Errorf("decode yaml %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &fc); err != nil {
			return fmt.Errorf("decode toml %s: %w", path, err)
		}
	default:
		return fmt.Errorf("%w: unsupported config extension %q", ErrInvalid, ext)
	}
	return fc.apply(cfg)
}

func (fc fileConfig) apply(cfg *Config) error {
	setString(&cfg.WebAddr, fc.WebAddr)
	setString(&cfg.APIBaseURL, fc.APIBaseURL)
	setString(&cfg.SessionSecret, fc.SessionSecret)
	setString(&cfg.SessionStore, fc.SessionStore)
	setString(&cfg.DatabaseURL, fc.DatabaseURL)
	setString(&cfg.SQLitePath, fc.SQLitePath)
	setString(&cfg.NATSURL, fc.NATSURL)
	setString(&cfg.Timezone, fc.Timezone)
	setString(&cfg.Locale, fc.Locale)
	setString(&cfg.TracingExporter, fc.TracingExporter)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.DefaultLocation, fc.DefaultLocation)
	if fc.ScopeTodosToUser != nil {
		cfg.ScopeTodosToUser = *fc.ScopeTodosToUser
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"session_ttl", fc.SessionTTL, &cfg.SessionTTL},
		{"request_timeout", fc.RequestTimeout, &cfg.RequestTimeout},
		{"shutdown_timeout", fc.ShutdownTimeout, &cfg.ShutdownTimeout},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil || parsed <= 0 {
			return fmt.Errorf("%w: %s must be a positive duration, got %q", ErrInvalid, d.key, d.raw)
		}
		*d.dst = parsed
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.WebAddr = env.String("WEB_ADDR", cfg.WebAddr)
	cfg.APIBaseURL = env.String("API_BASE_URL", cfg.APIBaseURL)
	cfg.SessionSecret = env.String("SESSION_SECRET", cfg.SessionSecret)
	cfg.SessionStore = env.String("SESSION_STORE", cfg.SessionStore)
	cfg.SessionTTL = env.Duration("SESSION_TTL", cfg.SessionTTL)
	cfg.DatabaseURL = env.String("DATABASE_URL", cfg.DatabaseURL)
	cfg.SQLitePath = env.String("SQLITE_PATH", cfg.SQLitePath)
	cfg.NATSURL = env.String("NATS_URL", cfg.NATSURL)
	cfg.Timezone = env.String("TIMEZONE", cfg.Timezone)
	cfg.Locale = env.String("LOCALE", cfg.Locale)
	cfg.RequestTimeout = env.Duration("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.ShutdownTimeout = env.Duration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.TracingExporter = env.String("TRACING_EXPORTER", cfg.TracingExporter)
	cfg.LogLevel = env.String("LOG_LEVEL", cfg.LogLevel)
	cfg.ScopeTodosToUser = env.Bool("SCOPE_TODOS_TO_USER", cfg.ScopeTodosToUser)
	cfg.DefaultLocation = env.String("DEFAULT_LOCATION", cfg.DefaultLocation)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func (c Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("%w: api_base_url is required", ErrInvalid)
	}
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("%w: api_base_url must be an http(s) URL, got %q", ErrInvalid, c.APIBaseURL)
	}
	switch c.SessionStore {
	case StoreMemory, StorePostgres, StoreSQLite:
	default:
		return fmt.Errorf("%w: unknown session_store %q", ErrInvalid, c.SessionStore)
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("%w: session_secret is required", ErrInvalid)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	switch c.TracingExporter {
	case "", "none", "stdout":
	default:
		return fmt.Errorf("%w: unknown tracing_exporter %q", ErrInvalid, c.TracingExporter)
	}
	return nil
}

// Location resolves Timezone. "Local" and "" map to the process zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Language is the collation locale; an unparsable Locale falls back to
// English.
func (c Config) Language() language.Tag {
	tag, err := language.Parse(strings.TrimSpace(c.Locale))
	if err != nil {
		return language.English
	}
	return tag
}
