// Package config loads fridgeshare settings from a TOML file and the
// environment.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for fridgeshare.
type Config struct {
	ListenAddr string         `toml:"listen_addr"`
	LogLevel   string         `toml:"log_level"` // debug, info, warn, error
	Database   DatabaseConfig `toml:"database"`
	Lock       LockConfig     `toml:"lock"`
	Auth       AuthConfig     `toml:"auth"`
	Ledger     LedgerConfig   `toml:"ledger"`
	Metrics    MetricsConfig  `toml:"metrics"`
}

// DatabaseConfig selects the store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type string `toml:"type"`           // "sqlite" or "postgres"
	Path string `toml:"path,omitempty"` // only used for type=sqlite
	DSN  string `toml:"dsn,omitempty"`  // only used for type=postgres
}

// LockConfig selects how balance clears are serialized per fridge.
type LockConfig struct {
	Type          string   `toml:"type"` // "local" or "redis"
	RedisAddr     string   `toml:"redis_addr,omitempty"`
	RedisPassword string   `toml:"redis_password,omitempty"`
	RedisDB       int      `toml:"redis_db,omitempty"`
	TTL           Duration `toml:"ttl"`
}

// AuthConfig holds the bearer token settings.
type AuthConfig struct {
	JWTSecret     string   `toml:"jwt_secret"`
	TokenDuration Duration `toml:"token_duration"`
}

// LedgerConfig tunes balance computation.
type LedgerConfig struct {
	MaxIterations int `toml:"max_iterations"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Duration is a time.Duration written as "10s" in TOML.
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// Default returns a Config suitable for local development. JWTSecret is left
// empty and must be supplied.
func Default() *Config {
	return &Config{
		ListenAddr: ":8080",
		LogLevel:   "info",
		Database: DatabaseConfig{
			Type: "sqlite",
			Path: filepath.Join("data", "fridgeshare.db"),
		},
		Lock: LockConfig{
			Type: "local",
			TTL:  Duration{10 * time.Second},
		},
		Auth: AuthConfig{
			TokenDuration: Duration{24 * time.Hour},
		},
		Ledger: LedgerConfig{
			MaxIterations: 100,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate reports the first setting that cannot work.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr is required")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn or error, got %q", c.LogLevel)
	}
	switch c.Database.Type {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("unknown database type %q", c.Database.Type)
	}
	switch c.Lock.Type {
	case "local":
	case "redis":
		if c.Lock.RedisAddr == "" {
			return fmt.Errorf("lock.redis_addr is required for redis")
		}
	default:
		return fmt.Errorf("unknown lock type %q", c.Lock.Type)
	}
	if c.Lock.TTL.Duration <= 0 {
		return fmt.Errorf("lock.ttl must be positive")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("auth.jwt_secret must be at least 16 characters")
	}
	if c.Auth.TokenDuration.Duration <= 0 {
		return fmt.Errorf("auth.token_duration must be positive")
	}
	if c.Ledger.MaxIterations <= 0 {
		return fmt.Errorf("ledger.max_iterations must be positive")
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /")
	}
	return nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader. Settings missing from the
// input keep their Default values.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	cfg := Default()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load reads path (or starts from Default when path is empty), applies
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = ReadFromFile(path); err != nil {
			return nil, err
		}
	}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// The file holds the JWT secret.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
