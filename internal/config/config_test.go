package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := Default()
	cfg.Auth.JWTSecret = "0123456789abcdef0123"
	return cfg
}

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := validConfig()
	original.ListenAddr = ":9090"
	original.Database = DatabaseConfig{Type: "postgres", DSN: "postgres://localhost/fridgeshare"}
	original.Lock = LockConfig{Type: "redis", RedisAddr: "localhost:6379", RedisDB: 2, TTL: Duration{5 * time.Second}}
	original.Ledger.MaxIterations = 250

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !strings.Contains(buf.String(), `ttl = "5s"`) {
		t.Errorf("expected durations written as strings, got:\n%s", buf.String())
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.ListenAddr != ":9090" {
		t.Errorf("ListenAddr = %q, want %q", got.ListenAddr, ":9090")
	}
	if got.Database != original.Database {
		t.Errorf("Database = %+v, want %+v", got.Database, original.Database)
	}
	if got.Lock != original.Lock {
		t.Errorf("Lock = %+v, want %+v", got.Lock, original.Lock)
	}
	if got.Auth.TokenDuration.Duration != 24*time.Hour {
		t.Errorf("TokenDuration = %v, want 24h", got.Auth.TokenDuration)
	}
	if got.Ledger.MaxIterations != 250 {
		t.Errorf("MaxIterations = %d, want 250", got.Ledger.MaxIterations)
	}
}

func TestManager_Read_KeepsDefaults(t *testing.T) {
	m := &Manager{}
	got, err := m.Read(strings.NewReader("log_level = \"debug\"\n[auth]\njwt_secret = \"s\"\n"))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", got.LogLevel)
	}
	if got.Database.Type != "sqlite" || got.Lock.Type != "local" {
		t.Errorf("expected default backends, got %q/%q", got.Database.Type, got.Lock.Type)
	}
	if got.Ledger.MaxIterations != 100 {
		t.Errorf("MaxIterations = %d, want default 100", got.Ledger.MaxIterations)
	}
}

func TestManager_Read_BadDuration(t *testing.T) {
	m := &Manager{}
	if _, err := m.Read(strings.NewReader("[lock]\nttl = \"soon\"\n")); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing secret", func(c *Config) { c.Auth.JWTSecret = "" }, "jwt_secret"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"unknown database", func(c *Config) { c.Database.Type = "mysql" }, "database type"},
		{"postgres without dsn", func(c *Config) { c.Database = DatabaseConfig{Type: "postgres"} }, "database.dsn"},
		{"redis without addr", func(c *Config) { c.Lock.Type = "redis" }, "redis_addr"},
		{"zero iterations", func(c *Config) { c.Ledger.MaxIterations = 0 }, "max_iterations"},
		{"relative metrics path", func(c *Config) { c.Metrics.Path = "metrics" }, "metrics.path"},
		{"metrics disabled ignores path", func(c *Config) { c.Metrics = MetricsConfig{} }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("FRIDGESHARE_LISTEN_ADDR", ":7000")
	t.Setenv("FRIDGESHARE_DB_TYPE", "postgres")
	t.Setenv("FRIDGESHARE_DB_DSN", "postgres://db/fridgeshare")
	t.Setenv("FRIDGESHARE_REDIS_DB", "3")
	t.Setenv("FRIDGESHARE_TOKEN_DURATION", "90m")
	t.Setenv("FRIDGESHARE_METRICS_ENABLED", "false")

	cfg := Default()
	if err := ApplyEnv(cfg); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if cfg.ListenAddr != ":7000" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.Database.Type != "postgres" || cfg.Database.DSN != "postgres://db/fridgeshare" {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.Lock.RedisDB != 3 {
		t.Errorf("RedisDB = %d, want 3", cfg.Lock.RedisDB)
	}
	if cfg.Auth.TokenDuration.Duration != 90*time.Minute {
		t.Errorf("TokenDuration = %v, want 90m", cfg.Auth.TokenDuration)
	}
	if cfg.Metrics.Enabled {
		t.Error("expected metrics disabled")
	}

	t.Setenv("FRIDGESHARE_MAX_ITERATIONS", "many")
	if err := ApplyEnv(Default()); err == nil {
		t.Error("expected error for non-numeric FRIDGESHARE_MAX_ITERATIONS")
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("FRIDGESHARE_JWT_SECRET", "env-secret-0123456789")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Auth.JWTSecret != "env-secret-0123456789" {
		t.Errorf("JWTSecret = %q", cfg.Auth.JWTSecret)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	if err := Init(path, validConfig()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not created: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("config mode = %v, want 0600", info.Mode().Perm())
	}

	got, err := ReadFromFile(path)
	if err != nil {
		t.Fatalf("ReadFromFile() error = %v", err)
	}
	if err := got.Validate(); err != nil {
		t.Errorf("written config does not validate: %v", err)
	}

	if err := Init(path, validConfig()); err == nil {
		t.Error("expected Init to refuse overwriting")
	}
}

func TestLoad_RejectsZeroIterationsFromEnv(t *testing.T) {
	t.Setenv("FRIDGESHARE_JWT_SECRET", "env-secret-0123456789")
	t.Setenv("FRIDGESHARE_MAX_ITERATIONS", "0")

	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "max_iterations must be positive") {
		t.Errorf("Load() error = %v, want max_iterations rejection", err)
	}
}

func TestInit_ThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fridgeshare.toml")
	if err := Init(path, validConfig()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Lock.TTL.Duration != 10*time.Second {
		t.Errorf("TTL = %v, want 10s", cfg.Lock.TTL)
	}
	if cfg.Auth.TokenDuration.Duration != 24*time.Hour {
		t.Errorf("TokenDuration = %v, want 24h", cfg.Auth.TokenDuration)
	}
	if cfg.Auth.JWTSecret != validConfig().Auth.JWTSecret {
		t.Errorf("JWTSecret = %q, want the one written by Init", cfg.Auth.JWTSecret)
	}
}
