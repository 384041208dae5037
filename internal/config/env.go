package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// ApplyEnv overrides cfg with FRIDGESHARE_* environment variables.
func ApplyEnv(cfg *Config) error {
	cfg.ListenAddr = getEnv("FRIDGESHARE_LISTEN_ADDR", cfg.ListenAddr)
	cfg.LogLevel = getEnv("FRIDGESHARE_LOG_LEVEL", getEnv("LOG_LEVEL", cfg.LogLevel))

	cfg.Database.Type = getEnv("FRIDGESHARE_DB_TYPE", cfg.Database.Type)
	cfg.Database.Path = getEnv("FRIDGESHARE_DB_PATH", cfg.Database.Path)
	cfg.Database.DSN = getEnv("FRIDGESHARE_DB_DSN", cfg.Database.DSN)

	cfg.Lock.Type = getEnv("FRIDGESHARE_LOCK_TYPE", cfg.Lock.Type)
	cfg.Lock.RedisAddr = getEnv("FRIDGESHARE_REDIS_ADDR", cfg.Lock.RedisAddr)
	cfg.Lock.RedisPassword = getEnv("FRIDGESHARE_REDIS_PASSWORD", cfg.Lock.RedisPassword)

	cfg.Auth.JWTSecret = getEnv("FRIDGESHARE_JWT_SECRET", cfg.Auth.JWTSecret)

	if v := os.Getenv("FRIDGESHARE_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FRIDGESHARE_REDIS_DB: %w", err)
		}
		cfg.Lock.RedisDB = n
	}
	if v := os.Getenv("FRIDGESHARE_TOKEN_DURATION"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("FRIDGESHARE_TOKEN_DURATION: %w", err)
		}
		cfg.Auth.TokenDuration = Duration{d}
	}
	if v := os.Getenv("FRIDGESHARE_MAX_ITERATIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FRIDGESHARE_MAX_ITERATIONS: %w", err)
		}
		cfg.Ledger.MaxIterations = n
	}
	if v := os.Getenv("FRIDGESHARE_METRICS_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("FRIDGESHARE_METRICS_ENABLED: %w", err)
		}
		cfg.Metrics.Enabled = b
	}
	return nil
}
