// Package app wires configuration, storage, locking, metrics and the Connect
// services into one HTTP handler.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mmynk/fridgeshare/internal/auth"
	"github.com/mmynk/fridgeshare/internal/clock"
	"github.com/mmynk/fridgeshare/internal/config"
	"github.com/mmynk/fridgeshare/internal/ledger"
	"github.com/mmynk/fridgeshare/internal/lock"
	"github.com/mmynk/fridgeshare/internal/metrics"
	"github.com/mmynk/fridgeshare/internal/storage"
	"github.com/mmynk/fridgeshare/internal/storage/postgres"
	"github.com/mmynk/fridgeshare/internal/storage/sqlite"
)

// Migrator is implemented by stores that track a schema version.
type Migrator interface {
	SchemaVersion() (version uint, dirty bool, err error)
}

// App owns every long-lived dependency of a running server.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Store    storage.Store
	Engine   *ledger.Engine
	JWT      *auth.JWTManager
	Registry *prometheus.Registry

	closers []func() error
}

// New opens the configured store and locker and builds the ledger engine.
// The caller must Close the returned App.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store, err := OpenStore(cfg.Database)
	if err != nil {
		return nil, err
	}
	a := &App{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		JWT:     auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenDuration.Duration),
		closers: []func() error{store.Close},
	}
	logger.Info("Storage initialized", "type", cfg.Database.Type)

	locker, closeLocker, err := NewLocker(ctx, cfg.Lock)
	if err != nil {
		a.Close()
		return nil, err
	}
	if closeLocker != nil {
		a.closers = append(a.closers, closeLocker)
	}

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(a.Registry)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("registering metrics: %w", err)
	}

	a.Engine = ledger.NewEngine(store,
		ledger.WithLocker(locker),
		ledger.WithClock(clock.RealClock{}),
		ledger.WithIDGenerator(clock.UUIDGenerator{}),
		ledger.WithLogger(logger),
		ledger.WithMetrics(m),
		ledger.WithMaxIterations(cfg.Ledger.MaxIterations),
	)
	return a, nil
}

// OpenStore opens and migrates the store selected by cfg.Type.
func OpenStore(cfg config.DatabaseConfig) (storage.Store, error) {
	switch cfg.Type {
	case "sqlite":
		return sqlite.New(cfg.Path)
	case "postgres":
		return postgres.New(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown database type %q", cfg.Type)
	}
}

// NewLocker returns the locker selected by cfg.Type and, for redis, a close
// function for its client. A redis locker is pinged before it is returned.
func NewLocker(ctx context.Context, cfg config.LockConfig) (lock.Locker, func() error, error) {
	switch cfg.Type {
	case "local":
		return lock.NewLocal(), nil, nil
	case "redis":
		r := lock.NewRedis(lock.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.TTL.Duration,
		})
		if err := r.Ping(ctx); err != nil {
			r.Close()
			return nil, nil, fmt.Errorf("connecting to redis at %s: %w", cfg.RedisAddr, err)
		}
		return r, r.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown lock type %q", cfg.Type)
	}
}

// Close releases the store and locker in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
