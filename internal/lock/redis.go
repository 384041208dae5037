package lock

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	redis "github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// releaseScript deletes the key only if it still holds our token, so an
// expired lock re-acquired by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Config is the redis lock configuration.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration // how long a crashed holder can block others
	Retry    time.Duration // polling interval while waiting
}

// Redis is a Locker shared by every server instance pointing at the same
// redis.
type Redis struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	retry  time.Duration
}

// NewRedis creates a Redis locker with its own client.
func NewRedis(cfg Config) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisWithClient(client, cfg.TTL, cfg.Retry)
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client redis.UniversalClient, ttl, retry time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if retry <= 0 {
		retry = 25 * time.Millisecond
	}
	return &Redis{client: client, prefix: "fridgeshare:lock:", ttl: ttl, retry: retry}
}

// Ping checks that redis is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Lock implements Locker.
func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	k := r.prefix + key
	token := uuid.New().String()

	ticker := time.NewTicker(r.retry)
	defer ticker.Stop()

	for {
		ok, err := r.client.SetNX(ctx, k, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquiring lock %s: %w", k, err)
		}
		if ok {
			return r.unlocker(k, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *Redis) unlocker(key, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() { r.release(key, token) })
	}
}

func (r *Redis) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, r.client, []string{key}, token).Err(); err != nil {
		slog.Warn("Failed to release lock", "key", key, "error", err)
	}
}
