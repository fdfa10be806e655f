// cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Cache is a byte-value store with per-key TTLs. It backs the watchlist
// symbol cache and the revoked-token list.
type Cache interface {
	// Get returns ErrNotFound if the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value; ttl 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	Delete(ctx context.Context, key string) error
	Close() error
}

var (
	ErrNotFound = errors.New("cache: key not found")
	ErrClosed   = errors.New("cache: cache is closed")
)

// GetJSON fetches key and unmarshals it into a T.
func GetJSON[T any](ctx context.Context, c Cache, key string) (T, error) {
	var v T
	data, err := c.Get(ctx, key)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, err
	}
	return v, nil
}

// SetJSON marshals value and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}

// Config selects a backend: Redis when RedisAddr is set, memory otherwise.
type Config struct {
	RedisAddr     string
	RedisPassword string
	KeyPrefix     string
}

// Open returns the configured backend. A Redis that does not answer PING
// is an error rather than a silent fallback.
func Open(ctx context.Context, cfg Config) (Cache, error) {
	if cfg.RedisAddr == "" {
		return NewMemory(time.Minute), nil
	}
	return DialRedis(ctx, RedisConfig{
		Address:   cfg.RedisAddr,
		Password:  cfg.RedisPassword,
		KeyPrefix: cfg.KeyPrefix,
	})
}
