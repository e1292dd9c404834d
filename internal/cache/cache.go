// Package cache stores JSON values with a TTL and offers short-lived locks.
// Redis backs it in production; the in-process store is used when no Redis
// address is configured and in tests.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache is the small key/value surface the services need.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// SetNX stores value only if key does not exist and reports whether it did.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
}

// GetJSON reads key into target. It returns ErrMiss when nothing is cached.
func GetJSON(ctx context.Context, c Cache, key string, target interface{}) error {
	raw, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, target)
}

// SetJSON stores value as JSON under key.
func SetJSON(ctx context.Context, c Cache, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, raw, ttl)
}
