// Package cache caches rendered payloads of published wedding sites so
// guest traffic does not hit SQLite on every request. It ships a
// process-local memory cache and an optional Redis cache for multi-node
// setups.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is the interface both implementations satisfy. All
// implementations are safe for concurrent use.
type Cache interface {
	// Get retrieves a value. Returns ErrCacheMiss if the key is absent
	// or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL. A zero TTL uses the
	// cache's default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a key.
	Delete(ctx context.Context, key string) error

	// Clear removes all entries.
	Clear(ctx context.Context) error

	// Close releases any resources held by the cache.
	Close() error
}

// Error represents an error type for cache operations.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrCacheMiss indicates the key was not found or has expired.
	ErrCacheMiss Error = "cache miss"

	// ErrCacheClosed indicates the cache has been closed.
	ErrCacheClosed Error = "cache closed"
)

// SiteKey is the cache key for a published site's rendered payload.
func SiteKey(slug string) string {
	return fmt.Sprintf("site:%s", slug)
}

// Options configures cache construction.
type Options struct {
	RedisURL   string // empty selects the memory cache
	Prefix     string
	DefaultTTL time.Duration
	MaxSize    int
}

// New builds a cache from the options: Redis when a URL is configured,
// in-process memory otherwise.
func New(opts Options) (Cache, error) {
	if opts.RedisURL != "" {
		return NewRedisCache(RedisCacheOptions{
			URL:        opts.RedisURL,
			Prefix:     opts.Prefix,
			DefaultTTL: opts.DefaultTTL,
		})
	}
	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      opts.DefaultTTL,
		MaxSize:         opts.MaxSize,
		CleanupInterval: time.Minute,
	}), nil
}
