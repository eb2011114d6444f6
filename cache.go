package vertexql

import (
	"context"
	"time"
)

// Cache is the interface for caching encoded metadata snapshots.
// Users may implement it with their preferred caching solution
// (e.g., Redis, Memcached); an in-memory implementation lives in
// compiler/load.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns nil, nil if the key doesn't exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with an optional TTL.
	// If ttl is 0, the value should not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes all values with the given prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// Clear removes all values from the cache.
	Clear(ctx context.Context) error
}

// CacheKey identifies a cached metadata snapshot.
type CacheKey struct {
	Source string
	Space  string
}

// String returns the string representation of the cache key.
func (k CacheKey) String() string {
	return "metadata:" + k.Source + ":" + k.Space
}
