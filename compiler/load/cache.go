package load

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/syssam/vertexql"
	"github.com/syssam/vertexql/graph"
)

// Cached wraps a loader with a cache of msgpack-encoded snapshots.
// Concurrent misses for the same space share one load.
type Cached struct {
	loader Loader
	cache  vertexql.Cache
	source string
	ttl    time.Duration
	log    *zap.Logger
	group  singleflight.Group
}

// CachedOption configures a Cached loader.
type CachedOption func(*Cached)

// WithTTL sets the lifetime of cached snapshots. Zero means no expiry.
func WithTTL(ttl time.Duration) CachedOption {
	return func(c *Cached) {
		c.ttl = ttl
	}
}

// WithSource names the wrapped loader in cache keys, so loaders sharing a
// cache do not collide.
func WithSource(name string) CachedOption {
	return func(c *Cached) {
		c.source = name
	}
}

// WithCacheLogger sets the logger of cache failures.
func WithCacheLogger(l *zap.Logger) CachedOption {
	return func(c *Cached) {
		if l != nil {
			c.log = l
		}
	}
}

// NewCached returns a loader that serves snapshots from cache and falls
// back to loader on a miss.
func NewCached(loader Loader, cache vertexql.Cache, opts ...CachedOption) *Cached {
	c := &Cached{loader: loader, cache: cache, source: "default", log: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load returns the cached snapshot of space, loading it on a miss. Cache
// failures are logged and bypassed.
func (c *Cached) Load(ctx context.Context, space string) ([]graph.VertexType, error) {
	key := vertexql.CacheKey{Source: c.source, Space: space}.String()
	if data, err := c.cache.Get(ctx, key); err != nil {
		c.log.Warn("metadata cache get failed", zap.String("key", key), zap.Error(err))
	} else if data != nil {
		var vts []graph.VertexType
		err := msgpack.Unmarshal(data, &vts)
		if err == nil {
			return vts, nil
		}
		c.log.Warn("metadata cache entry is corrupt", zap.String("key", key), zap.Error(err))
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		vts, err := c.loader.Load(ctx, space)
		if err != nil {
			return nil, err
		}
		data, err := msgpack.Marshal(vts)
		if err != nil {
			c.log.Warn("metadata encode failed", zap.String("key", key), zap.Error(err))
			return vts, nil
		}
		if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
			c.log.Warn("metadata cache set failed", zap.String("key", key), zap.Error(err))
		}
		return vts, nil
	})
	if err != nil {
		return nil, err
	}
	return clone(v.([]graph.VertexType)), nil
}

// Invalidate drops the snapshot of space.
func (c *Cached) Invalidate(ctx context.Context, space string) error {
	return c.cache.Delete(ctx, vertexql.CacheKey{Source: c.source, Space: space}.String())
}

// InvalidateAll drops the snapshots of every space of this loader.
func (c *Cached) InvalidateAll(ctx context.Context) error {
	return c.cache.DeletePrefix(ctx, vertexql.CacheKey{Source: c.source}.String())
}

// MemoryCache is an in-process vertexql.Cache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// NewMemoryCache returns an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryEntry), now: time.Now}
}

var _ vertexql.Cache = (*MemoryCache)(nil)

// Get returns the value of key, or nil if it is absent or expired.
func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return nil, nil
	}
	return e.value, nil
}

// Set stores value under key.
func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

// Delete removes key.
func (m *MemoryCache) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// DeletePrefix removes every key with the given prefix.
func (m *MemoryCache) DeletePrefix(_ context.Context, prefix string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
	return nil
}

// Clear removes all keys.
func (m *MemoryCache) Clear(context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string]memoryEntry)
	m.mu.Unlock()
	return nil
}
