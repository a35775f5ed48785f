// Package cache is the read-through response cache of the HTTP server,
// backed by patrickmn/go-cache. The store is read-only while serving, so
// entries only ever expire; nothing invalidates them.
package cache

import (
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache holds query results keyed by request path and query string.
type Cache struct {
	store  *gocache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a cache. A ttl of zero or less disables caching: every
// lookup misses and nothing is stored.
func New(ttl, cleanupInterval time.Duration) *Cache {
	if ttl <= 0 {
		return &Cache{}
	}
	return &Cache{store: gocache.New(ttl, cleanupInterval)}
}

// Enabled reports whether results are retained.
func (c *Cache) Enabled() bool { return c.store != nil }

// Get retrieves a value from the cache.
func (c *Cache) Get(key string) (any, bool) {
	if c.store == nil {
		c.misses.Add(1)
		return nil, false
	}
	v, ok := c.store.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Set stores a value with the default TTL.
func (c *Cache) Set(key string, value any) {
	if c.store != nil {
		c.store.SetDefault(key, value)
	}
}

// GetOrLoad returns the cached value for key, or calls load and caches its
// result. Errors are never cached.
func (c *Cache) GetOrLoad(key string, load func() (any, error)) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return nil, err
	}
	c.Set(key, v)
	return v, nil
}

// Clear removes all items from the cache.
func (c *Cache) Clear() {
	if c.store != nil {
		c.store.Flush()
	}
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Enabled bool  `json:"enabled"`
	Items   int   `json:"items"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// Stats returns current cache statistics.
func (c *Cache) Stats() Stats {
	s := Stats{
		Enabled: c.Enabled(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
	if c.store != nil {
		s.Items = c.store.ItemCount()
	}
	return s
}
