package provider

import (
	"sync"
	"time"
)

// CacheStats represents method cache counters
type CacheStats struct {
	Size        int           `json:"size"`
	Hits        int64         `json:"hits"`
	Misses      int64         `json:"misses"`
	TTLExpiries int64         `json:"ttl_expiries"`
	HitRatio    float64       `json:"hit_ratio"`
	TTL         time.Duration `json:"ttl"`
}

type methodCacheEntry struct {
	method    PaymentMethod
	createdAt time.Time
}

// MethodCache keeps built payment methods so settings are not reloaded on every operation.
// Entries expire after ttl and must be invalidated whenever the method's settings change.
type MethodCache struct {
	entries map[string]*methodCacheEntry
	ttl     time.Duration
	now     func() time.Time
	mu      sync.Mutex

	hits        int64
	misses      int64
	ttlExpiries int64
}

// NewMethodCache creates a cache. A ttl of zero keeps entries until invalidated.
func NewMethodCache(ttl time.Duration) *MethodCache {
	return &MethodCache{
		entries: make(map[string]*methodCacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached method or nil
func (c *MethodCache) Get(systemName string) PaymentMethod {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[systemName]
	if !ok {
		c.misses++
		return nil
	}

	if c.ttl > 0 && c.now().Sub(entry.createdAt) > c.ttl {
		delete(c.entries, systemName)
		c.ttlExpiries++
		c.misses++
		return nil
	}

	c.hits++
	return entry.method
}

// Set stores a method
func (c *MethodCache) Set(systemName string, method PaymentMethod) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[systemName] = &methodCacheEntry{method: method, createdAt: c.now()}
}

// Invalidate drops the cached method of systemName
func (c *MethodCache) Invalidate(systemName string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, systemName)
}

// Clear removes all entries
func (c *MethodCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*methodCacheEntry)
}

// Stats returns cache statistics
func (c *MethodCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	hitRatio := 0.0
	if total := c.hits + c.misses; total > 0 {
		hitRatio = float64(c.hits) / float64(total)
	}

	return CacheStats{
		Size:        len(c.entries),
		Hits:        c.hits,
		Misses:      c.misses,
		TTLExpiries: c.ttlExpiries,
		HitRatio:    hitRatio,
		TTL:         c.ttl,
	}
}
