package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryCacheConfig configures the in-memory cache.
type MemoryCacheConfig struct {
	// MaxEntries bounds the number of live entries. When full, the entry
	// closest to expiry is evicted to make room.
	// Default: 1024
	MaxEntries int

	// MaxValueBytes bounds the size of a single cached value; larger values
	// are rejected with ErrValueTooBig. Zero means unbounded.
	MaxValueBytes int
}

// MemoryCache is a bounded in-memory TTL cache.
type MemoryCache struct {
	config MemoryCacheConfig

	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryCache creates a new in-memory cache.
func NewMemoryCache(config MemoryCacheConfig) *MemoryCache {
	// Apply defaults
	if config.MaxEntries <= 0 {
		config.MaxEntries = 1024
	}

	return &MemoryCache{
		config:  config,
		entries: make(map[string]memoryEntry),
	}
}

// Get retrieves a cached value. Expired entries are removed lazily.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}

	return entry.value, true
}

// Set stores a value with the given TTL.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := ValidateKey(key); err != nil {
		return err
	}
	if c.config.MaxValueBytes > 0 && len(value) > c.config.MaxValueBytes {
		return ErrValueTooBig
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.config.MaxEntries {
		c.evictLocked()
	}
	c.entries[key] = memoryEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// evictLocked drops the entry closest to expiry. Caller must hold the lock.
func (c *MemoryCache) evictLocked() {
	var victim string
	var soonest time.Time
	for k, e := range c.entries {
		if victim == "" || e.expiresAt.Before(soonest) {
			victim = k
			soonest = e.expiresAt
		}
	}
	if victim != "" {
		delete(c.entries, victim)
	}
}

// Delete removes a cached value.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Len returns the number of live entries, counting those not yet lazily
// expired.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Flush drops every entry.
func (c *MemoryCache) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]memoryEntry)
	c.mu.Unlock()
}

// Ensure MemoryCache implements Cache
var _ Cache = (*MemoryCache)(nil)
