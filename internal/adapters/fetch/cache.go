package fetch

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

type cacheEntry struct {
	expiry time.Time
	value  []byte
}

// TTLCache is a bounded in-memory response cache with lazy expiry. Safe for
// concurrent use by multiple in-flight sessions.
type TTLCache struct {
	mu      sync.Mutex
	store   map[string]cacheEntry
	ttl     time.Duration
	maxSize int
	now     func() time.Time
}

// NewTTLCache constructs a cache. A non-positive ttl disables storage
// entirely; maxSize below 1 falls back to 256.
func NewTTLCache(ttl time.Duration, maxSize int) *TTLCache {
	if maxSize < 1 {
		maxSize = 256
	}
	return &TTLCache{
		store:   make(map[string]cacheEntry),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Get returns the cached value for key, or false if absent or expired. An
// expired entry is removed on the way out; a read never returns a value past
// its expiry.
func (c *TTLCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.store[key]
	if !ok {
		return nil, false
	}
	if !c.now().Before(entry.expiry) {
		delete(c.store, key)
		return nil, false
	}
	return entry.value, true
}

// Set stores value under key with the configured TTL. At capacity, expired
// entries are evicted first; if still full, the entry closest to expiry is
// dropped.
func (c *TTLCache) Set(key string, value []byte) {
	if c.ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.store) >= c.maxSize {
		if _, exists := c.store[key]; !exists {
			c.evictExpiredLocked()
			if len(c.store) >= c.maxSize {
				c.evictOldestLocked()
			}
		}
	}

	c.store[key] = cacheEntry{expiry: c.now().Add(c.ttl), value: value}
}

// Size returns the current entry count, including not-yet-swept expired
// entries.
func (c *TTLCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.store)
}

// Clear removes every entry.
func (c *TTLCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]cacheEntry)
}

func (c *TTLCache) evictExpiredLocked() {
	now := c.now()
	for key, entry := range c.store {
		if !now.Before(entry.expiry) {
			delete(c.store, key)
		}
	}
}

func (c *TTLCache) evictOldestLocked() {
	var oldestKey string
	var oldestExpiry time.Time
	for key, entry := range c.store {
		if oldestKey == "" || entry.expiry.Before(oldestExpiry) {
			oldestKey = key
			oldestExpiry = entry.expiry
		}
	}
	if oldestKey != "" {
		delete(c.store, oldestKey)
	}
}

// CacheKey builds a deterministic key from a prefix and a parameter set.
// Parameters are serialized in sorted key order, so insertion order never
// changes the key; nil values are skipped.
func CacheKey(prefix string, params map[string]any) string {
	if len(params) == 0 {
		return prefix
	}

	keys := make([]string, 0, len(params))
	for key, value := range params {
		if value == nil {
			continue
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return prefix
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", key, params[key]))
	}
	return prefix + ":" + strings.Join(parts, "&")
}
