package images

import (
	"sync"
	"time"
)

type cacheEntry struct {
	value  string
	expiry time.Time
}

// ttlCache is an unbounded url → {value, expiry} map. Staleness is judged
// on read; nothing evicts entries short of a process restart.
type ttlCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

func newTTLCache(ttl time.Duration) *ttlCache {
	return &ttlCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

func (c *ttlCache) get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expiry) {
		return "", false
	}
	return entry.value, true
}

func (c *ttlCache) set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{
		value:  value,
		expiry: time.Now().Add(c.ttl),
	}
}
