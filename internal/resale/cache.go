package resale

import (
	"sync"
	"time"
)

type availabilityEntry struct {
	listings []Listing
	expiry   time.Time
}

// availabilityCache is an unbounded key → {data, expiry} map. Entries are
// judged stale on read; there is no eviction and no size bound, a process
// restart clears it.
type availabilityCache struct {
	mu      sync.RWMutex
	entries map[string]availabilityEntry
	ttl     time.Duration
}

func newAvailabilityCache(ttl time.Duration) *availabilityCache {
	return &availabilityCache{
		entries: make(map[string]availabilityEntry),
		ttl:     ttl,
	}
}

func (c *availabilityCache) get(key string) ([]Listing, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expiry) {
		return nil, false
	}
	return entry.listings, true
}

func (c *availabilityCache) set(key string, listings []Listing) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = availabilityEntry{
		listings: listings,
		expiry:   time.Now().Add(c.ttl),
	}
}
