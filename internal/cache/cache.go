// Package cache provides a session-scoped response cache used to avoid
// repeating identical keyword-research, SERP, and outline calls. Entries
// expire lazily: an expired entry is simply treated as absent on read.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// DefaultTTL is how long a cached response stays visible to readers.
const DefaultTTL = time.Hour

type entry struct {
	value      any
	insertedAt time.Time
}

// ResponseCache is a time-boxed key/value store. It is constructed per
// orchestration session and injected into the stages that need it; it is
// never a package-level singleton.
type ResponseCache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// New creates a ResponseCache with the given TTL. A non-positive TTL
// falls back to DefaultTTL.
func New(ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ResponseCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Set stores a value under key, overwriting any previous entry.
func (c *ResponseCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{value: value, insertedAt: c.now()}
}

// Get returns the value stored under key, or false if the key is absent
// or its entry has outlived the TTL. Expired entries are deleted on
// access rather than by a background sweep.
func (c *ResponseCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.insertedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

// Len reports the number of entries currently held, including any that
// have expired but not yet been read.
func (c *ResponseCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Key builds a cache fingerprint from a stage name and its primary input.
func Key(stage, input string) string {
	sum := sha256.Sum256([]byte(stage + "\x00" + input))
	return stage + ":" + hex.EncodeToString(sum[:8])
}
