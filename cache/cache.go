/*
Package cache provides the rendered-view cache.

PURPOSE:
  Caches fully composed view payloads keyed by view identity, so the hot
  read path can skip aggregation and rendering entirely. A hit returns
  exactly the payload stored at put time even if the underlying counters
  have moved on; the TTL bounds that staleness window. This is a deliberate
  trade-off, not a bug.

STATE MACHINE (per key):
  EMPTY -> POPULATED -> (EXPIRED | PURGED) -> EMPTY

ACTIVATION THRESHOLD:
  Put is a no-op until the global vote volume crosses a configured
  threshold. Under light load the data changes too fast relative to the
  traffic for caching to pay off, and a cold cache would only add work.

PURGE-WINS:
  PurgeAll bumps a generation counter. A Put carrying a generation read
  before the purge is discarded, so a slow composer racing a purge cannot
  resurrect stale data.

SEE ALSO:
  - api/handlers.go: The only caller; composes views on miss
*/
package cache

import (
	"sync"
	"time"
)

// VolumeFunc reports the current global vote volume.
type VolumeFunc func() int64

// Cache is safe for concurrent use by request handlers and the purge path.
type Cache struct {
	mu        sync.RWMutex
	entries   map[string]entry
	gen       uint64
	ttl       time.Duration
	threshold int64
	volume    VolumeFunc
	now       func() time.Time // swapped out in tests
}

type entry struct {
	payload   string
	expiresAt time.Time
}

// New creates a cache. Puts take effect only while volume() exceeds
// threshold. A zero ttl disables expiry, leaving PurgeAll as the only way
// an entry leaves the cache.
func New(ttl time.Duration, threshold int64, volume VolumeFunc) *Cache {
	return &Cache{
		entries:   make(map[string]entry),
		ttl:       ttl,
		threshold: threshold,
		volume:    volume,
		now:       time.Now,
	}
}

// Gen returns the current purge generation. Read it before composing a
// payload and pass it to Put.
func (c *Cache) Gen() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// Get returns the cached payload for key. Expired entries are treated as
// misses and evicted on the spot.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		c.mu.Lock()
		// Recheck under the write lock; a fresher Put may have replaced it.
		if cur, ok := c.entries[key]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return "", false
	}
	return e.payload, true
}

// Put stores payload under key. It is a no-op when the activation
// threshold has not been crossed, or when gen predates the last PurgeAll.
func (c *Cache) Put(key, payload string, gen uint64) {
	if c.volume() <= c.threshold {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		// Purged (or reset) while the payload was being composed.
		return
	}
	e := entry{payload: payload}
	if c.ttl > 0 {
		e.expiresAt = c.now().Add(c.ttl)
	}
	c.entries[key] = e
}

// PurgeAll unconditionally clears every key and invalidates in-flight
// puts. Used by the reset path and the administrative purge endpoint.
func (c *Cache) PurgeAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.entries = make(map[string]entry)
}

// Len reports the number of live entries, expired or not. Intended for
// tests and metrics.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
