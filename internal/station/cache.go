package station

import (
	"context"
	"sync"
	"time"
)

// FetchFunc produces a fresh snapshot for a cache key.
type FetchFunc func(ctx context.Context) (*Snapshot, error)

// Cache is a keyed in-memory snapshot store with TTL staleness checks and
// in-flight fetch coalescing. It is an injected dependency, not a package
// singleton, so tests get an isolated instance each.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	flights map[string]*flight
}

type cacheEntry struct {
	snapshot  *Snapshot
	fetchedAt time.Time
}

// flight tracks one in-progress fetch. Concurrent callers for the same key
// wait on done and share the single result.
type flight struct {
	done     chan struct{}
	snapshot *Snapshot
	stale    bool
	err      error
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]*cacheEntry),
		flights: make(map[string]*flight),
	}
}

// GetOrFetch returns the cached snapshot for key when it is younger than
// ttl. Otherwise exactly one caller runs fetchFn while concurrent callers
// for the same key block on its result. On fetch failure an expired entry,
// if any, is returned with stale=true alongside the error; the caller
// decides whether that error is fatal.
func (c *Cache) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetchFn FetchFunc) (snapshot *Snapshot, stale bool, err error) {
	c.mu.Lock()

	if e, ok := c.entries[key]; ok && time.Since(e.fetchedAt) <= ttl {
		c.mu.Unlock()
		return e.snapshot, false, nil
	}

	if f, ok := c.flights[key]; ok {
		c.mu.Unlock()
		select {
		case <-f.done:
			return f.snapshot, f.stale, f.err
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}

	f := &flight{done: make(chan struct{})}
	c.flights[key] = f
	c.mu.Unlock()

	fetched, fetchErr := fetchFn(ctx)

	c.mu.Lock()
	delete(c.flights, key)
	if fetchErr == nil {
		c.entries[key] = &cacheEntry{snapshot: fetched, fetchedAt: time.Now()}
		f.snapshot = fetched
	} else if e, ok := c.entries[key]; ok {
		// Degraded fallback: hand back the expired entry, but keep the
		// error visible so callers can surface it as a warning.
		f.snapshot = e.snapshot
		f.stale = true
		f.err = fetchErr
	} else {
		f.err = fetchErr
	}
	c.mu.Unlock()
	close(f.done)

	return f.snapshot, f.stale, f.err
}

// Get returns the entry for key regardless of age, with its fetch time.
func (c *Cache) Get(key string) (*Snapshot, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, time.Time{}, false
	}
	return e.snapshot, e.fetchedAt, true
}

// Set stores a snapshot for key with the current timestamp, replacing any
// previous entry wholesale.
func (c *Cache) Set(key string, snapshot *Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = &cacheEntry{snapshot: snapshot, fetchedAt: time.Now()}
}

// Invalidate removes the entry for key. In-flight fetches are unaffected.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// InvalidateAll removes every entry.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}
