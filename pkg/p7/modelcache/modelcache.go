// Package modelcache provides a process-wide, keyed cache of expensive
// model-like resources (typically a ModelHandle wrapping loaded weights),
// loaded at most once per key regardless of how many callers race to fetch
// it concurrently. It is adapted from internal/parallel's sync.Once-guarded
// lazy-initialization idiom, narrowed from a worker pool's general task
// scheduling down to the one operation a model cache actually needs:
// single-flighted get-or-load.
package modelcache

import "sync"

// entry holds one cached value's lazy-init state: the sync.Once ensures
// load runs exactly once even if multiple goroutines call Get for the same
// key before it completes.
type entry struct {
	once  sync.Once
	value interface{}
	err   error
}

// Cache is a concurrent-safe, keyed cache with get-or-load semantics. The
// zero value is not usable; use New.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// New returns an empty Cache.
func New() *Cache {
	return &Cache{entries: make(map[string]*entry)}
}

// Get returns the cached value for key, calling load to populate it if this
// is the first request for key. Concurrent calls for the same key block on
// the same in-flight load rather than racing to load it redundantly; calls
// for different keys never block each other. A failed load (load returning
// a non-nil error) is not cached — the next Get for that key retries.
func (c *Cache) Get(key string, load func() (interface{}, error)) (interface{}, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		e.value, e.err = load()
	})

	if e.err != nil {
		c.mu.Lock()
		if c.entries[key] == e {
			delete(c.entries, key)
		}
		c.mu.Unlock()
	}

	return e.value, e.err
}

// Evict removes key's cached entry, if any, forcing the next Get to reload.
func (c *Cache) Evict(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len reports how many entries are currently cached (including any whose
// load is still in flight).
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
