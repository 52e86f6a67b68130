package resolve

import "sync"

// Cache de-duplicates resolutions within a single run. It is owned by the
// engine for the duration of one scan and has no lifetime beyond it; the
// in-flight tracking guarantees at most one provider lookup per distinct key
// even when the same artist appears under multiple folders scanned
// concurrently.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	once sync.Once
	res  Resolution
	err  error
}

// NewCache returns an empty per-run resolution cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*cacheEntry)}
}

// Do runs fn for key exactly once; concurrent and subsequent callers receive
// the first invocation's result.
func (c *Cache) Do(key string, fn func() (Resolution, error)) (Resolution, error) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	if !ok {
		entry = &cacheEntry{}
		c.entries[key] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		entry.res, entry.err = fn()
	})
	return entry.res, entry.err
}

// Len returns the number of distinct keys seen this run.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
