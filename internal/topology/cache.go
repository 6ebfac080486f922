package topology

import "sync"

// CacheKey identifies a built graph. The snapshot id is part of the key so a
// reloaded dataset never serves graphs built from older data.
type CacheKey struct {
	SnapshotID string
	RingID     string
	Scope      string
	Options    string
}

// GraphCache is a bounded FIFO cache of built graphs.
type GraphCache struct {
	mu      sync.Mutex
	max     int
	entries map[CacheKey]Graph
	order   []CacheKey
}

// NewGraphCache creates a cache holding at most max graphs. A non-positive
// max disables caching.
func NewGraphCache(max int) *GraphCache {
	return &GraphCache{max: max, entries: make(map[CacheKey]Graph)}
}

func (c *GraphCache) Get(key CacheKey) (Graph, bool) {
	if c == nil || c.max <= 0 {
		return Graph{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	g, ok := c.entries[key]
	return g, ok
}

func (c *GraphCache) Put(key CacheKey, g Graph) {
	if c == nil || c.max <= 0 || key.SnapshotID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		c.entries[key] = g
		return
	}
	for len(c.order) >= c.max {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = g
	c.order = append(c.order, key)
}

func (c *GraphCache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Purge drops every entry.
func (c *GraphCache) Purge() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[CacheKey]Graph)
	c.order = nil
}
