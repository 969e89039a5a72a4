// Package filecache is an in-memory LRU of small static files bounded by
// total bytes and by a per-file cap.
package filecache

import (
	"container/list"
	"sync"
	"time"
)

const (
	// DefaultMaxBytes caps the sum of resident entry sizes.
	DefaultMaxBytes int64 = 10 * 1024 * 1024
	// DefaultMaxFileBytes is the largest file the cache accepts.
	DefaultMaxFileBytes int64 = 100 * 1024
)

// Config bounds a Cache. Zero values select the defaults.
type Config struct {
	MaxBytes     int64
	MaxFileBytes int64
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Entries      int     `json:"entries"`
	TotalBytes   int64   `json:"total_bytes"`
	MaxBytes     int64   `json:"max_bytes"`
	MaxFileBytes int64   `json:"max_file_bytes"`
	Hits         uint64  `json:"hits"`
	Misses       uint64  `json:"misses"`
	Evictions    uint64  `json:"evictions"`
	HitRate      float64 `json:"hit_rate"`
}

// Cache is safe for concurrent use. The list front is the most recently
// used entry.
type Cache struct {
	mu           sync.Mutex
	maxBytes     int64
	maxFileBytes int64
	total        int64
	order        *list.List
	items        map[string]*list.Element

	hits      uint64
	misses    uint64
	evictions uint64

	now func() time.Time
}

// New returns an empty cache.
func New(cfg Config) *Cache {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.MaxFileBytes <= 0 {
		cfg.MaxFileBytes = DefaultMaxFileBytes
	}
	return &Cache{
		maxBytes:     cfg.MaxBytes,
		maxFileBytes: cfg.MaxFileBytes,
		order:        list.New(),
		items:        make(map[string]*list.Element),
		now:          time.Now,
	}
}

// Get returns the entry for path and marks it most recently used.
func (c *Cache) Get(path string) (*Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[path]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.order.MoveToFront(el)
	entry := el.Value.(*Entry)
	entry.LastAccess = c.now()
	return entry, true
}

// Set stores content for path and returns the resident entry. Content over
// the per-file cap is not stored and ok is false. Least recently used
// entries are evicted until the new entry fits.
func (c *Cache) Set(path string, content []byte, modTime time.Time) (*Entry, bool) {
	size := int64(len(content))
	if size > c.maxFileBytes || size > c.maxBytes {
		return nil, false
	}

	entry := NewEntry(path, content, modTime)

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[path]; ok {
		c.removeElement(el)
	}

	for c.total+size > c.maxBytes {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.removeElement(oldest)
		c.evictions++
	}

	c.items[path] = c.order.PushFront(entry)
	c.total += size
	return entry, true
}

// Delete removes path. It reports whether an entry was present.
func (c *Cache) Delete(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[path]
	if !ok {
		return false
	}
	c.removeElement(el)
	return true
}

// Clear drops every entry. Counters are kept.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.items = make(map[string]*list.Element)
	c.total = 0
}

// Keys returns cached paths from most to least recently used.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, c.order.Len())
	for el := c.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*Entry).Path)
	}
	return keys
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Entries:      c.order.Len(),
		TotalBytes:   c.total,
		MaxBytes:     c.maxBytes,
		MaxFileBytes: c.maxFileBytes,
		Hits:         c.hits,
		Misses:       c.misses,
		Evictions:    c.evictions,
	}
	if lookups := c.hits + c.misses; lookups > 0 {
		s.HitRate = float64(c.hits) / float64(lookups)
	}
	return s
}

// MaxFileBytes returns the per-file cap.
func (c *Cache) MaxFileBytes() int64 {
	return c.maxFileBytes
}

func (c *Cache) removeElement(el *list.Element) {
	entry := c.order.Remove(el).(*Entry)
	delete(c.items, entry.Path)
	c.total -= entry.Size
}
