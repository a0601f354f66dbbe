package trailers

import (
	"strconv"
	"sync"

	"marquee/internal/metrics"
	"marquee/models"
)

// State is the resolution state of a cache entry.
type State int

const (
	// Unresolved means the title has never been probed.
	Unresolved State = iota
	// NoTrailer means the title was probed and has nothing playable.
	NoTrailer
	// HasTrailer means the title was probed and Key is its trailer.
	HasTrailer
)

func (s State) String() string {
	switch s {
	case NoTrailer:
		return "no-trailer"
	case HasTrailer:
		return "has-trailer"
	default:
		return "unresolved"
	}
}

// Outcome is the result of a cache lookup.
type Outcome struct {
	State State
	Key   string
}

// Resolved reports whether the title has been probed.
func (o Outcome) Resolved() bool {
	return o.State != Unresolved
}

// Cache remembers, per (kind, id), whether a title has a usable trailer.
// Answers from the catalog are kept for the life of the process. Failed
// lookups read as NoTrailer until ForgetFailures drops them.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]string // key -> trailer key, "" means no trailer
	failed  map[string]struct{}
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]string),
		failed:  make(map[string]struct{}),
	}
}

func cacheKey(kind models.MediaKind, id int64) string {
	return kind.APIPath() + "-" + strconv.FormatInt(id, 10)
}

// Lookup returns the cached outcome, or Unresolved when there is no entry.
func (c *Cache) Lookup(kind models.MediaKind, id int64) Outcome {
	c.mu.RLock()
	key, ok := c.entries[cacheKey(kind, id)]
	c.mu.RUnlock()

	metrics.RecordTrailerCacheLookup(ok)
	switch {
	case !ok:
		return Outcome{State: Unresolved}
	case key == "":
		return Outcome{State: NoTrailer}
	default:
		return Outcome{State: HasTrailer, Key: key}
	}
}

// Store records the outcome for a title. An empty key records an explicit
// "no trailer". Storing again overwrites.
func (c *Cache) Store(kind models.MediaKind, id int64, key string) {
	k := cacheKey(kind, id)
	c.mu.Lock()
	c.entries[k] = key
	delete(c.failed, k)
	c.mu.Unlock()
}

// StoreFailure records that probing a title failed. It reads as NoTrailer
// until the next ForgetFailures.
func (c *Cache) StoreFailure(kind models.MediaKind, id int64) {
	k := cacheKey(kind, id)
	c.mu.Lock()
	c.entries[k] = ""
	c.failed[k] = struct{}{}
	c.mu.Unlock()
}

// ForgetFailures drops every failed entry so those titles are probed again,
// and returns how many were dropped.
func (c *Cache) ForgetFailures() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.failed)
	for k := range c.failed {
		delete(c.entries, k)
	}
	clear(c.failed)
	return n
}

// Len returns the number of resolved titles.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
