// Package viewcache caches rendered dashboard pages until a mutation marks
// them stale.
package viewcache

import (
	"log/slog"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/die-net/lrucache"
	"github.com/gregjones/httpcache"
)

// Cache holds rendered pages keyed by request URL. Every path carries a
// generation that [Cache.Revalidate] advances; renderings stored under an
// older generation are never served again and age out of the LRU. A Cache
// is safe for concurrent use.
type Cache struct {
	store  httpcache.Cache
	logger *slog.Logger

	mu          sync.Mutex
	generations map[string]uint64
}

// New creates a cache bounded to maxBytes of page bodies. Entries older than
// maxAge are evicted; a zero maxAge keeps entries until they are displaced.
func New(maxBytes int64, maxAge time.Duration, logger *slog.Logger) *Cache {
	return &Cache{
		store:       lrucache.New(maxBytes, int64(maxAge/time.Second)),
		logger:      logger,
		generations: make(map[string]uint64),
	}
}

// Key returns the cache key for u: its path plus its sorted query.
func Key(u *url.URL) string {
	query := u.Query().Encode()
	if query == "" {
		return u.Path
	}
	return u.Path + "?" + query
}

func storeKey(u *url.URL, generation uint64) string {
	return strconv.FormatUint(generation, 10) + " " + Key(u)
}

// Generation returns the current generation of path. Callers read it before
// loading the data they render and hand it back to [Cache.Set].
func (c *Cache) Generation(path string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[path]
}

// Get returns the page cached for u in the current generation of its path.
func (c *Cache) Get(u *url.URL) ([]byte, bool) {
	return c.store.Get(storeKey(u, c.Generation(u.Path)))
}

// Set caches body as the rendering of u taken at generation. A body
// rendered before the latest [Cache.Revalidate] of its path is dropped.
func (c *Cache) Set(u *url.URL, generation uint64, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if current := c.generations[u.Path]; current != generation {
		c.logger.Debug("discarded stale view",
			slog.String("key", Key(u)),
			slog.Uint64("generation", generation),
			slog.Uint64("current", current),
		)
		return
	}
	c.store.Set(storeKey(u, generation), body)
}

// Revalidate drops every cached rendering of path.
func (c *Cache) Revalidate(path string) {
	c.mu.Lock()
	c.generations[path]++
	generation := c.generations[path]
	c.mu.Unlock()

	c.logger.Debug("revalidated view",
		slog.String("path", path),
		slog.Uint64("generation", generation),
	)
}
