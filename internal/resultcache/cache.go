// Package resultcache keeps recent scrape results in memory, keyed by race.
//
// The cache belongs to the front end (CLI or HTTP server). Entries expire
// after a TTL and the least recently used entry is evicted once the cache
// is full. Nothing outlives the process.
package resultcache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/pfrederiksen/fis-results/internal/race"
)

const (
	DefaultSize = 128
	DefaultTTL  = 5 * time.Minute
)

// Cache maps race identifiers to their last scrape result
type Cache struct {
	lru *expirable.LRU[race.Identifier, *race.ScrapeResult]
}

// New creates a cache holding up to size results for ttl each
func New(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{lru: expirable.NewLRU[race.Identifier, *race.ScrapeResult](size, nil, ttl)}
}

// Get retrieves a cached result.
// Returns false if not found or expired.
func (c *Cache) Get(id race.Identifier) (*race.ScrapeResult, bool) {
	return c.lru.Get(id)
}

// Set stores result under id
func (c *Cache) Set(id race.Identifier, result *race.ScrapeResult) {
	c.lru.Add(id, result)
}

// Remove drops the entry for id
func (c *Cache) Remove(id race.Identifier) {
	c.lru.Remove(id)
}

// Size returns the number of cached entries
func (c *Cache) Size() int {
	return c.lru.Len()
}

// Purge removes every entry
func (c *Cache) Purge() {
	c.lru.Purge()
}

// ScrapeFunc produces a fresh result for a race
type ScrapeFunc func(ctx context.Context, id race.Identifier) (*race.ScrapeResult, error)

// Load returns the cached result for id, or calls scrape and caches its
// result. Failed scrapes are not cached. hit reports a cache hit.
func (c *Cache) Load(ctx context.Context, id race.Identifier, scrape ScrapeFunc) (result *race.ScrapeResult, hit bool, err error) {
	if cached, ok := c.Get(id); ok {
		return cached, true, nil
	}
	result, err = scrape(ctx, id)
	if err != nil {
		return nil, false, err
	}
	c.Set(id, result)
	return result, false, nil
}
