package cache

import (
	"context"
	"time"

	"github.com/ppiankov/commentlab/internal/features"
	"golang.org/x/sync/singleflight"
)

// Loader loads the extractors of one partition from storage.
type Loader func(ctx context.Context, corpus string, extractorsID int) (*features.Extractors, error)

// Extractors caches decoded extractor artifacts. Concurrent misses for the
// same key share a single load.
type Extractors struct {
	cache Cache
	group singleflight.Group
	load  Loader
	ttl   time.Duration
}

// NewExtractors creates an extractors cache backed by a MemoryCache.
func NewExtractors(load Loader, ttl time.Duration) *Extractors {
	return &Extractors{
		cache: NewMemoryCache(ttl, 2*ttl),
		load:  load,
		ttl:   ttl,
	}
}

// Get returns the extractors of (corpus, extractorsID), loading them on a miss.
// Load errors are not cached.
func (c *Extractors) Get(ctx context.Context, corpus string, extractorsID int) (*features.Extractors, error) {
	key := ExtractorsKey(corpus, extractorsID)
	if v, ok := c.cache.Get(key); ok {
		return v.(*features.Extractors), nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.cache.Get(key); ok {
			return v, nil
		}
		ex, err := c.load(ctx, corpus, extractorsID)
		if err != nil {
			return nil, err
		}
		c.cache.Set(key, ex, c.ttl)
		return ex, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*features.Extractors), nil
}

// Invalidate drops a cached partition, e.g. after the extractors task rewrote it.
func (c *Extractors) Invalidate(corpus string, extractorsID int) {
	c.cache.Delete(ExtractorsKey(corpus, extractorsID))
}
