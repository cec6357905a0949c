// Package cache keeps decoded extractor artifacts in memory while a task
// runs, so category workers sharing an extractors partition decode it once.
package cache

import (
	"fmt"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, value any, ttl time.Duration)
	Delete(key string)
	Clear()
}

// ExtractorsKey generates the cache key of an extractors partition
func ExtractorsKey(corpus string, extractorsID int) string {
	return fmt.Sprintf("commentlab:v1:%s:extractors:%d", corpus, extractorsID)
}
