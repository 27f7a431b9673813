package cache

import (
	"context"
	"sync"
)

// MemoryCache is an in-process cache backend, grounded on the source's
// StorageEngine nested-dict store, keyed the same two levels deep
// (algorithm id, then signature) so multiple algorithms can share one
// cache instance without signature collisions across algorithm IDs.
type MemoryCache struct {
	mu    sync.RWMutex
	store map[string]map[string]map[string]any
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{store: make(map[string]map[string]map[string]any)}
}

func (c *MemoryCache) Fetch(_ context.Context, algorithmID, signature string) (map[string]any, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	bucket, ok := c.store[algorithmID]
	if !ok {
		return nil, false, nil
	}
	out, ok := bucket[signature]
	return out, ok, nil
}

func (c *MemoryCache) Record(_ context.Context, algorithmID, signature string, output map[string]any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	bucket, ok := c.store[algorithmID]
	if !ok {
		bucket = make(map[string]map[string]any)
		c.store[algorithmID] = bucket
	}
	bucket[signature] = output
	return nil
}
