package utils

import (
	"log"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CacheItem wraps a cached value with its expiry.
type CacheItem struct {
	Data      interface{}
	ExpiresAt time.Time
}

// PageCache is a small in-process TTL cache over an LRU, used for the hot
// feed pages. Mutating handlers invalidate keys explicitly.
type PageCache struct {
	lruCache *lru.Cache[string, CacheItem]
}

var cacheInstance *PageCache

// GetCache returns the singleton cache instance.
func GetCache() *PageCache {
	if cacheInstance == nil {
		l, err := lru.New[string, CacheItem](500)
		if err != nil {
			log.Fatalf("Failed to create LRU cache: %v", err)
		}
		cacheInstance = &PageCache{lruCache: l}
	}
	return cacheInstance
}

// Set stores data under key for ttl.
func (c *PageCache) Set(key string, data interface{}, ttl time.Duration) {
	c.lruCache.Add(key, CacheItem{
		Data:      data,
		ExpiresAt: time.Now().Add(ttl),
	})
}

// Get returns the cached value, or nil when missing or expired.
func (c *PageCache) Get(key string) interface{} {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return nil
	}
	if time.Now().After(val.ExpiresAt) {
		c.lruCache.Remove(key)
		return nil
	}
	return val.Data
}

// Delete drops one key.
func (c *PageCache) Delete(key string) {
	c.lruCache.Remove(key)
}
