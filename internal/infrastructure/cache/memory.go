// Package cache holds the domain.CacheRepository implementations.
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/manmaru/backend/internal/domain"
)

const (
	// DefaultMaxEntries bounds a memory cache created with maxEntries <= 0
	DefaultMaxEntries = 1000
	cleanupInterval   = 10 * time.Minute
)

// cacheItem represents a single item in the cache with expiration
type cacheItem struct {
	key        string
	value      []byte
	expiration time.Time
}

// MemoryCache is a thread-safe, size-bounded LRU cache with TTL support.
type MemoryCache struct {
	mutex      sync.Mutex
	items      map[string]*list.Element
	order      *list.List // front = most recently used
	maxEntries int
	now        func() time.Time
	stop       chan struct{}
	stopOnce   sync.Once
}

// NewMemoryCache creates a memory cache holding at most maxEntries values.
// Call Close to stop the background cleanup.
func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	cache := &MemoryCache{
		items:      make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
		now:        time.Now,
		stop:       make(chan struct{}),
	}

	go cache.cleanupExpired(cleanupInterval)

	return cache
}

// Get retrieves a value from the cache
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	el, ok := c.items[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	item := el.Value.(*cacheItem)
	if c.expired(item) {
		c.removeElement(el)
		return nil, domain.ErrCacheMiss
	}

	c.order.MoveToFront(el)
	return append([]byte(nil), item.value...), nil
}

// Set stores a value with TTL, evicting the least recently used entry when full.
// ttl <= 0 means the entry never expires.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	var expiration time.Time
	if ttl > 0 {
		expiration = c.now().Add(ttl)
	}
	stored := append([]byte(nil), value...)

	if el, ok := c.items[key]; ok {
		item := el.Value.(*cacheItem)
		item.value = stored
		item.expiration = expiration
		c.order.MoveToFront(el)
		return nil
	}

	c.items[key] = c.order.PushFront(&cacheItem{key: key, value: stored, expiration: expiration})
	for c.order.Len() > c.maxEntries {
		c.removeElement(c.order.Back())
	}
	return nil
}

// Delete removes a value from the cache
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if el, ok := c.items[key]; ok {
		c.removeElement(el)
	}
	return nil
}

// Exists checks if a key exists in the cache and is not expired.
// It does not count as a use for LRU purposes.
func (c *MemoryCache) Exists(_ context.Context, key string) (bool, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	el, ok := c.items[key]
	if !ok {
		return false, nil
	}
	return !c.expired(el.Value.(*cacheItem)), nil
}

// Size returns the current number of items in the cache, expired ones included
func (c *MemoryCache) Size() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.order.Len()
}

// Clear removes all items from the cache
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.items = make(map[string]*list.Element)
	c.order.Init()
}

// Close stops the background cleanup. The cache stays usable.
func (c *MemoryCache) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	return nil
}

// cleanupExpired removes expired entries from the cache periodically
func (c *MemoryCache) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *MemoryCache) removeExpired() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	removed := 0
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if c.expired(el.Value.(*cacheItem)) {
			c.removeElement(el)
			removed++
		}
		el = prev
	}
	return removed
}

func (c *MemoryCache) expired(item *cacheItem) bool {
	return !item.expiration.IsZero() && c.now().After(item.expiration)
}

func (c *MemoryCache) removeElement(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*cacheItem).key)
}
