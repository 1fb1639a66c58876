package util

import (
	"container/list"
	"fmt"
	"sync"
	"time"
)

// CacheConfig configures an LRUCache.
type CacheConfig struct {
	// Capacity is the maximum number of entries. Must be positive.
	Capacity int
	// TTL expires entries that were not written for this long. Zero disables expiry.
	TTL time.Duration
}

type entry[K comparable, V any] struct {
	key        K
	value      V
	expiration time.Time
}

// LRUCache is a thread-safe least-recently-used cache with optional expiry.
type LRUCache[K comparable, V any] struct {
	config CacheConfig
	ll     *list.List
	cache  map[K]*list.Element
	now    func() time.Time
	lock   sync.Mutex
}

// NewLRU creates an empty cache.
func NewLRU[K comparable, V any](config CacheConfig) (*LRUCache[K, V], error) {
	if config.Capacity <= 0 {
		return nil, fmt.Errorf("cache capacity must be positive, got %d", config.Capacity)
	}
	return &LRUCache[K, V]{
		config: config,
		ll:     list.New(),
		cache:  make(map[K]*list.Element),
		now:    time.Now,
	}, nil
}

// Get returns the value for key and marks it as recently used.
func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.get(key)
}

// Put adds or replaces the value for key, evicting the oldest entry when full.
func (c *LRUCache[K, V]) Put(key K, value V) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.put(key, value)
}

// GetOrPut returns the cached value for key, creating and storing it with create
// when it is missing or expired. create runs with the cache locked.
func (c *LRUCache[K, V]) GetOrPut(key K, create func() V) V {
	c.lock.Lock()
	defer c.lock.Unlock()
	if v, ok := c.get(key); ok {
		return v
	}
	v := create()
	c.put(key, v)
	return v
}

// Len returns the number of entries, expired ones included until they are touched.
func (c *LRUCache[K, V]) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.ll.Len()
}

func (c *LRUCache[K, V]) get(key K) (V, bool) {
	var zero V
	element, ok := c.cache[key]
	if !ok {
		return zero, false
	}
	e := element.Value.(*entry[K, V])
	if c.config.TTL > 0 && c.now().After(e.expiration) {
		c.removeElement(element)
		return zero, false
	}
	c.ll.MoveToFront(element)
	return e.value, true
}

func (c *LRUCache[K, V]) put(key K, value V) {
	var expiration time.Time
	if c.config.TTL > 0 {
		expiration = c.now().Add(c.config.TTL)
	}
	if element, ok := c.cache[key]; ok {
		e := element.Value.(*entry[K, V])
		e.value = value
		e.expiration = expiration
		c.ll.MoveToFront(element)
		return
	}
	c.cache[key] = c.ll.PushFront(&entry[K, V]{key: key, value: value, expiration: expiration})
	for c.ll.Len() > c.config.Capacity {
		c.removeElement(c.ll.Back())
	}
}

func (c *LRUCache[K, V]) removeElement(e *list.Element) {
	c.ll.Remove(e)
	delete(c.cache, e.Value.(*entry[K, V]).key)
}
