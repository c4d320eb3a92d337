package cache

import (
	"sync"
)

// Cache memoizes lookups for the lifetime of one invocation.  Nothing is evicted;
// the cache is dropped with the component that owns it.
type Cache[V any] interface {
	Set(key CacheKey, value V)
	Get(key CacheKey) (V, bool)
	// GetOrLoad returns the cached value for key, calling load and caching its
	// result on a miss.  Errors are returned and never cached.
	GetOrLoad(key CacheKey, load func() (V, error)) (V, error)
	Len() int
}

// memoryCache implements the Cache interface using sync.Map.
type memoryCache[V any] struct {
	store sync.Map
	mu    sync.Mutex
}

type CacheKey struct {
	PK string
	SK string
}

func (ck CacheKey) String() string {
	return ck.PK + "||" + ck.SK
}

// NewCache creates a new instance of a Cache using memoryCache.
func NewCache[V any]() Cache[V] {
	return &memoryCache[V]{}
}

// Set stores a key-value pair in the cache.
func (c *memoryCache[V]) Set(key CacheKey, value V) {
	c.store.Store(key.String(), value)
}

// Get retrieves a value from the cache based on its key.
func (c *memoryCache[V]) Get(key CacheKey) (V, bool) {
	result, exists := c.store.Load(key.String())
	if !exists {
		var zero V
		return zero, false
	}
	return result.(V), true
}

func (c *memoryCache[V]) GetOrLoad(key CacheKey, load func() (V, error)) (V, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}
	// serialize loads so concurrent callers don't repeat the same api calls
	c.mu.Lock()
	defer c.mu.Unlock()
	if value, ok := c.Get(key); ok {
		return value, nil
	}
	value, err := load()
	if err != nil {
		var zero V
		return zero, err
	}
	c.Set(key, value)
	return value, nil
}

func (c *memoryCache[V]) Len() int {
	count := 0
	c.store.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}
