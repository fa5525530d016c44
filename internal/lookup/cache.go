// Package lookup provides the memoizing read-through cache shared by all
// workers of a run.
//
// A Cache is bounded (least-recently-used eviction) and coalesces concurrent
// requests for the same key: while one goroutine computes a value, others
// asking for that key wait for the same result instead of computing it again.
// Errors are returned to every waiting caller but never stored.
//
// The cache only saves work. Callers must get identical results with a cold
// cache, a warm cache or no cache at all.
package lookup

import (
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultCapacity is used when a non-positive capacity is requested.
const DefaultCapacity = 10000

// Stats is a point-in-time view of cache activity.
type Stats struct {
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Coalesced int64 `json:"coalesced"`
	Evictions int64 `json:"evictions"`
	Size      int   `json:"size"`
}

// Cache memoizes string-keyed computations.
//
// Thread-safety: all methods are safe for concurrent use.
type Cache[V any] struct {
	entries *lru.Cache[string, V]
	group   singleflight.Group

	hits      atomic.Int64
	misses    atomic.Int64
	coalesced atomic.Int64
	evictions atomic.Int64
}

// New creates a cache holding at most capacity entries.
func New[V any](capacity int) *Cache[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Cache[V]{}
	entries, err := lru.NewWithEvict[string, V](capacity, func(string, V) {
		c.evictions.Add(1)
	})
	if err != nil {
		// Only reachable with a non-positive size, which is ruled out above.
		panic(fmt.Sprintf("lookup: %v", err))
	}
	c.entries = entries
	return c
}

// Get returns the cached value for key, computing it with compute on a miss.
// Concurrent misses for the same key share one call to compute.
func (c *Cache[V]) Get(key string, compute func() (V, error)) (V, error) {
	if v, ok := c.entries.Get(key); ok {
		c.hits.Add(1)
		return v, nil
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		// Another caller may have filled the entry between our miss and
		// acquiring the flight.
		if v, ok := c.entries.Get(key); ok {
			c.hits.Add(1)
			return v, nil
		}
		c.misses.Add(1)
		v, err := compute()
		if err != nil {
			return v, err
		}
		c.entries.Add(key, v)
		return v, nil
	})
	if shared {
		c.coalesced.Add(1)
	}
	typed, _ := v.(V)
	return typed, err
}

// Peek returns a cached value without computing or updating recency.
func (c *Cache[V]) Peek(key string) (V, bool) {
	return c.entries.Peek(key)
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	return c.entries.Len()
}

// Purge drops every entry. Counters are kept.
func (c *Cache[V]) Purge() {
	c.entries.Purge()
}

// Stats returns the current counters.
func (c *Cache[V]) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Coalesced: c.coalesced.Load(),
		Evictions: c.evictions.Load(),
		Size:      c.entries.Len(),
	}
}
