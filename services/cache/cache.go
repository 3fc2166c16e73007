// Package cache provides the bounded in-process memo used in front of the
// analytics engine.
package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// DefaultCapacity is used when a non-positive capacity is requested.
const DefaultCapacity = 1000

// Key identifies one memoised computation.
// An empty UserID marks platform-wide entries that no user invalidation touches.
type Key struct {
	Op        string
	UserID    string
	TimeRange string
	Options   string
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s:%s:%s", k.Op, k.UserID, k.TimeRange, k.Options)
}

type entry struct {
	value    any
	storedAt time.Time
	ttl      time.Duration
}

func (e entry) expired(now time.Time) bool {
	return e.ttl > 0 && !now.Before(e.storedAt.Add(e.ttl))
}

// Cache is a size-capped LRU with lazy TTL expiry and a per-user key index.
// It is safe for concurrent use and never returns errors.
type Cache struct {
	mu     sync.Mutex
	lru    *simplelru.LRU[Key, entry]
	byUser map[string]map[Key]struct{}
	now    func() time.Time
}

type Option func(*Cache)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		c.now = now
	}
}

func New(capacity int, opts ...Option) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Cache{
		byUser: make(map[string]map[Key]struct{}),
		now:    time.Now,
	}
	// NewLRU only fails on a non-positive size.
	c.lru, _ = simplelru.NewLRU[Key, entry](capacity, c.unindex)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key. A stale entry is evicted and reported as a miss.
func (c *Cache) Get(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.lru.Peek(key)
	if !ok {
		return nil, false
	}
	if e.expired(c.now()) {
		c.lru.Remove(key)
		return nil, false
	}
	c.lru.Get(key)
	return e.value, true
}

// Set stores value under key for ttl. A non-positive ttl keeps the entry until it is
// evicted or invalidated. When the cache is full the least recently used entry is dropped.
func (c *Cache) Set(key Key, value any, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Add(key, entry{value: value, storedAt: c.now(), ttl: ttl})
	if key.UserID != "" {
		keys, ok := c.byUser[key.UserID]
		if !ok {
			keys = make(map[Key]struct{})
			c.byUser[key.UserID] = keys
		}
		keys[key] = struct{}{}
	}
}

// InvalidateUser removes every entry belonging to userID and returns how many were dropped.
func (c *Cache) InvalidateUser(userID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]Key, 0, len(c.byUser[userID]))
	for key := range c.byUser[userID] {
		keys = append(keys, key)
	}
	n := 0
	for _, key := range keys {
		if c.lru.Remove(key) {
			n++
		}
	}
	delete(c.byUser, userID)
	return n
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Purge()
	c.byUser = make(map[string]map[Key]struct{})
}

// Len returns the number of stored entries, stale ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// unindex runs under mu for every entry the LRU drops, whether evicted or removed.
func (c *Cache) unindex(key Key, _ entry) {
	if keys, ok := c.byUser[key.UserID]; ok {
		delete(keys, key)
		if len(keys) == 0 {
			delete(c.byUser, key.UserID)
		}
	}
}
