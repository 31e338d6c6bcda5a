package cache

import (
	"sync"
	"time"
)

// DefaultCapacity is used when NewLRU receives a non-positive capacity.
const DefaultCapacity = 1000

type node[V any] struct {
	key     string
	value   V
	expires time.Time // zero means never
	prev    *node[V]
	next    *node[V]
}

// LRUOption configures an LRU.
type LRUOption func(*lruOptions)

type lruOptions struct {
	ttl time.Duration
	now func() time.Time
}

// WithTTL expires entries ttl after they were last Put. Zero disables expiry.
func WithTTL(ttl time.Duration) LRUOption {
	return func(o *lruOptions) { o.ttl = ttl }
}

// WithClock replaces the clock used for expiry, mostly for tests.
func WithClock(now func() time.Time) LRUOption {
	return func(o *lruOptions) { o.now = now }
}

// LRU is a thread-safe least recently used cache keyed by string.
type LRU[V any] struct {
	mu       sync.Mutex
	capacity int
	ttl      time.Duration
	now      func() time.Time
	items    map[string]*node[V]
	head     *node[V] // sentinel, head.next is most recently used
	tail     *node[V] // sentinel, tail.prev is least recently used
}

// NewLRU creates an LRU cache holding at most capacity entries.
func NewLRU[V any](capacity int, opts ...LRUOption) *LRU[V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	o := lruOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	c := &LRU[V]{
		capacity: capacity,
		ttl:      o.ttl,
		now:      o.now,
		items:    make(map[string]*node[V], capacity),
		head:     &node[V]{},
		tail:     &node[V]{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head

	return c
}

// Get returns the value for key and marks it as recently used. Expired
// entries are removed and reported as missing.
func (c *LRU[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.live(key)
	if !ok {
		var zero V
		return zero, false
	}

	c.moveToFront(n)
	return n.value, true
}

// Peek returns the value for key without touching the eviction order.
func (c *LRU[V]) Peek(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.live(key)
	if !ok {
		var zero V
		return zero, false
	}
	return n.value, true
}

// Put adds or replaces the value for key, evicting the least recently used
// entry when full.
func (c *LRU[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expires time.Time
	if c.ttl > 0 {
		expires = c.now().Add(c.ttl)
	}

	if n, ok := c.items[key]; ok {
		n.value = value
		n.expires = expires
		c.moveToFront(n)
		return
	}

	if len(c.items) >= c.capacity {
		c.evictOldest()
	}

	n := &node[V]{key: key, value: value, expires: expires}
	c.addToFront(n)
	c.items[key] = n
}

// Delete removes key and reports whether it was present.
func (c *LRU[V]) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.items[key]
	if !ok {
		return false
	}

	c.unlink(n)
	delete(c.items, key)
	return true
}

// Clear empties the cache.
func (c *LRU[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*node[V], c.capacity)
	c.head.next = c.tail
	c.tail.prev = c.head
}

func (c *LRU[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// live returns the entry for key, dropping it if expired. c.mu must be held.
func (c *LRU[V]) live(key string) (*node[V], bool) {
	n, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if !n.expires.IsZero() && !c.now().Before(n.expires) {
		c.unlink(n)
		delete(c.items, key)
		return nil, false
	}
	return n, true
}

func (c *LRU[V]) moveToFront(n *node[V]) {
	c.unlink(n)
	c.addToFront(n)
}

func (c *LRU[V]) unlink(n *node[V]) {
	n.prev.next = n.next
	n.next.prev = n.prev
}

func (c *LRU[V]) addToFront(n *node[V]) {
	first := c.head.next

	n.next = first
	n.prev = c.head

	c.head.next = n
	first.prev = n
}

func (c *LRU[V]) evictOldest() {
	oldest := c.tail.prev
	if oldest == c.head {
		return
	}

	c.unlink(oldest)
	delete(c.items, oldest.key)
}
