// ABOUTME: Thread-safe TTL cache for suppressing repeated deliveries
// ABOUTME: Remembers message ids for a window so a resubmitted message is not processed twice

package dedupe

import (
	"container/list"
	"sync"
	"time"
)

type entry struct {
	key  string
	seen time.Time
}

// Cache remembers keys for ttl, holding at most maxSize of them. Keys are
// kept in marking order, so the oldest entry is always at the front and
// expiry is pruned lazily from there.
type Cache struct {
	mu      sync.Mutex
	index   map[string]*list.Element
	order   *list.List
	ttl     time.Duration
	maxSize int
	now     func() time.Time
}

// New creates a cache. A maxSize below one is treated as one.
func New(ttl time.Duration, maxSize int) *Cache {
	return &Cache{
		index:   make(map[string]*list.Element),
		order:   list.New(),
		ttl:     ttl,
		maxSize: max(maxSize, 1),
		now:     time.Now,
	}
}

// CheckAndMark marks key and reports whether it was already marked within
// the window. A duplicate does not refresh the window.
func (c *Cache) CheckAndMark(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pruneLocked()
	if _, ok := c.index[key]; ok {
		return true
	}
	c.markLocked(key)
	return false
}

// Forget drops key, e.g. after a failed delivery that should be retried.
func (c *Cache) Forget(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.index[key]; ok {
		c.order.Remove(el)
		delete(c.index, key)
	}
}

func (c *Cache) markLocked(key string) {
	for len(c.index) >= c.maxSize {
		c.removeLocked(c.order.Front())
	}
	c.index[key] = c.order.PushBack(&entry{key: key, seen: c.now()})
}

func (c *Cache) pruneLocked() {
	now := c.now()
	for el := c.order.Front(); el != nil; el = c.order.Front() {
		if now.Sub(el.Value.(*entry).seen) < c.ttl {
			return
		}
		c.removeLocked(el)
	}
}

func (c *Cache) removeLocked(el *list.Element) {
	if el == nil {
		return
	}
	c.order.Remove(el)
	delete(c.index, el.Value.(*entry).key)
}
