package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"media-indexer/internal/logging"
	"media-indexer/internal/metrics"
)

type entry struct {
	key     string
	payload []byte
	expires time.Time
}

// Cache holds serialized listing responses under an entry count and
// byte budget.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]*list.Element
	lru      *list.List // front is most recent
	bytes    int64
	ttl      time.Duration
	maxItems int
	maxBytes int64

	group singleflight.Group
}

// New returns a Cache. maxItems and maxBytes must be positive; ttl of
// zero disables expiry.
func New(ttl time.Duration, maxItems int, maxBytes int64) *Cache {
	return &Cache{
		entries:  make(map[string]*list.Element),
		lru:      list.New(),
		ttl:      ttl,
		maxItems: maxItems,
		maxBytes: maxBytes,
	}
}

// GetOrCompute returns the cached payload for key, computing and
// storing it on a miss. Concurrent callers with the same key share a
// single computation; the computation survives cancellation of the
// triggering request so the other waiters still get a result.
func (c *Cache) GetOrCompute(ctx context.Context, key string, compute func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	if payload, ok := c.get(key); ok {
		metrics.CacheRequestsTotal.WithLabelValues("hit").Inc()
		return payload, nil
	}
	metrics.CacheRequestsTotal.WithLabelValues("miss").Inc()

	result, err, shared := c.group.Do(key, func() (any, error) {
		// Re-check under the group: a racing caller may have already
		// filled the entry.
		if payload, ok := c.get(key); ok {
			return payload, nil
		}

		// Detach from the caller so one disconnecting client does not
		// cancel work other waiters depend on.
		computeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()

		payload, err := compute(computeCtx)
		if err != nil {
			return nil, err
		}
		c.put(key, payload)
		return payload, nil
	})
	if shared {
		metrics.CacheRequestsTotal.WithLabelValues("coalesced").Inc()
	}
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (c *Cache) get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	e := elem.Value.(*entry)
	if c.ttl > 0 && time.Now().After(e.expires) {
		c.removeLocked(elem, "ttl")
		return nil, false
	}

	c.lru.MoveToFront(elem)
	return e.payload, true
}

func (c *Cache) put(key string, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.removeLocked(elem, "capacity")
	}

	e := &entry{
		key:     key,
		payload: payload,
		expires: time.Now().Add(c.ttl),
	}
	c.entries[key] = c.lru.PushFront(e)
	c.bytes += int64(len(payload))

	for (c.maxItems > 0 && c.lru.Len() > c.maxItems) ||
		(c.maxBytes > 0 && c.bytes > c.maxBytes) {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		c.removeLocked(oldest, "capacity")
	}

	metrics.CacheEntries.Set(float64(c.lru.Len()))
	metrics.CacheBytes.Set(float64(c.bytes))
}

func (c *Cache) removeLocked(elem *list.Element, cause string) {
	e := elem.Value.(*entry)
	c.lru.Remove(elem)
	delete(c.entries, e.key)
	c.bytes -= int64(len(e.payload))
	metrics.CacheEvictionsTotal.WithLabelValues(cause).Inc()
	metrics.CacheEntries.Set(float64(c.lru.Len()))
	metrics.CacheBytes.Set(float64(c.bytes))
}

// Flush drops every entry. Called after an indexing run so readers
// never see pages from the previous index state.
func (c *Cache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.lru.Len()
	metrics.CacheEvictionsTotal.WithLabelValues("flush").Add(float64(n))
	c.entries = make(map[string]*list.Element)
	c.lru.Init()
	c.bytes = 0
	metrics.CacheEntries.Set(0)
	metrics.CacheBytes.Set(0)

	if n > 0 {
		logging.Debug("Read cache flushed (%d entries)", n)
	}
}

// Len returns the current entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Bytes returns the current payload byte total.
func (c *Cache) Bytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bytes
}
