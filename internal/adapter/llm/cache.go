package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/notam-briefing-service/internal/observability"
)

// CachedSummarizer wraps a Summarizer with an in-memory LRU cache whose
// entries expire after a TTL. Identical NOTAM sets for the same airport,
// period and focus reuse the previous briefing.
type CachedSummarizer struct {
	inner   Summarizer
	cache   *lruCache
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics
}

// NewCachedSummarizer creates a cache decorator around a summarizer. A nil
// clock uses real time; metrics may be nil.
func NewCachedSummarizer(inner Summarizer, maxEntries int, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedSummarizer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CachedSummarizer{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
	}
}

func (c *CachedSummarizer) Name() string   { return c.inner.Name() }
func (c *CachedSummarizer) Limits() Limits { return c.inner.Limits() }

func (c *CachedSummarizer) Summarize(ctx context.Context, req Request) (string, error) {
	key := cacheKey(c.inner.Name(), req)
	now := c.clock.Now()
	if summary, ok := c.cache.get(key, now); ok {
		c.observe("hit")
		return summary, nil
	}
	c.observe("miss")

	summary, err := c.inner.Summarize(ctx, req)
	if err != nil {
		return summary, err
	}
	// Empty summaries are not cached so a flaky provider response can be retried.
	if summary != "" {
		c.cache.put(key, summary, c.clock.Now().Add(c.ttl))
	}
	return summary, nil
}

func (c *CachedSummarizer) observe(result string) {
	if c.metrics != nil {
		c.metrics.SummaryCache.WithLabelValues(result).Inc()
	}
}

func cacheKey(provider string, req Request) string {
	h := sha256.New()
	counts := strconv.Itoa(req.Analyzed) + "/" + strconv.Itoa(req.Total)
	for _, part := range []string{provider, req.ICAO, req.Period, string(req.Focus), counts, req.Data} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// lruCache is a thread-safe LRU cache of summaries with per-entry expiry.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key     string
	value   string
	expires time.Time
	prev    *entry
	next    *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string, now time.Time) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if !now.Before(e.expires) {
		delete(c.entries, key)
		c.remove(e)
		return "", false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key, value string, expires time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expires = expires
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, expires: expires}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
