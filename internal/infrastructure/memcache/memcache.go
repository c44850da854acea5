// Package memcache implements ports.Cache as an in-process store with
// per-entry TTL, an LRU size bound, and substring-based pattern clearing.
// It is the default cache for single-instance deployments; multi-instance
// deployments swap in the redis adapter behind the same port.
package memcache

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultMaxEntries bounds the cache when the caller passes no limit. TTL
// alone does not cap growth in a long-lived process.
const DefaultMaxEntries = 10000

type entry struct {
	key      string
	value    []byte
	storedAt time.Time
	ttl      time.Duration
	lruElem  *list.Element
}

// expired reports whether the entry is past its freshness deadline: an
// entry is valid iff now - storedAt < ttl.
func (e *entry) expired(now time.Time) bool {
	return now.Sub(e.storedAt) >= e.ttl
}

// Cache is a mutex-guarded TTL/LRU map. Expired entries are treated as
// absent and lazily purged on access; a background sweep catches the rest.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	lru        *list.List
	maxEntries int
	metrics    *Metrics
	logger     *logrus.Logger

	now func() time.Time // swappable for tests
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces the time source. Tests use this to step across TTL
// boundaries without sleeping.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithMetrics attaches prometheus counters for hits/misses/evictions.
func WithMetrics(m *Metrics) Option {
	return func(c *Cache) { c.metrics = m }
}

// New creates a cache holding at most maxEntries values. maxEntries <= 0
// selects DefaultMaxEntries.
func New(maxEntries int, logger *logrus.Logger, opts ...Option) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if logger == nil {
		logger = logrus.New()
	}
	c := &Cache{
		entries:    make(map[string]*entry),
		lru:        list.New(),
		maxEntries: maxEntries,
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the stored bytes if present and unexpired. An expired entry
// is evicted as a side effect and reported as a miss, never an error.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.metrics.miss()
		return nil, false, nil
	}
	if e.expired(c.now()) {
		c.remove(e)
		c.metrics.miss()
		return nil, false, nil
	}

	c.lru.MoveToFront(e.lruElem)
	c.metrics.hit()

	// Copy so callers cannot mutate the cached bytes.
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

// Set stores value with a freshness deadline of now + ttl, unconditionally
// overwriting any prior entry (last-writer-wins, no versioning).
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.entries[key]; ok {
		c.remove(prev)
	}

	for len(c.entries) >= c.maxEntries && c.lru.Len() > 0 {
		oldest := c.lru.Back()
		c.remove(oldest.Value.(*entry))
		c.metrics.eviction()
	}

	e := &entry{
		key:      key,
		value:    append([]byte(nil), value...),
		storedAt: c.now(),
		ttl:      ttl,
	}
	e.lruElem = c.lru.PushFront(e)
	c.entries[key] = e
	return nil
}

// Delete removes the entry if present; no-op otherwise.
func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		c.remove(e)
	}
	return nil
}

// ClearPattern removes every entry whose key contains substring.
func (c *Cache) ClearPattern(ctx context.Context, substring string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var cleared int
	for key, e := range c.entries {
		if strings.Contains(key, substring) {
			c.remove(e)
			cleared++
		}
	}
	if cleared > 0 {
		c.logger.WithFields(logrus.Fields{"pattern": substring, "count": cleared}).Debug("cache: cleared entries by pattern")
	}
	return nil
}

// Len returns the number of entries, expired ones included until swept.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// StartSweeper evicts expired entries every interval until ctx is done.
// Lazy eviction on Get already keeps reads correct; the sweeper only bounds
// the memory held by keys nobody asks for again.
func (c *Cache) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.sweep()
			}
		}
	}()
}

func (c *Cache) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var swept int
	for _, e := range c.entries {
		if e.expired(now) {
			c.remove(e)
			swept++
		}
	}
	if swept > 0 {
		c.logger.WithFields(logrus.Fields{"count": swept}).Debug("cache: swept expired entries")
	}
}

// remove must be called with the lock held.
func (c *Cache) remove(e *entry) {
	if e.lruElem != nil {
		c.lru.Remove(e.lruElem)
	}
	delete(c.entries, e.key)
}
