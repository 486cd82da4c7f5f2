package match

import (
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/couchcryptid/flood-risk-engine/internal/domain"
)

// CachedMatcher wraps a Matcher with an in-memory LRU cache. Match results are
// keyed by location and a fingerprint of the candidate dataset, so a cache
// entry is reused only while the reservoir telemetry it was computed from is
// unchanged.
type CachedMatcher struct {
	inner Matcher
	cache *lruCache
}

// NewCachedMatcher creates a cache decorator around a matcher.
func NewCachedMatcher(inner Matcher, maxEntries int) *CachedMatcher {
	return &CachedMatcher{
		inner: inner,
		cache: newLRUCache(maxEntries),
	}
}

func (c *CachedMatcher) Match(loc domain.MonitoredLocation, candidates []domain.ReservoirRecord) (domain.ReservoirMatch, bool) {
	key := fmt.Sprintf("%s|%x", loc.ID, datasetFingerprint(candidates))
	if v, ok := c.cache.get(key); ok {
		return v.match, v.found
	}
	m, found := c.inner.Match(loc, candidates)
	c.cache.put(key, cachedResult{match: m, found: found})
	return m, found
}

// datasetFingerprint hashes candidate identity fields so any telemetry update
// invalidates dependent cache entries.
func datasetFingerprint(candidates []domain.ReservoirRecord) uint64 {
	h := fnv.New64a()
	for _, r := range candidates {
		h.Write([]byte(r.Name))
		h.Write([]byte(r.Region))
		h.Write([]byte(r.UpdatedAt.UTC().Format("2006-01-02T15:04:05")))
		h.Write([]byte{0})
	}
	return h.Sum64()
}

type cachedResult struct {
	match domain.ReservoirMatch
	found bool
}

// lruCache is a simple thread-safe LRU cache for match results.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value cachedResult
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (cachedResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return cachedResult{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value cachedResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
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
