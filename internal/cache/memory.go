package cache

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/googuteam/scorepp/internal/config"
	"github.com/googuteam/scorepp/internal/observability"
)

// defaultCleanupInterval is how often expired entries are swept.
const defaultCleanupInterval = time.Minute

// memoryCache implements an in-memory LRU cache.
type memoryCache struct {
	logger     observability.Logger
	maxEntries int
	defaultTTL time.Duration

	mu       sync.Mutex
	items    map[string]*list.Element
	eviction *list.List

	hits   int64
	misses int64

	cleanupInterval time.Duration
	stopCh          chan struct{}
	stopOnce        sync.Once
}

// memoryCacheEntry represents an entry in the memory cache.
type memoryCacheEntry struct {
	key       string
	value     []byte
	expiresAt time.Time
}

// newMemoryCache creates a new in-memory cache.
//
//nolint:unparam // error return is for interface consistency with other cache implementations
func newMemoryCache(cfg *config.CacheConfig, logger observability.Logger) (*memoryCache, error) {
	maxEntries := 0
	cleanupInterval := defaultCleanupInterval
	if cfg.Memory != nil {
		maxEntries = cfg.Memory.MaxEntries
		if cfg.Memory.CleanupInterval > 0 {
			cleanupInterval = cfg.Memory.CleanupInterval.Duration()
		}
	}
	if maxEntries <= 0 {
		maxEntries = 10000
	}

	c := &memoryCache{
		logger:          logger,
		maxEntries:      maxEntries,
		defaultTTL:      cfg.TTL.Duration(),
		items:           make(map[string]*list.Element),
		eviction:        list.New(),
		cleanupInterval: cleanupInterval,
		stopCh:          make(chan struct{}),
	}

	go c.cleanupLoop()

	logger.Info("memory cache initialized",
		observability.Int("maxEntries", maxEntries),
		observability.Duration("defaultTTL", c.defaultTTL))

	return c, nil
}

// Get retrieves a value from the cache.
func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.items[key]
	if !exists {
		atomic.AddInt64(&c.misses, 1)
		return nil, ErrCacheMiss
	}

	entry := elem.Value.(*memoryCacheEntry)

	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.removeElement(elem)
		atomic.AddInt64(&c.misses, 1)
		return nil, ErrCacheMiss
	}

	c.eviction.MoveToFront(elem)
	atomic.AddInt64(&c.hits, 1)

	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, nil
}

// Set stores a value in the cache.
func (c *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		entry := elem.Value.(*memoryCacheEntry)
		entry.value = stored
		entry.expiresAt = expiresAt
		c.eviction.MoveToFront(elem)
		return nil
	}

	for c.eviction.Len() >= c.maxEntries {
		if oldest := c.eviction.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}

	elem := c.eviction.PushFront(&memoryCacheEntry{
		key:       key,
		value:     stored,
		expiresAt: expiresAt,
	})
	c.items[key] = elem
	return nil
}

// Delete removes a value from the cache.
func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.removeElement(elem)
	}
	return nil
}

// Exists checks if a key exists in the cache.
func (c *memoryCache) Exists(ctx context.Context, key string) (bool, error) {
	_, err := c.Get(ctx, key)
	if err != nil {
		if err == ErrCacheMiss {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Close stops the cleanup goroutine.
func (c *memoryCache) Close() error {
	c.stopOnce.Do(func() { close(c.stopCh) })
	return nil
}

// Stats returns cache statistics.
func (c *memoryCache) Stats() Stats {
	c.mu.Lock()
	size := int64(c.eviction.Len())
	c.mu.Unlock()

	return Stats{
		Hits:   atomic.LoadInt64(&c.hits),
		Misses: atomic.LoadInt64(&c.misses),
		Size:   size,
	}
}

// removeElement removes an entry; callers must hold the lock.
func (c *memoryCache) removeElement(elem *list.Element) {
	entry := elem.Value.(*memoryCacheEntry)
	delete(c.items, entry.key)
	c.eviction.Remove(elem)
}

// cleanupLoop periodically sweeps expired entries.
func (c *memoryCache) cleanupLoop() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.cleanupExpired()
		}
	}
}

// cleanupExpired removes all expired entries.
func (c *memoryCache) cleanupExpired() {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for elem := c.eviction.Back(); elem != nil; {
		prev := elem.Prev()
		entry := elem.Value.(*memoryCacheEntry)
		if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
			c.removeElement(elem)
		}
		elem = prev
	}
}
