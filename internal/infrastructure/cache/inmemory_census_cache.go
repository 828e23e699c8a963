package cache

import (
	"context"
	"sync"
	"time"

	appbilling "github.com/crvcrv26/repo-sub002/internal/application/billing"
	"github.com/crvcrv26/repo-sub002/internal/domain/directory"
)

// entry represents a cached census result with expiration
type entry struct {
	result    directory.CensusResult
	expiresAt time.Time
}

// InMemoryCensusCache implements the census cache on an in-memory map
// This is suitable for single-instance deployments and testing
type InMemoryCensusCache struct {
	mu        sync.RWMutex
	entries   map[string]entry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryCensusCache creates a new in-memory census cache
// It starts a background goroutine to clean up expired entries
func NewInMemoryCensusCache() *InMemoryCensusCache {
	cache := &InMemoryCensusCache{
		entries:  make(map[string]entry),
		stopChan: make(chan struct{}),
	}

	cache.wg.Add(1)
	go cache.cleanupLoop()

	return cache
}

// Get returns the cached census for a key, if present and not expired
func (c *InMemoryCensusCache) Get(ctx context.Context, key string) (directory.CensusResult, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, exists := c.entries[key]
	if !exists || time.Now().After(e.expiresAt) {
		return directory.CensusResult{}, false, nil
	}
	return e.result, true, nil
}

// Set stores a census result under the key with the given TTL
func (c *InMemoryCensusCache) Set(ctx context.Context, key string, result directory.CensusResult, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry{
		result:    result,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Invalidate drops a cached census entry
func (c *InMemoryCensusCache) Invalidate(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// Close stops the cleanup goroutine and releases resources
// Safe to call multiple times
func (c *InMemoryCensusCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired entries
func (c *InMemoryCensusCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup removes expired entries from the cache
func (c *InMemoryCensusCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Size returns the number of entries in the cache (for testing/monitoring)
func (c *InMemoryCensusCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Ensure InMemoryCensusCache implements the application cache port
var _ appbilling.CensusCache = (*InMemoryCensusCache)(nil)
