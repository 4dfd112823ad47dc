// Package cache stores aggregated dataset listings so that browsing does not
// refetch every FDP on each request.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/datavisiting/fdp-explorer/pkg/models"
)

// DefaultTTL is how long a listing stays cached when no TTL is configured.
const DefaultTTL = time.Hour

// DatasetCache caches dataset listings by key.
type DatasetCache interface {
	// Get returns the cached listing. ok is false on a miss or expiry.
	Get(ctx context.Context, key string) (datasets []models.Dataset, ok bool, err error)
	Set(ctx context.Context, key string, datasets []models.Dataset) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// KeyFor derives the cache key of a listing from the ordered FDP URIs it was
// aggregated from. Reordering the FDPs changes the listing order and so the key.
func KeyFor(fdpURIs []string) string {
	sum := md5.Sum([]byte(strings.Join(fdpURIs, "\n")))
	return hex.EncodeToString(sum[:])
}

type memoryEntry struct {
	datasets  []models.Dataset
	expiresAt time.Time
}

// MemoryCache is a process-local DatasetCache.
type MemoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCache creates an in-memory cache. A non-positive ttl uses DefaultTTL.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

var _ DatasetCache = (*MemoryCache)(nil)

func (c *MemoryCache) Get(ctx context.Context, key string) ([]models.Dataset, bool, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return append([]models.Dataset(nil), entry.datasets...), true, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, datasets []models.Dataset) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryEntry{
		datasets:  append([]models.Dataset{}, datasets...),
		expiresAt: c.now().Add(c.ttl),
	}
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Close does nothing
func (c *MemoryCache) Close() error {
	return nil
}
