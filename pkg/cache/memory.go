package cache

import (
	"context"
	"errors"
	"time"

	"github.com/allegro/bigcache/v3"
)

// MemoryCache is an in-process cache backed by bigcache.
//
// bigcache evicts everything after a fixed life window; per-entry TTLs
// shorter than that window are enforced on read.
type MemoryCache struct {
	cache *bigcache.BigCache
}

// NewMemoryCache creates a memory cache whose entries live at most lifeWindow.
func NewMemoryCache(ctx context.Context, lifeWindow time.Duration) (*MemoryCache, error) {
	cfg := bigcache.DefaultConfig(lifeWindow)
	cfg.Shards = 64
	cfg.CleanWindow = lifeWindow / 4
	if cfg.CleanWindow < time.Second {
		cfg.CleanWindow = time.Second
	}
	c, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{cache: c}, nil
}

// Get retrieves a value from the cache.
func (c *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := c.cache.Get(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	data, ok := decodeEntry(raw)
	if !ok {
		_ = c.cache.Delete(key)
		return nil, false, nil
	}
	return data, true, nil
}

// Set stores a value in the cache.
func (c *MemoryCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	raw, err := encodeEntry(data, ttl)
	if err != nil {
		return err
	}
	return c.cache.Set(key, raw)
}

// Delete removes a value from the cache.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	if err := c.cache.Delete(key); err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
		return err
	}
	return nil
}

// Len returns the number of stored entries, including expired ones not yet evicted.
func (c *MemoryCache) Len() int { return c.cache.Len() }

// Close stops bigcache's cleanup goroutine.
func (c *MemoryCache) Close() error {
	return c.cache.Close()
}

var _ Cache = (*MemoryCache)(nil)
