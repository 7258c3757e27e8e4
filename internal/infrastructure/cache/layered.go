package cache

import (
	"context"
	"errors"
	"time"

	"github.com/realfoodscore/backend/internal/domain"
)

// LayeredCache checks memory first and falls back to disk, promoting disk
// hits into memory
type LayeredCache struct {
	memory domain.CacheRepository
	disk   domain.CacheRepository
}

// NewLayeredCache stacks a memory cache over a disk cache
func NewLayeredCache(memory, disk domain.CacheRepository) *LayeredCache {
	return &LayeredCache{
		memory: memory,
		disk:   disk,
	}
}

// Get retrieves a value from the first layer that has it
func (c *LayeredCache) Get(ctx context.Context, key string) ([]byte, error) {
	if val, err := c.memory.Get(ctx, key); err == nil {
		return val, nil
	}

	val, err := c.disk.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	_ = c.memory.Set(ctx, key, val, 0)
	return val, nil
}

// Set stores a value in both layers
func (c *LayeredCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.memory.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	return c.disk.Set(ctx, key, value, ttl)
}

// Delete removes a value from both layers
func (c *LayeredCache) Delete(ctx context.Context, key string) error {
	return errors.Join(c.memory.Delete(ctx, key), c.disk.Delete(ctx, key))
}

// Exists reports whether either layer has the key
func (c *LayeredCache) Exists(ctx context.Context, key string) (bool, error) {
	if ok, err := c.memory.Exists(ctx, key); err == nil && ok {
		return true, nil
	}
	return c.disk.Exists(ctx, key)
}
