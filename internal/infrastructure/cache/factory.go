package cache

import (
	"fmt"

	"github.com/realfoodscore/backend/config"
	"github.com/realfoodscore/backend/internal/domain"
)

// FromConfig builds the cache selected by cfg.Type
func FromConfig(cfg config.CacheConfig) (domain.CacheRepository, error) {
	memory := NewMemoryCache(cfg.TTL, cfg.CleanupInterval)

	switch cfg.Type {
	case "", "memory":
		return memory, nil
	case "layered":
		if cfg.Dir == "" {
			return nil, fmt.Errorf("layered cache needs a directory")
		}
		return NewLayeredCache(memory, NewDiskCache(cfg.Dir, cfg.TTL)), nil
	default:
		return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
	}
}
