package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations.
// Values are opaque bytes; callers own the encoding.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ProductClient defines the interface for a barcode/product database
type ProductClient interface {
	GetProduct(ctx context.Context, barcode string) (*Product, error)
	SearchProducts(ctx context.Context, query string, limit int) ([]Product, error)
}
