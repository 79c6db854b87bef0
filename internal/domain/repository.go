package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations.
// Values are opaque encoded bytes so that memory and Redis backends behave the same.
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// FoodDataSource loads the reference food dataset.
type FoodDataSource interface {
	LoadFoods(ctx context.Context) ([]Food, error)
	// Describe names the source for logs (file path, URL, "embedded").
	Describe() string
}
