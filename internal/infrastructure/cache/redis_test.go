package cache

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/manmaru/backend/internal/domain"
)

func TestNewRedisCache_InvalidURL(t *testing.T) {
	if _, err := NewRedisCache("http://localhost:6379", "test:"); err == nil {
		t.Error("NewRedisCache() with http scheme, want error")
	}
}

// closedAddr returns an address nothing listens on
func closedAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	_ = l.Close()
	return addr
}

func TestRedisCache_Unavailable(t *testing.T) {
	cache, err := NewRedisCache("redis://"+closedAddr(t)+"/0", "test:")
	if err != nil {
		t.Fatalf("NewRedisCache() error = %v", err)
	}
	defer cache.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := cache.Ping(ctx); !errors.Is(err, domain.ErrCacheUnavailable) {
		t.Errorf("Ping() error = %v, want %v", err, domain.ErrCacheUnavailable)
	}
	if _, err := cache.Get(ctx, "k"); !errors.Is(err, domain.ErrCacheUnavailable) {
		t.Errorf("Get() error = %v, want %v", err, domain.ErrCacheUnavailable)
	}
	if err := cache.Set(ctx, "k", []byte("v"), time.Minute); !errors.Is(err, domain.ErrCacheUnavailable) {
		t.Errorf("Set() error = %v, want %v", err, domain.ErrCacheUnavailable)
	}
	if _, err := cache.Exists(ctx, "k"); !errors.Is(err, domain.ErrCacheUnavailable) {
		t.Errorf("Exists() error = %v, want %v", err, domain.ErrCacheUnavailable)
	}
	if err := cache.Delete(ctx, "k"); !errors.Is(err, domain.ErrCacheUnavailable) {
		t.Errorf("Delete() error = %v, want %v", err, domain.ErrCacheUnavailable)
	}
}
