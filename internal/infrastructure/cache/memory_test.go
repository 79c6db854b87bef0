package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/manmaru/backend/internal/domain"
)

// fakeClock lets tests move time without sleeping
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCache(t *testing.T, maxEntries int) (*MemoryCache, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	cache := NewMemoryCache(maxEntries)
	cache.now = clock.Now
	t.Cleanup(func() { _ = cache.Close() })
	return cache, clock
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache, clock := newTestCache(t, 10)
	ctx := context.Background()

	tests := []struct {
		name    string
		key     string
		value   []byte
		ttl     time.Duration
		expired bool
	}{
		{
			name:  "store and retrieve",
			key:   "test-key-1",
			value: []byte(`[{"id":"01088","s":1}]`),
			ttl:   1 * time.Minute,
		},
		{
			name:  "store without expiry",
			key:   "test-key-2",
			value: []byte("forever"),
			ttl:   0,
		},
		{
			name:    "store with short TTL",
			key:     "test-key-3",
			value:   []byte("expires-soon"),
			ttl:     1 * time.Millisecond,
			expired: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := cache.Set(ctx, tt.key, tt.value, tt.ttl); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			if tt.expired {
				clock.Advance(10 * time.Millisecond)
				_, err := cache.Get(ctx, tt.key)
				if !errors.Is(err, domain.ErrCacheMiss) {
					t.Errorf("Expected cache miss after expiration, got error = %v", err)
				}
				return
			}

			got, err := cache.Get(ctx, tt.key)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if string(got) != string(tt.value) {
				t.Errorf("Get() = %s, want %s", got, tt.value)
			}
		})
	}
}

func TestMemoryCache_ValuesAreCopied(t *testing.T) {
	cache, _ := newTestCache(t, 10)
	ctx := context.Background()

	value := []byte("abc")
	if err := cache.Set(ctx, "k", value, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	value[0] = 'x'

	got, _ := cache.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("Get() = %s, want abc after caller modified its slice", got)
	}
	got[1] = 'y'

	again, _ := cache.Get(ctx, "k")
	if string(again) != "abc" {
		t.Errorf("Get() = %s, want abc after caller modified the returned slice", again)
	}
}

func TestMemoryCache_Get_CacheMiss(t *testing.T) {
	cache, _ := newTestCache(t, 10)

	_, err := cache.Get(context.Background(), "non-existent-key")
	if !errors.Is(err, domain.ErrCacheMiss) {
		t.Errorf("Get() error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	cache, _ := newTestCache(t, 10)
	ctx := context.Background()

	key := "delete-test"
	if err := cache.Set(ctx, key, []byte("value"), 1*time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := cache.Get(ctx, key); err != nil {
		t.Fatalf("Get() before delete error = %v", err)
	}

	if err := cache.Delete(ctx, key); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if _, err := cache.Get(ctx, key); !errors.Is(err, domain.ErrCacheMiss) {
		t.Errorf("Get() after delete error = %v, want %v", err, domain.ErrCacheMiss)
	}

	// deleting a missing key is not an error
	if err := cache.Delete(ctx, key); err != nil {
		t.Errorf("Delete() of missing key error = %v", err)
	}
}

func TestMemoryCache_Exists(t *testing.T) {
	cache, clock := newTestCache(t, 10)
	ctx := context.Background()

	key := "exists-test"
	exists, err := cache.Exists(ctx, key)
	if err != nil || exists {
		t.Errorf("Exists() = %v, %v; want false, nil for non-existent key", exists, err)
	}

	if err := cache.Set(ctx, key, []byte("value"), 1*time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	exists, err = cache.Exists(ctx, key)
	if err != nil || !exists {
		t.Errorf("Exists() = %v, %v; want true, nil after setting value", exists, err)
	}

	clock.Advance(2 * time.Minute)
	exists, err = cache.Exists(ctx, key)
	if err != nil || exists {
		t.Errorf("Exists() = %v, %v; want false, nil after expiration", exists, err)
	}
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache, _ := newTestCache(t, 3)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		if err := cache.Set(ctx, key, []byte(key), time.Minute); err != nil {
			t.Fatalf("Set(%s) error = %v", key, err)
		}
	}

	// touch "a" so "b" becomes the oldest
	if _, err := cache.Get(ctx, "a"); err != nil {
		t.Fatalf("Get(a) error = %v", err)
	}
	if err := cache.Set(ctx, "d", []byte("d"), time.Minute); err != nil {
		t.Fatalf("Set(d) error = %v", err)
	}

	if size := cache.Size(); size != 3 {
		t.Errorf("Size() = %d, want 3", size)
	}
	if _, err := cache.Get(ctx, "b"); !errors.Is(err, domain.ErrCacheMiss) {
		t.Errorf("Get(b) error = %v, want eviction", err)
	}
	for _, key := range []string{"a", "c", "d"} {
		if _, err := cache.Get(ctx, key); err != nil {
			t.Errorf("Get(%s) error = %v, want hit", key, err)
		}
	}

	// overwriting refreshes recency without growing the cache
	if err := cache.Set(ctx, "a", []byte("a2"), time.Minute); err != nil {
		t.Fatalf("Set(a) error = %v", err)
	}
	if size := cache.Size(); size != 3 {
		t.Errorf("Size() = %d after overwrite, want 3", size)
	}
	got, _ := cache.Get(ctx, "a")
	if string(got) != "a2" {
		t.Errorf("Get(a) = %s, want a2", got)
	}
}

func TestMemoryCache_RemoveExpired(t *testing.T) {
	cache, clock := newTestCache(t, 10)
	ctx := context.Background()

	_ = cache.Set(ctx, "short", []byte("1"), time.Second)
	_ = cache.Set(ctx, "long", []byte("2"), time.Hour)
	_ = cache.Set(ctx, "forever", []byte("3"), 0)

	clock.Advance(time.Minute)
	if removed := cache.removeExpired(); removed != 1 {
		t.Errorf("removeExpired() = %d, want 1", removed)
	}
	if size := cache.Size(); size != 2 {
		t.Errorf("Size() = %d, want 2", size)
	}
}

func TestMemoryCache_Size(t *testing.T) {
	cache, _ := newTestCache(t, 10)
	ctx := context.Background()

	if size := cache.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 for empty cache", size)
	}

	for i := 0; i < 5; i++ {
		key := string(rune('a' + i))
		if err := cache.Set(ctx, key, []byte{byte(i)}, 1*time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}
	if size := cache.Size(); size != 5 {
		t.Errorf("Size() = %d, want 5", size)
	}

	if err := cache.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if size := cache.Size(); size != 4 {
		t.Errorf("Size() = %d, want 4 after delete", size)
	}
}

func TestMemoryCache_Clear(t *testing.T) {
	cache, _ := newTestCache(t, 10)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		key := string(rune('a' + i))
		if err := cache.Set(ctx, key, []byte{byte(i)}, 1*time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	cache.Clear()

	if size := cache.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 after clear", size)
	}
	for i := 0; i < 5; i++ {
		key := string(rune('a' + i))
		if _, err := cache.Get(ctx, key); !errors.Is(err, domain.ErrCacheMiss) {
			t.Errorf("Get(%s) after clear error = %v, want %v", key, err, domain.ErrCacheMiss)
		}
	}
}

func TestMemoryCache_DefaultMaxEntries(t *testing.T) {
	cache := NewMemoryCache(0)
	defer cache.Close()

	if cache.maxEntries != DefaultMaxEntries {
		t.Errorf("maxEntries = %d, want %d", cache.maxEntries, DefaultMaxEntries)
	}
	// Close is idempotent
	if err := cache.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache, _ := newTestCache(t, 8)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := fmt.Sprintf("k%d", id%12)
			if err := cache.Set(ctx, key, []byte(key), 1*time.Minute); err != nil {
				t.Errorf("Concurrent Set() error = %v", err)
			}
			if _, err := cache.Get(ctx, key); err != nil && !errors.Is(err, domain.ErrCacheMiss) {
				t.Errorf("Concurrent Get() error = %v", err)
			}
			_, _ = cache.Exists(ctx, key)
		}(i)
	}
	wg.Wait()

	if size := cache.Size(); size > 8 {
		t.Errorf("Size() = %d, want at most 8", size)
	}
}
