package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dealscout/backend/internal/domain"
)

func TestLRUCache_SetAndGet(t *testing.T) {
	cache, err := NewLRUCache(8)
	if err != nil {
		t.Fatalf("NewLRUCache() error = %v", err)
	}
	ctx := context.Background()

	key := Key("extract_products", "listing text")
	if err := cache.Set(ctx, key, "value", 1*time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := cache.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "value" {
		t.Errorf("Get() = %q, want %q", got, "value")
	}
}

func TestLRUCache_ExpiredEntryIsMiss(t *testing.T) {
	cache, err := NewLRUCache(8)
	if err != nil {
		t.Fatalf("NewLRUCache() error = %v", err)
	}
	ctx := context.Background()

	key := "expiring"
	if err := cache.Set(ctx, key, "value", 1*time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	if _, err := cache.Get(ctx, key); err != domain.ErrCacheMiss {
		t.Errorf("Get() after TTL error = %v, want %v", err, domain.ErrCacheMiss)
	}
	if size := cache.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 after expired entry removal", size)
	}
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache, err := NewLRUCache(3)
	if err != nil {
		t.Fatalf("NewLRUCache() error = %v", err)
	}
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		key := fmt.Sprintf("key-%d", i)
		if err := cache.Set(ctx, key, "value", 1*time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	// Oldest entry is evicted once capacity is exceeded
	if _, err := cache.Get(ctx, "key-0"); err != domain.ErrCacheMiss {
		t.Errorf("Get(key-0) error = %v, want %v", err, domain.ErrCacheMiss)
	}
	if _, err := cache.Get(ctx, "key-3"); err != nil {
		t.Errorf("Get(key-3) error = %v, want nil", err)
	}
}

func TestLRUCache_DefaultSize(t *testing.T) {
	cache, err := NewLRUCache(0)
	if err != nil {
		t.Fatalf("NewLRUCache(0) error = %v", err)
	}
	if cache == nil {
		t.Fatal("NewLRUCache(0) returned nil cache")
	}
}
