package cache

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCacheGetSet(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	defer c.Close()
	ctx := context.Background()

	if _, err := c.Get(ctx, SiteKey("meidan-haat")); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() on empty cache error = %v, want ErrCacheMiss", err)
	}

	if err := c.Set(ctx, SiteKey("meidan-haat"), []byte(`{"slug":"meidan-haat"}`), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := c.Get(ctx, SiteKey("meidan-haat"))
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != `{"slug":"meidan-haat"}` {
		t.Errorf("Get() = %q", got)
	}
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() after expiry error = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheDeleteAndClear(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	defer c.Close()
	ctx := context.Background()

	c.Set(ctx, "a", []byte("1"), 0)
	c.Set(ctx, "b", []byte("2"), 0)

	if err := c.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := c.Get(ctx, "a"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() after delete error = %v, want ErrCacheMiss", err)
	}

	if err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, err := c.Get(ctx, "b"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() after clear error = %v, want ErrCacheMiss", err)
	}
}

func TestMemoryCacheCopiesValues(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	defer c.Close()
	ctx := context.Background()

	src := []byte("original")
	c.Set(ctx, "k", src, 0)
	src[0] = 'X'

	got, err := c.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "original" {
		t.Errorf("cached value mutated through caller slice: %q", got)
	}

	got[0] = 'Y'
	again, _ := c.Get(ctx, "k")
	if string(again) != "original" {
		t.Errorf("cached value mutated through returned slice: %q", again)
	}
}

func TestMemoryCacheClosed(t *testing.T) {
	c := NewMemoryCache(MemoryCacheOptions{DefaultTTL: time.Minute})
	c.Close()
	ctx := context.Background()

	if _, err := c.Get(ctx, "k"); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Get() after close error = %v, want ErrCacheClosed", err)
	}
	if err := c.Set(ctx, "k", []byte("v"), 0); !errors.Is(err, ErrCacheClosed) {
		t.Errorf("Set() after close error = %v, want ErrCacheClosed", err)
	}
}

func TestNewSelectsMemoryWithoutRedisURL(t *testing.T) {
	c, err := New(Options{DefaultTTL: time.Minute, MaxSize: 10})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()

	if _, ok := c.(*MemoryCache); !ok {
		t.Errorf("New() without RedisURL returned %T, want *MemoryCache", c)
	}
}

func TestSiteKey(t *testing.T) {
	if got := SiteKey("meidan-haat"); got != "site:meidan-haat" {
		t.Errorf("SiteKey() = %q, want site:meidan-haat", got)
	}
}
