package cache

import (
	"testing"
	"time"
)

func TestMemoryGetSet(t *testing.T) {
	c := NewMemory()
	c.Set("k", "v", time.Minute)

	value, ok := c.Get("k")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if value != "v" {
		t.Fatalf("expected v, got %v", value)
	}
}

func TestMemoryExpiry(t *testing.T) {
	c := NewMemory()
	now := time.Now()
	c.now = func() time.Time { return now }
	c.Set("k", "v", time.Minute)

	now = now.Add(2 * time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestMemoryDelete(t *testing.T) {
	c := NewMemory()
	c.Set("k", "v", time.Minute)
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected entry to be gone")
	}
}

func TestMemoryIgnoresNonPositiveTTL(t *testing.T) {
	c := NewMemory()
	c.Set("k", "v", 0)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected no entry for zero ttl")
	}
}

func TestDisabledNeverStores(t *testing.T) {
	var c Cache = Disabled{}
	c.Set("k", "v", time.Minute)
	if _, ok := c.Get("k"); ok {
		t.Fatal("disabled cache must miss")
	}
}
