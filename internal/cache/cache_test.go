package cache

import (
	"testing"
	"time"
)

func TestGetMissingKey(t *testing.T) {
	c := NewTTLCache[int](time.Minute)
	if _, ok := c.Get("absent"); ok {
		t.Error("expected miss for absent key")
	}
}

func TestSetGetWithinTTL(t *testing.T) {
	c := NewTTLCache[string](time.Minute)
	c.Set("k", "v")

	got, ok := c.Get("k")
	if !ok || got != "v" {
		t.Errorf("expected hit with %q, got %q ok=%v", "v", got, ok)
	}
}

func TestExpiryRemovesEntryOnRead(t *testing.T) {
	c := NewTTLCache[int](time.Hour)
	base := time.Now()
	clock := base
	c.SetClock(func() time.Time { return clock })

	c.Set("k", 42)

	clock = base.Add(time.Hour - time.Second)
	if _, ok := c.Get("k"); !ok {
		t.Error("entry expired early")
	}

	clock = base.Add(time.Hour + time.Second)
	if _, ok := c.Get("k"); ok {
		t.Error("entry survived past its TTL")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry should be removed on read, Len=%d", c.Len())
	}
}

func TestSetRefreshesExpiry(t *testing.T) {
	c := NewTTLCache[int](time.Hour)
	base := time.Now()
	clock := base
	c.SetClock(func() time.Time { return clock })

	c.Set("k", 1)
	clock = base.Add(45 * time.Minute)
	c.Set("k", 2)

	clock = base.Add(90 * time.Minute)
	got, ok := c.Get("k")
	if !ok || got != 2 {
		t.Errorf("rewritten entry should live a full TTL from its write, got %v ok=%v", got, ok)
	}
}

func TestClear(t *testing.T) {
	c := NewTTLCache[int](time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Clear()

	if c.Len() != 0 {
		t.Errorf("expected empty cache, Len=%d", c.Len())
	}
}
