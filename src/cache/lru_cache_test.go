package cache

import (
	"testing"
	"time"
)

func TestGetReturnsStoredValue(t *testing.T) {
	c := NewLRUCache(4, time.Minute)
	c.Set("tool_a", map[string]any{"q": "x"})

	v, ok := c.Get("tool_a")
	if !ok {
		t.Fatal("expected a hit")
	}
	args := v.(map[string]any)
	if args["q"] != "x" {
		t.Fatalf("value = %v", args)
	}

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected a miss for an unknown key")
	}
}

func TestSetEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache(2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // refresh a so b becomes the eviction candidate
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a should have survived")
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
}

func TestExpiredEntriesMiss(t *testing.T) {
	c := NewLRUCache(4, -time.Second) // already expired on insert
	c.Set("a", 1)

	if _, ok := c.Get("a"); ok {
		t.Fatal("expected expired entry to miss")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry not removed, Len = %d", c.Len())
	}
}

func TestSetRefreshesExistingEntry(t *testing.T) {
	c := NewLRUCache(2, time.Minute)
	c.Set("a", 1)
	c.Set("a", 2)

	v, ok := c.Get("a")
	if !ok || v.(int) != 2 {
		t.Fatalf("Get = %v, %v", v, ok)
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
}

func TestRemove(t *testing.T) {
	c := NewLRUCache(2, time.Minute)
	c.Set("a", 1)
	c.Remove("a")
	c.Remove("never-existed")

	if _, ok := c.Get("a"); ok {
		t.Fatal("a should be gone")
	}
}
