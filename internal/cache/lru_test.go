package cache

import (
	"testing"
	"time"
)

func TestLRUGetSet(t *testing.T) {
	c := NewLRU[string](2, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("empty cache must miss")
	}

	c.Set("a", "one")
	c.Set("b", "two")

	if got, ok := c.Get("a"); !ok || got != "one" {
		t.Fatalf("Get(a) = %q, %v", got, ok)
	}

	// "a" was touched, so adding a third entry evicts "b".
	c.Set("c", "three")
	if _, ok := c.Get("b"); ok {
		t.Fatal("least recently used entry must be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("recently used entry must survive eviction")
	}
	if c.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", c.Size())
	}
}

func TestLRUExpiry(t *testing.T) {
	c := NewLRU[int](4, time.Millisecond)
	c.Set("n", 42)
	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("n"); ok {
		t.Fatal("expired entry must miss")
	}
	c.Set("m", 7)
	time.Sleep(5 * time.Millisecond)
	if removed := c.CleanExpired(); removed != 1 {
		t.Fatalf("CleanExpired() = %d, want 1", removed)
	}
	if c.Size() != 0 {
		t.Fatalf("Size() after cleanup = %d, want 0", c.Size())
	}
}

func TestLRUPurge(t *testing.T) {
	c := NewLRU[int](4, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Purge()

	if c.Size() != 0 {
		t.Fatalf("Size() after purge = %d, want 0", c.Size())
	}
	if _, ok := c.Get("a"); ok {
		t.Fatal("purged entry must miss")
	}
	c.Set("a", 3)
	if got, ok := c.Get("a"); !ok || got != 3 {
		t.Fatal("cache must accept writes after purge")
	}
}

func TestManagerSweep(t *testing.T) {
	c := NewLRU[int](4, time.Millisecond)
	c.Set("stale", 1)

	m := NewManager()
	m.Register(c)
	m.StartCleanup(5 * time.Millisecond)
	defer m.Stop()

	deadline := time.After(time.Second)
	for c.Size() > 0 {
		select {
		case <-deadline:
			t.Fatal("manager never swept the expired entry")
		case <-time.After(time.Millisecond):
		}
	}
}
