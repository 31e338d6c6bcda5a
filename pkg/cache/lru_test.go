package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestLRU_Basic(t *testing.T) {
	cache := NewLRU[int](2)

	cache.Put("a", 1)
	cache.Put("b", 2)

	// Get "a" - should exist
	if val, ok := cache.Get("a"); !ok || val != 1 {
		t.Errorf("Expected a=1, got %v", val)
	}

	// Cache is full, add "c" -> should evict "b" (LRU)
	cache.Put("c", 3)

	if _, ok := cache.Get("b"); ok {
		t.Error("Expected 'b' to be evicted")
	}
	if _, ok := cache.Get("a"); !ok {
		t.Error("Expected 'a' to exist")
	}
	if _, ok := cache.Get("c"); !ok {
		t.Error("Expected 'c' to exist")
	}
}

func TestLRU_UpdateExisting(t *testing.T) {
	cache := NewLRU[int](2)

	cache.Put("a", 1)
	cache.Put("a", 10)

	if val, ok := cache.Get("a"); !ok || val != 10 {
		t.Errorf("Expected a=10, got %v", val)
	}
	if cache.Len() != 1 {
		t.Errorf("Expected len 1, got %d", cache.Len())
	}
}

func TestLRU_PeekKeepsOrder(t *testing.T) {
	cache := NewLRU[string](2)

	cache.Put("a", "x")
	cache.Put("b", "y")

	// Peek must not refresh "a", so it is evicted next
	if val, ok := cache.Peek("a"); !ok || val != "x" {
		t.Errorf("Expected a=x, got %v", val)
	}
	cache.Put("c", "z")

	if _, ok := cache.Peek("a"); ok {
		t.Error("Expected 'a' to be evicted")
	}
}

func TestLRU_DeleteAndClear(t *testing.T) {
	cache := NewLRU[int](0)

	cache.Put("a", 1)
	cache.Put("b", 2)

	if !cache.Delete("a") {
		t.Error("Expected delete of 'a' to succeed")
	}
	if cache.Delete("a") {
		t.Error("Expected second delete of 'a' to fail")
	}
	if _, ok := cache.Get("a"); ok {
		t.Error("Expected 'a' to be gone")
	}

	cache.Clear()
	if cache.Len() != 0 {
		t.Errorf("Expected empty cache, got %d", cache.Len())
	}
	cache.Put("c", 3)
	if val, ok := cache.Get("c"); !ok || val != 3 {
		t.Errorf("Expected c=3 after clear, got %v", val)
	}
}

func TestLRU_Concurrency(t *testing.T) {
	cache := NewLRU[int](100)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("key_%d_%d", id, j)
				cache.Put(key, j)
				cache.Get(key)
			}
		}(i)
	}
	wg.Wait()

	if cache.Len() != 100 {
		t.Errorf("Expected 100 entries, got %d", cache.Len())
	}
}

func TestLRU_TTL(t *testing.T) {
	now := time.Unix(1000, 0)
	cache := NewLRU[string](10, WithTTL(time.Minute), WithClock(func() time.Time { return now }))

	cache.Put("a", "1")
	now = now.Add(30 * time.Second)
	if val, ok := cache.Get("a"); !ok || val != "1" {
		t.Errorf("Expected a=1 before expiry, got %v, %v", val, ok)
	}

	cache.Put("b", "2")
	now = now.Add(30 * time.Second)
	if _, ok := cache.Get("a"); ok {
		t.Error("Expected a to expire after the TTL")
	}
	if _, ok := cache.Peek("a"); ok {
		t.Error("Expected Peek to miss an expired entry")
	}
	if val, ok := cache.Peek("b"); !ok || val != "2" {
		t.Errorf("Expected b=2, got %v, %v", val, ok)
	}
	if cache.Len() != 1 {
		t.Errorf("Expected expired entry removed, got len %d", cache.Len())
	}

	cache.Put("b", "3")
	now = now.Add(45 * time.Second)
	if val, ok := cache.Get("b"); !ok || val != "3" {
		t.Errorf("Expected Put to refresh the expiry, got %v, %v", val, ok)
	}
}
