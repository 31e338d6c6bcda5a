package cache

import (
	"fmt"
	"sync"
	"testing"
)

func TestKeyFilter(t *testing.T) {
	f := NewKeyFilter(1000, 0.01)

	for i := 0; i < 500; i++ {
		f.Add(fmt.Sprintf("key-%d", i))
	}

	for i := 0; i < 500; i++ {
		if !f.MightContain(fmt.Sprintf("key-%d", i)) {
			t.Fatalf("added key-%d reported absent", i)
		}
	}

	var falsePositives int
	for i := 0; i < 1000; i++ {
		if f.MightContain(fmt.Sprintf("other-%d", i)) {
			falsePositives++
		}
	}
	if falsePositives > 50 {
		t.Errorf("too many false positives: %d/1000", falsePositives)
	}

	if n := f.ApproxCount(); n < 450 || n > 550 {
		t.Errorf("ApproxCount = %d, want about 500", n)
	}
}

func TestKeyFilterConcurrency(t *testing.T) {
	f := NewKeyFilter(10000, 0.01)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				key := fmt.Sprintf("%d-%d", g, i)
				f.Add(key)
				if !f.MightContain(key) {
					t.Errorf("key %s missing right after Add", key)
				}
			}
		}(g)
	}
	wg.Wait()
}
