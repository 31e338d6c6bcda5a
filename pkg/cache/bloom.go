package cache

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// KeyFilter is a concurrency safe Bloom filter over keys. MightContain never
// returns false for a key that was added.
type KeyFilter struct {
	mu     sync.RWMutex
	filter *bloom.BloomFilter
}

func NewKeyFilter(expected uint, falsePositiveRate float64) *KeyFilter {
	return &KeyFilter{filter: bloom.NewWithEstimates(expected, falsePositiveRate)}
}

func (f *KeyFilter) Add(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter.AddString(key)
}

func (f *KeyFilter) MightContain(key string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filter.TestString(key)
}

// ApproxCount estimates how many distinct keys were added.
func (f *KeyFilter) ApproxCount() uint32 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.filter.ApproximatedSize()
}
