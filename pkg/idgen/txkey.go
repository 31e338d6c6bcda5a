package idgen

import (
	"context"
	"fmt"
)

// Timestamp keys put the microsecond timestamp first, so keys of the same
// size sort by creation time. The random suffix only breaks ties.
const (
	DefaultTxKeySize = 12
	MinTxKeySize     = TimestampSize + 1
	MaxTxKeySize     = TimestampSize + 10
)

// TxKey creates and parses timestamp keys of a fixed size.
type TxKey struct {
	size      int
	maxSuffix uint64
	now       Clock
	random    RandomSource
}

// NewTxKey returns a timestamp key generator producing keys of size
// characters. size must be within [MinTxKeySize, MaxTxKeySize].
func NewTxKey(size int, opts ...Option) (*TxKey, error) {
	if size < MinTxKeySize || size > MaxTxKeySize {
		return nil, fmt.Errorf("%w: timestamp key size must be %d..%d, got %d", ErrInvalidSize, MinTxKeySize, MaxTxKeySize, size)
	}

	maxSuffix := uint64(1)
	for i := 0; i < size-TimestampSize; i++ {
		maxSuffix *= radix
	}

	o := buildOptions(opts)
	return &TxKey{
		size:      size,
		maxSuffix: maxSuffix - 1,
		now:       o.now,
		random:    o.random,
	}, nil
}

// Size returns the length of the keys produced by k.
func (k *TxKey) Size() int {
	return k.size
}

// Create returns a new timestamp key.
func (k *TxKey) Create() string {
	ts := Encode(unixMicros(k.now()))
	suffix := pad(Encode(k.random(0, k.maxSuffix)), k.size-TimestampSize)

	key := ts + suffix
	if len(key) != k.size {
		panic(fmt.Sprintf("idgen: timestamp key %q has length %d, want %d", key, len(key), k.size))
	}
	return key
}

// Generate implements Generator.
func (k *TxKey) Generate(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return k.Create(), nil
}

// ParseTimestamp returns the microsecond timestamp at the head of key.
func (k *TxKey) ParseTimestamp(key string) (uint64, error) {
	if len(key) != k.size {
		return 0, fmt.Errorf("%w: timestamp key must be %d characters, got %d", ErrInvalidSize, k.size, len(key))
	}

	ts, err := Decode(key[:TimestampSize])
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return ts, nil
}
