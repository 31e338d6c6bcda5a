package idgen

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTxKeySize(t *testing.T) {
	for _, size := range []int{MinTxKeySize, DefaultTxKeySize, MaxTxKeySize} {
		k, err := NewTxKey(size)
		require.NoError(t, err)
		assert.Equal(t, size, k.Size())
		assert.Len(t, k.Create(), size)
	}

	for _, size := range []int{0, TimestampSize, MaxTxKeySize + 1} {
		_, err := NewTxKey(size)
		assert.ErrorIs(t, err, ErrInvalidSize, "size %d", size)
	}
}

func TestTxKeyKnownKey(t *testing.T) {
	k, err := NewTxKey(DefaultTxKeySize,
		WithClock(fixedClock(1665071608893359)),
		WithRandom(fixedRandom(137348)),
	)
	require.NoError(t, err)

	key := k.Create()
	assert.Equal(t, "7coWCdVsNZjI", key)

	ts, err := k.ParseTimestamp(key)
	require.NoError(t, err)
	assert.Equal(t, uint64(1665071608893359), ts)
}

func TestTxKeySuffixBounds(t *testing.T) {
	var gotMax uint64
	k, err := NewTxKey(DefaultTxKeySize, WithRandom(func(min, max uint64) uint64 {
		gotMax = max
		return min
	}))
	require.NoError(t, err)

	key := k.Create()
	assert.Equal(t, "000", key[TimestampSize:])
	assert.Equal(t, uint64(62*62*62-1), gotMax)
}

func TestTxKeyUnique(t *testing.T) {
	const maxTests = 10_000

	k, err := NewTxKey(DefaultTxKeySize)
	require.NoError(t, err)

	table := make(map[string]struct{}, maxTests)
	for i := 0; i < maxTests; i++ {
		key := k.Create()
		require.Len(t, key, DefaultTxKeySize)
		table[key] = struct{}{}
	}
	assert.Len(t, table, maxTests)
}

func TestTxKeySortsByTime(t *testing.T) {
	k1, err := NewTxKey(DefaultTxKeySize, WithClock(fixedClock(1665071608893359)))
	require.NoError(t, err)
	k2, err := NewTxKey(DefaultTxKeySize, WithClock(fixedClock(1665071608893360)))
	require.NoError(t, err)

	assert.Less(t, k1.Create()[:TimestampSize], k2.Create()[:TimestampSize])
}

func TestTxKeyParseTimestamp(t *testing.T) {
	k, err := NewTxKey(DefaultTxKeySize)
	require.NoError(t, err)

	start := uint64(time.Now().UnixMicro())
	ts, err := k.ParseTimestamp(k.Create())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, ts, start)

	_, err = k.ParseTimestamp("sxxskw")
	assert.ErrorIs(t, err, ErrInvalidSize)

	_, err = k.ParseTimestamp("7coW~dVsNZjI")
	assert.ErrorIs(t, err, ErrParse)
}
