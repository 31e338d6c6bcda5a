package idgen

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// Routing key layout:
//
//	rrrr ttttttttt rrr
//	0    4         13  16
//
// r is a 7 character zero padded random field and t the microsecond
// timestamp, inserted into the random field at TimestampOffset.
const (
	RouteKeySize    = 16
	RandomFieldSize = 7
	TimestampOffset = 4
	TimestampSize   = 9

	// MinRandom ("10000") and MaxRandom ("zzzzzzz") keep the random field
	// between 5 and 7 digits before padding.
	MinRandom uint64 = 14776336
	MaxRandom uint64 = 3521614606207

	MinRoutes uint8 = 1
	MaxRoutes uint8 = 128

	routePrefixSize = 2
)

var (
	ErrInvalidSize   = errors.New("idgen: invalid key size")
	ErrInvalidBase62 = errors.New("idgen: invalid base62 route prefix")
	ErrParse         = errors.New("idgen: cannot parse key timestamp")
)

// Clock returns the current time.
type Clock func() time.Time

// RandomSource returns a uniformly distributed integer in [min, max].
type RandomSource func(min, max uint64) uint64

func uniform(min, max uint64) uint64 {
	return min + rand.Uint64N(max-min+1)
}

// RouteKey creates and parses 16 character routing keys. The zero value is
// not usable; call NewRouteKey. A RouteKey is safe for concurrent use.
type RouteKey struct {
	now    Clock
	random RandomSource
}

// Option configures a key generator.
type Option func(*options)

type options struct {
	now    Clock
	random RandomSource
}

// WithClock replaces the wall clock, mostly for tests.
func WithClock(c Clock) Option {
	return func(o *options) { o.now = c }
}

// WithRandom replaces the random source, mostly for tests.
func WithRandom(r RandomSource) Option {
	return func(o *options) { o.random = r }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, random: uniform}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewRouteKey returns a routing key generator.
func NewRouteKey(opts ...Option) *RouteKey {
	o := buildOptions(opts)
	return &RouteKey{now: o.now, random: o.random}
}

// Create returns a new routing key. It panics if the clock reads before the
// Unix epoch or if the assembled key is not RouteKeySize long.
func (k *RouteKey) Create() string {
	ts := Encode(unixMicros(k.now()))
	rnd := pad(Encode(k.random(MinRandom, MaxRandom)), RandomFieldSize)

	key := rnd[:TimestampOffset] + ts + rnd[TimestampOffset:]
	if len(key) != RouteKeySize {
		panic(fmt.Sprintf("idgen: routing key %q has length %d, want %d", key, len(key), RouteKeySize))
	}
	return key
}

// Generate implements Generator.
func (k *RouteKey) Generate(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return k.Create(), nil
}

// ParseRoute returns the route of key among totalRoutes. totalRoutes is
// clamped to [MinRoutes, MaxRoutes]. Only the first two characters of the
// key are read.
func (k *RouteKey) ParseRoute(key string, totalRoutes uint8) (uint8, error) {
	return ParseRoute(key, totalRoutes)
}

// ParseTimestamp returns the microsecond timestamp embedded in key.
func (k *RouteKey) ParseTimestamp(key string) (uint64, error) {
	return ParseTimestamp(key)
}

// ParseRoute is the package level form of RouteKey.ParseRoute.
func ParseRoute(key string, totalRoutes uint8) (uint8, error) {
	if len(key) < routePrefixSize {
		return 0, fmt.Errorf("%w: route needs %d characters, got %d", ErrInvalidSize, routePrefixSize, len(key))
	}

	routes := ClampRoutes(totalRoutes)

	n, err := Decode(key[:routePrefixSize])
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidBase62, err)
	}
	return uint8(n % uint64(routes)), nil
}

// ParseTimestamp is the package level form of RouteKey.ParseTimestamp.
func ParseTimestamp(key string) (uint64, error) {
	if len(key) != RouteKeySize {
		return 0, fmt.Errorf("%w: routing key must be %d characters, got %d", ErrInvalidSize, RouteKeySize, len(key))
	}

	ts, err := Decode(key[TimestampOffset : TimestampOffset+TimestampSize])
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrParse, err)
	}
	return ts, nil
}

// ClampRoutes bounds a route count to [MinRoutes, MaxRoutes].
func ClampRoutes(n uint8) uint8 {
	return max(MinRoutes, min(n, MaxRoutes))
}

func unixMicros(t time.Time) uint64 {
	ns := t.UnixNano()
	if ns < 0 {
		panic("idgen: system time before Unix epoch")
	}
	return uint64(ns / 1_000)
}
