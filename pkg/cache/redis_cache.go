package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// DefaultTTL is used when NewRedisCache receives a zero TTL.
const DefaultTTL = 5 * time.Minute

var ErrCacheMiss = errors.New("cache miss")

// RedisCache stores JSON encoded values of type V under a key prefix.
type RedisCache[V any] struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedisCache creates a Redis cache. Keys are stored as prefix:key.
func NewRedisCache[V any](client redis.Cmdable, prefix string, ttl time.Duration) *RedisCache[V] {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &RedisCache[V]{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *RedisCache[V]) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

// Get returns the cached value, or ErrCacheMiss.
func (r *RedisCache[V]) Get(ctx context.Context, key string) (V, error) {
	var v V

	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return v, ErrCacheMiss
	}
	if err != nil {
		return v, err
	}

	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("decode cached %s: %w", key, err)
	}
	return v, nil
}

// Set stores v with the cache TTL.
func (r *RedisCache[V]) Set(ctx context.Context, key string, v V) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, r.key(key), data, r.ttl).Err()
}

func (r *RedisCache[V]) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}
