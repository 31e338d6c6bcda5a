package idgen

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
)

// RouteCounter keeps a Redis counter per route, incremented every time a key
// is issued on that route. The counts show how evenly keys spread across
// routes.
type RouteCounter struct {
	redis  redis.Cmdable
	prefix string
}

func NewRouteCounter(client redis.Cmdable, prefix string) *RouteCounter {
	if prefix == "" {
		prefix = "route_counter"
	}
	return &RouteCounter{redis: client, prefix: prefix}
}

func (c *RouteCounter) counterKey(totalRoutes, route uint8) string {
	return fmt.Sprintf("%s:%d:%d", c.prefix, totalRoutes, route)
}

// Record parses the route of key and increments its counter.
func (c *RouteCounter) Record(ctx context.Context, key string, totalRoutes uint8) (uint8, error) {
	totalRoutes = ClampRoutes(totalRoutes)

	route, err := ParseRoute(key, totalRoutes)
	if err != nil {
		return 0, err
	}

	if err := c.redis.Incr(ctx, c.counterKey(totalRoutes, route)).Err(); err != nil {
		return route, fmt.Errorf("failed to increment route counter: %w", err)
	}
	return route, nil
}

// Counts returns the counter of every route in [0, totalRoutes). Routes that
// never saw a key report zero.
func (c *RouteCounter) Counts(ctx context.Context, totalRoutes uint8) ([]int64, error) {
	totalRoutes = ClampRoutes(totalRoutes)

	keys := make([]string, totalRoutes)
	for i := range keys {
		keys[i] = c.counterKey(totalRoutes, uint8(i))
	}

	vals, err := c.redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read route counters: %w", err)
	}

	counts := make([]int64, totalRoutes)
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("route counter %s: %w", keys[i], err)
		}
		counts[i] = n
	}
	return counts, nil
}
