package cache

import (
	"context"
	"delivery-simulation/internal/domain"
	"delivery-simulation/internal/platform/obs"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisPathCache keeps computed paths in Redis with an expiry.
type RedisPathCache struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration
}

// NewRedisPathCache stores entries for ttl; zero keeps them forever.
func NewRedisPathCache(client *redis.Client, namespace string, ttl time.Duration) *RedisPathCache {
	return &RedisPathCache{client: client, namespace: namespace, ttl: ttl}
}

func (c *RedisPathCache) key(from, to domain.Location) string {
	return "path:" + locationKey(c.namespace, from) + ">" + locationKey(c.namespace, to)
}

func (c *RedisPathCache) Get(ctx context.Context, from, to domain.Location) (_ []domain.Location, _ bool, err error) {
	defer obs.Time(ctx, "path.redis.Get")(&err)

	raw, err := c.client.Get(ctx, c.key(from, to)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get redis path cache: %w", err)
	}

	hops, err := decodeHops(raw)
	if err != nil {
		return nil, false, fmt.Errorf("get redis path cache: %w", err)
	}
	return hops, true, nil
}

func (c *RedisPathCache) Put(ctx context.Context, from, to domain.Location, hops []domain.Location) error {
	raw, err := encodeHops(hops)
	if err != nil {
		return fmt.Errorf("put redis path cache: %w", err)
	}
	if err := c.client.Set(ctx, c.key(from, to), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("put redis path cache %s -> %s: %w", from, to, err)
	}
	return nil
}
