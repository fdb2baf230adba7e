package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache shares entries between processes through Redis.
// Errors from Redis are reported as misses.
type RedisCache struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisCache(client redis.UniversalClient, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	return r.client.Set(ctx, r.prefix+key, value, ttl).Err() == nil
}

func (r *RedisCache) Del(ctx context.Context, key string) {
	r.client.Del(ctx, r.prefix+key)
}
