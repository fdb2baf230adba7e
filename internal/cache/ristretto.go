package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
)

// RistrettoCache keeps entries in process memory.
type RistrettoCache struct {
	cache *ristretto.Cache
}

func NewRistrettoCache(numCounters, maxCost int64, bufferItems int64) (*RistrettoCache, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: numCounters,
		MaxCost:     maxCost,
		BufferItems: bufferItems,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ristretto cache: %w", err)
	}

	return &RistrettoCache{cache: cache}, nil
}

func (r *RistrettoCache) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := r.cache.Get(key)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

// Set stores value with its length as cost and waits until it is visible to Get.
func (r *RistrettoCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) bool {
	ok := r.cache.SetWithTTL(key, value, int64(len(value)), ttl)
	r.cache.Wait()
	return ok
}

func (r *RistrettoCache) Del(_ context.Context, key string) {
	r.cache.Del(key)
}

func (r *RistrettoCache) Close() { r.cache.Close() }
