// Package cache stores serialized key sets for the remote key provider.
package cache

import (
	"context"
	"time"
)

// Cache is a byte oriented store with per entry TTL.
// A ttl of zero means the entry does not expire on its own.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool
	Del(ctx context.Context, key string)
}
