// Package cache provides the expiring read-through cache used in front of
// provider calls. The cache is a side mirror: no write path goes through it,
// and mutating operations invalidate the affected keys instead.
package cache

import (
	"context"
	"time"
)

// TTLs reflect acceptable staleness for display-only data. Financial state
// changes always bypass the cache.
const (
	CardListTTL     = 2 * time.Minute
	TransactionsTTL = 1 * time.Minute
	CardholderTTL   = 5 * time.Minute
)

// Store is the cache contract. Get returns found=false once the TTL has
// elapsed, never stale data. Invalidate removes all keys containing pattern,
// or everything when pattern is empty.
type Store interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
	Close() error
}
