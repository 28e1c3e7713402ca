// Package cache provides a TTL cache with a read-through wrapper,
// used to avoid refetching pages from slow data sources.
package cache

import (
	"context"
	"time"
)

// Manager is the interface satisfied by cache implementations.
type Manager[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Flush(ctx context.Context) error
}
