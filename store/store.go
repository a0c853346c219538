// Package store defines the backend abstraction used by tenantcache.
//
// A Store is a byte store. Values are opaque: Get must return exactly the bytes
// previously passed to Set for the same key. Two roles exist:
//
//   - local: process-private (memory, ristretto, bigcache). No pattern scan.
//   - shared: networked and multi-tenant (redis). Implements Scanner so bulk
//     eviction can walk the key space with a cursor.
//
// Important: the keyspace "tenant:" is owned by tenantcache. External code
// writing under it may be evicted by tenant-wide pattern deletes.
package store

import (
	"context"
	"time"
)

// Store is a minimal byte store. Must be safe for concurrent use.
type Store interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value. ttl <= 0 means no expiry. Stores without per-entry
	// expiry may ignore ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Del removes a key. Deleting a missing key is not an error.
	Del(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}

// Scanner is implemented by stores that can enumerate keys incrementally.
// Scan starts at cursor 0 and is complete when the returned cursor is 0.
// count is a batch size hint, not a limit.
type Scanner interface {
	Scan(ctx context.Context, cursor uint64, match string, count int64) (keys []string, next uint64, err error)
}

// BatchDeleter removes many keys in one blocking round trip.
type BatchDeleter interface {
	DelBatch(ctx context.Context, keys []string) (int64, error)
}

// Unlinker removes many keys without blocking the server on reclamation.
type Unlinker interface {
	Unlink(ctx context.Context, keys []string) (int64, error)
}

// Sharded is implemented by stores whose key space is split over independent
// nodes, such as a Redis Cluster. A scan cursor is only valid on the node that
// issued it, so each shard passed to fn is scanned on its own. fn may be
// called concurrently.
type Sharded interface {
	ForEachShard(ctx context.Context, fn func(ctx context.Context, shard Store) error) error
}
