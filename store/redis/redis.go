package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/tenantcache/store"
)

var (
	ErrNilClient = errors.New("redis store: nil client")
	// ErrClusterScan is returned by Scan on a cluster client: keyless
	// commands are routed to a random node, so a cursor would be replayed
	// against the wrong server. Use ForEachShard instead.
	ErrClusterScan = errors.New("redis store: scan on a cluster client must go through ForEachShard")
)

// Redis is the shared backend. It is the only built-in store that supports
// cursor scans, so it is the one bulk eviction runs against.
type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
}

var (
	_ store.Store        = (*Redis)(nil)
	_ store.Scanner      = (*Redis)(nil)
	_ store.BatchDeleter = (*Redis)(nil)
	_ store.Unlinker     = (*Redis)(nil)
	_ store.Sharded      = (*Redis)(nil)
)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this store exclusively owns the client
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Redis{rdb: cfg.Client, closeClient: cfg.CloseClient}, nil
}

func (s *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if err == goredis.Nil {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

func (s *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0 // no expiry
	}
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

func (s *Redis) Del(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

// Scan runs one SCAN step against a single-node or failover client.
func (s *Redis) Scan(ctx context.Context, cursor uint64, match string, count int64) ([]string, uint64, error) {
	if _, ok := s.rdb.(*goredis.ClusterClient); ok {
		return nil, 0, ErrClusterScan
	}
	return s.rdb.Scan(ctx, cursor, match, count).Result()
}

// ForEachShard calls fn once with s itself, or, on a cluster client, once per
// master (concurrently) with a store that scans only that master.
func (s *Redis) ForEachShard(ctx context.Context, fn func(context.Context, store.Store) error) error {
	cc, ok := s.rdb.(*goredis.ClusterClient)
	if !ok {
		return fn(ctx, s)
	}
	return cc.ForEachMaster(ctx, func(ctx context.Context, master *goredis.Client) error {
		return fn(ctx, &clusterNode{cluster: s, master: master})
	})
}

// DelBatch deletes keys with one DEL. On a cluster client the keys may span
// hash slots, so one DEL per key is pipelined instead.
func (s *Redis) DelBatch(ctx context.Context, keys []string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	if cc, ok := s.rdb.(*goredis.ClusterClient); ok {
		return pipelined(ctx, cc, keys, goredis.Pipeliner.Del)
	}
	return s.rdb.Del(ctx, keys...).Result()
}

// Unlink is DelBatch with UNLINK.
func (s *Redis) Unlink(ctx context.Context, keys []string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	if cc, ok := s.rdb.(*goredis.ClusterClient); ok {
		return pipelined(ctx, cc, keys, goredis.Pipeliner.Unlink)
	}
	return s.rdb.Unlink(ctx, keys...).Result()
}

type keysCmd func(p goredis.Pipeliner, ctx context.Context, keys ...string) *goredis.IntCmd

func pipelined(ctx context.Context, cc *goredis.ClusterClient, keys []string, cmd keysCmd) (int64, error) {
	cmds := make([]*goredis.IntCmd, len(keys))
	_, err := cc.Pipelined(ctx, func(p goredis.Pipeliner) error {
		for i, k := range keys {
			cmds[i] = cmd(p, ctx, k)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	var n int64
	for _, c := range cmds {
		n += c.Val()
	}
	return n, nil
}

// clusterNode scans one cluster master. Reads, writes and deletes still go
// through the cluster client so they follow slot ownership.
type clusterNode struct {
	cluster *Redis
	master  *goredis.Client
}

var (
	_ store.Scanner      = (*clusterNode)(nil)
	_ store.BatchDeleter = (*clusterNode)(nil)
	_ store.Unlinker     = (*clusterNode)(nil)
)

func (n *clusterNode) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return n.cluster.Get(ctx, key)
}

func (n *clusterNode) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return n.cluster.Set(ctx, key, value, ttl)
}

func (n *clusterNode) Del(ctx context.Context, key string) error { return n.cluster.Del(ctx, key) }

func (n *clusterNode) Scan(ctx context.Context, cursor uint64, match string, count int64) ([]string, uint64, error) {
	return n.master.Scan(ctx, cursor, match, count).Result()
}

func (n *clusterNode) DelBatch(ctx context.Context, keys []string) (int64, error) {
	return n.cluster.DelBatch(ctx, keys)
}

func (n *clusterNode) Unlink(ctx context.Context, keys []string) (int64, error) {
	return n.cluster.Unlink(ctx, keys)
}

// Close is a no-op; the node client belongs to the cluster client.
func (n *clusterNode) Close(context.Context) error { return nil }

// Close releases the underlying redis client only when this store owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (s *Redis) Close(context.Context) error {
	if s.closeClient {
		if err := s.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
