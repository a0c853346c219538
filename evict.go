package tenantcache

import (
	"context"
	"sync"
	"time"

	"github.com/unkn0wn-root/tenantcache/store"
)

// Bulk eviction walks the shared store only. Entries in the local store are
// not enumerable and are not reached by any Evict* call; they go away on
// DelScoped/Delete or with the process.

// EvictNamespace deletes every shared key under tenant[:org:org]:ns:suffix.
// suffix "" means "*". It returns the number of keys deleted (see
// ScanAndDelete for how that is counted); the error is non-nil only for
// invalid arguments.
func (c *Cache) EvictNamespace(ctx context.Context, tenant, org, ns, suffix string) (int, error) {
	pattern, err := NamespacePattern(tenant, org, ns, suffix)
	if err != nil {
		return 0, err
	}
	return c.ScanAndDelete(ctx, pattern), nil
}

// EvictOrgByPattern deletes every shared key of org under tenant, across
// namespaces.
func (c *Cache) EvictOrgByPattern(ctx context.Context, tenant, org, suffix string) (int, error) {
	pattern, err := OrgPattern(tenant, org, suffix)
	if err != nil {
		return 0, err
	}
	return c.ScanAndDelete(ctx, pattern), nil
}

// EvictTenantByPattern deletes every shared key of tenant, across orgs and
// namespaces.
func (c *Cache) EvictTenantByPattern(ctx context.Context, tenant, suffix string) (int, error) {
	pattern, err := TenantPattern(tenant, suffix)
	if err != nil {
		return 0, err
	}
	return c.ScanAndDelete(ctx, pattern), nil
}

// ScanAndDelete removes every shared key matching pattern, one SCAN batch at a
// time, so neither memory nor per-call blocking grows with the key space.
// Stores implementing store.Sharded are scanned shard by shard.
//
// Completeness relies on the Redis SCAN guarantee that a key present for the
// whole scan is returned at least once, even though earlier batches were
// deleted in between. A scanner that pages by offset over a shrinking key
// set does not give that guarantee and will skip keys. Keys written
// concurrently may or may not be seen.
//
// It is best effort: failed batches fall back to per-key deletes, and a
// failing SCAN is retried at the same cursor up to ScanRetries times, with a
// growing ScanBackoff pause, before that shard is abandoned.
//
// The result counts what the store reported removed for UNLINK and batch
// DEL. In the per-key fallback every DEL that succeeded is counted, which
// includes keys that expired between SCAN and DEL.
func (c *Cache) ScanAndDelete(ctx context.Context, pattern string) int {
	sh, ok := c.shared.(store.Sharded)
	if !ok {
		sh = oneShard{c.shared}
	}

	var (
		mu       sync.Mutex
		deleted  int
		rounds   int
		complete = true
	)
	err := sh.ForEachShard(ctx, func(ctx context.Context, s store.Store) error {
		d, r, done := c.scanShard(ctx, s, pattern)
		mu.Lock()
		deleted += d
		rounds += r
		complete = complete && done
		mu.Unlock()
		return nil
	})
	if err != nil {
		c.log.Error("eviction could not reach shards", Fields{"pattern": pattern, "err": err})
		c.hooks.EvictScanAbandoned(pattern, 0, err)
		return deleted
	}
	if !complete {
		return deleted
	}

	c.log.Debug("eviction done", Fields{"pattern": pattern, "deleted": deleted, "rounds": rounds})
	c.hooks.EvictDone(pattern, deleted, rounds)
	return deleted
}

type oneShard struct{ s store.Store }

func (o oneShard) ForEachShard(ctx context.Context, fn func(context.Context, store.Store) error) error {
	return fn(ctx, o.s)
}

// scanShard runs the cursor loop on one shard. done is false when the shard
// cannot scan or the run was abandoned.
func (c *Cache) scanShard(ctx context.Context, s store.Store, pattern string) (deleted, rounds int, done bool) {
	sc, ok := s.(store.Scanner)
	if !ok {
		c.log.Warn("shared store cannot scan; eviction skipped", Fields{"pattern": pattern})
		return 0, 0, false
	}
	count := int64(c.reg.ScanCount())

	var (
		cursor uint64
		fails  int
	)
	for {
		if err := ctx.Err(); err != nil {
			c.log.Warn("eviction cancelled", Fields{"pattern": pattern, "cursor": cursor, "deleted": deleted})
			c.hooks.EvictScanAbandoned(pattern, cursor, err)
			return deleted, rounds, false
		}

		qctx, cancel := c.opCtx(ctx)
		keys, next, err := sc.Scan(qctx, cursor, pattern, count)
		cancel()
		rounds++
		if err != nil {
			fails++
			if fails > c.scanRetries {
				c.log.Error("eviction scan abandoned", Fields{"pattern": pattern, "cursor": cursor, "err": err})
				c.hooks.EvictScanAbandoned(pattern, cursor, err)
				return deleted, rounds, false
			}
			c.log.Warn("eviction scan failed, retrying", Fields{"pattern": pattern, "cursor": cursor, "err": err})
			pause(ctx, c.scanBackoff*time.Duration(fails))
			continue
		}
		fails = 0

		if len(keys) > 0 {
			deleted += c.deleteBatch(ctx, s, pattern, keys)
		}
		if next == 0 {
			return deleted, rounds, true
		}
		cursor = next
	}
}

// pause waits for d or until ctx is done.
func pause(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// deleteBatch prefers UNLINK, then a blocking batch DEL, then one DEL per
// key. Per-key failures are swallowed.
func (c *Cache) deleteBatch(ctx context.Context, s store.Store, pattern string, keys []string) int {
	var lastErr error

	if u, ok := s.(store.Unlinker); ok {
		n, err := c.withTimeout(ctx, func(qctx context.Context) (int64, error) { return u.Unlink(qctx, keys) })
		if err == nil {
			return int(n)
		}
		lastErr = err
	}
	if bd, ok := s.(store.BatchDeleter); ok {
		n, err := c.withTimeout(ctx, func(qctx context.Context) (int64, error) { return bd.DelBatch(qctx, keys) })
		if err == nil {
			return int(n)
		}
		lastErr = err
	}
	if lastErr != nil {
		c.log.Warn("batch delete failed, deleting keys one by one",
			Fields{"pattern": pattern, "batch": len(keys), "err": lastErr})
		c.hooks.EvictBatchFallback(pattern, len(keys), lastErr)
	}

	n := 0
	for _, k := range keys {
		if _, err := c.withTimeout(ctx, func(qctx context.Context) (int64, error) {
			return 0, s.Del(qctx, k)
		}); err != nil {
			c.log.Debug("evict key failed", Fields{"key": k, "err": err})
			continue
		}
		n++
	}
	return n
}

func (c *Cache) withTimeout(ctx context.Context, fn func(context.Context) (int64, error)) (int64, error) {
	qctx, cancel := c.opCtx(ctx)
	defer cancel()
	return fn(qctx)
}
