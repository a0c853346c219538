package tenantcache

import (
	"context"
	"fmt"
	"reflect"
)

// GetOrSet is read-through caching for one entry.
//
// When the namespace is disabled fetch is called directly and no store is
// touched. Otherwise the cached value is returned on a hit; on a miss fetch
// runs and, when it reports found, the result is written back with the
// resolved TTL and backend. The fetched value is returned whether or not the
// write succeeded. Fetch errors are returned as is.
//
// Concurrent misses on the same key are not merged: each caller runs fetch
// and the last write wins. Set Options.Coalesce to merge them per process.
func GetOrSet[V any](ctx context.Context, c *Cache, e Entry, fetch FetchFunc[V]) (V, error) {
	if !c.reg.IsEnabled(e.Namespace) {
		v, _, err := fetch(ctx)
		return v, err
	}
	r, err := c.resolve(e)
	if err != nil {
		var zero V
		return zero, err
	}

	if raw, ok := c.getRaw(ctx, r.key, r.backend); ok {
		var v V
		err := c.codec.Unmarshal(raw, &v)
		if err == nil {
			return v, nil
		}
		c.backendErr("decode", r.backend, r.key, err)
	}

	if !c.coalesce {
		return fillMiss(ctx, c, r, fetch)
	}
	// callers reading the same key as different types must not share a result
	typ := reflect.TypeOf((*V)(nil)).Elem()
	res, err, _ := c.flight.Do(string(r.backend)+"|"+typ.String()+"|"+r.key, func() (any, error) {
		return fillMiss(ctx, c, r, fetch)
	})
	var zero V
	if err != nil {
		return zero, err
	}
	if res == nil {
		return zero, nil
	}
	v, ok := res.(V)
	if !ok {
		return zero, fmt.Errorf("tenantcache: coalesced result for %q is %T, not %v", r.key, res, typ)
	}
	return v, nil
}

func fillMiss[V any](ctx context.Context, c *Cache, r resolved, fetch FetchFunc[V]) (V, error) {
	v, found, err := fetch(ctx)
	if err != nil {
		return v, err
	}
	if found {
		c.Set(ctx, r.key, v, r.ttl, r.backend)
	}
	return v, nil
}
