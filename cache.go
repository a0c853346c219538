package tenantcache

import (
	"context"
	"time"

	"github.com/unkn0wn-root/tenantcache/store"
)

// storeFor returns the single store an operation talks to. Local and shared
// are never combined: no fan-out reads, no dual writes.
func (c *Cache) storeFor(b Backend) store.Store {
	if b == BackendLocal {
		return c.local
	}
	return c.shared
}

func (c *Cache) opCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, c.opTimeout)
}

func (c *Cache) backendErr(op string, b Backend, key string, err error) {
	c.log.Warn("cache backend error", Fields{"op": op, "backend": string(b), "key": key, "err": err})
	c.hooks.BackendError(op, b, key, err)
}

// getRaw treats every failure as a miss.
func (c *Cache) getRaw(ctx context.Context, key string, b Backend) ([]byte, bool) {
	qctx, cancel := c.opCtx(ctx)
	defer cancel()
	raw, ok, err := c.storeFor(b).Get(qctx, key)
	if err != nil {
		c.backendErr("get", b, key, err)
		return nil, false
	}
	return raw, ok
}

func (c *Cache) setRaw(ctx context.Context, key string, raw []byte, ttl time.Duration, b Backend) bool {
	qctx, cancel := c.opCtx(ctx)
	defer cancel()
	if err := c.storeFor(b).Set(qctx, key, raw, ttl); err != nil {
		c.backendErr("set", b, key, err)
		return false
	}
	return true
}

// Get reads key from backend b and decodes it into out (a non-nil pointer).
// Backend and decode errors are reported as a miss.
func (c *Cache) Get(ctx context.Context, key string, b Backend, out any) bool {
	b = c.reg.ResolveBackend("", b)
	raw, ok := c.getRaw(ctx, key, b)
	if !ok {
		return false
	}
	if err := c.codec.Unmarshal(raw, out); err != nil {
		c.backendErr("decode", b, key, err)
		return false
	}
	return true
}

// Set encodes value and writes it to backend b. ttl <= 0 means no expiry.
// Returns false when the write did not happen; the error is logged.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration, b Backend) bool {
	b = c.reg.ResolveBackend("", b)
	raw, err := c.codec.Marshal(value)
	if err != nil {
		c.backendErr("encode", b, key, err)
		return false
	}
	return c.setRaw(ctx, key, raw, ttl, b)
}

// Delete removes key from backend b. Returns false when the delete failed.
func (c *Cache) Delete(ctx context.Context, key string, b Backend) bool {
	b = c.reg.ResolveBackend("", b)
	qctx, cancel := c.opCtx(ctx)
	defer cancel()
	if err := c.storeFor(b).Del(qctx, key); err != nil {
		c.backendErr("del", b, key, err)
		return false
	}
	return true
}

// resolved is the outcome of the shared key/backend/TTL pipeline.
type resolved struct {
	key     string
	backend Backend
	ttl     time.Duration
}

func (c *Cache) resolve(e Entry) (resolved, error) {
	key, err := BuildKey(e.parts())
	if err != nil {
		return resolved{}, err
	}
	return resolved{
		key:     key,
		backend: c.reg.ResolveBackend(e.Namespace, e.Backend),
		ttl:     c.reg.ResolveTTL(e.Namespace, e.TTL),
	}, nil
}

// SetScoped writes value under the key derived from e, with TTL and backend
// taken from e or the namespace config. It returns the key, or "" when the
// namespace is disabled (nothing is written). The error is non-nil only for
// an invalid Entry.
func (c *Cache) SetScoped(ctx context.Context, e Entry, value any) (string, error) {
	if !c.reg.IsEnabled(e.Namespace) {
		return "", nil
	}
	r, err := c.resolve(e)
	if err != nil {
		return "", err
	}
	c.Set(ctx, r.key, value, r.ttl, r.backend)
	return r.key, nil
}

// DelScoped removes the key derived from e from its resolved backend. Same
// return contract as SetScoped.
func (c *Cache) DelScoped(ctx context.Context, e Entry) (string, error) {
	if !c.reg.IsEnabled(e.Namespace) {
		return "", nil
	}
	r, err := c.resolve(e)
	if err != nil {
		return "", err
	}
	c.Delete(ctx, r.key, r.backend)
	return r.key, nil
}
