package tenantcache

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/unkn0wn-root/tenantcache/codec"
	"github.com/unkn0wn-root/tenantcache/store"
	"github.com/unkn0wn-root/tenantcache/store/memory"
)

const (
	defaultOpTimeout   = 2 * time.Second
	defaultScanRetries = 3
	defaultScanBackoff = 100 * time.Millisecond
)

// Entry addresses one cached value and carries the per-call overrides.
type Entry struct {
	Tenant    string // required
	Org       string // optional org scope
	Namespace string
	ID        string
	TTL       time.Duration // 0 => namespace default
	Backend   Backend       // "" => namespace preference
}

func (e Entry) parts() KeyParts {
	return KeyParts{Tenant: e.Tenant, Org: e.Org, Namespace: e.Namespace, ID: e.ID}
}

// FetchFunc produces the value for a cache miss, usually from the database.
// found=false means "no such record" and the result is not cached.
type FetchFunc[V any] func(ctx context.Context) (v V, found bool, err error)

// Options configure a Cache. Only Shared is required; others have sensible
// defaults.
type Options struct {
	// Registry wins over Config when both are set. With neither,
	// DefaultConfig() is used.
	Registry *Registry
	Config   *Config

	Shared store.Store // required; scan-capable stores enable bulk eviction
	Local  store.Store // nil => memory.New(Registry.Shards())

	Codec  codec.Codec // nil => codec.Msgpack{}
	Logger Logger      // nil => NopLogger
	Hooks  Hooks       // nil => NopHooks

	OpTimeout   time.Duration // per backend call; 0 => 2s
	ScanRetries int           // failed SCAN calls tolerated per cursor; 0 => 3
	ScanBackoff time.Duration // pause before retry n is n*ScanBackoff; 0 => 100ms

	// Coalesce de-duplicates concurrent GetOrSet misses on the same key within
	// this process. Off by default: concurrent misses each call fetch.
	Coalesce bool
}

// Cache is the tenant-aware cache. Safe for concurrent use.
type Cache struct {
	reg    *Registry
	local  store.Store
	shared store.Store
	codec  codec.Codec
	log    Logger
	hooks  Hooks

	opTimeout   time.Duration
	scanRetries int
	scanBackoff time.Duration

	coalesce bool
	flight   singleflight.Group
}

func New(opts Options) (*Cache, error) {
	if opts.Shared == nil {
		return nil, fmt.Errorf("tenantcache: shared store is required")
	}
	reg := opts.Registry
	if reg == nil {
		cfg := DefaultConfig()
		if opts.Config != nil {
			if err := opts.Config.Validate(); err != nil {
				return nil, err
			}
			cfg = *opts.Config
		}
		reg = NewRegistry(cfg)
	}

	c := &Cache{
		reg:      reg,
		shared:   opts.Shared,
		local:    opts.Local,
		coalesce: opts.Coalesce,
	}
	if c.local == nil {
		c.local = memory.New(reg.Shards())
	}
	c.codec = coalesce[codec.Codec](opts.Codec, codec.Msgpack{})
	c.log = coalesce[Logger](opts.Logger, NopLogger{})
	c.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	c.opTimeout = coalesce(opts.OpTimeout, defaultOpTimeout)
	c.scanRetries = coalesce(opts.ScanRetries, defaultScanRetries)
	c.scanBackoff = coalesce(opts.ScanBackoff, defaultScanBackoff)
	return c, nil
}

// Registry exposes the namespace policy the cache was built with.
func (c *Cache) Registry() *Registry { return c.reg }

// Close closes both stores (best effort) and returns the first error.
func (c *Cache) Close(ctx context.Context) error {
	lerr := c.local.Close(ctx)
	serr := c.shared.Close(ctx)
	if lerr != nil {
		return lerr
	}
	return serr
}
