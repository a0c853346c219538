package tenantcache

import (
	"sort"
	"time"
)

// Backend names a physical store.
type Backend string

const (
	BackendLocal  Backend = "local"
	BackendShared Backend = "shared"
)

func (b Backend) valid() bool { return b == BackendLocal || b == BackendShared }

// Namespace is the resolved, immutable form of a NamespaceConfig.
type Namespace struct {
	Name       string
	Enabled    bool
	DefaultTTL time.Duration // 0 => none configured
	Backend    Backend       // "" => defer to the registry default
}

// Registry answers per-namespace policy questions. It is read-only after
// NewRegistry returns and safe for concurrent use without locking.
type Registry struct {
	enabled        bool
	shards         int
	scanCount      int
	defaultBackend Backend
	ns             map[string]Namespace
}

// NewRegistry builds a Registry from cfg. Zero values fall back to package
// defaults; cfg is not retained.
func NewRegistry(cfg Config) *Registry {
	r := &Registry{
		enabled:        cfg.Enabled == nil || *cfg.Enabled,
		shards:         coalesce(cfg.Shards, defaultShards),
		scanCount:      coalesce(cfg.ScanCount, defaultScanCount),
		defaultBackend: BackendShared,
		ns:             make(map[string]Namespace, len(cfg.Namespaces)),
	}
	if cfg.DefaultBackend.valid() {
		r.defaultBackend = cfg.DefaultBackend
	}
	for _, nc := range cfg.Namespaces {
		n := Namespace{Name: nc.Name, Enabled: nc.Enabled == nil || *nc.Enabled}
		if nc.DefaultTTL != nil && *nc.DefaultTTL > 0 {
			n.DefaultTTL = nc.DefaultTTL.Duration()
		}
		if nc.UseInternal != nil {
			if *nc.UseInternal {
				n.Backend = BackendLocal
			} else {
				n.Backend = BackendShared
			}
		}
		r.ns[nc.Name] = n
	}
	return r
}

// Enabled reports the global switch.
func (r *Registry) Enabled() bool { return r.enabled }

// IsEnabled is opt-out: unknown namespaces and namespaces without an explicit
// flag are enabled. The global switch overrides everything.
func (r *Registry) IsEnabled(ns string) bool {
	if !r.enabled {
		return false
	}
	n, ok := r.ns[ns]
	return !ok || n.Enabled
}

// DefaultTTL returns the namespace default, if one is configured.
func (r *Registry) DefaultTTL(ns string) (time.Duration, bool) {
	n, ok := r.ns[ns]
	if !ok || n.DefaultTTL <= 0 {
		return 0, false
	}
	return n.DefaultTTL, true
}

// BackendPreference returns the namespace's backend, or false when it defers
// to DefaultBackend.
func (r *Registry) BackendPreference(ns string) (Backend, bool) {
	n, ok := r.ns[ns]
	if !ok || n.Backend == "" {
		return "", false
	}
	return n.Backend, true
}

func (r *Registry) DefaultBackend() Backend { return r.defaultBackend }
func (r *Registry) Shards() int             { return r.shards }
func (r *Registry) ScanCount() int          { return r.scanCount }

// Namespaces returns the configured namespaces sorted by name.
func (r *Registry) Namespaces() []Namespace {
	out := make([]Namespace, 0, len(r.ns))
	for _, n := range r.ns {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
