package tenantcache

import "time"

// ResolveBackend picks the store for one call: override, then the namespace
// preference, then the registry default.
func (r *Registry) ResolveBackend(ns string, override Backend) Backend {
	if override.valid() {
		return override
	}
	if b, ok := r.BackendPreference(ns); ok {
		return b
	}
	return r.defaultBackend
}

// ResolveTTL picks the expiry for one call: explicit, then the namespace
// default, then 0 (no expiry). Explicit values are truncated to whole seconds
// with a floor of one second, since the shared store expires in seconds.
func (r *Registry) ResolveTTL(ns string, explicit time.Duration) time.Duration {
	if explicit > 0 {
		s := explicit.Truncate(time.Second)
		if s < time.Second {
			s = time.Second
		}
		return s
	}
	if d, ok := r.DefaultTTL(ns); ok {
		return d
	}
	return 0
}
