// Package tenantcache implements a multi-tenant, namespaced cache that sits in
// front of a relational store. Each call goes to exactly one of two stores: a
// process-local one or a shared one (e.g. Redis).
//
// Components:
//   - Registry: per-namespace policy (enabled, default TTL, backend), built once
//     from a Config (JSON from CACHE_CONFIG, a YAML/JSON file, or defaults).
//   - BuildKey: the only place keys are made.
//   - ResolveBackend / ResolveTTL: explicit call value, then namespace config,
//     then global default.
//   - Cache: Get/Set/Delete, SetScoped/DelScoped, GetOrSet and pattern eviction.
//
// Keys:
//
//	tenant:<tenant>:<key>                      - tenant level
//	tenant:<tenant>[:org:<org>]:<ns>:<id>      - namespaced
//
// The tenant segment is always first; it is the only isolation between
// tenants. The cache trusts the tenant code it is given.
//
// Cache-aside:
//
//	form, err := tenantcache.GetOrSet(ctx, cache, tenantcache.Entry{
//	    Tenant: "t1", Namespace: "forms", ID: "v1",
//	}, func(ctx context.Context) (Form, bool, error) {
//	    return queries.FindForm(ctx, filter)
//	})
//
// Failures of either store never reach the caller: reads become misses and
// writes/deletes report false. Only invalid arguments (e.g. no tenant) return
// errors.
package tenantcache
