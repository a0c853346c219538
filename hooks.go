package tenantcache

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The cache calls them on hot paths.
type Hooks interface {
	// A backend call failed and was absorbed.
	// op ∈ {"get", "set", "del", "encode", "decode"}
	BackendError(op string, backend Backend, storageKey string, err error)

	// A batch delete failed during eviction and fell back to per-key deletes.
	EvictBatchFallback(pattern string, batch int, err error)

	// A scan gave up after repeated errors at cursor.
	EvictScanAbandoned(pattern string, cursor uint64, err error)

	// A scan-and-delete run finished. rounds is the number of SCAN calls.
	EvictDone(pattern string, deleted int, rounds int)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) BackendError(string, Backend, string, error) {}
func (NopHooks) EvictBatchFallback(string, int, error)       {}
func (NopHooks) EvictScanAbandoned(string, uint64, error)    {}
func (NopHooks) EvictDone(string, int, int)                  {}
