package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/tenantcache"
)

type Options struct {
	// Sampling to avoid floods during a backend outage; 0/1 = log all.
	BackendErrorEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	backendErrCtr atomic.Uint64
}

var _ tenantcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

// redact hides identifiers; keys carry tenant and record ids.
func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) BackendError(op string, backend tenantcache.Backend, storageKey string, err error) {
	if h.l == nil || !sample(h.opts.BackendErrorEvery, &h.backendErrCtr) {
		return
	}
	h.l.Warn("tenantcache.backend_error",
		"op", op,
		"backend", string(backend),
		"key", h.redact(storageKey),
		"err", err)
}

func (h *Hooks) EvictBatchFallback(pattern string, batch int, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("tenantcache.evict_batch_fallback",
		"pattern", h.redact(pattern),
		"batch", batch,
		"err", err)
}

func (h *Hooks) EvictScanAbandoned(pattern string, cursor uint64, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("tenantcache.evict_scan_abandoned",
		"pattern", h.redact(pattern),
		"cursor", cursor,
		"err", err)
}

func (h *Hooks) EvictDone(pattern string, deleted int, rounds int) {
	if h.l == nil {
		return
	}
	h.l.Info("tenantcache.evict_done",
		"pattern", h.redact(pattern),
		"deleted", deleted,
		"rounds", rounds)
}
