// Package asynchook moves hook delivery off the request path.
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{BackendErrorEvery: 100})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	c, _ := tenantcache.New(tenantcache.Options{Shared: shared, Hooks: hooks})
//
// Events are dropped when the queue is full.
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/tenantcache"
)

type Hooks struct {
	inner   tenantcache.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

var _ tenantcache.Hooks = (*Hooks)(nil)

func New(inner tenantcache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events sent after Close
// are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) BackendError(op string, b tenantcache.Backend, k string, err error) {
	h.try(func() { h.inner.BackendError(op, b, k, err) })
}
func (h *Hooks) EvictBatchFallback(p string, n int, err error) {
	h.try(func() { h.inner.EvictBatchFallback(p, n, err) })
}
func (h *Hooks) EvictScanAbandoned(p string, cursor uint64, err error) {
	h.try(func() { h.inner.EvictScanAbandoned(p, cursor, err) })
}
func (h *Hooks) EvictDone(p string, deleted, rounds int) {
	h.try(func() { h.inner.EvictDone(p, deleted, rounds) })
}
