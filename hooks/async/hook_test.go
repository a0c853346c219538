package asynchook

import (
	"runtime"
	"sync"
	"testing"

	"github.com/unkn0wn-root/tenantcache"
)

type recHooks struct {
	tenantcache.NopHooks
	mu     sync.Mutex
	events []string
	block  chan struct{}
}

func (r *recHooks) add(e string) {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recHooks) BackendError(op string, _ tenantcache.Backend, _ string, _ error) {
	r.add("backend_error:" + op)
}
func (r *recHooks) EvictDone(p string, _, _ int) { r.add("evict_done:" + p) }

func (r *recHooks) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestCloseDrainsQueue(t *testing.T) {
	inner := &recHooks{}
	h := New(inner, 2, 16)
	for i := 0; i < 10; i++ {
		h.BackendError("get", tenantcache.BackendShared, "k", nil)
	}
	h.EvictDone("tenant:t1:*", 3, 1)
	h.Close()

	if got := inner.count(); got != 11 {
		t.Fatalf("delivered %d events, want 11", got)
	}
	if h.Dropped() != 0 {
		t.Fatalf("dropped %d", h.Dropped())
	}
}

func TestDropsWhenFullAndAfterClose(t *testing.T) {
	inner := &recHooks{block: make(chan struct{})}
	h := New(inner, 1, 1)

	// the worker takes the first event and blocks on it, the second fills
	// the queue, everything after that is dropped
	h.EvictDone("a", 0, 0)
	for h.queued() != 0 {
		runtime.Gosched()
	}
	h.EvictDone("b", 0, 0)
	h.EvictDone("c", 0, 0)
	h.EvictDone("d", 0, 0)
	if h.Dropped() != 2 {
		t.Fatalf("dropped %d, want 2", h.Dropped())
	}

	close(inner.block)
	h.Close()
	h.EvictDone("late", 0, 0)
	if h.Dropped() != 3 {
		t.Fatalf("dropped %d after close, want 3", h.Dropped())
	}
	if inner.count() != 2 {
		t.Fatalf("delivered %d, want 2", inner.count())
	}
}

func (h *Hooks) queued() int { return len(h.q) }
