package tenantcache

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/unkn0wn-root/tenantcache/store"
)

type memEntry struct {
	v   []byte
	ttl time.Duration
}

// fakeStore records every call so tests can assert which backend was touched.
type fakeStore struct {
	mu    sync.Mutex
	m     map[string]memEntry
	calls []string

	getErr error
	setErr error
	delErr error
}

var _ store.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore { return &fakeStore{m: make(map[string]memEntry)} }

func (s *fakeStore) record(op, key string) {
	s.calls = append(s.calls, op+" "+key)
}

func (s *fakeStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("get", key)
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	e, ok := s.m[key]
	return e.v, ok, nil
}

func (s *fakeStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("set", key)
	if s.setErr != nil {
		return s.setErr
	}
	s.m[key] = memEntry{v: append([]byte(nil), value...), ttl: ttl}
	return nil
}

func (s *fakeStore) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("del", key)
	if s.delErr != nil {
		return s.delErr
	}
	delete(s.m, key)
	return nil
}

func (s *fakeStore) Close(context.Context) error { return nil }

func (s *fakeStore) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *fakeStore) entry(key string) (memEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[key]
	return e, ok
}

func (s *fakeStore) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.m))
	for k := range s.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// pagedStore is a shared store that serves SCAN results in fixed pages,
// matching keys by prefix (patterns in these tests are "<prefix>*").
type pagedStore struct {
	*fakeStore
	pageSize int
	snapshot []string
	phantom  []string // returned by Scan but never stored, like keys that expired mid-scan

	scanCalls  int
	scanErrs   []error // consumed one per Scan call; nil entries succeed
	unlinkErr  error
	batchErr   error
	unlinked   int
	batchCalls int
}

func newPagedStore(pageSize int) *pagedStore {
	return &pagedStore{fakeStore: newFakeStore(), pageSize: pageSize}
}

var (
	_ store.Scanner      = (*pagedStore)(nil)
	_ store.Unlinker     = (*pagedStore)(nil)
	_ store.BatchDeleter = (*pagedStore)(nil)
)

func (s *pagedStore) Scan(_ context.Context, cursor uint64, match string, _ int64) ([]string, uint64, error) {
	s.scanCalls++
	if len(s.scanErrs) > 0 {
		err := s.scanErrs[0]
		s.scanErrs = s.scanErrs[1:]
		if err != nil {
			return nil, cursor, err
		}
	}
	// pages are cut from the key set seen at cursor 0, so deletes between
	// calls do not shift later pages
	if cursor == 0 {
		prefix := strings.TrimSuffix(match, "*")
		s.snapshot = s.snapshot[:0]
		for _, k := range append(s.keys(), s.phantom...) {
			if strings.HasPrefix(k, prefix) {
				s.snapshot = append(s.snapshot, k)
			}
		}
	}
	start := int(cursor) * s.pageSize
	end := start + s.pageSize
	if end >= len(s.snapshot) {
		return append([]string(nil), s.snapshot[start:]...), 0, nil
	}
	return append([]string(nil), s.snapshot[start:end]...), cursor + 1, nil
}

func (s *pagedStore) Unlink(ctx context.Context, keys []string) (int64, error) {
	if s.unlinkErr != nil {
		return 0, s.unlinkErr
	}
	for _, k := range keys {
		_ = s.fakeStore.Del(ctx, k)
	}
	s.unlinked += len(keys)
	return int64(len(keys)), nil
}

func (s *pagedStore) DelBatch(ctx context.Context, keys []string) (int64, error) {
	s.batchCalls++
	if s.batchErr != nil {
		return 0, s.batchErr
	}
	for _, k := range keys {
		_ = s.fakeStore.Del(ctx, k)
	}
	return int64(len(keys)), nil
}

// shardedStore spreads keys over independent paged stores, each with its own
// cursor, the way a cluster spreads them over masters.
type shardedStore struct {
	*fakeStore
	shards []*pagedStore
}

var _ store.Sharded = (*shardedStore)(nil)

func (s *shardedStore) ForEachShard(ctx context.Context, fn func(context.Context, store.Store) error) error {
	for _, sh := range s.shards {
		if err := fn(ctx, sh); err != nil {
			return err
		}
	}
	return nil
}

// blockingStore holds every call until its context is done.
type blockingStore struct{ fakeStore }

func (s *blockingStore) Get(ctx context.Context, _ string) ([]byte, bool, error) {
	<-ctx.Done()
	return nil, false, ctx.Err()
}

func (s *blockingStore) Set(ctx context.Context, _ string, _ []byte, _ time.Duration) error {
	<-ctx.Done()
	return ctx.Err()
}

var errBoom = errors.New("boom")

type form struct {
	A int `msgpack:"a" json:"a"`
}

func testConfig() Config {
	return Config{
		ScanCount: 2,
		Namespaces: []NamespaceConfig{
			{Name: "forms", DefaultTTL: ptr(Seconds(300)), UseInternal: ptr(false)},
			{Name: "mentee", UseInternal: ptr(true)},
			{Name: "off", Enabled: ptr(false)},
			{Name: "plain"},
		},
	}
}

func newTestCache(t *testing.T, local, shared store.Store, opt func(*Options)) *Cache {
	t.Helper()
	cfg := testConfig()
	opts := Options{Config: &cfg, Local: local, Shared: shared}
	if opt != nil {
		opt(&opts)
	}
	c, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close(context.Background()) })
	return c
}
