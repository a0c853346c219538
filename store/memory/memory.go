// Package memory is the default local backend: a process-private map split
// into lock-striped buckets chosen by shard.Of. It has no expiry and no scan;
// entries live until deleted or the process exits.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/unkn0wn-root/tenantcache/shard"
	"github.com/unkn0wn-root/tenantcache/store"
)

type bucket struct {
	mu sync.RWMutex
	m  map[string][]byte
}

type Store struct {
	buckets []*bucket
}

var _ store.Store = (*Store)(nil)

// New returns a store with n buckets (n <= 0 => shard.Default).
func New(n int) *Store {
	if n <= 0 {
		n = shard.Default
	}
	s := &Store{buckets: make([]*bucket, n)}
	for i := range s.buckets {
		s.buckets[i] = &bucket{m: make(map[string][]byte)}
	}
	return s
}

func (s *Store) bucket(key string) *bucket {
	return s.buckets[shard.Of(key, len(s.buckets))]
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	b := s.bucket(key)
	b.mu.RLock()
	v, ok := b.m[key]
	b.mu.RUnlock()
	return v, ok, nil
}

// Set copies value so callers may reuse their buffer. ttl is ignored.
func (s *Store) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	cp := make([]byte, len(value))
	copy(cp, value)
	b := s.bucket(key)
	b.mu.Lock()
	b.m[key] = cp
	b.mu.Unlock()
	return nil
}

func (s *Store) Del(_ context.Context, key string) error {
	b := s.bucket(key)
	b.mu.Lock()
	delete(b.m, key)
	b.mu.Unlock()
	return nil
}

// Len returns the number of entries across all buckets.
func (s *Store) Len() int {
	n := 0
	for _, b := range s.buckets {
		b.mu.RLock()
		n += len(b.m)
		b.mu.RUnlock()
	}
	return n
}

// Shards returns the bucket count.
func (s *Store) Shards() int { return len(s.buckets) }

func (s *Store) Close(_ context.Context) error {
	for _, b := range s.buckets {
		b.mu.Lock()
		b.m = make(map[string][]byte)
		b.mu.Unlock()
	}
	return nil
}
