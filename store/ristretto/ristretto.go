package ristretto

import (
	"context"
	"errors"
	"time"

	rc "github.com/dgraph-io/ristretto"

	"github.com/unkn0wn-root/tenantcache/store"
)

// Store is a local backend on top of ristretto. Unlike the default memory
// store it honors per-entry TTL and evicts by cost under pressure, so a Set
// can be dropped by admission.
type Store struct {
	c    *rc.Cache
	cost func([]byte) int64
}

var _ store.Store = (*Store)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
	// Cost returns the admission cost of a value. nil => len(value).
	Cost func(value []byte) int64
}

var ErrRejected = errors.New("ristretto: set rejected by admission policy")

func New(cfg Config) (*Store, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	rcfg := &rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	}
	c, err := rc.NewCache(rcfg)
	if err != nil {
		return nil, err
	}
	cost := cfg.Cost
	if cost == nil {
		cost = func(b []byte) int64 { return int64(len(b)) }
	}
	return &Store{c: c, cost: cost}, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		// self-heal: drop unexpected entry shape
		s.c.Del(key)
		return nil, false, nil
	}
	return b, true, nil
}

// Set is asynchronous in ristretto; the value becomes visible once the write
// buffer drains. Call Wait in tests that read immediately after writing.
func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if !s.c.SetWithTTL(key, value, s.cost(value), ttl) {
		return ErrRejected
	}
	return nil
}

func (s *Store) Del(_ context.Context, key string) error {
	s.c.Del(key)
	return nil
}

// Wait blocks until buffered writes are applied.
func (s *Store) Wait() { s.c.Wait() }

func (s *Store) Close(_ context.Context) error {
	s.c.Wait()
	s.c.Close()
	return nil
}

// Metrics exposes ristretto counters when Config.Metrics is set.
func (s *Store) Metrics() *rc.Metrics { return s.c.Metrics }
