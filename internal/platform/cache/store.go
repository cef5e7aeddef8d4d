package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/fannax/internal/platform/resilience"
)

var ErrNilLoader = errors.New("cache loader is required")

type item struct {
	value   any
	expires time.Time
}

func (it item) fresh(now time.Time) bool {
	return it.expires.IsZero() || now.Before(it.expires)
}

type Stats struct {
	Entries int
	Hits    int64
	Misses  int64
}

// Store is a process-local TTL cache keyed by string. A ttl <= 0 keeps
// entries until they are deleted. Expired entries are dropped on read.
type Store struct {
	ttl    time.Duration
	now    func() time.Time
	flight resilience.SingleFlight

	mu    sync.Mutex
	items map[string]item
	// gen advances on every delete so a load that started before an
	// invalidation does not write its stale result back.
	gen   uint64
	stats Stats
}

func NewStore(ttl time.Duration) *Store {
	return &Store{ttl: ttl, now: time.Now, items: make(map[string]item)}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookupLocked(key)
}

func (s *Store) lookupLocked(key string) (any, bool) {
	it, ok := s.items[key]
	if ok && !it.fresh(s.now()) {
		delete(s.items, key)
		ok = false
	}
	if !ok {
		s.stats.Misses++
		return nil, false
	}
	s.stats.Hits++
	return it.value, true
}

func (s *Store) Set(_ context.Context, key string, value any) {
	if key == "" {
		return
	}
	s.mu.Lock()
	s.setLocked(key, value)
	s.mu.Unlock()
}

func (s *Store) setLocked(key string, value any) {
	it := item{value: value}
	if s.ttl > 0 {
		it.expires = s.now().Add(s.ttl)
	}
	s.items[key] = it
}

func (s *Store) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}
	s.mu.Lock()
	s.gen++
	delete(s.items, key)
	s.mu.Unlock()
}

// DeletePrefix drops every key starting with prefix. An empty prefix is a
// no-op, not a flush.
func (s *Store) DeletePrefix(_ context.Context, prefix string) {
	if prefix == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	for key := range s.items {
		if strings.HasPrefix(key, prefix) {
			delete(s.items, key)
		}
	}
}

// GetOrLoad returns the cached value or runs loader once per key across
// concurrent callers. Loader errors are not cached.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, ErrNilLoader
	}
	if key == "" {
		return loader(ctx)
	}
	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	value, err, _ := s.flight.Do(key, func() (any, error) {
		s.mu.Lock()
		if it, ok := s.items[key]; ok && it.fresh(s.now()) {
			s.mu.Unlock()
			return it.value, nil
		}
		gen := s.gen
		s.mu.Unlock()

		value, err := loader(ctx)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		if s.gen == gen {
			s.setLocked(key, value)
		}
		s.mu.Unlock()
		return value, nil
	})
	return value, err
}

// Stats counts live entries only.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.stats
	now := s.now()
	for _, it := range s.items {
		if it.fresh(now) {
			out.Entries++
		}
	}
	return out
}
