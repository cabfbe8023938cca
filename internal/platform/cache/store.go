package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/BrainSnack9/playstat/internal/platform/resilience"
)

// Invalidation domains used by job flows after they commit writes.
const (
	DomainMatches     = "matches"
	DomainMatchDetail = "match-detail"
	DomainDailyReport = "daily-report"
)

type entry struct {
	value     any
	expiresAt int64
}

// Store is an in-process TTL cache. Loads through GetOrLoad are collapsed per
// key so a cold key hits the loader once under concurrency.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	flight  resilience.SingleFlight
	nowNano func() int64
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		nowNano: func() int64 { return time.Now().UnixNano() },
	}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if e.expiresAt > 0 && e.expiresAt <= s.nowNano() {
		s.mu.Lock()
		if cur, ok := s.entries[key]; ok && cur.expiresAt == e.expiresAt {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false
	}

	return e.value, true
}

func (s *Store) Set(_ context.Context, key string, value any) {
	if key == "" {
		return
	}

	var expiresAt int64
	if s.ttl > 0 {
		expiresAt = s.nowNano() + s.ttl.Nanoseconds()
	}

	s.mu.Lock()
	s.entries[key] = entry{value: value, expiresAt: expiresAt}
	s.mu.Unlock()
}

func (s *Store) Delete(_ context.Context, key string) {
	if key == "" {
		return
	}

	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

func (s *Store) DeletePrefix(_ context.Context, prefix string) {
	if prefix == "" {
		return
	}

	s.mu.Lock()
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	s.mu.Unlock()
}

// InvalidateDomains drops every key under the given domain prefixes. Best
// effort: unknown or empty domains are ignored.
func (s *Store) InvalidateDomains(ctx context.Context, domains ...string) {
	for _, domain := range domains {
		if domain == "" {
			continue
		}
		s.DeletePrefix(ctx, domain+":")
	}
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, fmt.Errorf("loader is required")
	}
	if key == "" {
		return loader(ctx)
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, nil
	}

	value, err, _ := s.flight.Do(key, func() (any, error) {
		if cached, ok := s.Get(ctx, key); ok {
			return cached, nil
		}

		loaded, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		s.Set(ctx, key, loaded)
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}

	return value, nil
}

// Key joins a domain and its parts into a cache key within that domain.
func Key(domain string, parts ...string) string {
	if len(parts) == 0 {
		return domain
	}
	return domain + ":" + strings.Join(parts, ":")
}
