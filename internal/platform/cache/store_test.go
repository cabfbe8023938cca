package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "same-key", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_UsesCachedValueAfterFirstLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		return "cached", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("first GetOrLoad error: %v", err)
	}
	if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
		t.Fatalf("second GetOrLoad error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_ExpiredEntryIsReloaded(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	clock := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC).UnixNano()
	store.nowNano = func() int64 { return clock }

	ctx := context.Background()
	store.Set(ctx, "k", "v1")

	if _, ok := store.Get(ctx, "k"); !ok {
		t.Fatal("fresh entry must hit")
	}

	clock += (2 * time.Minute).Nanoseconds()
	if _, ok := store.Get(ctx, "k"); ok {
		t.Fatal("expired entry must miss")
	}
	if store.Len() != 0 {
		t.Fatalf("expired entry must be evicted, len=%d", store.Len())
	}
}

func TestStore_ZeroTTLNeverExpires(t *testing.T) {
	t.Parallel()

	store := NewStore(0)
	clock := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC).UnixNano()
	store.nowNano = func() int64 { return clock }

	ctx := context.Background()
	store.Set(ctx, "k", "v")

	clock += (24 * time.Hour).Nanoseconds()
	if _, ok := store.Get(ctx, "k"); !ok {
		t.Fatal("zero-ttl entry must never expire")
	}
}

func TestStore_InvalidateDomains(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()

	store.Set(ctx, Key(DomainMatches, "upcoming", "football"), 1)
	store.Set(ctx, Key(DomainMatchDetail, "arsenal-vs-chelsea"), 2)
	store.Set(ctx, Key(DomainDailyReport, "football", "2026-03-07"), 3)

	store.InvalidateDomains(ctx, DomainMatches, DomainMatchDetail)

	if _, ok := store.Get(ctx, Key(DomainMatches, "upcoming", "football")); ok {
		t.Fatal("matches domain must be dropped")
	}
	if _, ok := store.Get(ctx, Key(DomainMatchDetail, "arsenal-vs-chelsea")); ok {
		t.Fatal("match-detail domain must be dropped")
	}
	if _, ok := store.Get(ctx, Key(DomainDailyReport, "football", "2026-03-07")); !ok {
		t.Fatal("untouched domain must survive")
	}
}

func TestKey(t *testing.T) {
	t.Parallel()

	if got := Key(DomainMatches, "upcoming", "football"); got != "matches:upcoming:football" {
		t.Fatalf("unexpected key: %q", got)
	}
	if got := Key(DomainMatches); got != "matches" {
		t.Fatalf("unexpected bare key: %q", got)
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
