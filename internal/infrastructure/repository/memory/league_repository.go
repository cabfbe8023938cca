package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BrainSnack9/playstat/internal/domain/league"
	"github.com/BrainSnack9/playstat/internal/domain/sport"
)

type LeagueRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]league.League
}

func NewLeagueRepository() *LeagueRepository {
	return &LeagueRepository{nextID: 1, rows: make(map[int64]league.League)}
}

func (r *LeagueRepository) Upsert(_ context.Context, l *league.League) (*league.League, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := *l
	out.UpdatedAt = time.Now().UTC()
	for id, existing := range r.rows {
		if existing.Sport == l.Sport && existing.Code == l.Code {
			out.ID = id
			out.CreatedAt = existing.CreatedAt
			r.rows[id] = out
			return &out, nil
		}
	}

	out.ID = r.nextID
	out.CreatedAt = out.UpdatedAt
	r.nextID++
	r.rows[out.ID] = out
	return &out, nil
}

func (r *LeagueRepository) GetByCode(_ context.Context, sp sport.Sport, code string) (*league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, l := range r.rows {
		if l.Sport == sp && l.Code == code {
			out := l
			return &out, nil
		}
	}
	return nil, nil
}

func (r *LeagueRepository) List(_ context.Context, sp sport.Sport) ([]league.League, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]league.League, 0, len(r.rows))
	for _, l := range r.rows {
		if l.Sport == sp {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}
