package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BrainSnack9/playstat/internal/domain/sport"
	"github.com/BrainSnack9/playstat/internal/domain/team"
)

type TeamRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]team.Team
}

func NewTeamRepository() *TeamRepository {
	return &TeamRepository{nextID: 1, rows: make(map[int64]team.Team)}
}

func (r *TeamRepository) Upsert(_ context.Context, t *team.Team) (*team.Team, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := *t
	out.UpdatedAt = time.Now().UTC()
	for id, existing := range r.rows {
		if existing.Sport == t.Sport && existing.ExternalID == t.ExternalID {
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

func (r *TeamRepository) GetByExternalID(_ context.Context, sp sport.Sport, externalID string) (*team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.rows {
		if t.Sport == sp && t.ExternalID == externalID {
			out := t
			return &out, nil
		}
	}
	return nil, nil
}

func (r *TeamRepository) GetByID(_ context.Context, id int64) (*team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	out := t
	return &out, nil
}

func (r *TeamRepository) ListByLeague(_ context.Context, leagueID int64) ([]team.Team, error) {
	return r.list(func(t team.Team) bool { return t.LeagueID == leagueID })
}

func (r *TeamRepository) ListBySport(_ context.Context, sp sport.Sport) ([]team.Team, error) {
	return r.list(func(t team.Team) bool { return t.Sport == sp })
}

func (r *TeamRepository) list(keep func(team.Team) bool) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(r.rows))
	for _, t := range r.rows {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *TeamRepository) SlugExists(_ context.Context, sp sport.Sport, slug string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, t := range r.rows {
		if t.Sport == sp && t.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}
