package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BrainSnack9/playstat/internal/domain/match"
	"github.com/BrainSnack9/playstat/internal/domain/sport"
)

type MatchRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]match.Match
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{nextID: 1, rows: make(map[int64]match.Match)}
}

func (r *MatchRepository) Upsert(_ context.Context, m *match.Match) (*match.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := *m
	out.UpdatedAt = time.Now().UTC()
	for id, existing := range r.rows {
		if existing.Sport == m.Sport && existing.ExternalID == m.ExternalID {
			out.ID = id
			out.Slug = existing.Slug
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

func (r *MatchRepository) GetByExternalID(_ context.Context, sp sport.Sport, externalID string) (*match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.rows {
		if m.Sport == sp && m.ExternalID == externalID {
			out := m
			return &out, nil
		}
	}
	return nil, nil
}

func (r *MatchRepository) GetByID(_ context.Context, id int64) (*match.Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	out := m
	return &out, nil
}

func (r *MatchRepository) ListFinishedByLeague(_ context.Context, leagueID int64, since time.Time) ([]match.Match, error) {
	out := r.filter(func(m match.Match) bool {
		return m.LeagueID == leagueID && m.Status == match.StatusFinished && !m.KickoffAt.Before(since)
	})
	sortByKickoff(out, false)
	return out, nil
}

func (r *MatchRepository) ListFinishedByTeam(_ context.Context, teamID int64, limit int) ([]match.Match, error) {
	out := r.filter(func(m match.Match) bool {
		return m.Status == match.StatusFinished && (m.HomeTeamID == teamID || m.AwayTeamID == teamID)
	})
	sortByKickoff(out, true)
	return truncate(out, limit), nil
}

func (r *MatchRepository) ListUpcoming(_ context.Context, sp sport.Sport, from time.Time, window time.Duration) ([]match.Match, error) {
	until := from.Add(window)
	out := r.filter(func(m match.Match) bool {
		if m.Sport != sp {
			return false
		}
		if m.Status != match.StatusScheduled && m.Status != match.StatusTimed {
			return false
		}
		return !m.KickoffAt.Before(from) && m.KickoffAt.Before(until)
	})
	sortByKickoff(out, false)
	return out, nil
}

func (r *MatchRepository) ListByKickoffDate(_ context.Context, sp sport.Sport, day time.Time) ([]match.Match, error) {
	day = day.UTC().Truncate(24 * time.Hour)
	next := day.Add(24 * time.Hour)
	out := r.filter(func(m match.Match) bool {
		at := m.KickoffAt.UTC()
		return m.Sport == sp && !at.Before(day) && at.Before(next)
	})
	sortByKickoff(out, false)
	return out, nil
}

func (r *MatchRepository) ListFinishedBetweenTeams(_ context.Context, teamA, teamB int64, limit int) ([]match.Match, error) {
	out := r.filter(func(m match.Match) bool {
		if m.Status != match.StatusFinished {
			return false
		}
		return (m.HomeTeamID == teamA && m.AwayTeamID == teamB) ||
			(m.HomeTeamID == teamB && m.AwayTeamID == teamA)
	})
	sortByKickoff(out, true)
	return truncate(out, limit), nil
}

func (r *MatchRepository) SlugExists(_ context.Context, sp sport.Sport, slug string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.rows {
		if m.Sport == sp && m.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (r *MatchRepository) filter(keep func(match.Match) bool) []match.Match {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0, len(r.rows))
	for _, m := range r.rows {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

func sortByKickoff(matches []match.Match, newestFirst bool) {
	sort.Slice(matches, func(i, j int) bool {
		if newestFirst {
			return matches[i].KickoffAt.After(matches[j].KickoffAt)
		}
		return matches[i].KickoffAt.Before(matches[j].KickoffAt)
	})
}

func truncate(matches []match.Match, limit int) []match.Match {
	if limit > 0 && len(matches) > limit {
		return matches[:limit]
	}
	return matches
}
