package memory

import (
	"context"
	"sync"
	"time"

	"github.com/BrainSnack9/playstat/internal/domain/teamstats"
)

type seasonKey struct {
	teamID int64
	season string
}

type SeasonStatsRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[seasonKey]teamstats.SeasonStats
}

func NewSeasonStatsRepository() *SeasonStatsRepository {
	return &SeasonStatsRepository{nextID: 1, rows: make(map[seasonKey]teamstats.SeasonStats)}
}

func (r *SeasonStatsRepository) Upsert(_ context.Context, s *teamstats.SeasonStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := seasonKey{teamID: s.TeamID, season: s.Season}
	row := *s
	row.UpdatedAt = time.Now().UTC()
	if existing, ok := r.rows[key]; ok {
		row.ID = existing.ID
	} else {
		row.ID = r.nextID
		r.nextID++
	}
	r.rows[key] = row
	return nil
}

func (r *SeasonStatsRepository) GetByTeamSeason(_ context.Context, teamID int64, season string) (*teamstats.SeasonStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if season != "" {
		row, ok := r.rows[seasonKey{teamID: teamID, season: season}]
		if !ok {
			return nil, nil
		}
		out := row
		return &out, nil
	}

	var latest *teamstats.SeasonStats
	for key, row := range r.rows {
		if key.teamID != teamID {
			continue
		}
		row := row
		if latest == nil || row.UpdatedAt.After(latest.UpdatedAt) {
			latest = &row
		}
	}
	return latest, nil
}

func (r *SeasonStatsRepository) ListBySeason(_ context.Context, teamIDs []int64, season string) ([]teamstats.SeasonStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]teamstats.SeasonStats, 0, len(teamIDs))
	for _, id := range teamIDs {
		if row, ok := r.rows[seasonKey{teamID: id, season: season}]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

type RecentMatchesRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]teamstats.RecentMatches
}

func NewRecentMatchesRepository() *RecentMatchesRepository {
	return &RecentMatchesRepository{nextID: 1, rows: make(map[int64]teamstats.RecentMatches)}
}

func (r *RecentMatchesRepository) Upsert(_ context.Context, rec *teamstats.RecentMatches) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row := *rec
	row.Entries = append([]teamstats.RecentEntry(nil), rec.Entries...)
	row.UpdatedAt = time.Now().UTC()
	if existing, ok := r.rows[rec.TeamID]; ok {
		row.ID = existing.ID
	} else {
		row.ID = r.nextID
		r.nextID++
	}
	r.rows[rec.TeamID] = row
	return nil
}

func (r *RecentMatchesRepository) GetByTeam(_ context.Context, teamID int64) (*teamstats.RecentMatches, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[teamID]
	if !ok {
		return nil, nil
	}
	out := row
	out.Entries = append([]teamstats.RecentEntry(nil), row.Entries...)
	return &out, nil
}
