package teamstats

import "context"

type SeasonStatsRepository interface {
	Upsert(ctx context.Context, s *SeasonStats) error
	GetByTeamSeason(ctx context.Context, teamID int64, season string) (*SeasonStats, error)
	ListBySeason(ctx context.Context, teamIDs []int64, season string) ([]SeasonStats, error)
}

type RecentMatchesRepository interface {
	Upsert(ctx context.Context, r *RecentMatches) error
	GetByTeam(ctx context.Context, teamID int64) (*RecentMatches, error)
}
