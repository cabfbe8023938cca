package match

import (
	"context"
	"time"

	"github.com/BrainSnack9/playstat/internal/domain/sport"
)

type Repository interface {
	Upsert(ctx context.Context, m *Match) (*Match, error)
	GetByExternalID(ctx context.Context, sp sport.Sport, externalID string) (*Match, error)
	GetByID(ctx context.Context, id int64) (*Match, error)
	ListFinishedByLeague(ctx context.Context, leagueID int64, since time.Time) ([]Match, error)
	ListFinishedByTeam(ctx context.Context, teamID int64, limit int) ([]Match, error)
	ListUpcoming(ctx context.Context, sp sport.Sport, from time.Time, window time.Duration) ([]Match, error)
	ListByKickoffDate(ctx context.Context, sp sport.Sport, day time.Time) ([]Match, error)
	ListFinishedBetweenTeams(ctx context.Context, teamA, teamB int64, limit int) ([]Match, error)
	SlugExists(ctx context.Context, sp sport.Sport, slug string) (bool, error)
}
