package team

import (
	"context"

	"github.com/BrainSnack9/playstat/internal/domain/sport"
)

type Repository interface {
	Upsert(ctx context.Context, t *Team) (*Team, error)
	GetByExternalID(ctx context.Context, sp sport.Sport, externalID string) (*Team, error)
	GetByID(ctx context.Context, id int64) (*Team, error)
	ListByLeague(ctx context.Context, leagueID int64) ([]Team, error)
	ListBySport(ctx context.Context, sp sport.Sport) ([]Team, error)
	SlugExists(ctx context.Context, sp sport.Sport, slug string) (bool, error)
}
