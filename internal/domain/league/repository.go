package league

import (
	"context"

	"github.com/BrainSnack9/playstat/internal/domain/sport"
)

type Repository interface {
	Upsert(ctx context.Context, l *League) (*League, error)
	GetByCode(ctx context.Context, sp sport.Sport, code string) (*League, error)
	List(ctx context.Context, sp sport.Sport) ([]League, error)
}
