package headtohead

import (
	"context"

	"github.com/BrainSnack9/playstat/internal/domain/sport"
)

type Repository interface {
	Upsert(ctx context.Context, r *Record) error
	GetByPairKey(ctx context.Context, sp sport.Sport, pairKey string) (*Record, error)
}
