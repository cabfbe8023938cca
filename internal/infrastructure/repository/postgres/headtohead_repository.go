package postgres

import (
	"context"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/BrainSnack9/playstat/internal/domain/headtohead"
	"github.com/BrainSnack9/playstat/internal/domain/sport"
	qb "github.com/BrainSnack9/playstat/internal/platform/querybuilder"
)

type headToHeadRow struct {
	ID        int64     `db:"id"`
	PairKey   string    `db:"pair_key"`
	Sport     string    `db:"sport"`
	Meetings  []byte    `db:"meetings"`
	UpdatedAt time.Time `db:"updated_at"`
}

type HeadToHeadRepository struct {
	db *sqlx.DB
}

func NewHeadToHeadRepository(db *sqlx.DB) *HeadToHeadRepository {
	return &HeadToHeadRepository{db: db}
}

func (r *HeadToHeadRepository) Upsert(ctx context.Context, rec *headtohead.Record) error {
	meetings, err := sonic.Marshal(rec.Meetings)
	if err != nil {
		return fmt.Errorf("encode meetings: %w", err)
	}

	query, args, err := qb.InsertInto("head_to_head").
		Columns("pair_key", "sport", "meetings").
		Values(rec.PairKey, rec.Sport.String(), meetings).
		Suffix(`ON CONFLICT (pair_key, sport) DO UPDATE SET
			meetings = EXCLUDED.meetings,
			updated_at = now()`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert head-to-head query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert head-to-head: %w", err)
	}
	return nil
}

func (r *HeadToHeadRepository) GetByPairKey(ctx context.Context, sp sport.Sport, pairKey string) (*headtohead.Record, error) {
	query, args, err := qb.Select("*").From("head_to_head").
		Where(
			qb.Eq("sport", sp.String()),
			qb.Eq("pair_key", pairKey),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select head-to-head query: %w", err)
	}

	var row headToHeadRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("select head-to-head: %w", err)
	}

	out := headtohead.Record{
		ID:        row.ID,
		PairKey:   row.PairKey,
		Sport:     sport.Sport(row.Sport),
		UpdatedAt: row.UpdatedAt,
	}
	if len(row.Meetings) > 0 {
		if err := sonic.Unmarshal(row.Meetings, &out.Meetings); err != nil {
			return nil, fmt.Errorf("decode meetings: %w", err)
		}
	}
	return &out, nil
}
