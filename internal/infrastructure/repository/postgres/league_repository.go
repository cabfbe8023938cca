package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/BrainSnack9/playstat/internal/domain/league"
	"github.com/BrainSnack9/playstat/internal/domain/sport"
	qb "github.com/BrainSnack9/playstat/internal/platform/querybuilder"
)

type leagueRow struct {
	ID        int64     `db:"id"`
	Sport     string    `db:"sport"`
	Code      string    `db:"code"`
	Name      string    `db:"name"`
	Country   string    `db:"country"`
	Season    string    `db:"season"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r leagueRow) toDomain() league.League {
	return league.League{
		ID:        r.ID,
		Sport:     sport.Sport(r.Sport),
		Code:      r.Code,
		Name:      r.Name,
		Country:   r.Country,
		Season:    r.Season,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) Upsert(ctx context.Context, l *league.League) (*league.League, error) {
	query, args, err := qb.InsertInto("leagues").
		Columns("sport", "code", "name", "country", "season").
		Values(l.Sport.String(), l.Code, l.Name, l.Country, l.Season).
		Suffix(`ON CONFLICT (code, sport) DO UPDATE SET
			name = EXCLUDED.name,
			country = EXCLUDED.country,
			season = EXCLUDED.season,
			updated_at = now()
		RETURNING id`).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build upsert league query: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		return nil, fmt.Errorf("upsert league: %w", err)
	}

	out := *l
	out.ID = id
	return &out, nil
}

func (r *LeagueRepository) GetByCode(ctx context.Context, sp sport.Sport, code string) (*league.League, error) {
	query, args, err := qb.Select("*").From("leagues").
		Where(
			qb.Eq("sport", sp.String()),
			qb.Eq("code", code),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select league query: %w", err)
	}

	var row leagueRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("select league: %w", err)
	}

	out := row.toDomain()
	return &out, nil
}

func (r *LeagueRepository) List(ctx context.Context, sp sport.Sport) ([]league.League, error) {
	query, args, err := qb.Select("*").From("leagues").
		Where(qb.Eq("sport", sp.String())).
		OrderBy("code").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list leagues query: %w", err)
	}

	var rows []leagueRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select leagues: %w", err)
	}

	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
