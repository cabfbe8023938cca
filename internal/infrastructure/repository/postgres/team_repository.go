package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/BrainSnack9/playstat/internal/domain/sport"
	"github.com/BrainSnack9/playstat/internal/domain/team"
	qb "github.com/BrainSnack9/playstat/internal/platform/querybuilder"
)

type teamRow struct {
	ID         int64     `db:"id"`
	Sport      string    `db:"sport"`
	LeagueID   int64     `db:"league_id"`
	ExternalID string    `db:"external_id"`
	Name       string    `db:"name"`
	ShortName  string    `db:"short_name"`
	LogoURL    string    `db:"logo_url"`
	Slug       string    `db:"slug"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r teamRow) toDomain() team.Team {
	return team.Team{
		ID:         r.ID,
		Sport:      sport.Sport(r.Sport),
		LeagueID:   r.LeagueID,
		ExternalID: r.ExternalID,
		Name:       r.Name,
		ShortName:  r.ShortName,
		LogoURL:    r.LogoURL,
		Slug:       r.Slug,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

type teamInsertModel struct {
	Sport      string `db:"sport"`
	LeagueID   int64  `db:"league_id"`
	ExternalID string `db:"external_id"`
	Name       string `db:"name"`
	ShortName  string `db:"short_name"`
	LogoURL    string `db:"logo_url"`
	Slug       string `db:"slug"`
}

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) Upsert(ctx context.Context, t *team.Team) (*team.Team, error) {
	model := teamInsertModel{
		Sport:      t.Sport.String(),
		LeagueID:   t.LeagueID,
		ExternalID: t.ExternalID,
		Name:       t.Name,
		ShortName:  t.ShortName,
		LogoURL:    t.LogoURL,
		Slug:       t.Slug,
	}
	query, args, err := qb.InsertModel("teams", model, `ON CONFLICT (external_id, sport) DO UPDATE SET
		league_id = EXCLUDED.league_id,
		name = EXCLUDED.name,
		short_name = EXCLUDED.short_name,
		logo_url = EXCLUDED.logo_url,
		slug = EXCLUDED.slug,
		updated_at = now()
	RETURNING id`)
	if err != nil {
		return nil, fmt.Errorf("build upsert team query: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		return nil, fmt.Errorf("upsert team: %w", err)
	}

	out := *t
	out.ID = id
	return &out, nil
}

func (r *TeamRepository) GetByExternalID(ctx context.Context, sp sport.Sport, externalID string) (*team.Team, error) {
	return r.getOne(ctx,
		qb.Eq("sport", sp.String()),
		qb.Eq("external_id", externalID),
	)
}

func (r *TeamRepository) GetByID(ctx context.Context, id int64) (*team.Team, error) {
	return r.getOne(ctx, qb.Eq("id", id))
}

func (r *TeamRepository) getOne(ctx context.Context, conditions ...qb.Condition) (*team.Team, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(conditions...).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select team query: %w", err)
	}

	var row teamRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("select team: %w", err)
	}

	out := row.toDomain()
	return &out, nil
}

func (r *TeamRepository) ListByLeague(ctx context.Context, leagueID int64) ([]team.Team, error) {
	return r.list(ctx, qb.Eq("league_id", leagueID))
}

func (r *TeamRepository) ListBySport(ctx context.Context, sp sport.Sport) ([]team.Team, error) {
	return r.list(ctx, qb.Eq("sport", sp.String()))
}

func (r *TeamRepository) list(ctx context.Context, conditions ...qb.Condition) ([]team.Team, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(conditions...).
		OrderBy("name").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list teams query: %w", err)
	}

	var rows []teamRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select teams: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *TeamRepository) SlugExists(ctx context.Context, sp sport.Sport, slug string) (bool, error) {
	query, args, err := qb.Select("COUNT(1)").From("teams").
		Where(
			qb.Eq("sport", sp.String()),
			qb.Eq("slug", slug),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build team slug query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("count team slug: %w", err)
	}
	return count > 0, nil
}
