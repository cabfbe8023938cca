package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/BrainSnack9/playstat/internal/domain/match"
	"github.com/BrainSnack9/playstat/internal/domain/sport"
	qb "github.com/BrainSnack9/playstat/internal/platform/querybuilder"
)

type matchRow struct {
	ID         int64     `db:"id"`
	Sport      string    `db:"sport"`
	LeagueID   int64     `db:"league_id"`
	HomeTeamID int64     `db:"home_team_id"`
	AwayTeamID int64     `db:"away_team_id"`
	KickoffAt  time.Time `db:"kickoff_at"`
	Status     string    `db:"status"`
	HomeScore  *int      `db:"home_score"`
	AwayScore  *int      `db:"away_score"`
	ExternalID string    `db:"external_id"`
	Slug       string    `db:"slug"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r matchRow) toDomain() match.Match {
	return match.Match{
		ID:         r.ID,
		Sport:      sport.Sport(r.Sport),
		LeagueID:   r.LeagueID,
		HomeTeamID: r.HomeTeamID,
		AwayTeamID: r.AwayTeamID,
		KickoffAt:  r.KickoffAt,
		Status:     r.Status,
		HomeScore:  r.HomeScore,
		AwayScore:  r.AwayScore,
		ExternalID: r.ExternalID,
		Slug:       r.Slug,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

type matchInsertModel struct {
	Sport      string    `db:"sport"`
	LeagueID   int64     `db:"league_id"`
	HomeTeamID int64     `db:"home_team_id"`
	AwayTeamID int64     `db:"away_team_id"`
	KickoffAt  time.Time `db:"kickoff_at"`
	Status     string    `db:"status"`
	HomeScore  *int      `db:"home_score"`
	AwayScore  *int      `db:"away_score"`
	ExternalID string    `db:"external_id"`
	Slug       string    `db:"slug"`
}

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) Upsert(ctx context.Context, m *match.Match) (*match.Match, error) {
	model := matchInsertModel{
		Sport:      m.Sport.String(),
		LeagueID:   m.LeagueID,
		HomeTeamID: m.HomeTeamID,
		AwayTeamID: m.AwayTeamID,
		KickoffAt:  m.KickoffAt.UTC(),
		Status:     m.Status,
		HomeScore:  m.HomeScore,
		AwayScore:  m.AwayScore,
		ExternalID: m.ExternalID,
		Slug:       m.Slug,
	}
	query, args, err := qb.InsertModel("matches", model, `ON CONFLICT (external_id, sport) DO UPDATE SET
		league_id = EXCLUDED.league_id,
		home_team_id = EXCLUDED.home_team_id,
		away_team_id = EXCLUDED.away_team_id,
		kickoff_at = EXCLUDED.kickoff_at,
		status = EXCLUDED.status,
		home_score = EXCLUDED.home_score,
		away_score = EXCLUDED.away_score,
		updated_at = now()
	RETURNING id`)
	if err != nil {
		return nil, fmt.Errorf("build upsert match query: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		return nil, fmt.Errorf("upsert match: %w", err)
	}

	out := *m
	out.ID = id
	return &out, nil
}

func (r *MatchRepository) GetByExternalID(ctx context.Context, sp sport.Sport, externalID string) (*match.Match, error) {
	return r.getOne(ctx,
		qb.Eq("sport", sp.String()),
		qb.Eq("external_id", externalID),
	)
}

func (r *MatchRepository) GetByID(ctx context.Context, id int64) (*match.Match, error) {
	return r.getOne(ctx, qb.Eq("id", id))
}

func (r *MatchRepository) getOne(ctx context.Context, conditions ...qb.Condition) (*match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(conditions...).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select match query: %w", err)
	}

	var row matchRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("select match: %w", err)
	}

	out := row.toDomain()
	return &out, nil
}

func (r *MatchRepository) ListFinishedByLeague(ctx context.Context, leagueID int64, since time.Time) ([]match.Match, error) {
	return r.list(ctx, "kickoff_at", 0,
		qb.Eq("league_id", leagueID),
		qb.Eq("status", match.StatusFinished),
		qb.Gte("kickoff_at", since.UTC()),
	)
}

func (r *MatchRepository) ListFinishedByTeam(ctx context.Context, teamID int64, limit int) ([]match.Match, error) {
	return r.list(ctx, "kickoff_at DESC", limit,
		qb.Expr("(home_team_id = ? OR away_team_id = ?)", teamID, teamID),
		qb.Eq("status", match.StatusFinished),
	)
}

func (r *MatchRepository) ListUpcoming(ctx context.Context, sp sport.Sport, from time.Time, window time.Duration) ([]match.Match, error) {
	from = from.UTC()
	return r.list(ctx, "kickoff_at", 0,
		qb.Eq("sport", sp.String()),
		qb.In("status", []any{match.StatusScheduled, match.StatusTimed}),
		qb.Gte("kickoff_at", from),
		qb.Lt("kickoff_at", from.Add(window)),
	)
}

func (r *MatchRepository) ListByKickoffDate(ctx context.Context, sp sport.Sport, day time.Time) ([]match.Match, error) {
	day = day.UTC().Truncate(24 * time.Hour)
	return r.list(ctx, "kickoff_at", 0,
		qb.Eq("sport", sp.String()),
		qb.Gte("kickoff_at", day),
		qb.Lt("kickoff_at", day.Add(24*time.Hour)),
	)
}

func (r *MatchRepository) ListFinishedBetweenTeams(ctx context.Context, teamA, teamB int64, limit int) ([]match.Match, error) {
	return r.list(ctx, "kickoff_at DESC", limit,
		qb.Expr("((home_team_id = ? AND away_team_id = ?) OR (home_team_id = ? AND away_team_id = ?))",
			teamA, teamB, teamB, teamA),
		qb.Eq("status", match.StatusFinished),
	)
}

func (r *MatchRepository) list(ctx context.Context, orderBy string, limit int, conditions ...qb.Condition) ([]match.Match, error) {
	builder := qb.Select("*").From("matches").
		Where(conditions...).
		OrderBy(orderBy)
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches query: %w", err)
	}

	var rows []matchRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select matches: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *MatchRepository) SlugExists(ctx context.Context, sp sport.Sport, slug string) (bool, error) {
	query, args, err := qb.Select("COUNT(1)").From("matches").
		Where(
			qb.Eq("sport", sp.String()),
			qb.Eq("slug", slug),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build match slug query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("count match slug: %w", err)
	}
	return count > 0, nil
}
