package postgres

import (
	"context"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/BrainSnack9/playstat/internal/domain/teamstats"
	qb "github.com/BrainSnack9/playstat/internal/platform/querybuilder"
)

type seasonStatsRow struct {
	ID          int64     `db:"id"`
	TeamID      int64     `db:"team_id"`
	Season      string    `db:"season"`
	Rank        int       `db:"rank"`
	Played      int       `db:"played"`
	Wins        int       `db:"wins"`
	Draws       int       `db:"draws"`
	Losses      int       `db:"losses"`
	Points      int       `db:"points"`
	WinPct      float64   `db:"win_pct"`
	Scored      int       `db:"scored"`
	Conceded    int       `db:"conceded"`
	AvgScored   float64   `db:"avg_scored"`
	AvgConceded float64   `db:"avg_conceded"`
	HomeWins    int       `db:"home_wins"`
	HomeLosses  int       `db:"home_losses"`
	AwayWins    int       `db:"away_wins"`
	AwayLosses  int       `db:"away_losses"`
	Form        string    `db:"form"`
	ExtraStats  []byte    `db:"extra_stats"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r seasonStatsRow) toDomain() teamstats.SeasonStats {
	return teamstats.SeasonStats{
		ID:          r.ID,
		TeamID:      r.TeamID,
		Season:      r.Season,
		Rank:        r.Rank,
		Played:      r.Played,
		Wins:        r.Wins,
		Draws:       r.Draws,
		Losses:      r.Losses,
		Points:      r.Points,
		WinPct:      r.WinPct,
		Scored:      r.Scored,
		Conceded:    r.Conceded,
		AvgScored:   r.AvgScored,
		AvgConceded: r.AvgConceded,
		HomeWins:    r.HomeWins,
		HomeLosses:  r.HomeLosses,
		AwayWins:    r.AwayWins,
		AwayLosses:  r.AwayLosses,
		Form:        r.Form,
		ExtraStats:  r.ExtraStats,
		UpdatedAt:   r.UpdatedAt,
	}
}

type SeasonStatsRepository struct {
	db *sqlx.DB
}

func NewSeasonStatsRepository(db *sqlx.DB) *SeasonStatsRepository {
	return &SeasonStatsRepository{db: db}
}

func (r *SeasonStatsRepository) Upsert(ctx context.Context, s *teamstats.SeasonStats) error {
	extra := s.ExtraStats
	if len(extra) == 0 {
		extra = []byte("{}")
	}

	query, args, err := qb.InsertInto("team_season_stats").
		Columns(
			"team_id", "season", "rank", "played", "wins", "draws", "losses",
			"points", "win_pct", "scored", "conceded", "avg_scored", "avg_conceded",
			"home_wins", "home_losses", "away_wins", "away_losses", "form", "extra_stats",
		).
		Values(
			s.TeamID, s.Season, s.Rank, s.Played, s.Wins, s.Draws, s.Losses,
			s.Points, s.WinPct, s.Scored, s.Conceded, s.AvgScored, s.AvgConceded,
			s.HomeWins, s.HomeLosses, s.AwayWins, s.AwayLosses, s.Form, extra,
		).
		Suffix(`ON CONFLICT (team_id, season) DO UPDATE SET
			rank = EXCLUDED.rank,
			played = EXCLUDED.played,
			wins = EXCLUDED.wins,
			draws = EXCLUDED.draws,
			losses = EXCLUDED.losses,
			points = EXCLUDED.points,
			win_pct = EXCLUDED.win_pct,
			scored = EXCLUDED.scored,
			conceded = EXCLUDED.conceded,
			avg_scored = EXCLUDED.avg_scored,
			avg_conceded = EXCLUDED.avg_conceded,
			home_wins = EXCLUDED.home_wins,
			home_losses = EXCLUDED.home_losses,
			away_wins = EXCLUDED.away_wins,
			away_losses = EXCLUDED.away_losses,
			form = EXCLUDED.form,
			extra_stats = EXCLUDED.extra_stats,
			updated_at = now()`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert season stats query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert season stats: %w", err)
	}
	return nil
}

// GetByTeamSeason returns the row for (team, season). An empty season selects
// the most recently updated row for the team.
func (r *SeasonStatsRepository) GetByTeamSeason(ctx context.Context, teamID int64, season string) (*teamstats.SeasonStats, error) {
	conditions := []qb.Condition{qb.Eq("team_id", teamID)}
	if season != "" {
		conditions = append(conditions, qb.Eq("season", season))
	}

	query, args, err := qb.Select("*").From("team_season_stats").
		Where(conditions...).
		OrderBy("updated_at DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select season stats query: %w", err)
	}

	var row seasonStatsRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("select season stats: %w", err)
	}

	out := row.toDomain()
	return &out, nil
}

func (r *SeasonStatsRepository) ListBySeason(ctx context.Context, teamIDs []int64, season string) ([]teamstats.SeasonStats, error) {
	ids := make([]any, 0, len(teamIDs))
	for _, id := range teamIDs {
		ids = append(ids, id)
	}

	query, args, err := qb.Select("*").From("team_season_stats").
		Where(
			qb.In("team_id", ids),
			qb.Eq("season", season),
		).
		OrderBy("rank").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list season stats query: %w", err)
	}

	var rows []seasonStatsRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select season stats rows: %w", err)
	}

	out := make([]teamstats.SeasonStats, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

type recentMatchesRow struct {
	ID        int64     `db:"id"`
	TeamID    int64     `db:"team_id"`
	Entries   []byte    `db:"entries"`
	Form      string    `db:"form"`
	UpdatedAt time.Time `db:"updated_at"`
}

type RecentMatchesRepository struct {
	db *sqlx.DB
}

func NewRecentMatchesRepository(db *sqlx.DB) *RecentMatchesRepository {
	return &RecentMatchesRepository{db: db}
}

func (r *RecentMatchesRepository) Upsert(ctx context.Context, rec *teamstats.RecentMatches) error {
	entries, err := sonic.Marshal(rec.Entries)
	if err != nil {
		return fmt.Errorf("encode recent entries: %w", err)
	}

	query, args, err := qb.InsertInto("team_recent_matches").
		Columns("team_id", "entries", "form").
		Values(rec.TeamID, entries, rec.Form).
		Suffix(`ON CONFLICT (team_id) DO UPDATE SET
			entries = EXCLUDED.entries,
			form = EXCLUDED.form,
			updated_at = now()`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert recent matches query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert recent matches: %w", err)
	}
	return nil
}

func (r *RecentMatchesRepository) GetByTeam(ctx context.Context, teamID int64) (*teamstats.RecentMatches, error) {
	query, args, err := qb.Select("*").From("team_recent_matches").
		Where(qb.Eq("team_id", teamID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select recent matches query: %w", err)
	}

	var row recentMatchesRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("select recent matches: %w", err)
	}

	out := teamstats.RecentMatches{
		ID:        row.ID,
		TeamID:    row.TeamID,
		Form:      row.Form,
		UpdatedAt: row.UpdatedAt,
	}
	if len(row.Entries) > 0 {
		if err := sonic.Unmarshal(row.Entries, &out.Entries); err != nil {
			return nil, fmt.Errorf("decode recent entries: %w", err)
		}
	}
	return &out, nil
}
