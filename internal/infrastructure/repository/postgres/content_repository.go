package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/BrainSnack9/playstat/internal/domain/content"
	"github.com/BrainSnack9/playstat/internal/domain/sport"
	qb "github.com/BrainSnack9/playstat/internal/platform/querybuilder"
)

type matchAnalysisRow struct {
	ID        int64     `db:"id"`
	MatchID   int64     `db:"match_id"`
	Locales   []byte    `db:"locales"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r matchAnalysisRow) toDomain() (content.MatchAnalysis, error) {
	out := content.MatchAnalysis{
		ID:        r.ID,
		MatchID:   r.MatchID,
		Locales:   map[string]content.LocaleContent{},
		UpdatedAt: r.UpdatedAt,
	}
	if len(r.Locales) > 0 {
		if err := sonic.Unmarshal(r.Locales, &out.Locales); err != nil {
			return content.MatchAnalysis{}, fmt.Errorf("decode analysis locales: %w", err)
		}
	}
	return out, nil
}

// missingLocalesCondition matches rows where at least one target locale key is
// absent from the locales document.
func missingLocalesCondition(targets []string) qb.Condition {
	parts := make([]string, 0, len(targets))
	args := make([]any, 0, len(targets))
	for _, loc := range targets {
		parts = append(parts, "NOT jsonb_exists(locales, ?)")
		args = append(args, loc)
	}
	return qb.Expr("("+strings.Join(parts, " OR ")+")", args...)
}

type MatchAnalysisRepository struct {
	db *sqlx.DB
}

func NewMatchAnalysisRepository(db *sqlx.DB) *MatchAnalysisRepository {
	return &MatchAnalysisRepository{db: db}
}

func (r *MatchAnalysisRepository) Upsert(ctx context.Context, a *content.MatchAnalysis) error {
	locales, err := sonic.Marshal(a.Locales)
	if err != nil {
		return fmt.Errorf("encode analysis locales: %w", err)
	}

	query, args, err := qb.InsertInto("match_analyses").
		Columns("match_id", "locales").
		Values(a.MatchID, locales).
		Suffix(`ON CONFLICT (match_id) DO UPDATE SET
			locales = EXCLUDED.locales,
			updated_at = now()`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert analysis query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert analysis: %w", err)
	}
	return nil
}

func (r *MatchAnalysisRepository) GetByMatchID(ctx context.Context, matchID int64) (*content.MatchAnalysis, error) {
	query, args, err := qb.Select("*").From("match_analyses").
		Where(qb.Eq("match_id", matchID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select analysis query: %w", err)
	}

	var row matchAnalysisRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("select analysis: %w", err)
	}

	out, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *MatchAnalysisRepository) SetLocale(ctx context.Context, matchID int64, locale string, payload content.LocaleContent) error {
	encoded, err := sonic.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode locale payload: %w", err)
	}

	query, args, err := qb.Update("match_analyses").
		SetExpr("locales", "jsonb_set(locales, ARRAY[?::text], ?::jsonb)", locale, string(encoded)).
		SetExpr("updated_at", "now()").
		Where(qb.Eq("match_id", matchID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set analysis locale query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set analysis locale: %w", err)
	}
	return nil
}

func (r *MatchAnalysisRepository) ListMissingLocales(ctx context.Context, targets []string, limit int) ([]content.MatchAnalysis, error) {
	if len(targets) == 0 {
		return nil, nil
	}

	query, args, err := qb.Select("*").From("match_analyses").
		Where(missingLocalesCondition(targets)).
		OrderBy("updated_at").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list analyses query: %w", err)
	}

	var rows []matchAnalysisRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select analyses: %w", err)
	}

	out := make([]content.MatchAnalysis, 0, len(rows))
	for _, row := range rows {
		a, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

type dailyReportRow struct {
	ID         int64     `db:"id"`
	ReportDate string    `db:"report_date"`
	Sport      string    `db:"sport"`
	Locales    []byte    `db:"locales"`
	HotMatches []byte    `db:"hot_matches"`
	MatchIDs   []byte    `db:"match_ids"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r dailyReportRow) toDomain() (content.DailyReport, error) {
	out := content.DailyReport{
		ID:         r.ID,
		ReportDate: r.ReportDate,
		Sport:      sport.Sport(r.Sport),
		Locales:    map[string]content.LocaleContent{},
		UpdatedAt:  r.UpdatedAt,
	}
	if len(r.Locales) > 0 {
		if err := sonic.Unmarshal(r.Locales, &out.Locales); err != nil {
			return content.DailyReport{}, fmt.Errorf("decode report locales: %w", err)
		}
	}
	if len(r.HotMatches) > 0 {
		if err := sonic.Unmarshal(r.HotMatches, &out.HotMatches); err != nil {
			return content.DailyReport{}, fmt.Errorf("decode hot matches: %w", err)
		}
	}
	if len(r.MatchIDs) > 0 {
		if err := sonic.Unmarshal(r.MatchIDs, &out.MatchIDs); err != nil {
			return content.DailyReport{}, fmt.Errorf("decode report match ids: %w", err)
		}
	}
	return out, nil
}

type DailyReportRepository struct {
	db *sqlx.DB
}

func NewDailyReportRepository(db *sqlx.DB) *DailyReportRepository {
	return &DailyReportRepository{db: db}
}

func (r *DailyReportRepository) Upsert(ctx context.Context, report *content.DailyReport) error {
	locales, err := sonic.Marshal(report.Locales)
	if err != nil {
		return fmt.Errorf("encode report locales: %w", err)
	}
	hot, err := sonic.Marshal(report.HotMatches)
	if err != nil {
		return fmt.Errorf("encode hot matches: %w", err)
	}
	matchIDs, err := sonic.Marshal(report.MatchIDs)
	if err != nil {
		return fmt.Errorf("encode report match ids: %w", err)
	}

	query, args, err := qb.InsertInto("daily_reports").
		Columns("report_date", "sport", "locales", "hot_matches", "match_ids").
		Values(report.ReportDate, report.Sport.String(), locales, hot, matchIDs).
		Suffix(`ON CONFLICT (report_date, sport) DO UPDATE SET
			locales = EXCLUDED.locales,
			hot_matches = EXCLUDED.hot_matches,
			match_ids = EXCLUDED.match_ids,
			updated_at = now()`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert report query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert report: %w", err)
	}
	return nil
}

func (r *DailyReportRepository) GetByDate(ctx context.Context, sp sport.Sport, day time.Time) (*content.DailyReport, error) {
	query, args, err := qb.Select("*").From("daily_reports").
		Where(
			qb.Eq("sport", sp.String()),
			qb.Eq("report_date", day.UTC().Format("2006-01-02")),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select report query: %w", err)
	}

	var row dailyReportRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("select report: %w", err)
	}

	out, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *DailyReportRepository) SetLocale(ctx context.Context, id int64, locale string, payload content.LocaleContent) error {
	encoded, err := sonic.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode locale payload: %w", err)
	}

	query, args, err := qb.Update("daily_reports").
		SetExpr("locales", "jsonb_set(locales, ARRAY[?::text], ?::jsonb)", locale, string(encoded)).
		SetExpr("updated_at", "now()").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set report locale query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set report locale: %w", err)
	}
	return nil
}

func (r *DailyReportRepository) ListMissingLocales(ctx context.Context, targets []string, limit int) ([]content.DailyReport, error) {
	if len(targets) == 0 {
		return nil, nil
	}

	query, args, err := qb.Select("*").From("daily_reports").
		Where(missingLocalesCondition(targets)).
		OrderBy("updated_at").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list reports query: %w", err)
	}

	var rows []dailyReportRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select reports: %w", err)
	}

	out := make([]content.DailyReport, 0, len(rows))
	for _, row := range rows {
		report, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, report)
	}
	return out, nil
}
