package content

import (
	"context"
	"time"

	"github.com/BrainSnack9/playstat/internal/domain/sport"
)

type MatchAnalysisRepository interface {
	Upsert(ctx context.Context, a *MatchAnalysis) error
	GetByMatchID(ctx context.Context, matchID int64) (*MatchAnalysis, error)
	// SetLocale adds or replaces one locale on an existing artifact.
	SetLocale(ctx context.Context, matchID int64, locale string, payload LocaleContent) error
	ListMissingLocales(ctx context.Context, targets []string, limit int) ([]MatchAnalysis, error)
}

type DailyReportRepository interface {
	Upsert(ctx context.Context, r *DailyReport) error
	GetByDate(ctx context.Context, sp sport.Sport, day time.Time) (*DailyReport, error)
	SetLocale(ctx context.Context, id int64, locale string, payload LocaleContent) error
	ListMissingLocales(ctx context.Context, targets []string, limit int) ([]DailyReport, error)
}
