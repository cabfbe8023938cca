package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/BrainSnack9/playstat/internal/domain/content"
	"github.com/BrainSnack9/playstat/internal/domain/sport"
)

type MatchAnalysisRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]content.MatchAnalysis
}

func NewMatchAnalysisRepository() *MatchAnalysisRepository {
	return &MatchAnalysisRepository{nextID: 1, rows: make(map[int64]content.MatchAnalysis)}
}

func (r *MatchAnalysisRepository) Upsert(_ context.Context, a *content.MatchAnalysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row := *a
	row.Locales = copyLocales(a.Locales)
	row.UpdatedAt = time.Now().UTC()
	if existing, ok := r.rows[a.MatchID]; ok {
		row.ID = existing.ID
	} else {
		row.ID = r.nextID
		r.nextID++
	}
	r.rows[a.MatchID] = row
	return nil
}

func (r *MatchAnalysisRepository) GetByMatchID(_ context.Context, matchID int64) (*content.MatchAnalysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[matchID]
	if !ok {
		return nil, nil
	}
	out := row
	out.Locales = copyLocales(row.Locales)
	return &out, nil
}

func (r *MatchAnalysisRepository) SetLocale(_ context.Context, matchID int64, locale string, payload content.LocaleContent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[matchID]
	if !ok {
		return nil
	}
	row.Locales = copyLocales(row.Locales)
	row.Locales[locale] = payload
	row.UpdatedAt = time.Now().UTC()
	r.rows[matchID] = row
	return nil
}

func (r *MatchAnalysisRepository) ListMissingLocales(_ context.Context, targets []string, limit int) ([]content.MatchAnalysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]content.MatchAnalysis, 0)
	for _, row := range r.rows {
		if len(content.MissingLocales(row.Locales, targets)) == 0 {
			continue
		}
		item := row
		item.Locales = copyLocales(row.Locales)
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type reportKey struct {
	sport sport.Sport
	date  string
}

type DailyReportRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[reportKey]content.DailyReport
}

func NewDailyReportRepository() *DailyReportRepository {
	return &DailyReportRepository{nextID: 1, rows: make(map[reportKey]content.DailyReport)}
}

func (r *DailyReportRepository) Upsert(_ context.Context, report *content.DailyReport) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := reportKey{sport: report.Sport, date: report.ReportDate}
	row := *report
	row.Locales = copyLocales(report.Locales)
	row.HotMatches = append([]content.HotMatch(nil), report.HotMatches...)
	row.MatchIDs = append([]int64(nil), report.MatchIDs...)
	row.UpdatedAt = time.Now().UTC()
	if existing, ok := r.rows[key]; ok {
		row.ID = existing.ID
	} else {
		row.ID = r.nextID
		r.nextID++
	}
	r.rows[key] = row
	return nil
}

func (r *DailyReportRepository) GetByDate(_ context.Context, sp sport.Sport, day time.Time) (*content.DailyReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[reportKey{sport: sp, date: day.UTC().Format("2006-01-02")}]
	if !ok {
		return nil, nil
	}
	out := row
	out.Locales = copyLocales(row.Locales)
	return &out, nil
}

func (r *DailyReportRepository) SetLocale(_ context.Context, id int64, locale string, payload content.LocaleContent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for key, row := range r.rows {
		if row.ID != id {
			continue
		}
		row.Locales = copyLocales(row.Locales)
		row.Locales[locale] = payload
		row.UpdatedAt = time.Now().UTC()
		r.rows[key] = row
		return nil
	}
	return nil
}

func (r *DailyReportRepository) ListMissingLocales(_ context.Context, targets []string, limit int) ([]content.DailyReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]content.DailyReport, 0)
	for _, row := range r.rows {
		if len(content.MissingLocales(row.Locales, targets)) == 0 {
			continue
		}
		item := row
		item.Locales = copyLocales(row.Locales)
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func copyLocales(in map[string]content.LocaleContent) map[string]content.LocaleContent {
	out := make(map[string]content.LocaleContent, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
