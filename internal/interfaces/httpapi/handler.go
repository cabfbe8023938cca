package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/BrainSnack9/playstat/internal/domain/content"
	"github.com/BrainSnack9/playstat/internal/domain/match"
	"github.com/BrainSnack9/playstat/internal/domain/sport"
	"github.com/BrainSnack9/playstat/internal/domain/team"
	"github.com/BrainSnack9/playstat/internal/platform/cache"
	"github.com/BrainSnack9/playstat/internal/platform/logging"
	"github.com/BrainSnack9/playstat/internal/usecase"
)

const upcomingWindow = 7 * 24 * time.Hour

// Handler carries the services and repositories the HTTP surface exposes.
type Handler struct {
	syncService        *usecase.SyncService
	analysisService    *usecase.AnalysisService
	reportService      *usecase.ReportService
	translationService *usecase.TranslationService
	recomputeService   *usecase.RecomputeService
	jobRunner          *usecase.JobRunner
	matches            match.Repository
	teams              team.Repository
	analyses           content.MatchAnalysisRepository
	reports            content.DailyReportRepository
	cache              *cache.Store
	leagueCodes        map[sport.Sport][]string
	validate           *validator.Validate
	logger             *logging.Logger
	now                func() time.Time
}

type HandlerConfig struct {
	SyncService        *usecase.SyncService
	AnalysisService    *usecase.AnalysisService
	ReportService      *usecase.ReportService
	TranslationService *usecase.TranslationService
	RecomputeService   *usecase.RecomputeService
	JobRunner          *usecase.JobRunner
	Matches            match.Repository
	Teams              team.Repository
	Analyses           content.MatchAnalysisRepository
	Reports            content.DailyReportRepository
	Cache              *cache.Store
	LeagueCodes        map[sport.Sport][]string
	Logger             *logging.Logger
}

func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		syncService:        cfg.SyncService,
		analysisService:    cfg.AnalysisService,
		reportService:      cfg.ReportService,
		translationService: cfg.TranslationService,
		recomputeService:   cfg.RecomputeService,
		jobRunner:          cfg.JobRunner,
		matches:            cfg.Matches,
		teams:              cfg.Teams,
		analyses:           cfg.Analyses,
		reports:            cfg.Reports,
		cache:              cfg.Cache,
		leagueCodes:        cfg.LeagueCodes,
		validate:           validator.New(),
		logger:             logger,
		now:                time.Now,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

type upcomingMatchView struct {
	ID        int64  `json:"id"`
	Sport     string `json:"sport"`
	Slug      string `json:"slug"`
	HomeTeam  string `json:"homeTeam"`
	AwayTeam  string `json:"awayTeam"`
	KickoffAt string `json:"kickoffAt"`
	Status    string `json:"status"`
}

// ListUpcomingMatches serves the schedule window through the TTL cache so a
// post-sync invalidation is immediately visible on the next read.
func (h *Handler) ListUpcomingMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListUpcomingMatches")
	defer span.End()

	sp, err := parseSportParam(r.URL.Query().Get("sport"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	key := cache.Key(cache.DomainMatches, "upcoming", sp.String())
	payload, err := h.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return h.loadUpcomingMatches(ctx, sp)
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, payload)
}

func (h *Handler) loadUpcomingMatches(ctx context.Context, sp sport.Sport) ([]upcomingMatchView, error) {
	upcoming, err := h.matches.ListUpcoming(ctx, sp, h.now().UTC(), upcomingWindow)
	if err != nil {
		return nil, fmt.Errorf("list upcoming matches: %w", err)
	}

	teamNames := make(map[int64]string, len(upcoming)*2)
	nameFor := func(id int64) string {
		if name, ok := teamNames[id]; ok {
			return name
		}
		t, err := h.teams.GetByID(ctx, id)
		if err != nil || t == nil {
			return ""
		}
		teamNames[id] = t.Name
		return t.Name
	}

	out := make([]upcomingMatchView, 0, len(upcoming))
	for _, m := range upcoming {
		out = append(out, upcomingMatchView{
			ID:        m.ID,
			Sport:     m.Sport.String(),
			Slug:      m.Slug,
			HomeTeam:  nameFor(m.HomeTeamID),
			AwayTeam:  nameFor(m.AwayTeamID),
			KickoffAt: m.KickoffAt.UTC().Format(time.RFC3339),
			Status:    m.Status,
		})
	}
	return out, nil
}

type matchDetailView struct {
	Match    match.Match            `json:"match"`
	HomeTeam *team.Team             `json:"homeTeam,omitempty"`
	AwayTeam *team.Team             `json:"awayTeam,omitempty"`
	Analysis *content.MatchAnalysis `json:"analysis,omitempty"`
}

// GetMatchDetail returns one match with its teams and, when generated, the
// multi-locale analysis artifact.
func (h *Handler) GetMatchDetail(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatchDetail")
	defer span.End()

	matchID, err := parseIDPath(r.PathValue("matchID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	key := cache.Key(cache.DomainMatchDetail, itoa(matchID))
	payload, err := h.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return h.loadMatchDetail(ctx, matchID)
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, payload)
}

func (h *Handler) loadMatchDetail(ctx context.Context, matchID int64) (matchDetailView, error) {
	m, err := h.matches.GetByID(ctx, matchID)
	if err != nil {
		return matchDetailView{}, fmt.Errorf("load match: %w", err)
	}
	if m == nil {
		return matchDetailView{}, fmt.Errorf("%w: match %d", usecase.ErrNotFound, matchID)
	}

	view := matchDetailView{Match: *m}
	if home, err := h.teams.GetByID(ctx, m.HomeTeamID); err == nil {
		view.HomeTeam = home
	}
	if away, err := h.teams.GetByID(ctx, m.AwayTeamID); err == nil {
		view.AwayTeam = away
	}
	if analysis, err := h.analyses.GetByMatchID(ctx, m.ID); err == nil {
		view.Analysis = analysis
	}
	return view, nil
}

// GetDailyReport serves the digest for one (date, sport) through the cache.
func (h *Handler) GetDailyReport(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetDailyReport")
	defer span.End()

	sp, err := parseSportParam(r.URL.Query().Get("sport"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	day, err := parseDateParam(r.URL.Query().Get("date"), h.now())
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	key := cache.Key(cache.DomainDailyReport, sp.String(), day.Format("2006-01-02"))
	payload, err := h.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		report, err := h.reports.GetByDate(ctx, sp, day)
		if err != nil {
			return nil, fmt.Errorf("load daily report: %w", err)
		}
		if report == nil {
			return nil, fmt.Errorf("%w: no report for %s on %s", usecase.ErrNotFound, sp, day.Format("2006-01-02"))
		}
		return report, nil
	})
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, payload)
}

func parseSportParam(raw string) (sport.Sport, error) {
	sp, ok := sport.Parse(raw)
	if !ok {
		return "", fmt.Errorf("%w: unsupported sport %q", usecase.ErrInvalidInput, raw)
	}
	return sp, nil
}

func parseDateParam(raw string, fallback time.Time) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback.UTC().Truncate(24 * time.Hour), nil
	}
	day, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD", usecase.ErrInvalidInput, raw)
	}
	return day.UTC(), nil
}

func parseIDPath(raw string) (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(strings.TrimSpace(raw), "%d", &id); err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id %q", usecase.ErrInvalidInput, raw)
	}
	return id, nil
}

func itoa(v int64) string {
	return fmt.Sprintf("%d", v)
}
