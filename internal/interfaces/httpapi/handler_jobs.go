package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/BrainSnack9/playstat/internal/domain/schedulerlog"
	"github.com/BrainSnack9/playstat/internal/domain/sport"
	"github.com/BrainSnack9/playstat/internal/platform/cache"
	"github.com/BrainSnack9/playstat/internal/usecase"
)

// jobQuery is the shared query-parameter contract of the trigger routes.
type jobQuery struct {
	Sport         string `validate:"required,oneof=football basketball"`
	League        string `validate:"omitempty,max=64"`
	Date          string `validate:"omitempty,datetime=2006-01-02"`
	SkipStandings bool
	Chain         bool
}

func (h *Handler) decodeJobQuery(r *http.Request) (jobQuery, error) {
	query := r.URL.Query()

	sp, ok := sport.Parse(query.Get("sport"))
	if !ok {
		return jobQuery{}, fmt.Errorf("%w: unsupported sport %q", usecase.ErrInvalidInput, query.Get("sport"))
	}

	q := jobQuery{
		Sport:  sp.String(),
		League: strings.TrimSpace(query.Get("league")),
		Date:   strings.TrimSpace(query.Get("date")),
	}
	if raw := strings.TrimSpace(query.Get("skipStandings")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return jobQuery{}, fmt.Errorf("%w: invalid skipStandings %q", usecase.ErrInvalidInput, raw)
		}
		q.SkipStandings = v
	}
	if raw := strings.TrimSpace(query.Get("chain")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return jobQuery{}, fmt.Errorf("%w: invalid chain %q", usecase.ErrInvalidInput, raw)
		}
		q.Chain = v
	}

	if err := h.validate.Struct(q); err != nil {
		return jobQuery{}, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return q, nil
}

// chainPathFor builds the follow-up trigger path, carrying the run's scope so
// the chained job operates on the same sport and league.
func chainPathFor(q jobQuery, nextJob string) string {
	if !q.Chain || nextJob == "" {
		return ""
	}

	values := url.Values{}
	values.Set("sport", q.Sport)
	if q.League != "" {
		values.Set("league", q.League)
	}
	if q.Date != "" {
		values.Set("date", q.Date)
	}
	values.Set("chain", "true")
	return "/v1/internal/jobs/" + nextJob + "?" + values.Encode()
}

type jobRunResponse struct {
	Success    bool   `json:"success"`
	Job        string `json:"job"`
	RunID      string `json:"runId"`
	Result     string `json:"result"`
	DurationMS int64  `json:"durationMs"`
	APICalls   int64  `json:"apiCalls"`
	Results    any    `json:"results,omitempty"`
	Error      string `json:"error,omitempty"`
	ChainPath  string `json:"chainPath,omitempty"`
	ChainError string `json:"chainError,omitempty"`
}

func writeJobOutcome(ctx context.Context, w http.ResponseWriter, outcome usecase.JobOutcome) {
	writeJSON(ctx, w, http.StatusOK, jobRunResponse{
		Success:    outcome.Result != schedulerlog.ResultFailed,
		Job:        outcome.Job,
		RunID:      outcome.RunID,
		Result:     outcome.Result,
		DurationMS: outcome.Duration.Milliseconds(),
		APICalls:   outcome.APICalls,
		Results:    outcome.Results,
		Error:      outcome.Error,
		ChainPath:  outcome.ChainPath,
		ChainError: outcome.ChainError,
	})
}

// leagueScope resolves which league codes a run covers: the explicit query
// param, or the configured defaults for the sport.
func (h *Handler) leagueScope(sp sport.Sport, league string) ([]string, error) {
	if league != "" {
		return []string{league}, nil
	}
	codes := h.leagueCodes[sp]
	if len(codes) == 0 {
		return nil, fmt.Errorf("%w: no league configured for sport %s", usecase.ErrInvalidInput, sp)
	}
	return codes, nil
}

func mergeCounts(into *usecase.SyncCounts, from usecase.SyncCounts) {
	into.Added += from.Added
	into.Updated += from.Updated
	into.Skipped += from.Skipped
	into.Errors += from.Errors
	into.Items = append(into.Items, from.Items...)
}

func (h *Handler) RunSyncMatchesJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncMatchesJob")
	defer span.End()

	q, err := h.decodeJobQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	sp := sport.Sport(q.Sport)
	codes, err := h.leagueScope(sp, q.League)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	outcome := h.jobRunner.Run(ctx, usecase.JobRequest{
		Job:               schedulerlog.JobSyncMatches,
		ChainPath:         chainPathFor(q, schedulerlog.JobRecomputeStats),
		InvalidateDomains: []string{cache.DomainMatches, cache.DomainMatchDetail},
		Body: func(ctx context.Context) (usecase.JobReport, error) {
			total := usecase.SyncCounts{}
			for _, code := range codes {
				counts, err := h.syncService.SyncMatches(ctx, sp, code)
				if err != nil {
					return usecase.JobReport{Failures: total.Errors, Results: total}, err
				}
				mergeCounts(&total, counts)

				if q.SkipStandings {
					continue
				}
				standings, err := h.syncService.SyncStandings(ctx, sp, code)
				if err != nil {
					return usecase.JobReport{Failures: total.Errors, Results: total}, err
				}
				mergeCounts(&total, standings)
			}
			return usecase.JobReport{Failures: total.Errors, Results: total}, nil
		},
	})
	writeJobOutcome(ctx, w, outcome)
}

func (h *Handler) RunSyncStandingsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncStandingsJob")
	defer span.End()

	q, err := h.decodeJobQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	sp := sport.Sport(q.Sport)
	codes, err := h.leagueScope(sp, q.League)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	outcome := h.jobRunner.Run(ctx, usecase.JobRequest{
		Job:               schedulerlog.JobSyncStandings,
		InvalidateDomains: []string{cache.DomainMatchDetail},
		Body: func(ctx context.Context) (usecase.JobReport, error) {
			total := usecase.SyncCounts{}
			for _, code := range codes {
				counts, err := h.syncService.SyncStandings(ctx, sp, code)
				if err != nil {
					return usecase.JobReport{Failures: total.Errors, Results: total}, err
				}
				mergeCounts(&total, counts)
			}
			return usecase.JobReport{Failures: total.Errors, Results: total}, nil
		},
	})
	writeJobOutcome(ctx, w, outcome)
}

func (h *Handler) RunRecomputeStatsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRecomputeStatsJob")
	defer span.End()

	q, err := h.decodeJobQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	sp := sport.Sport(q.Sport)

	outcome := h.jobRunner.Run(ctx, usecase.JobRequest{
		Job:               schedulerlog.JobRecomputeStats,
		ChainPath:         chainPathFor(q, schedulerlog.JobGeneratePreviews),
		InvalidateDomains: []string{cache.DomainMatchDetail},
		Body: func(ctx context.Context) (usecase.JobReport, error) {
			result, err := h.recomputeService.Recompute(ctx, usecase.RecomputeInput{
				Sport:      sp,
				LeagueCode: q.League,
			})
			if err != nil {
				return usecase.JobReport{}, err
			}
			return usecase.JobReport{Failures: result.FailedCount, Results: result}, nil
		},
	})
	writeJobOutcome(ctx, w, outcome)
}

func (h *Handler) RunGeneratePreviewsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunGeneratePreviewsJob")
	defer span.End()

	q, err := h.decodeJobQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	sp := sport.Sport(q.Sport)

	outcome := h.jobRunner.Run(ctx, usecase.JobRequest{
		Job:               schedulerlog.JobGeneratePreviews,
		ChainPath:         chainPathFor(q, schedulerlog.JobDailyReport),
		InvalidateDomains: []string{cache.DomainMatchDetail},
		Body: func(ctx context.Context) (usecase.JobReport, error) {
			counts, err := h.analysisService.GeneratePreviews(ctx, sp, q.League)
			if err != nil {
				return usecase.JobReport{}, err
			}
			return usecase.JobReport{Failures: counts.Errors, Results: counts}, nil
		},
	})
	writeJobOutcome(ctx, w, outcome)
}

func (h *Handler) RunDailyReportJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunDailyReportJob")
	defer span.End()

	q, err := h.decodeJobQuery(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	sp := sport.Sport(q.Sport)
	day, err := parseDateParam(q.Date, h.now())
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	outcome := h.jobRunner.Run(ctx, usecase.JobRequest{
		Job:               schedulerlog.JobDailyReport,
		ChainPath:         chainPathFor(q, schedulerlog.JobTranslateContent),
		InvalidateDomains: []string{cache.DomainDailyReport},
		Body: func(ctx context.Context) (usecase.JobReport, error) {
			counts, err := h.reportService.GenerateDailyReport(ctx, sp, day)
			if err != nil {
				return usecase.JobReport{}, err
			}
			return usecase.JobReport{Failures: counts.Errors, Results: counts}, nil
		},
	})
	writeJobOutcome(ctx, w, outcome)
}

func (h *Handler) RunTranslateContentJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunTranslateContentJob")
	defer span.End()

	if _, err := h.decodeJobQuery(r); err != nil {
		writeError(ctx, w, err)
		return
	}

	outcome := h.jobRunner.Run(ctx, usecase.JobRequest{
		Job:               schedulerlog.JobTranslateContent,
		InvalidateDomains: []string{cache.DomainMatchDetail, cache.DomainDailyReport},
		Body: func(ctx context.Context) (usecase.JobReport, error) {
			counts, err := h.translationService.TranslateBacklog(ctx, 0)
			if err != nil {
				return usecase.JobReport{}, err
			}
			return usecase.JobReport{Failures: counts.Errors, Results: counts}, nil
		},
	})
	writeJobOutcome(ctx, w, outcome)
}
