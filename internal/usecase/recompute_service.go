package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/BrainSnack9/playstat/internal/domain/headtohead"
	"github.com/BrainSnack9/playstat/internal/domain/league"
	"github.com/BrainSnack9/playstat/internal/domain/match"
	"github.com/BrainSnack9/playstat/internal/domain/sport"
	"github.com/BrainSnack9/playstat/internal/domain/team"
	"github.com/BrainSnack9/playstat/internal/domain/teamstats"
	"github.com/BrainSnack9/playstat/internal/platform/logging"
)

type RecomputeInput struct {
	Sport      sport.Sport
	LeagueCode string
	Kinds      []string
	MaxWorkers int
}

type RecomputeResult struct {
	LeagueCount  int                   `json:"league_count"`
	TaskCount    int                   `json:"task_count"`
	SuccessCount int                   `json:"success_count"`
	FailedCount  int                   `json:"failed_count"`
	SkippedCount int                   `json:"skipped_count"`
	WorkerCount  int                   `json:"worker_count"`
	Tasks        []RecomputeTaskResult `json:"tasks"`
}

type RecomputeTaskResult struct {
	LeagueCode string `json:"league_code"`
	Kind       string `json:"kind"`
	Status     string `json:"status"`
	Records    int    `json:"records"`
	DurationMs int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}

const (
	recomputeStatusSuccess = "success"
	recomputeStatusFailed  = "failed"
	recomputeStatusSkipped = "skipped"

	recomputeKindStandings  = "standings"
	recomputeKindRecent     = "recent"
	recomputeKindHeadToHead = "head-to-head"

	recentWindowSize        = 5
	headToHeadWindowSize    = 10
	defaultRecomputeWorkers = 4
	maxRecomputeWorkers     = 16
)

// RecomputeService rebuilds every derived table from stored finished matches.
// No external calls happen here, so the tasks run on a worker pool.
type RecomputeService struct {
	leagues league.Repository
	teams   team.Repository
	matches match.Repository
	stats   teamstats.SeasonStatsRepository
	recent  teamstats.RecentMatchesRepository
	h2h     headtohead.Repository
	logger  *logging.Logger
}

func NewRecomputeService(
	leagues league.Repository,
	teams team.Repository,
	matches match.Repository,
	stats teamstats.SeasonStatsRepository,
	recent teamstats.RecentMatchesRepository,
	h2h headtohead.Repository,
	logger *logging.Logger,
) *RecomputeService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RecomputeService{
		leagues: leagues,
		teams:   teams,
		matches: matches,
		stats:   stats,
		recent:  recent,
		h2h:     h2h,
		logger:  logger,
	}
}

type recomputeTask struct {
	league league.League
	kind   string
}

func (s *RecomputeService) Recompute(ctx context.Context, input RecomputeInput) (RecomputeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "RecomputeService.Recompute")
	defer span.End()

	if !input.Sport.Valid() {
		return RecomputeResult{}, fmt.Errorf("%w: unsupported sport %q", ErrInvalidInput, input.Sport)
	}

	kinds, err := normalizeRecomputeKinds(input.Kinds)
	if err != nil {
		return RecomputeResult{}, err
	}

	targets, err := s.resolveTargets(ctx, input.Sport, input.LeagueCode)
	if err != nil {
		return RecomputeResult{}, err
	}

	tasks := make([]recomputeTask, 0, len(targets)*len(kinds))
	for _, target := range targets {
		for _, kind := range kinds {
			tasks = append(tasks, recomputeTask{league: target, kind: kind})
		}
	}

	workerCount := normalizeWorkerCount(input.MaxWorkers, len(tasks))
	result := RecomputeResult{
		LeagueCount: len(targets),
		TaskCount:   len(tasks),
		WorkerCount: workerCount,
		Tasks:       make([]RecomputeTaskResult, 0, len(tasks)),
	}
	if len(tasks) == 0 {
		return result, nil
	}

	results := make(chan RecomputeTaskResult, len(tasks))

	var successCount atomic.Int32
	var failedCount atomic.Int32
	var skippedCount atomic.Int32

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return RecomputeResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, task := range tasks {
		task := task
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := RecomputeTaskResult{
				LeagueCode: task.league.Code,
				Kind:       task.kind,
			}

			records, status, message := s.runTask(ctx, task.league, task.kind)
			row.Records = records
			row.Status = status
			row.Message = message
			row.DurationMs = time.Since(start).Milliseconds()

			switch status {
			case recomputeStatusSuccess:
				successCount.Add(1)
			case recomputeStatusSkipped:
				skippedCount.Add(1)
			default:
				failedCount.Add(1)
			}

			results <- row
		}); err != nil {
			workers.Done()
			return RecomputeResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	for row := range results {
		result.Tasks = append(result.Tasks, row)
	}

	sort.SliceStable(result.Tasks, func(i, j int) bool {
		if result.Tasks[i].LeagueCode != result.Tasks[j].LeagueCode {
			return result.Tasks[i].LeagueCode < result.Tasks[j].LeagueCode
		}
		return result.Tasks[i].Kind < result.Tasks[j].Kind
	})

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = int(failedCount.Load())
	result.SkippedCount = int(skippedCount.Load())
	return result, nil
}

func (s *RecomputeService) resolveTargets(ctx context.Context, sp sport.Sport, leagueCode string) ([]league.League, error) {
	leagueCode = strings.TrimSpace(leagueCode)
	if leagueCode != "" {
		lg, err := s.leagues.GetByCode(ctx, sp, leagueCode)
		if err != nil {
			return nil, fmt.Errorf("load league %s: %w", leagueCode, err)
		}
		if lg == nil {
			return nil, fmt.Errorf("%w: league %s", ErrNotFound, leagueCode)
		}
		return []league.League{*lg}, nil
	}

	all, err := s.leagues.List(ctx, sp)
	if err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}
	return all, nil
}

func (s *RecomputeService) runTask(ctx context.Context, lg league.League, kind string) (int, string, string) {
	var (
		records int
		err     error
	)
	switch kind {
	case recomputeKindStandings:
		records, err = s.rebuildStandings(ctx, lg)
	case recomputeKindRecent:
		records, err = s.rebuildRecent(ctx, lg)
	case recomputeKindHeadToHead:
		records, err = s.rebuildHeadToHead(ctx, lg)
	default:
		return 0, recomputeStatusFailed, fmt.Sprintf("unknown kind %q", kind)
	}

	if err != nil {
		return 0, recomputeStatusFailed, err.Error()
	}
	if records == 0 {
		return 0, recomputeStatusSkipped, "no finished matches for league"
	}
	return records, recomputeStatusSuccess, ""
}

func (s *RecomputeService) rebuildStandings(ctx context.Context, lg league.League) (int, error) {
	finished, teamsByID, err := s.loadFinished(ctx, lg)
	if err != nil {
		return 0, err
	}

	games := make([]Game, 0, len(finished))
	for _, m := range finished {
		games = append(games, Game{
			HomeTeamID: m.HomeTeamID,
			AwayTeamID: m.AwayTeamID,
			HomeScore:  *m.HomeScore,
			AwayScore:  *m.AwayScore,
			PlayedAt:   m.KickoffAt,
		})
	}

	names := make(map[int64]string, len(teamsByID))
	for id, t := range teamsByID {
		names[id] = t.Name
	}

	rows := BuildTable(lg.Sport, games, names)
	for _, row := range rows {
		stats := &teamstats.SeasonStats{
			TeamID:     row.TeamID,
			Season:     lg.Season,
			Rank:       row.Rank,
			Played:     row.Played,
			Wins:       row.Wins,
			Draws:      row.Draws,
			Losses:     row.Losses,
			Points:     row.Points,
			WinPct:     row.WinPct,
			Scored:     row.Scored,
			Conceded:   row.Conceded,
			HomeWins:   row.HomeWins,
			HomeLosses: row.HomeLosses,
			AwayWins:   row.AwayWins,
			AwayLosses: row.AwayLosses,
			Form:       row.Form,
		}
		if row.Played > 0 {
			stats.AvgScored = float64(row.Scored) / float64(row.Played)
			stats.AvgConceded = float64(row.Conceded) / float64(row.Played)
		}
		if err := s.stats.Upsert(ctx, stats); err != nil {
			return 0, fmt.Errorf("upsert season stats team_id=%d: %w", row.TeamID, err)
		}
	}

	return len(rows), nil
}

func (s *RecomputeService) rebuildRecent(ctx context.Context, lg league.League) (int, error) {
	teams, err := s.teams.ListByLeague(ctx, lg.ID)
	if err != nil {
		return 0, fmt.Errorf("list teams: %w", err)
	}

	nameByID := make(map[int64]string, len(teams))
	for _, t := range teams {
		nameByID[t.ID] = t.Name
	}

	count := 0
	for _, t := range teams {
		finished, err := s.matches.ListFinishedByTeam(ctx, t.ID, recentWindowSize)
		if err != nil {
			return 0, fmt.Errorf("list finished matches team_id=%d: %w", t.ID, err)
		}
		if len(finished) == 0 {
			continue
		}

		entries := make([]teamstats.RecentEntry, 0, len(finished))
		form := make([]byte, 0, len(finished))
		for _, m := range finished {
			if !m.HasResult() {
				continue
			}
			isHome := m.HomeTeamID == t.ID
			opponentID := m.AwayTeamID
			if !isHome {
				opponentID = m.HomeTeamID
			}
			opponent := nameByID[opponentID]
			if opponent == "" {
				if o, err := s.teams.GetByID(ctx, opponentID); err == nil && o != nil {
					opponent = o.Name
					nameByID[opponentID] = o.Name
				}
			}

			entries = append(entries, teamstats.RecentEntry{
				Date:     m.KickoffAt.UTC().Format("2006-01-02"),
				Opponent: opponent,
				Result:   resultFor(t.ID, m),
				Score:    fmt.Sprintf("%d-%d", *m.HomeScore, *m.AwayScore),
				IsHome:   isHome,
			})
			form = append(form, resultFor(t.ID, m)...)
		}

		if err := s.recent.Upsert(ctx, &teamstats.RecentMatches{
			TeamID:  t.ID,
			Entries: entries,
			Form:    string(form),
		}); err != nil {
			return 0, fmt.Errorf("upsert recent matches team_id=%d: %w", t.ID, err)
		}
		count++
	}

	return count, nil
}

func (s *RecomputeService) rebuildHeadToHead(ctx context.Context, lg league.League) (int, error) {
	finished, teamsByID, err := s.loadFinished(ctx, lg)
	if err != nil {
		return 0, err
	}

	meetingsByPair := make(map[string][]headtohead.Meeting, len(finished))
	for _, m := range finished {
		home, okHome := teamsByID[m.HomeTeamID]
		away, okAway := teamsByID[m.AwayTeamID]
		if !okHome || !okAway {
			continue
		}
		key := headtohead.PairKey(home.Slug, away.Slug)
		meetingsByPair[key] = append(meetingsByPair[key], headtohead.Meeting{
			Date:     m.KickoffAt.UTC().Format("2006-01-02"),
			HomeTeam: home.Name,
			AwayTeam: away.Name,
			Score:    fmt.Sprintf("%d-%d", *m.HomeScore, *m.AwayScore),
		})
	}

	for key, meetings := range meetingsByPair {
		sort.SliceStable(meetings, func(i, j int) bool { return meetings[i].Date > meetings[j].Date })
		if len(meetings) > headToHeadWindowSize {
			meetings = meetings[:headToHeadWindowSize]
		}
		if err := s.h2h.Upsert(ctx, &headtohead.Record{
			PairKey:  key,
			Sport:    lg.Sport,
			Meetings: meetings,
		}); err != nil {
			return 0, fmt.Errorf("upsert head to head %s: %w", key, err)
		}
	}

	return len(meetingsByPair), nil
}

// loadFinished returns scoreable finished matches newest first plus the team
// lookup for the league.
func (s *RecomputeService) loadFinished(ctx context.Context, lg league.League) ([]match.Match, map[int64]team.Team, error) {
	all, err := s.matches.ListFinishedByLeague(ctx, lg.ID, time.Time{})
	if err != nil {
		return nil, nil, fmt.Errorf("list finished matches: %w", err)
	}

	finished := make([]match.Match, 0, len(all))
	for _, m := range all {
		if m.HasResult() {
			finished = append(finished, m)
		}
	}
	sort.SliceStable(finished, func(i, j int) bool { return finished[i].KickoffAt.After(finished[j].KickoffAt) })

	teams, err := s.teams.ListByLeague(ctx, lg.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list teams: %w", err)
	}
	teamsByID := make(map[int64]team.Team, len(teams))
	for _, t := range teams {
		teamsByID[t.ID] = t
	}

	return finished, teamsByID, nil
}

func resultFor(teamID int64, m match.Match) string {
	home, away := *m.HomeScore, *m.AwayScore
	mine, theirs := home, away
	if m.AwayTeamID == teamID {
		mine, theirs = away, home
	}
	switch {
	case mine > theirs:
		return teamstats.ResultWin
	case mine < theirs:
		return teamstats.ResultLoss
	default:
		return teamstats.ResultDraw
	}
}

func normalizeRecomputeKinds(raw []string) ([]string, error) {
	if len(raw) == 0 {
		return []string{recomputeKindStandings, recomputeKindRecent, recomputeKindHeadToHead}, nil
	}

	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		kind := strings.ToLower(strings.TrimSpace(item))
		if kind == "" {
			continue
		}
		switch kind {
		case recomputeKindStandings, recomputeKindRecent, recomputeKindHeadToHead:
		default:
			return nil, fmt.Errorf("%w: unknown recompute kind %q", ErrInvalidInput, kind)
		}
		if _, dup := seen[kind]; dup {
			continue
		}
		seen[kind] = struct{}{}
		out = append(out, kind)
	}

	if len(out) == 0 {
		return []string{recomputeKindStandings, recomputeKindRecent, recomputeKindHeadToHead}, nil
	}
	return out, nil
}

func normalizeWorkerCount(requested, taskCount int) int {
	count := requested
	if count <= 0 {
		count = defaultRecomputeWorkers
	}
	if count > maxRecomputeWorkers {
		count = maxRecomputeWorkers
	}
	if taskCount > 0 && count > taskCount {
		count = taskCount
	}
	if count < 1 {
		count = 1
	}
	return count
}
