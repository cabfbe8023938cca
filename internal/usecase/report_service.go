package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/BrainSnack9/playstat/internal/domain/content"
	"github.com/BrainSnack9/playstat/internal/domain/match"
	"github.com/BrainSnack9/playstat/internal/domain/sport"
	"github.com/BrainSnack9/playstat/internal/domain/team"
	"github.com/BrainSnack9/playstat/internal/domain/teamstats"
	"github.com/BrainSnack9/playstat/internal/platform/logging"
)

const (
	maxHotMatches = 5
	topRankCutoff = 4

	reportSystemPrompt = "You are a sports editor writing a one-day digest of the schedule you are " +
		"given. Respond with a single JSON object and nothing else. Keys: summary (string, required), " +
		"seasonTrends (string), keyPoints (array of strings). Do not invent fixtures or statistics."
)

// ReportService produces the per-day digest artifact, one per (date, sport).
type ReportService struct {
	teams        team.Repository
	matches      match.Repository
	stats        teamstats.SeasonStatsRepository
	recent       teamstats.RecentMatchesRepository
	reports      content.DailyReportRepository
	generator    ContentGenerator
	translations *TranslationService
	logger       *logging.Logger
}

func NewReportService(
	teams team.Repository,
	matches match.Repository,
	stats teamstats.SeasonStatsRepository,
	recent teamstats.RecentMatchesRepository,
	reports content.DailyReportRepository,
	generator ContentGenerator,
	translations *TranslationService,
	logger *logging.Logger,
) *ReportService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ReportService{
		teams:        teams,
		matches:      matches,
		stats:        stats,
		recent:       recent,
		reports:      reports,
		generator:    generator,
		translations: translations,
		logger:       logger,
	}
}

type reportCandidate struct {
	match   match.Match
	home    team.Team
	away    team.Team
	reasons []string
}

// GenerateDailyReport builds the digest for one day. A day whose canonical
// text already exists is not regenerated; only the locale fan-out is
// re-checked, so a re-run costs no generator calls.
func (s *ReportService) GenerateDailyReport(ctx context.Context, sp sport.Sport, day time.Time) (SyncCounts, error) {
	ctx, span := startUsecaseSpan(ctx, "ReportService.GenerateDailyReport")
	defer span.End()

	counts := SyncCounts{}
	if !sp.Valid() {
		return counts, fmt.Errorf("%w: unsupported sport %q", ErrInvalidInput, sp)
	}
	if s.generator == nil {
		return counts, fmt.Errorf("%w: content generator is not configured", ErrDependencyUnavailable)
	}

	day = day.UTC().Truncate(24 * time.Hour)
	key := fmt.Sprintf("report:%s:%s", sp, day.Format("2006-01-02"))

	existing, err := s.reports.GetByDate(ctx, sp, day)
	if err != nil {
		counts.record(ItemResult{Key: key, Status: ItemFailed, Message: err.Error()})
		return counts, nil
	}
	if existing != nil {
		if _, ok := existing.Locales[content.CanonicalLocale]; ok {
			// Canonical text exists; only the locale fan-out may be behind.
			for _, filled := range s.translations.FillDailyReport(ctx, existing) {
				counts.record(filled)
			}
			counts.record(ItemResult{Key: key, Status: ItemSkipped, Message: "report already generated"})
			return counts, nil
		}
	}

	scheduled, err := s.matches.ListByKickoffDate(ctx, sp, day)
	if err != nil {
		return counts, fmt.Errorf("list matches for day: %w", err)
	}
	if len(scheduled) == 0 {
		counts.record(ItemResult{Key: key, Status: ItemSkipped, Message: "no matches scheduled"})
		return counts, nil
	}

	candidates, err := s.collectCandidates(ctx, scheduled)
	if err != nil {
		return counts, err
	}

	hot := selectHotMatches(candidates)
	matchIDs := make([]int64, 0, len(scheduled))
	for _, m := range scheduled {
		matchIDs = append(matchIDs, m.ID)
	}

	payload, err := s.generateDigest(ctx, sp, day, candidates, hot)
	if err != nil {
		counts.record(ItemResult{Key: key, Status: ItemFailed, Message: err.Error()})
		return counts, nil
	}

	report := &content.DailyReport{
		ReportDate: day.Format("2006-01-02"),
		Sport:      sp,
		Locales:    map[string]content.LocaleContent{content.CanonicalLocale: payload},
		HotMatches: hot,
		MatchIDs:   matchIDs,
	}
	if err := s.reports.Upsert(ctx, report); err != nil {
		counts.record(ItemResult{Key: key, Status: ItemFailed, Message: err.Error()})
		return counts, nil
	}
	counts.record(ItemResult{Key: key, Status: ItemAdded})

	saved, err := s.reports.GetByDate(ctx, sp, day)
	if err == nil && saved != nil {
		for _, filled := range s.translations.FillDailyReport(ctx, saved) {
			counts.record(filled)
		}
	}

	s.logger.InfoContext(ctx, "daily report generated",
		"sport", sp, "report_date", report.ReportDate,
		"matches", len(matchIDs), "hot_matches", len(hot),
	)
	return counts, nil
}

func (s *ReportService) collectCandidates(ctx context.Context, scheduled []match.Match) ([]reportCandidate, error) {
	teamByID := make(map[int64]team.Team, len(scheduled)*2)
	lookup := func(id int64) (team.Team, bool) {
		if t, ok := teamByID[id]; ok {
			return t, true
		}
		t, err := s.teams.GetByID(ctx, id)
		if err != nil || t == nil {
			return team.Team{}, false
		}
		teamByID[id] = *t
		return *t, true
	}

	out := make([]reportCandidate, 0, len(scheduled))
	for _, m := range scheduled {
		home, okHome := lookup(m.HomeTeamID)
		away, okAway := lookup(m.AwayTeamID)
		if !okHome || !okAway {
			continue
		}

		candidate := reportCandidate{match: m, home: home, away: away}

		var homeTrends, awayTrends []string
		if rec, err := s.recent.GetByTeam(ctx, home.ID); err == nil && rec != nil {
			homeTrends = DetectTrends(m.Sport, rec.Entries)
		}
		if rec, err := s.recent.GetByTeam(ctx, away.ID); err == nil && rec != nil {
			awayTrends = DetectTrends(m.Sport, rec.Entries)
		}
		if combined := CombineTrends(homeTrends, awayTrends); combined != "" {
			candidate.reasons = append(candidate.reasons, combined)
		}

		if s.isTopRankPairing(ctx, home.ID, away.ID) {
			candidate.reasons = append(candidate.reasons, "top-rank-pairing")
		}

		out = append(out, candidate)
	}

	return out, nil
}

func (s *ReportService) isTopRankPairing(ctx context.Context, homeID, awayID int64) bool {
	homeRank := s.rankFor(ctx, homeID)
	awayRank := s.rankFor(ctx, awayID)
	return homeRank > 0 && awayRank > 0 && homeRank <= topRankCutoff && awayRank <= topRankCutoff
}

func (s *ReportService) rankFor(ctx context.Context, teamID int64) int {
	stats, err := s.stats.GetByTeamSeason(ctx, teamID, "")
	if err != nil || stats == nil {
		return 0
	}
	return stats.Rank
}

func selectHotMatches(candidates []reportCandidate) []content.HotMatch {
	hot := make([]content.HotMatch, 0, maxHotMatches)

	ordered := append([]reportCandidate(nil), candidates...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if len(ordered[i].reasons) != len(ordered[j].reasons) {
			return len(ordered[i].reasons) > len(ordered[j].reasons)
		}
		return ordered[i].match.KickoffAt.Before(ordered[j].match.KickoffAt)
	})

	for _, candidate := range ordered {
		if len(candidate.reasons) == 0 {
			break
		}
		hot = append(hot, content.HotMatch{
			MatchID:   candidate.match.ID,
			HomeTeam:  candidate.home.Name,
			AwayTeam:  candidate.away.Name,
			KickoffAt: candidate.match.KickoffAt.UTC().Format(time.RFC3339),
			Reasons:   candidate.reasons,
		})
		if len(hot) == maxHotMatches {
			break
		}
	}

	return hot
}

func (s *ReportService) generateDigest(ctx context.Context, sp sport.Sport, day time.Time, candidates []reportCandidate, hot []content.HotMatch) (content.LocaleContent, error) {
	type digestLine struct {
		HomeTeam  string   `json:"homeTeam"`
		AwayTeam  string   `json:"awayTeam"`
		KickoffAt string   `json:"kickoffAt"`
		Reasons   []string `json:"reasons,omitempty"`
	}

	lines := make([]digestLine, 0, len(candidates))
	for _, candidate := range candidates {
		lines = append(lines, digestLine{
			HomeTeam:  candidate.home.Name,
			AwayTeam:  candidate.away.Name,
			KickoffAt: candidate.match.KickoffAt.UTC().Format(time.RFC3339),
			Reasons:   candidate.reasons,
		})
	}

	snapshot := map[string]any{
		"sport":      sp.String(),
		"reportDate": day.Format("2006-01-02"),
		"matches":    lines,
		"hotMatches": hot,
	}
	encoded, err := sonic.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return content.LocaleContent{}, fmt.Errorf("encode digest snapshot: %w", err)
	}

	userPrompt := fmt.Sprintf("Write the daily digest for this schedule:\n\n%s", string(encoded))
	raw, err := s.generator.Generate(ctx, reportSystemPrompt, userPrompt)
	if err != nil {
		return content.LocaleContent{}, fmt.Errorf("generate daily report: %w", err)
	}

	payload, err := ParseGeneratedContent(raw)
	if err != nil {
		return content.LocaleContent{}, err
	}
	if strings.TrimSpace(payload.Summary) == "" {
		return content.LocaleContent{}, fmt.Errorf("daily report reply missing summary")
	}

	return payload, nil
}
