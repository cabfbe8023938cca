package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/sourcegraph/conc/panics"

	"github.com/BrainSnack9/playstat/internal/domain/content"
	"github.com/BrainSnack9/playstat/internal/domain/headtohead"
	"github.com/BrainSnack9/playstat/internal/domain/league"
	"github.com/BrainSnack9/playstat/internal/domain/match"
	"github.com/BrainSnack9/playstat/internal/domain/sport"
	"github.com/BrainSnack9/playstat/internal/domain/team"
	"github.com/BrainSnack9/playstat/internal/domain/teamstats"
	"github.com/BrainSnack9/playstat/internal/platform/logging"
)

const (
	previewWindow = 48 * time.Hour

	previewSystemPrompt = "You are a sports editor. You write factual, concise match previews " +
		"from the structured data you are given. Respond with a single JSON object and nothing else. " +
		"Keys: summary (string, required), recentFlowAnalysis (string), seasonTrends (string), " +
		"tacticalAnalysis (string), keyPoints (array of strings). Do not invent statistics."
)

// AnalysisSnapshot is everything the generator sees for one match.
type AnalysisSnapshot struct {
	Sport         string                  `json:"sport"`
	League        string                  `json:"league"`
	Season        string                  `json:"season"`
	HomeTeam      string                  `json:"homeTeam"`
	AwayTeam      string                  `json:"awayTeam"`
	KickoffAt     string                  `json:"kickoffAt"`
	HomeStats     *teamstats.SeasonStats  `json:"homeStats,omitempty"`
	AwayStats     *teamstats.SeasonStats  `json:"awayStats,omitempty"`
	HomeRecent    []teamstats.RecentEntry `json:"homeRecent,omitempty"`
	AwayRecent    []teamstats.RecentEntry `json:"awayRecent,omitempty"`
	HeadToHead    []headtohead.Meeting    `json:"headToHead,omitempty"`
	HomeTrends    []string                `json:"homeTrends,omitempty"`
	AwayTrends    []string                `json:"awayTrends,omitempty"`
	CombinedTrend string                  `json:"combinedTrend,omitempty"`
}

// AnalysisService generates the canonical-locale preview for upcoming matches
// and hands the artifact straight to the translation fan-out.
type AnalysisService struct {
	leagues      league.Repository
	teams        team.Repository
	matches      match.Repository
	stats        teamstats.SeasonStatsRepository
	recent       teamstats.RecentMatchesRepository
	h2h          headtohead.Repository
	analyses     content.MatchAnalysisRepository
	generator    ContentGenerator
	translations *TranslationService
	logger       *logging.Logger
	now          func() time.Time
}

func NewAnalysisService(
	leagues league.Repository,
	teams team.Repository,
	matches match.Repository,
	stats teamstats.SeasonStatsRepository,
	recent teamstats.RecentMatchesRepository,
	h2h headtohead.Repository,
	analyses content.MatchAnalysisRepository,
	generator ContentGenerator,
	translations *TranslationService,
	logger *logging.Logger,
) *AnalysisService {
	if logger == nil {
		logger = logging.Default()
	}
	return &AnalysisService{
		leagues:      leagues,
		teams:        teams,
		matches:      matches,
		stats:        stats,
		recent:       recent,
		h2h:          h2h,
		analyses:     analyses,
		generator:    generator,
		translations: translations,
		logger:       logger,
		now:          time.Now,
	}
}

// GeneratePreviews walks upcoming matches and produces the canonical preview
// for each one that does not have it yet. One bad match never stops the run;
// panics inside a single item are folded into that item's failure.
func (s *AnalysisService) GeneratePreviews(ctx context.Context, sp sport.Sport, leagueCode string) (SyncCounts, error) {
	ctx, span := startUsecaseSpan(ctx, "AnalysisService.GeneratePreviews")
	defer span.End()

	counts := SyncCounts{}
	if !sp.Valid() {
		return counts, fmt.Errorf("%w: unsupported sport %q", ErrInvalidInput, sp)
	}
	if s.generator == nil {
		return counts, fmt.Errorf("%w: content generator is not configured", ErrDependencyUnavailable)
	}

	var leagueFilter *league.League
	if strings.TrimSpace(leagueCode) != "" {
		lg, err := s.leagues.GetByCode(ctx, sp, strings.TrimSpace(leagueCode))
		if err != nil {
			return counts, fmt.Errorf("load league %s: %w", leagueCode, err)
		}
		if lg == nil {
			return counts, fmt.Errorf("%w: league %s", ErrNotFound, leagueCode)
		}
		leagueFilter = lg
	}

	upcoming, err := s.matches.ListUpcoming(ctx, sp, s.now().UTC(), previewWindow)
	if err != nil {
		return counts, fmt.Errorf("list upcoming matches: %w", err)
	}

	for _, m := range upcoming {
		if leagueFilter != nil && m.LeagueID != leagueFilter.ID {
			continue
		}
		m := m

		var item ItemResult
		recovered := panics.Try(func() {
			item = s.generatePreview(ctx, m)
		})
		if recovered != nil {
			item = ItemResult{
				Key:     fmt.Sprintf("preview:%d", m.ID),
				Status:  ItemFailed,
				Message: fmt.Sprintf("panic: %v", recovered.Value),
			}
		}
		counts.record(item)
	}

	s.logger.InfoContext(ctx, "preview generation completed",
		"sport", sp, "league", leagueCode,
		"added", counts.Added, "skipped", counts.Skipped, "errors", counts.Errors,
	)
	return counts, nil
}

func (s *AnalysisService) generatePreview(ctx context.Context, m match.Match) ItemResult {
	key := fmt.Sprintf("preview:%d", m.ID)

	existing, err := s.analyses.GetByMatchID(ctx, m.ID)
	if err != nil {
		return ItemResult{Key: key, Status: ItemFailed, Message: err.Error()}
	}
	if existing != nil {
		if _, ok := existing.Locales[content.CanonicalLocale]; ok {
			// Canonical text exists; only the locale fan-out may be behind.
			for _, filled := range s.translations.FillMatchAnalysis(ctx, existing) {
				if filled.Status == ItemFailed {
					return ItemResult{Key: key, Status: ItemFailed, Message: filled.Message}
				}
			}
			return ItemResult{Key: key, Status: ItemSkipped, Message: "preview already generated"}
		}
	}

	snapshot, err := s.buildSnapshot(ctx, m)
	if err != nil {
		return ItemResult{Key: key, Status: ItemFailed, Message: err.Error()}
	}

	payload, err := s.generateContent(ctx, snapshot)
	if err != nil {
		return ItemResult{Key: key, Status: ItemFailed, Message: err.Error()}
	}

	artifact := &content.MatchAnalysis{
		MatchID: m.ID,
		Locales: map[string]content.LocaleContent{content.CanonicalLocale: payload},
	}
	if err := s.analyses.Upsert(ctx, artifact); err != nil {
		return ItemResult{Key: key, Status: ItemFailed, Message: err.Error()}
	}

	for _, filled := range s.translations.FillMatchAnalysis(ctx, artifact) {
		if filled.Status == ItemFailed {
			s.logger.WarnContext(ctx, "locale fan-out incomplete", "match_id", m.ID, "detail", filled.Message)
		}
	}

	return ItemResult{Key: key, Status: ItemAdded}
}

func (s *AnalysisService) buildSnapshot(ctx context.Context, m match.Match) (AnalysisSnapshot, error) {
	home, err := s.teams.GetByID(ctx, m.HomeTeamID)
	if err != nil {
		return AnalysisSnapshot{}, fmt.Errorf("load home team: %w", err)
	}
	away, err := s.teams.GetByID(ctx, m.AwayTeamID)
	if err != nil {
		return AnalysisSnapshot{}, fmt.Errorf("load away team: %w", err)
	}
	if home == nil || away == nil {
		return AnalysisSnapshot{}, fmt.Errorf("%w: match %d references unknown teams", ErrNotFound, m.ID)
	}

	snapshot := AnalysisSnapshot{
		Sport:     m.Sport.String(),
		HomeTeam:  home.Name,
		AwayTeam:  away.Name,
		KickoffAt: m.KickoffAt.UTC().Format(time.RFC3339),
	}

	var homeTrends, awayTrends []string
	if rec, err := s.recent.GetByTeam(ctx, home.ID); err == nil && rec != nil {
		snapshot.HomeRecent = rec.Entries
		homeTrends = DetectTrends(m.Sport, rec.Entries)
	}
	if rec, err := s.recent.GetByTeam(ctx, away.ID); err == nil && rec != nil {
		snapshot.AwayRecent = rec.Entries
		awayTrends = DetectTrends(m.Sport, rec.Entries)
	}
	snapshot.HomeTrends = homeTrends
	snapshot.AwayTrends = awayTrends
	snapshot.CombinedTrend = CombineTrends(homeTrends, awayTrends)

	if record, err := s.h2h.GetByPairKey(ctx, m.Sport, headtohead.PairKey(home.Slug, away.Slug)); err == nil && record != nil {
		snapshot.HeadToHead = record.Meetings
	}

	if leagueRow, err := s.leagueFor(ctx, m); err == nil && leagueRow != nil {
		snapshot.League = leagueRow.Name
		snapshot.Season = leagueRow.Season
		if stats, err := s.stats.GetByTeamSeason(ctx, home.ID, leagueRow.Season); err == nil {
			snapshot.HomeStats = stats
		}
		if stats, err := s.stats.GetByTeamSeason(ctx, away.ID, leagueRow.Season); err == nil {
			snapshot.AwayStats = stats
		}
	}

	return snapshot, nil
}

func (s *AnalysisService) leagueFor(ctx context.Context, m match.Match) (*league.League, error) {
	all, err := s.leagues.List(ctx, m.Sport)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == m.LeagueID {
			return &all[i], nil
		}
	}
	return nil, nil
}

// generateContent renders the prompt, calls the generator and parses the
// strict-JSON reply. An empty or unparseable reply is a per-match failure.
func (s *AnalysisService) generateContent(ctx context.Context, snapshot AnalysisSnapshot) (content.LocaleContent, error) {
	encoded, err := sonic.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return content.LocaleContent{}, fmt.Errorf("encode snapshot: %w", err)
	}

	userPrompt := fmt.Sprintf("Write the preview for this match:\n\n%s", string(encoded))
	raw, err := s.generator.Generate(ctx, previewSystemPrompt, userPrompt)
	if err != nil {
		return content.LocaleContent{}, fmt.Errorf("generate preview: %w", err)
	}

	payload, err := ParseGeneratedContent(raw)
	if err != nil {
		return content.LocaleContent{}, err
	}
	return payload, nil
}

// ParseGeneratedContent decodes the generator reply into a locale payload.
// Markdown fences around the JSON are tolerated; anything else is an error.
func ParseGeneratedContent(raw string) (content.LocaleContent, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return content.LocaleContent{}, fmt.Errorf("generator reply is not a JSON object")
	}

	var payload content.LocaleContent
	if err := sonic.Unmarshal([]byte(text[start:end+1]), &payload); err != nil {
		return content.LocaleContent{}, fmt.Errorf("decode generator reply: %w", err)
	}
	if payload.Empty() {
		return content.LocaleContent{}, fmt.Errorf("generator reply carried no content")
	}

	return payload, nil
}
