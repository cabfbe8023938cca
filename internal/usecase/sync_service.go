package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BrainSnack9/playstat/internal/domain/league"
	"github.com/BrainSnack9/playstat/internal/domain/match"
	"github.com/BrainSnack9/playstat/internal/domain/sport"
	"github.com/BrainSnack9/playstat/internal/domain/team"
	"github.com/BrainSnack9/playstat/internal/domain/teamstats"
	"github.com/BrainSnack9/playstat/internal/platform/logging"
)

// Per-item outcomes inside a run.
const (
	ItemAdded   = "added"
	ItemUpdated = "updated"
	ItemSkipped = "skipped"
	ItemFailed  = "failed"
)

// ItemResult is one unit of work inside a job run.
type ItemResult struct {
	Key     string `json:"key"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// SyncCounts summarizes one sync pass.
type SyncCounts struct {
	Added   int          `json:"added"`
	Updated int          `json:"updated"`
	Skipped int          `json:"skipped"`
	Errors  int          `json:"errors"`
	Items   []ItemResult `json:"items,omitempty"`
}

func (c *SyncCounts) record(item ItemResult) {
	switch item.Status {
	case ItemAdded:
		c.Added++
	case ItemUpdated:
		c.Updated++
	case ItemSkipped:
		c.Skipped++
	case ItemFailed:
		c.Errors++
	}
	c.Items = append(c.Items, item)
}

// SyncService pulls schedules and standings from the providers and reconciles
// them into canonical leagues, teams and matches. One provider per sport.
type SyncService struct {
	providers map[sport.Sport]SportDataProvider
	leagues   league.Repository
	teams     team.Repository
	matches   match.Repository
	stats     teamstats.SeasonStatsRepository
	logger    *logging.Logger
	now       func() time.Time
}

func NewSyncService(
	providers map[sport.Sport]SportDataProvider,
	leagues league.Repository,
	teams team.Repository,
	matches match.Repository,
	stats teamstats.SeasonStatsRepository,
	logger *logging.Logger,
) *SyncService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SyncService{
		providers: providers,
		leagues:   leagues,
		teams:     teams,
		matches:   matches,
		stats:     stats,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *SyncService) provider(sp sport.Sport) (SportDataProvider, error) {
	p, ok := s.providers[sp]
	if !ok || p == nil {
		return nil, fmt.Errorf("%w: no data provider for sport %s", ErrDependencyUnavailable, sp)
	}
	return p, nil
}

// SyncMatches runs one full schedule pass for a league. A provider failure
// fails the run; a single bad row is recorded and skipped.
func (s *SyncService) SyncMatches(ctx context.Context, sp sport.Sport, leagueCode string) (SyncCounts, error) {
	ctx, span := startUsecaseSpan(ctx, "SyncService.SyncMatches")
	defer span.End()

	counts := SyncCounts{}
	if !sp.Valid() {
		return counts, fmt.Errorf("%w: unsupported sport %q", ErrInvalidInput, sp)
	}
	provider, err := s.provider(sp)
	if err != nil {
		return counts, err
	}

	bundle, err := provider.FetchSchedule(ctx, leagueCode)
	if err != nil {
		return counts, fmt.Errorf("fetch schedule: %w", err)
	}

	lg, err := s.resolveLeague(ctx, sp, leagueCode, bundle.League)
	if err != nil {
		return counts, err
	}

	teamByExtID, err := s.resolveTeams(ctx, lg, bundle.Teams, &counts)
	if err != nil {
		return counts, err
	}

	for _, row := range bundle.Matches {
		item := s.upsertMatch(ctx, lg, teamByExtID, row)
		counts.record(item)
	}

	s.logger.InfoContext(ctx, "match sync completed",
		"sport", sp, "league", lg.Code,
		"added", counts.Added, "updated", counts.Updated,
		"skipped", counts.Skipped, "errors", counts.Errors,
	)
	return counts, nil
}

func (s *SyncService) resolveLeague(ctx context.Context, sp sport.Sport, leagueCode string, ext ExternalLeague) (*league.League, error) {
	code := strings.TrimSpace(firstNonEmpty(ext.Code, leagueCode))
	if code == "" {
		return nil, fmt.Errorf("%w: league code is required", ErrInvalidInput)
	}

	existing, err := s.leagues.GetByCode(ctx, sp, code)
	if err != nil {
		return nil, fmt.Errorf("load league %s: %w", code, err)
	}

	next := &league.League{
		Sport:   sp,
		Code:    code,
		Name:    strings.TrimSpace(ext.Name),
		Country: strings.TrimSpace(ext.Country),
		Season:  strings.TrimSpace(ext.Season),
	}
	if existing != nil {
		next.ID = existing.ID
		next.Name = firstNonEmpty(next.Name, existing.Name)
		next.Country = firstNonEmpty(next.Country, existing.Country)
		next.Season = firstNonEmpty(next.Season, existing.Season)
	}
	if next.Name == "" {
		next.Name = code
	}

	saved, err := s.leagues.Upsert(ctx, next)
	if err != nil {
		return nil, fmt.Errorf("upsert league %s: %w", code, err)
	}
	return saved, nil
}

// resolveTeams builds the run-scoped external-id map once per pass. Teams
// seen under a different league are re-parented to the current one.
func (s *SyncService) resolveTeams(ctx context.Context, lg *league.League, rows []ExternalTeam, counts *SyncCounts) (map[string]*team.Team, error) {
	out := make(map[string]*team.Team, len(rows))
	for _, row := range rows {
		extID := strings.TrimSpace(row.ExternalID)
		if extID == "" || strings.TrimSpace(row.Name) == "" {
			counts.record(ItemResult{Key: "team:" + extID, Status: ItemFailed, Message: "missing external id or name"})
			continue
		}

		existing, err := s.teams.GetByExternalID(ctx, lg.Sport, extID)
		if err != nil {
			return nil, fmt.Errorf("load team ext_id=%s: %w", extID, err)
		}

		next := &team.Team{
			Sport:      lg.Sport,
			LeagueID:   lg.ID,
			ExternalID: extID,
			Name:       strings.TrimSpace(row.Name),
			ShortName:  strings.TrimSpace(row.ShortName),
			LogoURL:    strings.TrimSpace(row.LogoURL),
		}
		if existing != nil {
			next.ID = existing.ID
			next.Slug = existing.Slug
			next.ShortName = firstNonEmpty(next.ShortName, existing.ShortName)
			next.LogoURL = firstNonEmpty(next.LogoURL, existing.LogoURL)
		}
		if next.Slug == "" {
			slug, err := s.teamSlug(ctx, lg.Sport, next.Name, extID)
			if err != nil {
				return nil, err
			}
			next.Slug = slug
		}

		saved, err := s.teams.Upsert(ctx, next)
		if err != nil {
			return nil, fmt.Errorf("upsert team %s: %w", next.Name, err)
		}
		out[extID] = saved
	}
	return out, nil
}

func (s *SyncService) teamSlug(ctx context.Context, sp sport.Sport, name, extID string) (string, error) {
	slug := team.Slugify(name)
	if slug == "" {
		slug = "team-" + extID
	}

	taken, err := s.teams.SlugExists(ctx, sp, slug)
	if err != nil {
		return "", fmt.Errorf("check team slug %s: %w", slug, err)
	}
	if taken {
		slug = slug + "-" + extID
	}
	return slug, nil
}

func (s *SyncService) upsertMatch(ctx context.Context, lg *league.League, teamByExtID map[string]*team.Team, row ExternalMatch) ItemResult {
	key := "match:" + row.ExternalID
	if strings.TrimSpace(row.ExternalID) == "" {
		return ItemResult{Key: key, Status: ItemFailed, Message: "missing external id"}
	}
	if row.KickoffAt.IsZero() {
		return ItemResult{Key: key, Status: ItemFailed, Message: "missing kickoff time"}
	}

	home, okHome := teamByExtID[row.HomeTeamExternalID]
	away, okAway := teamByExtID[row.AwayTeamExternalID]
	if !okHome || !okAway {
		return ItemResult{Key: key, Status: ItemFailed, Message: fmt.Sprintf(
			"unresolved team reference home=%s away=%s", row.HomeTeamExternalID, row.AwayTeamExternalID)}
	}

	existing, err := s.matches.GetByExternalID(ctx, lg.Sport, row.ExternalID)
	if err != nil {
		return ItemResult{Key: key, Status: ItemFailed, Message: err.Error()}
	}

	// A finished match is final. Its score and status never change again.
	if existing != nil && match.IsFinishedStatus(existing.Status) {
		return ItemResult{Key: key, Status: ItemSkipped, Message: "already finished"}
	}

	next := &match.Match{
		Sport:      lg.Sport,
		LeagueID:   lg.ID,
		HomeTeamID: home.ID,
		AwayTeamID: away.ID,
		KickoffAt:  row.KickoffAt.UTC(),
		Status:     match.NormalizeStatus(row.Status),
		HomeScore:  row.HomeScore,
		AwayScore:  row.AwayScore,
		ExternalID: row.ExternalID,
	}

	status := ItemUpdated
	if existing != nil {
		next.ID = existing.ID
		next.Slug = existing.Slug
	} else {
		status = ItemAdded
		slug, err := s.matchSlug(ctx, lg.Sport, home.Slug, away.Slug, next.KickoffAt)
		if err != nil {
			return ItemResult{Key: key, Status: ItemFailed, Message: err.Error()}
		}
		next.Slug = slug
	}

	if _, err := s.matches.Upsert(ctx, next); err != nil {
		return ItemResult{Key: key, Status: ItemFailed, Message: err.Error()}
	}
	return ItemResult{Key: key, Status: status}
}

// matchSlug joins both team slugs; a collision gets the kickoff date token
// appended so reverse fixtures stay distinct.
func (s *SyncService) matchSlug(ctx context.Context, sp sport.Sport, homeSlug, awaySlug string, kickoff time.Time) (string, error) {
	slug := homeSlug + "-vs-" + awaySlug
	taken, err := s.matches.SlugExists(ctx, sp, slug)
	if err != nil {
		return "", fmt.Errorf("check match slug %s: %w", slug, err)
	}
	if taken {
		slug = slug + "-" + kickoff.UTC().Format("2006-01-02")
	}
	return slug, nil
}

// SyncStandings replaces the season stats rows for a league from the
// provider's table. Unknown teams are recorded and skipped.
func (s *SyncService) SyncStandings(ctx context.Context, sp sport.Sport, leagueCode string) (SyncCounts, error) {
	ctx, span := startUsecaseSpan(ctx, "SyncService.SyncStandings")
	defer span.End()

	counts := SyncCounts{}
	if !sp.Valid() {
		return counts, fmt.Errorf("%w: unsupported sport %q", ErrInvalidInput, sp)
	}
	provider, err := s.provider(sp)
	if err != nil {
		return counts, err
	}

	lg, err := s.leagues.GetByCode(ctx, sp, strings.TrimSpace(leagueCode))
	if err != nil {
		return counts, fmt.Errorf("load league %s: %w", leagueCode, err)
	}
	if lg == nil {
		return counts, fmt.Errorf("%w: league %s is not synced yet", ErrNotFound, leagueCode)
	}

	rows, err := provider.FetchStandings(ctx, leagueCode)
	if err != nil {
		return counts, fmt.Errorf("fetch standings: %w", err)
	}

	for _, row := range rows {
		key := "standing:" + row.TeamExternalID
		t, err := s.teams.GetByExternalID(ctx, sp, row.TeamExternalID)
		if err != nil {
			counts.record(ItemResult{Key: key, Status: ItemFailed, Message: err.Error()})
			continue
		}
		if t == nil {
			counts.record(ItemResult{Key: key, Status: ItemSkipped, Message: "team not synced"})
			continue
		}

		stats := &teamstats.SeasonStats{
			TeamID:   t.ID,
			Season:   lg.Season,
			Rank:     row.Position,
			Played:   row.Played,
			Wins:     row.Won,
			Draws:    row.Draw,
			Losses:   row.Lost,
			Points:   row.Points,
			WinPct:   row.WinPct,
			Scored:   row.GoalsFor,
			Conceded: row.GoalsAgainst,
			Form:     row.Form,
		}
		if stats.Played > 0 {
			stats.AvgScored = float64(stats.Scored) / float64(stats.Played)
			stats.AvgConceded = float64(stats.Conceded) / float64(stats.Played)
			if stats.WinPct == 0 {
				stats.WinPct = float64(stats.Wins) / float64(stats.Played)
			}
		}

		if err := s.stats.Upsert(ctx, stats); err != nil {
			counts.record(ItemResult{Key: key, Status: ItemFailed, Message: err.Error()})
			continue
		}
		counts.record(ItemResult{Key: key, Status: ItemUpdated})
	}

	s.logger.InfoContext(ctx, "standings sync completed",
		"sport", sp, "league", lg.Code,
		"updated", counts.Updated, "skipped", counts.Skipped, "errors", counts.Errors,
	)
	return counts, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
