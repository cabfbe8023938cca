package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BrainSnack9/playstat/internal/domain/headtohead"
	"github.com/BrainSnack9/playstat/internal/domain/league"
	"github.com/BrainSnack9/playstat/internal/domain/match"
	"github.com/BrainSnack9/playstat/internal/domain/sport"
	"github.com/BrainSnack9/playstat/internal/domain/team"
	"github.com/BrainSnack9/playstat/internal/infrastructure/repository/memory"
)

type recomputeFixture struct {
	svc     *RecomputeService
	leagues *memory.LeagueRepository
	teams   *memory.TeamRepository
	matches *memory.MatchRepository
	stats   *memory.SeasonStatsRepository
	recent  *memory.RecentMatchesRepository
	h2h     *memory.HeadToHeadRepository
}

func newRecomputeFixture() *recomputeFixture {
	f := &recomputeFixture{
		leagues: memory.NewLeagueRepository(),
		teams:   memory.NewTeamRepository(),
		matches: memory.NewMatchRepository(),
		stats:   memory.NewSeasonStatsRepository(),
		recent:  memory.NewRecentMatchesRepository(),
		h2h:     memory.NewHeadToHeadRepository(),
	}
	f.svc = NewRecomputeService(f.leagues, f.teams, f.matches, f.stats, f.recent, f.h2h, nil)
	return f
}

func (f *recomputeFixture) seedLeague(t *testing.T, code string) *league.League {
	t.Helper()
	lg, err := f.leagues.Upsert(context.Background(), &league.League{
		Sport:  sport.Football,
		Code:   code,
		Name:   "Premier League",
		Season: "2025",
	})
	if err != nil {
		t.Fatalf("seed league: %v", err)
	}
	return lg
}

func (f *recomputeFixture) seedTeam(t *testing.T, leagueID int64, name string) *team.Team {
	t.Helper()
	stored, err := f.teams.Upsert(context.Background(), &team.Team{
		Sport:      sport.Football,
		LeagueID:   leagueID,
		ExternalID: "ext-" + name,
		Name:       name,
		Slug:       team.Slugify(name),
	})
	if err != nil {
		t.Fatalf("seed team %s: %v", name, err)
	}
	return stored
}

func (f *recomputeFixture) seedFinished(t *testing.T, leagueID, homeID, awayID int64, homeScore, awayScore int, at time.Time) {
	t.Helper()
	_, err := f.matches.Upsert(context.Background(), &match.Match{
		Sport:      sport.Football,
		LeagueID:   leagueID,
		HomeTeamID: homeID,
		AwayTeamID: awayID,
		KickoffAt:  at,
		Status:     match.StatusFinished,
		HomeScore:  intPtr(homeScore),
		AwayScore:  intPtr(awayScore),
		ExternalID: "m-" + at.Format("20060102"),
	})
	if err != nil {
		t.Fatalf("seed match: %v", err)
	}
}

func TestRecomputeService_RebuildsAllDerivedTables(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newRecomputeFixture()
	lg := f.seedLeague(t, "PL")
	arsenal := f.seedTeam(t, lg.ID, "Arsenal")
	chelsea := f.seedTeam(t, lg.ID, "Chelsea")
	bolton := f.seedTeam(t, lg.ID, "Bolton")

	f.seedFinished(t, lg.ID, arsenal.ID, chelsea.ID, 2, 1, day(1))
	f.seedFinished(t, lg.ID, chelsea.ID, bolton.ID, 3, 0, day(2))
	f.seedFinished(t, lg.ID, bolton.ID, arsenal.ID, 0, 0, day(3))

	// A fixture without a result must not feed any derived table.
	if _, err := f.matches.Upsert(ctx, &match.Match{
		Sport:      sport.Football,
		LeagueID:   lg.ID,
		HomeTeamID: arsenal.ID,
		AwayTeamID: bolton.ID,
		KickoffAt:  day(20),
		Status:     match.StatusScheduled,
		ExternalID: "m-future",
	}); err != nil {
		t.Fatalf("seed scheduled match: %v", err)
	}

	result, err := f.svc.Recompute(ctx, RecomputeInput{Sport: sport.Football, LeagueCode: "PL"})
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if result.LeagueCount != 1 || result.TaskCount != 3 || result.SuccessCount != 3 || result.FailedCount != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	row, err := f.stats.GetByTeamSeason(ctx, arsenal.ID, "2025")
	if err != nil || row == nil {
		t.Fatalf("load season stats: %v", err)
	}
	if row.Rank != 1 || row.Points != 4 || row.Wins != 1 || row.Draws != 1 {
		t.Fatalf("unexpected standings row: %+v", row)
	}
	if row.AvgScored != 1.0 || row.AvgConceded != 0.5 {
		t.Fatalf("averages must derive from played games: %+v", row)
	}

	recent, err := f.recent.GetByTeam(ctx, arsenal.ID)
	if err != nil || recent == nil {
		t.Fatalf("load recent matches: %v", err)
	}
	if recent.Form != "DW" {
		t.Fatalf("form must be newest first, got %q", recent.Form)
	}
	if len(recent.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %+v", recent.Entries)
	}
	first := recent.Entries[0]
	if first.Opponent != "Bolton" || first.IsHome || first.Score != "0-0" || first.Result != "D" {
		t.Fatalf("unexpected newest entry: %+v", first)
	}

	rec, err := f.h2h.GetByPairKey(ctx, sport.Football, headtohead.PairKey("arsenal", "chelsea"))
	if err != nil || rec == nil {
		t.Fatalf("load head to head: %v", err)
	}
	if len(rec.Meetings) != 1 || rec.Meetings[0].Score != "2-1" || rec.Meetings[0].HomeTeam != "Arsenal" {
		t.Fatalf("unexpected meetings: %+v", rec.Meetings)
	}
}

func TestRecomputeService_LeagueWithoutResultsIsSkipped(t *testing.T) {
	t.Parallel()

	f := newRecomputeFixture()
	f.seedLeague(t, "PL")

	result, err := f.svc.Recompute(context.Background(), RecomputeInput{
		Sport: sport.Football,
		Kinds: []string{"standings"},
	})
	if err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if result.TaskCount != 1 || result.SkippedCount != 1 || result.FailedCount != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Tasks[0].Status != "skipped" || result.Tasks[0].Message == "" {
		t.Fatalf("unexpected task row: %+v", result.Tasks[0])
	}
}

func TestRecomputeService_UnknownKindIsRejected(t *testing.T) {
	t.Parallel()

	f := newRecomputeFixture()
	f.seedLeague(t, "PL")

	_, err := f.svc.Recompute(context.Background(), RecomputeInput{
		Sport: sport.Football,
		Kinds: []string{"vibes"},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}
}

func TestRecomputeService_UnknownLeagueIsNotFound(t *testing.T) {
	t.Parallel()

	f := newRecomputeFixture()

	_, err := f.svc.Recompute(context.Background(), RecomputeInput{
		Sport:      sport.Football,
		LeagueCode: "XX",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestNormalizeWorkerCount(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		requested int
		tasks     int
		want      int
	}{
		{"default", 0, 12, 4},
		{"capped at max", 99, 40, 16},
		{"capped at task count", 8, 3, 3},
		{"explicit", 2, 10, 2},
	}
	for _, tc := range cases {
		if got := normalizeWorkerCount(tc.requested, tc.tasks); got != tc.want {
			t.Fatalf("%s: got %d want %d", tc.name, got, tc.want)
		}
	}
}
