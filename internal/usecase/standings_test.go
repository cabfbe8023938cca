package usecase

import (
	"testing"
	"time"

	"github.com/BrainSnack9/playstat/internal/domain/sport"
)

func day(n int) time.Time {
	return time.Date(2026, time.March, n, 15, 0, 0, 0, time.UTC)
}

func TestBuildTable_FootballOrdersByPointsThenGoalDifference(t *testing.T) {
	t.Parallel()

	names := map[int64]string{1: "Arsenal", 2: "Bolton", 3: "Chelsea"}
	games := []Game{
		{HomeTeamID: 1, AwayTeamID: 2, HomeScore: 2, AwayScore: 1, PlayedAt: day(1)},
		{HomeTeamID: 3, AwayTeamID: 2, HomeScore: 3, AwayScore: 0, PlayedAt: day(2)},
		{HomeTeamID: 1, AwayTeamID: 3, HomeScore: 1, AwayScore: 1, PlayedAt: day(3)},
	}

	rows := BuildTable(sport.Football, games, names)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	// Arsenal and Chelsea both sit on 4 points; Chelsea's goal difference wins.
	if rows[0].TeamID != 3 || rows[0].Rank != 1 || rows[0].Points != 4 {
		t.Fatalf("unexpected rank 1 row: %+v", rows[0])
	}
	if rows[1].TeamID != 1 || rows[1].Rank != 2 || rows[1].Points != 4 {
		t.Fatalf("unexpected rank 2 row: %+v", rows[1])
	}
	if rows[2].TeamID != 2 || rows[2].Rank != 3 || rows[2].Points != 0 {
		t.Fatalf("unexpected rank 3 row: %+v", rows[2])
	}

	if rows[1].HomeWins != 1 || rows[1].Draws != 1 || rows[1].Losses != 0 {
		t.Fatalf("unexpected splits for Arsenal: %+v", rows[1])
	}
	if rows[1].Form != "DW" {
		t.Fatalf("form must be newest first, got %q", rows[1].Form)
	}
}

func TestBuildTable_TiesFallBackToTeamName(t *testing.T) {
	t.Parallel()

	names := map[int64]string{1: "Zebra", 2: "Moss", 3: "Apple", 4: "Moor"}
	games := []Game{
		{HomeTeamID: 1, AwayTeamID: 2, HomeScore: 1, AwayScore: 0, PlayedAt: day(1)},
		{HomeTeamID: 3, AwayTeamID: 4, HomeScore: 1, AwayScore: 0, PlayedAt: day(1)},
	}

	rows := BuildTable(sport.Football, games, names)
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}

	want := []int64{3, 1, 4, 2} // Apple, Zebra, Moor, Moss
	for i, teamID := range want {
		if rows[i].TeamID != teamID {
			t.Fatalf("rank %d: got team %d (%s), want %d", i+1, rows[i].TeamID, rows[i].TeamName, teamID)
		}
	}
}

func TestBuildTable_BasketballOrdersByWinPct(t *testing.T) {
	t.Parallel()

	names := map[int64]string{1: "Bucks", 2: "Celtics", 3: "Wizards"}
	games := []Game{
		{HomeTeamID: 1, AwayTeamID: 2, HomeScore: 110, AwayScore: 98, PlayedAt: day(1)},
		{HomeTeamID: 1, AwayTeamID: 3, HomeScore: 120, AwayScore: 99, PlayedAt: day(2)},
		{HomeTeamID: 2, AwayTeamID: 3, HomeScore: 105, AwayScore: 101, PlayedAt: day(3)},
	}

	rows := BuildTable(sport.Basketball, games, names)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}

	if rows[0].TeamID != 1 || rows[0].WinPct != 1.0 {
		t.Fatalf("unexpected rank 1 row: %+v", rows[0])
	}
	if rows[1].TeamID != 2 || rows[1].WinPct != 0.5 {
		t.Fatalf("unexpected rank 2 row: %+v", rows[1])
	}
	if rows[2].TeamID != 3 || rows[2].WinPct != 0 {
		t.Fatalf("unexpected rank 3 row: %+v", rows[2])
	}
}

func TestFormString_CapsAtFiveNewestFirst(t *testing.T) {
	t.Parallel()

	got := formString([]string{"W", "W", "L", "D", "W", "L", "W"})
	if got != "WLWDL" {
		t.Fatalf("unexpected form: got %q want %q", got, "WLWDL")
	}
}
