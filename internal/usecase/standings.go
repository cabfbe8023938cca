package usecase

import (
	"sort"
	"time"

	"github.com/BrainSnack9/playstat/internal/domain/sport"
	"github.com/BrainSnack9/playstat/internal/domain/teamstats"
)

// Game is one finished result feeding the table calculation.
type Game struct {
	HomeTeamID int64
	AwayTeamID int64
	HomeScore  int
	AwayScore  int
	PlayedAt   time.Time
}

// TableRow is one computed standings line. Rank is 1-based after sorting.
type TableRow struct {
	TeamID     int64
	TeamName   string
	Rank       int
	Played     int
	Wins       int
	Draws      int
	Losses     int
	Scored     int
	Conceded   int
	Points     int
	WinPct     float64
	HomeWins   int
	HomeLosses int
	AwayWins   int
	AwayLosses int
	Form       string
}

const formLength = 5

// BuildTable computes the full league table from finished games. Football
// orders by points, goal difference, goals scored; basketball by win
// percentage. Ties fall back to team name ascending so the ordering is
// deterministic regardless of input order. Form is newest first.
func BuildTable(sp sport.Sport, games []Game, teamNames map[int64]string) []TableRow {
	rowsByTeam := make(map[int64]*TableRow, len(teamNames))
	rowFor := func(teamID int64) *TableRow {
		row, ok := rowsByTeam[teamID]
		if !ok {
			row = &TableRow{TeamID: teamID, TeamName: teamNames[teamID]}
			rowsByTeam[teamID] = row
		}
		return row
	}

	ordered := append([]Game(nil), games...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].PlayedAt.Before(ordered[j].PlayedAt) })

	formByTeam := make(map[int64][]string, len(teamNames))
	for _, game := range ordered {
		if game.HomeTeamID == 0 || game.AwayTeamID == 0 {
			continue
		}

		home := rowFor(game.HomeTeamID)
		away := rowFor(game.AwayTeamID)

		home.Played++
		away.Played++
		home.Scored += game.HomeScore
		home.Conceded += game.AwayScore
		away.Scored += game.AwayScore
		away.Conceded += game.HomeScore

		switch {
		case game.HomeScore > game.AwayScore:
			home.Wins++
			home.HomeWins++
			away.Losses++
			away.AwayLosses++
			formByTeam[home.TeamID] = append(formByTeam[home.TeamID], teamstats.ResultWin)
			formByTeam[away.TeamID] = append(formByTeam[away.TeamID], teamstats.ResultLoss)
		case game.HomeScore < game.AwayScore:
			away.Wins++
			away.AwayWins++
			home.Losses++
			home.HomeLosses++
			formByTeam[away.TeamID] = append(formByTeam[away.TeamID], teamstats.ResultWin)
			formByTeam[home.TeamID] = append(formByTeam[home.TeamID], teamstats.ResultLoss)
		default:
			home.Draws++
			away.Draws++
			formByTeam[home.TeamID] = append(formByTeam[home.TeamID], teamstats.ResultDraw)
			formByTeam[away.TeamID] = append(formByTeam[away.TeamID], teamstats.ResultDraw)
		}
	}

	out := make([]TableRow, 0, len(rowsByTeam))
	for _, row := range rowsByTeam {
		row.Points = row.Wins*3 + row.Draws
		if row.Played > 0 {
			row.WinPct = float64(row.Wins) / float64(row.Played)
		}
		row.Form = formString(formByTeam[row.TeamID])
		out = append(out, *row)
	}

	if sp.UsesPoints() {
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i], out[j]
			if a.Points != b.Points {
				return a.Points > b.Points
			}
			if a.Scored-a.Conceded != b.Scored-b.Conceded {
				return a.Scored-a.Conceded > b.Scored-b.Conceded
			}
			if a.Scored != b.Scored {
				return a.Scored > b.Scored
			}
			return a.TeamName < b.TeamName
		})
	} else {
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i], out[j]
			if a.WinPct != b.WinPct {
				return a.WinPct > b.WinPct
			}
			return a.TeamName < b.TeamName
		})
	}

	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// formString folds chronological results into the newest-first form view.
func formString(chronological []string) string {
	if len(chronological) == 0 {
		return ""
	}

	start := len(chronological) - formLength
	if start < 0 {
		start = 0
	}

	var b []byte
	for i := len(chronological) - 1; i >= start; i-- {
		b = append(b, chronological[i]...)
	}
	return string(b)
}
