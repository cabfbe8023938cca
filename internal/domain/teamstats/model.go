package teamstats

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SeasonStats is the derived standings row for one team and season. Rebuilt
// wholesale from finished matches; never edited incrementally.
type SeasonStats struct {
	ID          int64     `db:"-" json:"id"`
	TeamID      int64     `db:"team_id" json:"teamId"`
	Season      string    `db:"season" json:"season"`
	Rank        int       `db:"rank" json:"rank"`
	Played      int       `db:"played" json:"played"`
	Wins        int       `db:"wins" json:"wins"`
	Draws       int       `db:"draws" json:"draws"`
	Losses      int       `db:"losses" json:"losses"`
	Points      int       `db:"points" json:"points"`
	WinPct      float64   `db:"win_pct" json:"winPct"`
	Scored      int       `db:"scored" json:"scored"`
	Conceded    int       `db:"conceded" json:"conceded"`
	AvgScored   float64   `db:"avg_scored" json:"avgScored"`
	AvgConceded float64   `db:"avg_conceded" json:"avgConceded"`
	HomeWins    int       `db:"home_wins" json:"homeWins"`
	HomeLosses  int       `db:"home_losses" json:"homeLosses"`
	AwayWins    int       `db:"away_wins" json:"awayWins"`
	AwayLosses  int       `db:"away_losses" json:"awayLosses"`
	Form        string    `db:"form" json:"form"`
	ExtraStats  []byte    `db:"extra_stats" json:"-"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

func (s *SeasonStats) GoalDiff() int {
	return s.Scored - s.Conceded
}

// RecentEntry is one finished match from a team's perspective, newest first in
// the stored list.
type RecentEntry struct {
	Date     string `json:"date"`
	Opponent string `json:"opponent"`
	Result   string `json:"result"`
	Score    string `json:"score"`
	IsHome   bool   `json:"isHome"`
}

// ForAgainst splits the stored "home-away" score into goals for and against
// this team, honoring which side it played on.
func (e RecentEntry) ForAgainst() (int, int, error) {
	home, away, err := splitScore(e.Score)
	if err != nil {
		return 0, 0, err
	}
	if e.IsHome {
		return home, away, nil
	}
	return away, home, nil
}

func splitScore(score string) (int, int, error) {
	parts := strings.SplitN(score, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed score %q", score)
	}
	home, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("malformed score %q", score)
	}
	away, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("malformed score %q", score)
	}
	return home, away, nil
}

// RecentMatches holds the rolling last-N window for a team plus the compact
// form string derived from it.
type RecentMatches struct {
	ID        int64         `db:"-" json:"id"`
	TeamID    int64         `db:"team_id" json:"teamId"`
	Entries   []RecentEntry `db:"-" json:"entries"`
	Form      string        `db:"form" json:"form"`
	UpdatedAt time.Time     `db:"updated_at" json:"updatedAt"`
}

// Results a single entry can carry.
const (
	ResultWin  = "W"
	ResultDraw = "D"
	ResultLoss = "L"
)
