package content

import (
	"time"

	"github.com/BrainSnack9/playstat/internal/domain/sport"
)

// CanonicalLocale is the generation language; every other locale is produced
// by translating from it.
const CanonicalLocale = "en"

// LocaleContent is the generated editorial payload for one locale. Optional
// sections are empty when the generator omitted them.
type LocaleContent struct {
	Summary            string   `json:"summary"`
	RecentFlowAnalysis string   `json:"recentFlowAnalysis,omitempty"`
	SeasonTrends       string   `json:"seasonTrends,omitempty"`
	TacticalAnalysis   string   `json:"tacticalAnalysis,omitempty"`
	KeyPoints          []string `json:"keyPoints,omitempty"`
}

// Empty reports whether the payload carries no usable text at all.
func (c LocaleContent) Empty() bool {
	return c.Summary == "" &&
		c.RecentFlowAnalysis == "" &&
		c.SeasonTrends == "" &&
		c.TacticalAnalysis == "" &&
		len(c.KeyPoints) == 0
}

// MatchAnalysis is the per-match artifact. Locales is append-only: a locale is
// either fully present or absent, never partial.
type MatchAnalysis struct {
	ID        int64                    `db:"-" json:"id"`
	MatchID   int64                    `db:"match_id" json:"matchId"`
	Locales   map[string]LocaleContent `db:"-" json:"locales"`
	UpdatedAt time.Time                `db:"updated_at" json:"updatedAt"`
}

// HotMatch is one highlighted pairing inside a daily report.
type HotMatch struct {
	MatchID   int64    `json:"matchId"`
	HomeTeam  string   `json:"homeTeam"`
	AwayTeam  string   `json:"awayTeam"`
	KickoffAt string   `json:"kickoffAt"`
	Reasons   []string `json:"reasons,omitempty"`
}

// DailyReport is the per-day digest artifact, one per (date, sport).
type DailyReport struct {
	ID         int64                    `db:"-" json:"id"`
	ReportDate string                   `db:"report_date" json:"reportDate"`
	Sport      sport.Sport              `db:"sport" json:"sport"`
	Locales    map[string]LocaleContent `db:"-" json:"locales"`
	HotMatches []HotMatch               `db:"-" json:"hotMatches"`
	MatchIDs   []int64                  `db:"-" json:"matchIds"`
	UpdatedAt  time.Time                `db:"updated_at" json:"updatedAt"`
}

// MissingLocales returns the targets not yet present on the locale map, in
// the order given.
func MissingLocales(have map[string]LocaleContent, targets []string) []string {
	var missing []string
	for _, loc := range targets {
		if loc == "" {
			continue
		}
		if _, ok := have[loc]; !ok {
			missing = append(missing, loc)
		}
	}
	return missing
}
