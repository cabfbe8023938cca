package match

import (
	"strings"
	"time"

	"github.com/BrainSnack9/playstat/internal/domain/sport"
)

// Match statuses, normalized from provider-specific vocabularies.
const (
	StatusScheduled = "SCHEDULED"
	StatusTimed     = "TIMED"
	StatusLive      = "LIVE"
	StatusFinished  = "FINISHED"
	StatusPostponed = "POSTPONED"
	StatusCancelled = "CANCELLED"
	StatusSuspended = "SUSPENDED"
)

type Match struct {
	ID         int64       `db:"-" json:"id"`
	Sport      sport.Sport `db:"sport" json:"sport"`
	LeagueID   int64       `db:"league_id" json:"leagueId"`
	HomeTeamID int64       `db:"home_team_id" json:"homeTeamId"`
	AwayTeamID int64       `db:"away_team_id" json:"awayTeamId"`
	KickoffAt  time.Time   `db:"kickoff_at" json:"kickoffAt"`
	Status     string      `db:"status" json:"status"`
	HomeScore  *int        `db:"home_score" json:"homeScore"`
	AwayScore  *int        `db:"away_score" json:"awayScore"`
	ExternalID string      `db:"external_id" json:"externalId"`
	Slug       string      `db:"slug" json:"slug"`
	CreatedAt  time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updatedAt"`
}

// NormalizeStatus maps the status vocabularies of the upstream providers onto
// the constants above. Unknown values pass through uppercased.
func NormalizeStatus(raw string) string {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", "SCHEDULED", "NS", "NOT_STARTED", "FIXTURE":
		return StatusScheduled
	case "TIMED", "TBD":
		return StatusTimed
	case "LIVE", "IN_PLAY", "INPLAY", "PAUSED", "HT", "1H", "2H", "OT", "Q1", "Q2", "Q3", "Q4", "HALFTIME":
		return StatusLive
	case "FINISHED", "FT", "FULL_TIME", "AET", "PEN", "FINAL", "ENDED":
		return StatusFinished
	case "POSTPONED", "PST":
		return StatusPostponed
	case "CANCELLED", "CANCELED", "ABANDONED":
		return StatusCancelled
	case "SUSPENDED", "INT", "INTERRUPTED":
		return StatusSuspended
	default:
		return strings.ToUpper(strings.TrimSpace(raw))
	}
}

func IsLiveStatus(status string) bool {
	return NormalizeStatus(status) == StatusLive
}

func IsFinishedStatus(status string) bool {
	return NormalizeStatus(status) == StatusFinished
}

// HasResult reports whether both scores are present.
func (m *Match) HasResult() bool {
	return m != nil && m.HomeScore != nil && m.AwayScore != nil
}
