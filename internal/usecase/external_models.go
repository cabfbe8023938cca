package usecase

import (
	"context"
	"time"

	"github.com/BrainSnack9/playstat/internal/domain/sport"
)

// Provider-native rows. Clients map upstream payloads into these and do no
// business logic beyond normalization.

type ExternalLeague struct {
	ExternalID string
	Code       string
	Name       string
	Country    string
	Season     string
}

type ExternalTeam struct {
	ExternalID string
	Name       string
	ShortName  string
	LogoURL    string
}

type ExternalMatch struct {
	ExternalID         string
	HomeTeamExternalID string
	AwayTeamExternalID string
	HomeTeamName       string
	AwayTeamName       string
	KickoffAt          time.Time
	Status             string
	HomeScore          *int
	AwayScore          *int
}

type ExternalStandingRow struct {
	TeamExternalID string
	TeamName       string
	Position       int
	Played         int
	Won            int
	Draw           int
	Lost           int
	GoalsFor       int
	GoalsAgainst   int
	Points         int
	WinPct         float64
	Form           string
}

// ExternalScheduleBundle is one provider pass over a league: its metadata,
// every team seen, and the schedule/result rows inside the sync window.
type ExternalScheduleBundle struct {
	League  ExternalLeague
	Teams   []ExternalTeam
	Matches []ExternalMatch
}

// SportDataProvider is the upstream schedule/result source for one sport.
type SportDataProvider interface {
	Sport() sport.Sport
	FetchSchedule(ctx context.Context, leagueCode string) (ExternalScheduleBundle, error)
	FetchStandings(ctx context.Context, leagueCode string) ([]ExternalStandingRow, error)
}

// ContentGenerator produces the canonical-locale editorial text for a prompt.
// The response is expected to be a single JSON document.
type ContentGenerator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Translator converts one text fragment between locales.
type Translator interface {
	Translate(ctx context.Context, text, sourceLocale, targetLocale string) (string, error)
}

// JobChainer fires a follow-up job trigger after a run completes.
type JobChainer interface {
	Trigger(ctx context.Context, path string) error
}
