package usecase

import (
	"fmt"
	"strings"

	"github.com/BrainSnack9/playstat/internal/domain/sport"
	"github.com/BrainSnack9/playstat/internal/domain/teamstats"
)

// Trend tags attached to a team going into a match.
const (
	TrendScoringMachine = "scoring-machine"
	TrendDefenseLeak    = "defense-leak"

	CombinedMismatch    = "mismatch"
	CombinedHighScoring = "high-scoring-match"
)

const trendWindow = 5

// Per-sport last-5 totals that qualify a team as unusually productive or
// unusually porous.
type trendThresholds struct {
	scoredTotal   int
	concededTotal int
}

func thresholdsFor(sp sport.Sport) trendThresholds {
	if sp == sport.Basketball {
		return trendThresholds{scoredTotal: 575, concededTotal: 570}
	}
	return trendThresholds{scoredTotal: 10, concededTotal: 9}
}

// DetectTrends derives trend tags from a team's recent list, newest first.
// Streak tags carry their length, e.g. "winning-streak-3". Entries with a
// malformed score are skipped for the scoring totals but still count toward
// streaks via their result letter.
func DetectTrends(sp sport.Sport, recent []teamstats.RecentEntry) []string {
	if len(recent) > trendWindow {
		recent = recent[:trendWindow]
	}
	if len(recent) == 0 {
		return nil
	}

	var tags []string

	streakResult := recent[0].Result
	streakLen := 0
	for _, entry := range recent {
		if entry.Result != streakResult {
			break
		}
		streakLen++
	}
	if streakLen >= 2 {
		switch streakResult {
		case teamstats.ResultWin:
			tags = append(tags, fmt.Sprintf("winning-streak-%d", streakLen))
		case teamstats.ResultLoss:
			tags = append(tags, fmt.Sprintf("losing-streak-%d", streakLen))
		}
	}

	scored, conceded := 0, 0
	counted := 0
	for _, entry := range recent {
		f, a, err := entry.ForAgainst()
		if err != nil {
			continue
		}
		scored += f
		conceded += a
		counted++
	}

	if counted == trendWindow {
		limits := thresholdsFor(sp)
		if scored >= limits.scoredTotal {
			tags = append(tags, TrendScoringMachine)
		}
		if conceded >= limits.concededTotal {
			tags = append(tags, TrendDefenseLeak)
		}
	}

	return tags
}

// CombineTrends inspects both teams' tags and returns at most one match-level
// tag. A streak mismatch outranks a high-scoring pairing.
func CombineTrends(homeTags, awayTags []string) string {
	homeWinning := hasPrefixTag(homeTags, "winning-streak-")
	homeLosing := hasPrefixTag(homeTags, "losing-streak-")
	awayWinning := hasPrefixTag(awayTags, "winning-streak-")
	awayLosing := hasPrefixTag(awayTags, "losing-streak-")

	if (homeWinning && awayLosing) || (homeLosing && awayWinning) {
		return CombinedMismatch
	}

	homeScoring := hasTag(homeTags, TrendScoringMachine)
	awayScoring := hasTag(awayTags, TrendScoringMachine)
	homeLeaky := hasTag(homeTags, TrendDefenseLeak)
	awayLeaky := hasTag(awayTags, TrendDefenseLeak)

	if (homeScoring && awayLeaky) || (homeLeaky && awayScoring) {
		return CombinedHighScoring
	}

	return ""
}

func hasTag(tags []string, want string) bool {
	for _, tag := range tags {
		if tag == want {
			return true
		}
	}
	return false
}

func hasPrefixTag(tags []string, prefix string) bool {
	for _, tag := range tags {
		if strings.HasPrefix(tag, prefix) {
			return true
		}
	}
	return false
}
