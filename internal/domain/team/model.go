package team

import (
	"strings"
	"time"

	"github.com/BrainSnack9/playstat/internal/domain/sport"
)

type Team struct {
	ID         int64       `db:"-" json:"id"`
	Sport      sport.Sport `db:"sport" json:"sport"`
	LeagueID   int64       `db:"league_id" json:"leagueId"`
	ExternalID string      `db:"external_id" json:"externalId"`
	Name       string      `db:"name" json:"name"`
	ShortName  string      `db:"short_name" json:"shortName"`
	LogoURL    string      `db:"logo_url" json:"logoUrl"`
	Slug       string      `db:"slug" json:"slug"`
	CreatedAt  time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updatedAt"`
}

// Slugify lowercases a display name and collapses everything outside [a-z0-9]
// into single hyphens. "Bayern München" becomes "bayern-m-nchen".
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}
