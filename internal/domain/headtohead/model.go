package headtohead

import (
	"time"

	"github.com/BrainSnack9/playstat/internal/domain/sport"
)

// Meeting is one finished match between the pair, stored home perspective.
type Meeting struct {
	Date     string `json:"date"`
	HomeTeam string `json:"homeTeam"`
	AwayTeam string `json:"awayTeam"`
	Score    string `json:"score"`
}

// Record holds the meeting history for an unordered team pair.
type Record struct {
	ID        int64       `db:"-" json:"id"`
	PairKey   string      `db:"pair_key" json:"pairKey"`
	Sport     sport.Sport `db:"sport" json:"sport"`
	Meetings  []Meeting   `db:"-" json:"meetings"`
	UpdatedAt time.Time   `db:"updated_at" json:"updatedAt"`
}

// PairKey builds the canonical key for an unordered team pair from the two
// team slugs. Both orderings of the same pair yield the same key.
func PairKey(slugA, slugB string) string {
	if slugB < slugA {
		slugA, slugB = slugB, slugA
	}
	return slugA + "|" + slugB
}
