package sport

import "strings"

// Sport identifies a supported competition family. The value is stored as-is
// in every table, so constants here are the canonical wire form.
type Sport string

const (
	Football   Sport = "football"
	Basketball Sport = "basketball"
)

func (s Sport) String() string {
	return string(s)
}

func (s Sport) Valid() bool {
	return s == Football || s == Basketball
}

// Parse normalizes a user-supplied sport name. Empty input defaults to
// football; unknown input returns ok=false.
func Parse(raw string) (Sport, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "football", "soccer":
		return Football, true
	case "basketball", "nba":
		return Basketball, true
	default:
		return Sport(raw), false
	}
}

// UsesPoints reports whether the sport ranks standings by accumulated points
// rather than win percentage.
func (s Sport) UsesPoints() bool {
	return s == Football
}
