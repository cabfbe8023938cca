package footballdata

// Wire shapes for the provider payloads this client consumes.

type competitionInfo struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
	Area struct {
		Name string `json:"name"`
	} `json:"area"`
}

type matchTeam struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	TLA       string `json:"tla"`
	Crest     string `json:"crest"`
}

type scorePair struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type matchItem struct {
	ID      int64  `json:"id"`
	UTCDate string `json:"utcDate"`
	Status  string `json:"status"`
	Season  struct {
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	} `json:"season"`
	HomeTeam matchTeam `json:"homeTeam"`
	AwayTeam matchTeam `json:"awayTeam"`
	Score    struct {
		FullTime scorePair `json:"fullTime"`
	} `json:"score"`
}

type matchesEnvelope struct {
	Competition competitionInfo `json:"competition"`
	Matches     []matchItem     `json:"matches"`
}

type standingsEnvelope struct {
	Standings []struct {
		Type  string `json:"type"`
		Table []struct {
			Position     int       `json:"position"`
			Team         matchTeam `json:"team"`
			PlayedGames  int       `json:"playedGames"`
			Form         string    `json:"form"`
			Won          int       `json:"won"`
			Draw         int       `json:"draw"`
			Lost         int       `json:"lost"`
			Points       int       `json:"points"`
			GoalsFor     int       `json:"goalsFor"`
			GoalsAgainst int       `json:"goalsAgainst"`
		} `json:"table"`
	} `json:"standings"`
}
