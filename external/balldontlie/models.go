package balldontlie

type teamItem struct {
	ID           int64  `json:"id"`
	Abbreviation string `json:"abbreviation"`
	FullName     string `json:"full_name"`
}

type gameItem struct {
	ID               int64    `json:"id"`
	Date             string   `json:"date"`
	Datetime         string   `json:"datetime"`
	Season           int      `json:"season"`
	Status           string   `json:"status"`
	Period           int      `json:"period"`
	HomeTeam         teamItem `json:"home_team"`
	VisitorTeam      teamItem `json:"visitor_team"`
	HomeTeamScore    int      `json:"home_team_score"`
	VisitorTeamScore int      `json:"visitor_team_score"`
}

type gamesEnvelope struct {
	Data []gameItem `json:"data"`
	Meta struct {
		NextCursor *int64 `json:"next_cursor"`
	} `json:"meta"`
}

type standingsEnvelope struct {
	Data []struct {
		Team   teamItem `json:"team"`
		Wins   int      `json:"wins"`
		Losses int      `json:"losses"`
	} `json:"data"`
}
