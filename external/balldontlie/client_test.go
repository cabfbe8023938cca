package balldontlie

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BrainSnack9/playstat/internal/platform/calls"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *calls.Counter) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	counter := calls.NewCounter()
	client := NewClient(ClientConfig{
		BaseURL: server.URL,
		Token:   "test-token",
		Timeout: 2 * time.Second,
		Calls:   counter,
	})
	return client, counter
}

func TestClient_FetchSchedule_WalksCursorPages(t *testing.T) {
	t.Parallel()

	const firstPage = `{
	  "data": [
	    {
	      "id": 9001,
	      "datetime": "2026-03-07T00:30:00Z",
	      "season": 2025,
	      "status": "Final",
	      "period": 4,
	      "home_team": {"id": 14, "abbreviation": "LAL", "full_name": "Los Angeles Lakers"},
	      "visitor_team": {"id": 2, "abbreviation": "BOS", "full_name": "Boston Celtics"},
	      "home_team_score": 112,
	      "visitor_team_score": 108
	    }
	  ],
	  "meta": {"next_cursor": 9001}
	}`
	const secondPage = `{
	  "data": [
	    {
	      "id": 9002,
	      "datetime": "2026-03-09T01:00:00Z",
	      "season": 2025,
	      "status": "2026-03-09T01:00:00Z",
	      "period": 0,
	      "home_team": {"id": 2, "abbreviation": "BOS", "full_name": "Boston Celtics"},
	      "visitor_team": {"id": 14, "abbreviation": "LAL", "full_name": "Los Angeles Lakers"}
	    }
	  ],
	  "meta": {"next_cursor": null}
	}`

	var gotAuth string
	client, counter := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Query().Get("seasons[]") != "2025" {
			t.Errorf("season filter missing: %s", r.URL.RawQuery)
		}
		if r.URL.Query().Get("cursor") == "" {
			_, _ = w.Write([]byte(firstPage))
			return
		}
		_, _ = w.Write([]byte(secondPage))
	})

	bundle, err := client.FetchSchedule(context.Background(), "2025")
	if err != nil {
		t.Fatalf("FetchSchedule: %v", err)
	}

	if gotAuth != "test-token" {
		t.Fatalf("auth header missing, got %q", gotAuth)
	}
	if counter.Total() != 2 {
		t.Fatalf("expected one call per page, got %d", counter.Total())
	}

	if bundle.League.ExternalID != "nba-2025" || bundle.League.Season != "2025" {
		t.Fatalf("unexpected league: %+v", bundle.League)
	}

	if len(bundle.Teams) != 2 {
		t.Fatalf("teams must be deduplicated across pages: %+v", bundle.Teams)
	}
	if bundle.Teams[0].Name != "Boston Celtics" || bundle.Teams[0].ShortName != "BOS" {
		t.Fatalf("teams must be sorted by name: %+v", bundle.Teams[0])
	}

	if len(bundle.Matches) != 2 {
		t.Fatalf("expected two games, got %d", len(bundle.Matches))
	}
	final := bundle.Matches[0]
	if final.Status != "FINISHED" || final.HomeScore == nil || *final.HomeScore != 112 || *final.AwayScore != 108 {
		t.Fatalf("final game not mapped: %+v", final)
	}
	upcoming := bundle.Matches[1]
	if upcoming.Status != "SCHEDULED" || upcoming.HomeScore != nil {
		t.Fatalf("upcoming game must carry no score: %+v", upcoming)
	}
}

func TestClient_FetchStandings_RanksByWinPct(t *testing.T) {
	t.Parallel()

	const fixture = `{
	  "data": [
	    {"team": {"id": 2, "full_name": "Boston Celtics"}, "wins": 45, "losses": 15},
	    {"team": {"id": 14, "full_name": "Los Angeles Lakers"}, "wins": 48, "losses": 12},
	    {"team": {"id": 4, "full_name": "Brooklyn Nets"}, "wins": 0, "losses": 0}
	  ]
	}`

	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(fixture))
	})

	rows, err := client.FetchStandings(context.Background(), "2025")
	if err != nil {
		t.Fatalf("FetchStandings: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected three rows, got %d", len(rows))
	}
	if rows[0].TeamName != "Los Angeles Lakers" || rows[0].Position != 1 {
		t.Fatalf("rows must be ranked by win pct: %+v", rows[0])
	}
	if rows[0].WinPct != 0.8 || rows[0].Played != 60 {
		t.Fatalf("win pct not derived: %+v", rows[0])
	}
	if rows[2].TeamName != "Brooklyn Nets" || rows[2].WinPct != 0 {
		t.Fatalf("zero-game team must rank last: %+v", rows[2])
	}
}

func TestClient_FetchSchedule_RequiresSeason(t *testing.T) {
	t.Parallel()

	client, counter := newTestClient(t, func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected without a season")
	})

	if _, err := client.FetchSchedule(context.Background(), "  "); err == nil {
		t.Fatal("expected error for empty season")
	}
	if counter.Total() != 0 {
		t.Fatalf("expected no outbound calls, got %d", counter.Total())
	}
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		Timeout:    time.Second,
		MaxRetries: 3,
		Calls:      calls.NewCounter(),
	})

	if _, err := client.FetchStandings(context.Background(), "2025"); err == nil {
		t.Fatal("expected error for 401")
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("4xx must not retry, got %d attempts", got)
	}
}

func TestMapGameStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status string
		period int
		want   string
	}{
		{status: "Final", period: 4, want: "FINISHED"},
		{status: "3rd Qtr", period: 3, want: "LIVE"},
		{status: "Halftime", period: 2, want: "LIVE"},
		{status: "2026-03-09T01:00:00Z", period: 0, want: "SCHEDULED"},
		{status: "", period: 1, want: "LIVE"},
		{status: "Postponed", period: 0, want: "POSTPONED"},
	}

	for _, tt := range tests {
		if got := mapGameStatus(tt.status, tt.period); got != tt.want {
			t.Fatalf("mapGameStatus(%q, %d)=%q want=%q", tt.status, tt.period, got, tt.want)
		}
	}
}
