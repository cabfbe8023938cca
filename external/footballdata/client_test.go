package footballdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/BrainSnack9/playstat/internal/platform/calls"
)

const scheduleFixture = `{
  "competition": {"id": 2021, "code": "PL", "name": "Premier League", "area": {"name": "England"}},
  "matches": [
    {
      "id": 501,
      "utcDate": "2026-03-07T15:00:00Z",
      "status": "FINISHED",
      "season": {"startDate": "2025-08-15", "endDate": "2026-05-24"},
      "homeTeam": {"id": 57, "name": "Arsenal", "tla": "ARS"},
      "awayTeam": {"id": 61, "name": "Chelsea", "tla": "CHE"},
      "score": {"fullTime": {"home": 2, "away": 1}}
    },
    {
      "id": 502,
      "utcDate": "2026-03-08T17:30:00Z",
      "status": "TIMED",
      "season": {"startDate": "2025-08-15", "endDate": "2026-05-24"},
      "homeTeam": {"id": 61, "name": "Chelsea", "tla": "CHE"},
      "awayTeam": {"id": 57, "name": "Arsenal", "tla": "ARS"},
      "score": {"fullTime": {"home": null, "away": null}}
    }
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, maxRetries int) (*Client, *calls.Counter) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	counter := calls.NewCounter()
	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		Token:      "test-token",
		Timeout:    2 * time.Second,
		MaxRetries: maxRetries,
		Calls:      counter,
	})
	return client, counter
}

func TestClient_FetchSchedule(t *testing.T) {
	t.Parallel()

	var gotPath, gotToken string
	client, counter := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotToken = r.Header.Get("X-Auth-Token")
		if r.URL.Query().Get("dateFrom") == "" || r.URL.Query().Get("dateTo") == "" {
			t.Errorf("date window query missing: %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(scheduleFixture))
	}, 0)

	bundle, err := client.FetchSchedule(context.Background(), "pl")
	if err != nil {
		t.Fatalf("FetchSchedule: %v", err)
	}

	if gotPath != "/competitions/PL/matches" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
	if gotToken != "test-token" {
		t.Fatalf("auth token header missing, got %q", gotToken)
	}
	if counter.Total() != 1 {
		t.Fatalf("expected one outbound call, got %d", counter.Total())
	}

	if bundle.League.Code != "PL" || bundle.League.Country != "England" {
		t.Fatalf("unexpected league: %+v", bundle.League)
	}
	if bundle.League.Season != "2025-26" {
		t.Fatalf("unexpected season label: %q", bundle.League.Season)
	}

	// Two fixtures between the same pair yield exactly two teams.
	if len(bundle.Teams) != 2 {
		t.Fatalf("teams must be deduplicated: %+v", bundle.Teams)
	}
	if bundle.Teams[0].Name != "Arsenal" || bundle.Teams[0].ShortName != "ARS" {
		t.Fatalf("unexpected first team: %+v", bundle.Teams[0])
	}

	if len(bundle.Matches) != 2 {
		t.Fatalf("expected two matches, got %d", len(bundle.Matches))
	}
	finished := bundle.Matches[0]
	if finished.Status != "FINISHED" || finished.HomeScore == nil || *finished.HomeScore != 2 {
		t.Fatalf("finished match not mapped: %+v", finished)
	}
	upcoming := bundle.Matches[1]
	if upcoming.Status != "TIMED" || upcoming.HomeScore != nil {
		t.Fatalf("upcoming match must carry no score: %+v", upcoming)
	}
	if !finished.KickoffAt.Before(upcoming.KickoffAt) {
		t.Fatal("matches must be ordered by kickoff")
	}
}

func TestClient_FetchStandings_KeepsOnlyTotalTable(t *testing.T) {
	t.Parallel()

	const fixture = `{
	  "standings": [
	    {"type": "HOME", "table": [{"position": 1, "team": {"id": 57, "name": "Arsenal"}, "playedGames": 5}]},
	    {"type": "TOTAL", "table": [
	      {"position": 2, "team": {"id": 61, "name": "Chelsea"}, "playedGames": 10, "won": 6, "draw": 2, "lost": 2, "points": 20, "goalsFor": 18, "goalsAgainst": 9, "form": "W,D,W"},
	      {"position": 1, "team": {"id": 57, "name": "Arsenal"}, "playedGames": 10, "won": 8, "draw": 1, "lost": 1, "points": 25, "goalsFor": 22, "goalsAgainst": 7, "form": "W,W,L"}
	    ]}
	  ]
	}`

	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(fixture))
	}, 0)

	rows, err := client.FetchStandings(context.Background(), "PL")
	if err != nil {
		t.Fatalf("FetchStandings: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("only TOTAL rows expected, got %+v", rows)
	}
	if rows[0].Position != 1 || rows[0].TeamExternalID != "57" {
		t.Fatalf("rows must be ordered by position: %+v", rows[0])
	}
	if rows[0].Form != "WWL" {
		t.Fatalf("form must drop separators: %q", rows[0].Form)
	}
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	client, counter := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"standings": []}`))
	}, 1)

	if _, err := client.FetchStandings(context.Background(), "PL"); err != nil {
		t.Fatalf("expected retry to recover: %v", err)
	}
	if counter.Total() != 2 {
		t.Fatalf("expected two attempts, got %d", counter.Total())
	}
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}, 3)

	if _, err := client.FetchStandings(context.Background(), "XX"); err == nil {
		t.Fatal("expected error for 404")
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("4xx must not retry, got %d attempts", got)
	}
}

func TestSanitizeSensitiveText(t *testing.T) {
	t.Parallel()

	got := sanitizeSensitiveText(`Get "https://x": X-Auth-Token: secret-123 rejected`, "secret-123")
	if got != `Get "https://x": X-Auth-Token: REDACTED rejected` {
		t.Fatalf("token leaked: %q", got)
	}
}

func TestSeasonLabel(t *testing.T) {
	t.Parallel()

	cross := []matchItem{}
	cross = append(cross, matchItem{})
	cross[0].Season.StartDate = "2025-08-15"
	cross[0].Season.EndDate = "2026-05-24"
	if got := seasonLabel(cross); got != "2025-26" {
		t.Fatalf("cross-year label: %q", got)
	}

	single := []matchItem{{}}
	single[0].Season.StartDate = "2026-01-10"
	single[0].Season.EndDate = "2026-11-20"
	if got := seasonLabel(single); got != "2026" {
		t.Fatalf("single-year label: %q", got)
	}

	if got := seasonLabel(nil); got != "" {
		t.Fatalf("empty label: %q", got)
	}
}
