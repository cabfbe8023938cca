package match

import "testing"

func TestNormalizeStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want string
	}{
		{"", StatusScheduled},
		{"SCHEDULED", StatusScheduled},
		{"ns", StatusScheduled},
		{"TBD", StatusTimed},
		{"IN_PLAY", StatusLive},
		{"Q3", StatusLive},
		{"ht", StatusLive},
		{"FT", StatusFinished},
		{"Final", StatusFinished},
		{"ended", StatusFinished},
		{"AET", StatusFinished},
		{"PST", StatusPostponed},
		{"Canceled", StatusCancelled},
		{"ABANDONED", StatusCancelled},
		{"INT", StatusSuspended},
		{"WALKOVER", "WALKOVER"},
	}
	for _, tc := range cases {
		if got := NormalizeStatus(tc.raw); got != tc.want {
			t.Fatalf("NormalizeStatus(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestIsFinishedStatus(t *testing.T) {
	t.Parallel()

	if !IsFinishedStatus("FT") || !IsFinishedStatus("FINISHED") {
		t.Fatal("full-time vocabularies must read as finished")
	}
	if IsFinishedStatus("LIVE") || IsFinishedStatus("SCHEDULED") {
		t.Fatal("non-final statuses must not read as finished")
	}
}

func TestMatch_HasResult(t *testing.T) {
	t.Parallel()

	score := 2
	m := &Match{HomeScore: &score, AwayScore: &score}
	if !m.HasResult() {
		t.Fatal("both scores present must report a result")
	}

	m.AwayScore = nil
	if m.HasResult() {
		t.Fatal("missing away score must not report a result")
	}

	var nilMatch *Match
	if nilMatch.HasResult() {
		t.Fatal("nil match must not report a result")
	}
}
