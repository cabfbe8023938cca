package chain

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestTrigger(t *testing.T, handler http.HandlerFunc) *Trigger {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewTrigger(TriggerConfig{
		TargetBaseURL: server.URL,
		JobToken:      "job-secret",
	}, nil)
}

func TestTrigger_FiresAuthenticatedGet(t *testing.T) {
	t.Parallel()

	var gotMethod, gotPath, gotAuth string
	trigger := newTestTrigger(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	})

	if err := trigger.Trigger(context.Background(), "v1/internal/jobs/recompute-stats"); err != nil {
		t.Fatalf("Trigger: %v", err)
	}

	if gotMethod != http.MethodGet {
		t.Fatalf("expected GET, got %s", gotMethod)
	}
	if gotPath != "/v1/internal/jobs/recompute-stats" {
		t.Fatalf("path must be normalized with a leading slash, got %q", gotPath)
	}
	if gotAuth != "Bearer job-secret" {
		t.Fatalf("auth header missing, got %q", gotAuth)
	}
}

func TestTrigger_EmptyPathRejected(t *testing.T) {
	t.Parallel()

	trigger := newTestTrigger(t, func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected for an empty path")
	})

	if err := trigger.Trigger(context.Background(), "  /  "); err == nil {
		t.Fatal("expected error for empty job path")
	}
}

func TestTrigger_NonSuccessStatusIsError(t *testing.T) {
	t.Parallel()

	trigger := newTestTrigger(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	})

	err := trigger.Trigger(context.Background(), "/v1/internal/jobs/recompute-stats")
	if err == nil || !strings.Contains(err.Error(), "status=502") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestTrigger_InvalidBaseURLRejected(t *testing.T) {
	t.Parallel()

	trigger := NewTrigger(TriggerConfig{TargetBaseURL: "ftp://jobs.internal"}, nil)
	if err := trigger.Trigger(context.Background(), "/v1/internal/jobs/recompute-stats"); err == nil {
		t.Fatal("expected error for unsupported scheme")
	}
}

func TestValidateHTTPBaseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "https with trailing slash", in: "https://api.playstat.app/", want: "https://api.playstat.app"},
		{name: "plain http", in: "http://localhost:8080", want: "http://localhost:8080"},
		{name: "empty", in: "   ", wantErr: true},
		{name: "missing scheme", in: "api.playstat.app", wantErr: true},
		{name: "unsupported scheme", in: "ftp://api.playstat.app", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validateHTTPBaseURL(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("validateHTTPBaseURL(%q) expected error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("validateHTTPBaseURL(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("validateHTTPBaseURL(%q)=%q want=%q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBuildCurlPreview(t *testing.T) {
	t.Parallel()

	got := buildCurlPreview("https://api.playstat.app/v1/internal/jobs/sync-matches", true)
	want := "curl 'https://api.playstat.app/v1/internal/jobs/sync-matches' -H 'Authorization: Bearer ***'"
	if got != want {
		t.Fatalf("unexpected preview:\n got: %s\nwant: %s", got, want)
	}

	if got := buildCurlPreview("http://localhost:8080/x", false); strings.Contains(got, "Authorization") {
		t.Fatalf("preview without token must omit auth header: %s", got)
	}
}
