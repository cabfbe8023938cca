package genai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/BrainSnack9/playstat/internal/platform/calls"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, maxRetries int) (*Client, *calls.Counter) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	counter := calls.NewCounter()
	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		APIKey:     "test-key",
		Timeout:    2 * time.Second,
		MaxRetries: maxRetries,
		Calls:      counter,
	})
	return client, counter
}

func TestClient_Generate(t *testing.T) {
	t.Parallel()

	var gotKey, gotVersion string
	var gotBody messageRequest
	client, counter := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		raw, _ := io.ReadAll(r.Body)
		if err := sonic.Unmarshal(raw, &gotBody); err != nil {
			t.Errorf("unmarshal request body: %v", err)
		}
		_, _ = w.Write([]byte(`{
		  "content": [
		    {"type": "text", "text": "Arsenal host Chelsea "},
		    {"type": "tool_use", "text": "ignored"},
		    {"type": "text", "text": "in a top-four clash."}
		  ],
		  "stop_reason": "end_turn"
		}`))
	}, 0)

	text, err := client.Generate(context.Background(), "You write match previews.", "Preview Arsenal vs Chelsea.")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if gotKey != "test-key" {
		t.Fatalf("api key header missing, got %q", gotKey)
	}
	if gotVersion != apiVersion {
		t.Fatalf("unexpected version header: %q", gotVersion)
	}
	if counter.Total() != 1 {
		t.Fatalf("expected one outbound call, got %d", counter.Total())
	}

	if gotBody.Model != defaultModel || gotBody.MaxTokens != defaultMaxTokens {
		t.Fatalf("defaults not applied: %+v", gotBody)
	}
	if gotBody.System != "You write match previews." {
		t.Fatalf("system prompt not forwarded: %q", gotBody.System)
	}
	if len(gotBody.Messages) != 1 || gotBody.Messages[0].Role != "user" {
		t.Fatalf("unexpected messages: %+v", gotBody.Messages)
	}

	if text != "Arsenal host Chelsea in a top-four clash." {
		t.Fatalf("text blocks must be joined: %q", text)
	}
}

func TestClient_Generate_EmptyPromptRejected(t *testing.T) {
	t.Parallel()

	client, counter := newTestClient(t, func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected for an empty prompt")
	}, 0)

	if _, err := client.Generate(context.Background(), "system", "   "); err == nil {
		t.Fatal("expected error for empty prompt")
	}
	if counter.Total() != 0 {
		t.Fatalf("expected no outbound calls, got %d", counter.Total())
	}
}

func TestClient_Generate_APIErrorSurfaced(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error": {"type": "overloaded_error", "message": "try later"}}`))
	}, 0)

	_, err := client.Generate(context.Background(), "", "prompt")
	if err == nil || !strings.Contains(err.Error(), "overloaded_error") {
		t.Fatalf("expected vendor error to surface, got %v", err)
	}
}

func TestClient_Generate_EmptyCompletionIsError(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content": [], "stop_reason": "end_turn"}`))
	}, 0)

	if _, err := client.Generate(context.Background(), "", "prompt"); err == nil {
		t.Fatal("expected error for a completion with no text")
	}
}

func TestClient_Generate_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"type": "invalid_request_error", "message": "bad"}}`))
	}, 3)

	if _, err := client.Generate(context.Background(), "", "prompt"); err == nil {
		t.Fatal("expected error for 400")
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("4xx must not retry, got %d attempts", got)
	}
}
