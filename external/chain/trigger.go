package chain

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/BrainSnack9/playstat/internal/platform/logging"
	"github.com/BrainSnack9/playstat/internal/platform/resilience"
)

var errChainTransient = crerr.New("chain trigger transient failure")

type TriggerConfig struct {
	TargetBaseURL  string
	JobToken       string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Trigger fires follow-up job endpoints on our own API after a run finishes.
// One authenticated GET per call; the callee does its own auditing.
type Trigger struct {
	client         *http.Client
	targetBaseURL  string
	jobToken       string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewTrigger(cfg TriggerConfig, logger *logging.Logger) *Trigger {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Trigger{
		client:         &http.Client{Timeout: timeout},
		targetBaseURL:  strings.TrimRight(strings.TrimSpace(cfg.TargetBaseURL), "/"),
		jobToken:       strings.TrimSpace(cfg.JobToken),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (t *Trigger) Trigger(ctx context.Context, path string) error {
	if t.circuitEnabled {
		if err := t.breaker.Allow(); err != nil {
			t.logger.WarnContext(ctx, "chain circuit breaker rejected request", "state", t.breaker.State())
			return fmt.Errorf("chain target is temporarily unavailable: %w", err)
		}
	}

	path = "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "/" {
		return crerr.New("job path is required")
	}

	targetBaseURL, err := validateHTTPBaseURL(t.targetBaseURL)
	if err != nil {
		return crerr.Wrap(err, "invalid chain target base url")
	}

	targetURL := targetBaseURL + path
	curlPreview := buildCurlPreview(targetURL, t.jobToken != "")

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("chain.target_url", targetURL),
			attribute.String("chain.path", path),
			attribute.String("chain.request_curl_preview", curlPreview),
		)
	}
	t.logger.InfoContext(ctx, "chain trigger request", "path", path, "target_url", targetURL, "curl_preview", curlPreview)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return crerr.Wrap(err, "create chain request")
	}
	if t.jobToken != "" {
		req.Header.Set("Authorization", "Bearer "+t.jobToken)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		callErr := fmt.Errorf("%w: trigger chain job target_url=%s: %v", errChainTransient, targetURL, err)
		t.recordCircuitResult(callErr)
		return callErr
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if isRetryableStatus(resp.StatusCode) {
			callErr := fmt.Errorf("%w: trigger chain job status=%d target_url=%s body=%s",
				errChainTransient, resp.StatusCode, targetURL, strings.TrimSpace(string(raw)))
			t.recordCircuitResult(callErr)
			return callErr
		}

		callErr := fmt.Errorf("trigger chain job status=%d target_url=%s body=%s",
			resp.StatusCode, targetURL, strings.TrimSpace(string(raw)))
		t.recordCircuitResult(callErr)
		return callErr
	}

	t.logger.InfoContext(ctx, "chain job triggered", "path", path)
	t.recordCircuitResult(nil)
	return nil
}

func (t *Trigger) recordCircuitResult(err error) {
	if !t.circuitEnabled || t.breaker == nil {
		return
	}
	if err == nil || !stderrors.Is(err, errChainTransient) {
		t.breaker.RecordSuccess()
		return
	}
	t.breaker.RecordFailure()
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}

func buildCurlPreview(targetURL string, withToken bool) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	appendPart := func(part string) {
		if buf.Len() > 0 {
			_ = buf.WriteByte(' ')
		}
		_, _ = buf.WriteString(part)
	}

	appendPart("curl")
	appendPart(shellQuote(targetURL))
	if withToken {
		appendPart("-H")
		appendPart(shellQuote("Authorization: Bearer ***"))
	}

	return buf.String()
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "'\"'\"'") + "'"
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}
