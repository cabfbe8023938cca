package usecase

import (
	"context"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc/panics"

	"github.com/BrainSnack9/playstat/internal/domain/schedulerlog"
	"github.com/BrainSnack9/playstat/internal/platform/calls"
	"github.com/BrainSnack9/playstat/internal/platform/logging"
)

// JobReport is what a job body hands back: how many items failed plus the
// job-specific results payload that lands in the audit log and the response.
type JobReport struct {
	Failures int
	Results  any
}

// JobRequest describes one triggered run.
type JobRequest struct {
	Job               string
	ChainPath         string
	InvalidateDomains []string
	Body              func(ctx context.Context) (JobReport, error)
}

// JobOutcome is the terminal state of a run. Result never changes because of
// a chained-trigger failure; that failure is only recorded.
type JobOutcome struct {
	Job        string        `json:"job"`
	RunID      string        `json:"runId"`
	Result     string        `json:"result"`
	Duration   time.Duration `json:"-"`
	APICalls   int64         `json:"apiCalls"`
	Results    any           `json:"results,omitempty"`
	Error      string        `json:"error,omitempty"`
	ChainPath  string        `json:"chainPath,omitempty"`
	ChainError string        `json:"chainError,omitempty"`
}

type cacheInvalidator interface {
	InvalidateDomains(ctx context.Context, domains ...string)
}

// JobRunner wraps every triggered job with timing, call counting, result
// classification and the always-persisted audit entry.
type JobRunner struct {
	logs    schedulerlog.Repository
	chainer JobChainer
	calls   *calls.Counter
	cache   cacheInvalidator
	logger  *logging.Logger
	now     func() time.Time
}

func NewJobRunner(
	logs schedulerlog.Repository,
	chainer JobChainer,
	counter *calls.Counter,
	cache cacheInvalidator,
	logger *logging.Logger,
) *JobRunner {
	if logger == nil {
		logger = logging.Default()
	}
	return &JobRunner{
		logs:    logs,
		chainer: chainer,
		calls:   counter,
		cache:   cache,
		logger:  logger,
		now:     time.Now,
	}
}

// Run executes the body and classifies the outcome: a body error or panic is
// FAILED, a completed run with item failures is PARTIAL, otherwise SUCCESS.
func (r *JobRunner) Run(ctx context.Context, req JobRequest) JobOutcome {
	ctx, span := startUsecaseSpan(ctx, "JobRunner.Run")
	defer span.End()

	outcome := JobOutcome{
		Job:   req.Job,
		RunID: uuid.NewString(),
	}

	start := r.now()
	callsBefore := r.calls.Total()

	var (
		report  JobReport
		bodyErr error
	)
	recovered := panics.Try(func() {
		report, bodyErr = req.Body(ctx)
	})
	if recovered != nil {
		bodyErr = fmt.Errorf("job panicked: %v", recovered.Value)
	}

	outcome.Duration = r.now().Sub(start)
	outcome.APICalls = r.calls.Total() - callsBefore
	outcome.Results = report.Results

	switch {
	case bodyErr != nil:
		outcome.Result = schedulerlog.ResultFailed
		outcome.Error = bodyErr.Error()
	case report.Failures > 0:
		outcome.Result = schedulerlog.ResultPartial
	default:
		outcome.Result = schedulerlog.ResultSuccess
	}

	if outcome.Result != schedulerlog.ResultFailed {
		if r.cache != nil && len(req.InvalidateDomains) > 0 {
			r.cache.InvalidateDomains(ctx, req.InvalidateDomains...)
		}
		if req.ChainPath != "" {
			outcome.ChainPath = req.ChainPath
			if r.chainer == nil {
				outcome.ChainError = "chain trigger is not configured"
			} else if err := r.chainer.Trigger(ctx, req.ChainPath); err != nil {
				outcome.ChainError = err.Error()
			}
		}
	}

	r.persistAudit(ctx, outcome)

	r.logger.InfoContext(ctx, "job run finished",
		"job", outcome.Job, "run_id", outcome.RunID, "result", outcome.Result,
		"duration_ms", outcome.Duration.Milliseconds(), "api_calls", outcome.APICalls,
		"item_failures", report.Failures,
	)
	return outcome
}

// persistAudit always writes the entry; a storage failure is logged and the
// outcome still returns to the caller.
func (r *JobRunner) persistAudit(ctx context.Context, outcome JobOutcome) {
	if r.logs == nil {
		return
	}

	details, err := sonic.Marshal(outcome)
	if err != nil {
		r.logger.ErrorContext(ctx, "encode audit details failed", "job", outcome.Job, "error", err)
		details = []byte("{}")
	}

	entry := &schedulerlog.Entry{
		RunID:      outcome.RunID,
		Job:        outcome.Job,
		Result:     outcome.Result,
		Details:    details,
		DurationMS: outcome.Duration.Milliseconds(),
		APICalls:   outcome.APICalls,
	}
	if err := r.logs.Insert(ctx, entry); err != nil {
		r.logger.ErrorContext(ctx, "persist audit entry failed", "job", outcome.Job, "run_id", outcome.RunID, "error", err)
	}
}
