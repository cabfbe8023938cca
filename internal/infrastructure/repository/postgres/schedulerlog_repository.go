package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/BrainSnack9/playstat/internal/domain/schedulerlog"
	qb "github.com/BrainSnack9/playstat/internal/platform/querybuilder"
)

type schedulerLogRow struct {
	ID         int64     `db:"id"`
	RunID      string    `db:"run_id"`
	Job        string    `db:"job"`
	Result     string    `db:"result"`
	Details    []byte    `db:"details"`
	DurationMS int64     `db:"duration_ms"`
	APICalls   int64     `db:"api_calls"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r schedulerLogRow) toDomain() schedulerlog.Entry {
	return schedulerlog.Entry{
		ID:         r.ID,
		RunID:      r.RunID,
		Job:        r.Job,
		Result:     r.Result,
		Details:    r.Details,
		DurationMS: r.DurationMS,
		APICalls:   r.APICalls,
		CreatedAt:  r.CreatedAt,
	}
}

type SchedulerLogRepository struct {
	db *sqlx.DB
}

func NewSchedulerLogRepository(db *sqlx.DB) *SchedulerLogRepository {
	return &SchedulerLogRepository{db: db}
}

func (r *SchedulerLogRepository) Insert(ctx context.Context, e *schedulerlog.Entry) error {
	details := e.Details
	if len(details) == 0 {
		details = []byte("{}")
	}

	query, args, err := qb.InsertInto("scheduler_logs").
		Columns("run_id", "job", "result", "details", "duration_ms", "api_calls").
		Values(e.RunID, e.Job, e.Result, details, e.DurationMS, e.APICalls).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert scheduler log query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert scheduler log: %w", err)
	}
	return nil
}

func (r *SchedulerLogRepository) ListRecent(ctx context.Context, job string, limit int) ([]schedulerlog.Entry, error) {
	builder := qb.Select("*").From("scheduler_logs").
		OrderBy("created_at DESC")
	if job != "" {
		builder = builder.Where(qb.Eq("job", job))
	}
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list scheduler logs query: %w", err)
	}

	var rows []schedulerLogRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select scheduler logs: %w", err)
	}

	out := make([]schedulerlog.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
