package schedulerlog

import "time"

// Run results. PARTIAL means the run completed but at least one item failed.
const (
	ResultSuccess = "SUCCESS"
	ResultPartial = "PARTIAL"
	ResultFailed  = "FAILED"
)

// Job names as they appear in the audit log and on the trigger routes.
const (
	JobSyncMatches      = "sync-matches"
	JobSyncStandings    = "sync-standings"
	JobGeneratePreviews = "generate-previews"
	JobDailyReport      = "daily-report"
	JobTranslateContent = "translate-content"
	JobRecomputeStats   = "recompute-stats"
)

// Entry is one append-only audit row. Details is a JSON document with the
// per-item outcomes and any chain result.
type Entry struct {
	ID         int64     `db:"-" json:"id"`
	RunID      string    `db:"run_id" json:"runId"`
	Job        string    `db:"job" json:"job"`
	Result     string    `db:"result" json:"result"`
	Details    []byte    `db:"details" json:"details"`
	DurationMS int64     `db:"duration_ms" json:"durationMs"`
	APICalls   int64     `db:"api_calls" json:"apiCalls"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
