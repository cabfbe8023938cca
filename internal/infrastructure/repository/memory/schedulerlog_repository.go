package memory

import (
	"context"
	"sync"
	"time"

	"github.com/BrainSnack9/playstat/internal/domain/schedulerlog"
)

type SchedulerLogRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   []schedulerlog.Entry
}

func NewSchedulerLogRepository() *SchedulerLogRepository {
	return &SchedulerLogRepository{nextID: 1}
}

func (r *SchedulerLogRepository) Insert(_ context.Context, e *schedulerlog.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	row := *e
	row.ID = r.nextID
	row.CreatedAt = time.Now().UTC()
	r.nextID++
	r.rows = append(r.rows, row)
	return nil
}

func (r *SchedulerLogRepository) ListRecent(_ context.Context, job string, limit int) ([]schedulerlog.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]schedulerlog.Entry, 0, len(r.rows))
	for i := len(r.rows) - 1; i >= 0; i-- {
		if job != "" && r.rows[i].Job != job {
			continue
		}
		out = append(out, r.rows[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
