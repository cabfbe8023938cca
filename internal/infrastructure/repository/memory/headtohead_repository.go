package memory

import (
	"context"
	"sync"
	"time"

	"github.com/BrainSnack9/playstat/internal/domain/headtohead"
	"github.com/BrainSnack9/playstat/internal/domain/sport"
)

type pairKey struct {
	sport sport.Sport
	key   string
}

type HeadToHeadRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[pairKey]headtohead.Record
}

func NewHeadToHeadRepository() *HeadToHeadRepository {
	return &HeadToHeadRepository{nextID: 1, rows: make(map[pairKey]headtohead.Record)}
}

func (r *HeadToHeadRepository) Upsert(_ context.Context, rec *headtohead.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := pairKey{sport: rec.Sport, key: rec.PairKey}
	row := *rec
	row.Meetings = append([]headtohead.Meeting(nil), rec.Meetings...)
	row.UpdatedAt = time.Now().UTC()
	if existing, ok := r.rows[key]; ok {
		row.ID = existing.ID
	} else {
		row.ID = r.nextID
		r.nextID++
	}
	r.rows[key] = row
	return nil
}

func (r *HeadToHeadRepository) GetByPairKey(_ context.Context, sp sport.Sport, key string) (*headtohead.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	row, ok := r.rows[pairKey{sport: sp, key: key}]
	if !ok {
		return nil, nil
	}
	out := row
	out.Meetings = append([]headtohead.Meeting(nil), row.Meetings...)
	return &out, nil
}
