package league

import (
	"time"

	"github.com/BrainSnack9/playstat/internal/domain/sport"
)

type League struct {
	ID        int64       `db:"-" json:"id"`
	Sport     sport.Sport `db:"sport" json:"sport"`
	Code      string      `db:"code" json:"code"`
	Name      string      `db:"name" json:"name"`
	Country   string      `db:"country" json:"country"`
	Season    string      `db:"season" json:"season"`
	CreatedAt time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time   `db:"updated_at" json:"updatedAt"`
}
