package schedulerlog

import "context"

type Repository interface {
	Insert(ctx context.Context, e *Entry) error
	ListRecent(ctx context.Context, job string, limit int) ([]Entry, error)
}
