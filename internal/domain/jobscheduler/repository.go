package jobscheduler

import "context"

type Repository interface {
	// UpsertEvent keeps the furthest status per dispatch id; a late "sent"
	// never overwrites "completed" or "failed".
	UpsertEvent(ctx context.Context, event DispatchEvent) error
	ListRecent(ctx context.Context, jobName string, limit int) ([]DispatchEvent, error)
}
