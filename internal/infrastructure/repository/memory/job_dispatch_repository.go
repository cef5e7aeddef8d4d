package memory

import (
	"context"
	"sort"

	"github.com/riskibarqy/fannax/internal/domain/jobscheduler"
)

type JobDispatchRepository struct {
	s *Store
}

func (r *JobDispatchRepository) UpsertEvent(_ context.Context, event jobscheduler.DispatchEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if existing, ok := r.s.dispatches[event.DispatchID]; ok &&
		existing.Status != jobscheduler.StatusSent && event.Status == jobscheduler.StatusSent {
		return nil
	}
	r.s.dispatches[event.DispatchID] = event
	return nil
}

func (r *JobDispatchRepository) ListRecent(_ context.Context, jobName string, limit int) ([]jobscheduler.DispatchEvent, error) {
	r.s.mu.RLock()
	items := make([]jobscheduler.DispatchEvent, 0)
	for _, item := range r.s.dispatches {
		if jobName == "" || item.JobName == jobName {
			items = append(items, item)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool { return items[i].OccurredAt.After(items[j].OccurredAt) })
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}
