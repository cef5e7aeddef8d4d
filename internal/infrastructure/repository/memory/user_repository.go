package memory

import (
	"context"
	"sort"

	"github.com/riskibarqy/fannax/internal/domain/user"
)

type UserRepository struct {
	s *Store
}

func (r *UserRepository) GetByID(_ context.Context, id string) (user.User, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	item, ok := r.s.users[id]
	if ok {
		item.PredictionCount = r.s.predictionCountLocked(id)
	}
	return item, ok, nil
}

func (r *UserRepository) EnsureExists(_ context.Context, principal user.Principal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[principal.UserID]; ok {
		return nil
	}
	r.s.users[principal.UserID] = user.User{
		ID:        principal.UserID,
		Username:  "user-" + principal.UserID,
		CreatedAt: r.s.now().UTC(),
	}
	return nil
}

func (r *UserRepository) ListTopPredictors(_ context.Context, limit int) ([]user.User, error) {
	r.s.mu.RLock()
	items := make([]user.User, 0)
	for _, item := range r.s.users {
		if item.TotalPoints > 0 {
			item.PredictionCount = r.s.predictionCountLocked(item.ID)
			items = append(items, item)
		}
	}
	r.s.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if items[i].TotalPoints != items[j].TotalPoints {
			return items[i].TotalPoints > items[j].TotalPoints
		}
		return items[i].ID < items[j].ID
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) predictionCountLocked(userID string) int {
	n := 0
	for _, p := range s.predictions {
		if p.UserID == userID {
			n++
		}
	}
	return n
}
