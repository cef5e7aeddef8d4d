package memory

import (
	"context"
	"strings"

	"github.com/riskibarqy/fannax/internal/domain/team"
)

type TeamRepository struct {
	s *Store
}

func (r *TeamRepository) GetByID(_ context.Context, id string) (team.Team, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	item, ok := r.s.teams[id]
	return item, ok, nil
}

func (r *TeamRepository) GetByExternalID(_ context.Context, externalID int64) (team.Team, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	item, ok := r.s.teamByExternalIDLocked(externalID)
	return item, ok, nil
}

func (r *TeamRepository) ListByIDs(_ context.Context, ids []string) ([]team.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]team.Team, 0, len(ids))
	for _, id := range ids {
		if item, ok := r.s.teams[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *TeamRepository) List(_ context.Context, query team.ListQuery) ([]team.Team, error) {
	r.s.mu.RLock()
	items := make([]team.Team, 0, len(r.s.teams))
	for _, item := range r.s.teams {
		items = append(items, item)
	}
	r.s.mu.RUnlock()

	return pageFrom(items, func(a, b team.Team) bool {
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	}, func(t team.Team) string { return t.ID }, query.Cursor, query.Limit), nil
}

func (r *TeamRepository) HandleTaken(_ context.Context, handle string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.s.handleTakenLocked(handle), nil
}

func (r *TeamRepository) Create(_ context.Context, t team.Team) (team.Team, bool, error) {
	if err := t.Validate(); err != nil {
		return team.Team{}, false, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if existing, ok := r.s.teamByExternalIDLocked(t.ExternalID); ok {
		return existing, false, nil
	}
	if r.s.handleTakenLocked(t.ReservedHandle) {
		return team.Team{}, false, team.ErrHandleTaken
	}

	now := r.s.now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	r.s.teams[t.ID] = t
	return t, true, nil
}

func (r *TeamRepository) Update(_ context.Context, t team.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.teams[t.ID]
	if !ok {
		return nil
	}
	t.ReservedHandle = existing.ReservedHandle
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = r.s.now().UTC()
	r.s.teams[t.ID] = t
	return nil
}

func (s *Store) teamByExternalIDLocked(externalID int64) (team.Team, bool) {
	for _, item := range s.teams {
		if item.ExternalID == externalID {
			return item, true
		}
	}
	return team.Team{}, false
}

func (s *Store) handleTakenLocked(handle string) bool {
	handle = strings.ToLower(handle)
	for _, item := range s.teams {
		if strings.ToLower(item.ReservedHandle) == handle {
			return true
		}
	}
	for _, item := range s.users {
		if strings.ToLower(item.Username) == handle {
			return true
		}
	}
	return false
}
