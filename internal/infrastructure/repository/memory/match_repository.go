package memory

import (
	"context"
	"slices"
	"time"

	"github.com/riskibarqy/fannax/internal/domain/match"
	"github.com/riskibarqy/fannax/internal/domain/prediction"
)

type MatchRepository struct {
	s *Store
}

func (r *MatchRepository) GetByID(_ context.Context, id string) (match.Match, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	item, ok := r.s.matches[id]
	return item, ok, nil
}

func (r *MatchRepository) GetByExternalID(_ context.Context, externalID int64) (match.Match, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, item := range r.s.matches {
		if item.ExternalID == externalID {
			return item, true, nil
		}
	}
	return match.Match{}, false, nil
}

func (r *MatchRepository) Insert(_ context.Context, m match.Match) (bool, error) {
	if err := m.Validate(); err != nil {
		return false, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, item := range r.s.matches {
		if item.ExternalID == m.ExternalID {
			return false, nil
		}
	}
	now := r.s.now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now
	r.s.matches[m.ID] = m
	return true, nil
}

func (r *MatchRepository) Update(_ context.Context, m match.Match) (bool, error) {
	if err := m.Validate(); err != nil {
		return false, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.matches[m.ID]
	if !ok || !slices.Contains(match.ReplaceableStatuses(m.Status), existing.Status) {
		return false, nil
	}
	m.CreatedAt = existing.CreatedAt
	m.UpdatedAt = r.s.now().UTC()
	r.s.matches[m.ID] = m
	return true, nil
}

func (r *MatchRepository) List(_ context.Context, query match.ListQuery) ([]match.Match, error) {
	r.s.mu.RLock()
	items := make([]match.Match, 0, len(r.s.matches))
	for _, item := range r.s.matches {
		if query.Status != nil && item.Status != *query.Status {
			continue
		}
		items = append(items, item)
	}
	r.s.mu.RUnlock()

	return pageFrom(items, byKickoff, func(m match.Match) string { return m.ID }, query.Cursor, query.Limit), nil
}

func (r *MatchRepository) ListUpcoming(_ context.Context, from, to time.Time, limit int) ([]match.Match, error) {
	r.s.mu.RLock()
	items := make([]match.Match, 0)
	for _, item := range r.s.matches {
		if item.Status == match.StatusScheduled && item.ScheduledAt.After(from) && !item.ScheduledAt.After(to) {
			items = append(items, item)
		}
	}
	r.s.mu.RUnlock()

	return pageFrom(items, byKickoff, func(m match.Match) string { return m.ID }, "", limit), nil
}

func (r *MatchRepository) ListSettleable(_ context.Context, limit int) ([]match.Match, error) {
	r.s.mu.RLock()
	pendingByMatch := make(map[string]bool)
	for _, p := range r.s.predictions {
		if p.ResultStatus == prediction.ResultPending {
			pendingByMatch[p.MatchID] = true
		}
	}
	items := make([]match.Match, 0)
	for _, item := range r.s.matches {
		if item.Settleable() && pendingByMatch[item.ID] {
			items = append(items, item)
		}
	}
	r.s.mu.RUnlock()

	return pageFrom(items, byKickoff, func(m match.Match) string { return m.ID }, "", limit), nil
}

func byKickoff(a, b match.Match) bool {
	if !a.ScheduledAt.Equal(b.ScheduledAt) {
		return a.ScheduledAt.Before(b.ScheduledAt)
	}
	return a.ID < b.ID
}
