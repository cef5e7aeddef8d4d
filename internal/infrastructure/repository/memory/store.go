// Package memory keeps every table in process memory behind one lock. It
// backs STORAGE_DRIVER=memory and service-level tests.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/fannax/internal/domain/jobscheduler"
	"github.com/riskibarqy/fannax/internal/domain/match"
	"github.com/riskibarqy/fannax/internal/domain/notification"
	"github.com/riskibarqy/fannax/internal/domain/prediction"
	"github.com/riskibarqy/fannax/internal/domain/team"
	"github.com/riskibarqy/fannax/internal/domain/user"
)

type Store struct {
	mu            sync.RWMutex
	teams         map[string]team.Team
	matches       map[string]match.Match
	predictions   map[string]prediction.Prediction
	users         map[string]user.User
	notifications map[string]notification.Notification
	dispatches    map[string]jobscheduler.DispatchEvent
	now           func() time.Time
}

func NewStore() *Store {
	return &Store{
		teams:         make(map[string]team.Team),
		matches:       make(map[string]match.Match),
		predictions:   make(map[string]prediction.Prediction),
		users:         make(map[string]user.User),
		notifications: make(map[string]notification.Notification),
		dispatches:    make(map[string]jobscheduler.DispatchEvent),
		now:           time.Now,
	}
}

// SeedUsers inserts or replaces accounts; used by tests and local runs.
func (s *Store) SeedUsers(items ...user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range items {
		s.users[item.ID] = item
	}
}

func (s *Store) Teams() *TeamRepository { return &TeamRepository{s} }
func (s *Store) Matches() *MatchRepository { return &MatchRepository{s} }
func (s *Store) Predictions() *PredictionRepository { return &PredictionRepository{s} }
func (s *Store) Users() *UserRepository { return &UserRepository{s} }
func (s *Store) Notifications() *NotificationRepository { return &NotificationRepository{s} }
func (s *Store) JobDispatches() *JobDispatchRepository { return &JobDispatchRepository{s} }

// pageFrom sorts items with less and returns up to limit items starting at
// the cursor item (inclusive). An unknown cursor yields no rows.
func pageFrom[T any](items []T, less func(a, b T) bool, idOf func(T) string, cursor string, limit int) []T {
	sort.Slice(items, func(i, j int) bool { return less(items[i], items[j]) })

	start := 0
	if cursor != "" {
		start = -1
		for i, item := range items {
			if idOf(item) == cursor {
				start = i
				break
			}
		}
		if start < 0 {
			return []T{}
		}
	}

	items = items[start:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}
