package memory

import (
	"context"

	"github.com/riskibarqy/fannax/internal/domain/ledger"
	"github.com/riskibarqy/fannax/internal/domain/prediction"
)

type PredictionRepository struct {
	s *Store
}

func (r *PredictionRepository) Create(_ context.Context, p prediction.Prediction) error {
	if err := p.Validate(); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, item := range r.s.predictions {
		if item.UserID == p.UserID && item.MatchID == p.MatchID {
			return prediction.ErrDuplicate
		}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.s.now().UTC()
	}
	r.s.predictions[p.ID] = p
	return nil
}

func (r *PredictionRepository) GetByID(_ context.Context, id string) (prediction.Prediction, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	item, ok := r.s.predictions[id]
	return item, ok, nil
}

func (r *PredictionRepository) List(_ context.Context, query prediction.ListQuery) ([]prediction.Prediction, error) {
	r.s.mu.RLock()
	items := make([]prediction.Prediction, 0)
	for _, item := range r.s.predictions {
		if query.MatchID != "" && item.MatchID != query.MatchID {
			continue
		}
		if query.UserID != "" && item.UserID != query.UserID {
			continue
		}
		items = append(items, item)
	}
	r.s.mu.RUnlock()

	return pageFrom(items, func(a, b prediction.Prediction) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	}, func(p prediction.Prediction) string { return p.ID }, query.Cursor, query.Limit), nil
}

func (r *PredictionRepository) ListPendingByMatch(_ context.Context, matchID string) ([]prediction.Prediction, error) {
	r.s.mu.RLock()
	items := make([]prediction.Prediction, 0)
	for _, item := range r.s.predictions {
		if item.MatchID == matchID && item.ResultStatus == prediction.ResultPending {
			items = append(items, item)
		}
	}
	r.s.mu.RUnlock()

	return pageFrom(items, func(a, b prediction.Prediction) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	}, func(p prediction.Prediction) string { return p.ID }, "", 0), nil
}

// Settler applies settlements under the store lock so the status flip and
// the ledger credit are observed together.
type Settler struct {
	s *Store
}

func (s *Store) Settler() *Settler { return &Settler{s} }

func (st *Settler) Settle(ctx context.Context, in prediction.Settlement) (bool, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	current, ok := st.s.predictions[in.PredictionID]
	if !ok || current.ResultStatus != prediction.ResultPending {
		return false, nil
	}

	if err := (lockedLedger{st.s}).Increment(ctx, in.UserID, in.Points); err != nil {
		return false, err
	}

	points := in.Points
	settledAt := in.SettledAt
	current.ResultStatus = in.Result
	current.PointsAwarded = &points
	current.SettledAt = &settledAt
	st.s.predictions[in.PredictionID] = current
	return true, nil
}

// lockedLedger must only be used while holding the store write lock.
type lockedLedger struct {
	s *Store
}

var _ ledger.Ledger = lockedLedger{}

func (l lockedLedger) Increment(_ context.Context, userID string, delta int) error {
	account, ok := l.s.users[userID]
	if !ok {
		return ledger.ErrAccountNotFound
	}
	account.TotalPoints += delta
	l.s.users[userID] = account
	return nil
}
