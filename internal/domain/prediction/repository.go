package prediction

import "context"

type ListQuery struct {
	MatchID string
	UserID  string
	// Cursor is the id of the first item of the page (inclusive).
	Cursor string
	Limit  int
}

type Repository interface {
	// Create fails with ErrDuplicate when (user, match) already exists.
	Create(ctx context.Context, p Prediction) error
	GetByID(ctx context.Context, id string) (Prediction, bool, error)
	// List returns newest first; callers ask for limit+1 to detect more.
	List(ctx context.Context, query ListQuery) ([]Prediction, error)
	ListPendingByMatch(ctx context.Context, matchID string) ([]Prediction, error)
}

// Settler applies one settlement atomically: compare-and-set from PENDING
// and the ledger credit commit together or not at all. applied is false when
// the prediction was no longer PENDING.
type Settler interface {
	Settle(ctx context.Context, s Settlement) (applied bool, err error)
}
