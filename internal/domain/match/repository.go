package match

import (
	"context"
	"time"
)

type ListQuery struct {
	Status *Status
	Cursor string
	Limit  int
}

// Repository exposes match persistence. Updates to a FINISHED row are
// rejected by storage so a settled score can never change.
type Repository interface {
	GetByID(ctx context.Context, id string) (Match, bool, error)
	GetByExternalID(ctx context.Context, externalID int64) (Match, bool, error)
	// Insert returns inserted=false when the external id already exists.
	Insert(ctx context.Context, m Match) (inserted bool, err error)
	// Update returns applied=false when the stored row is already FINISHED
	// or is further along than m (see ReplaceableStatuses).
	Update(ctx context.Context, m Match) (applied bool, err error)
	List(ctx context.Context, query ListQuery) ([]Match, error)
	ListUpcoming(ctx context.Context, from, to time.Time, limit int) ([]Match, error)
	// ListSettleable returns FINISHED matches that still have PENDING
	// predictions, oldest kickoff first.
	ListSettleable(ctx context.Context, limit int) ([]Match, error)
}
