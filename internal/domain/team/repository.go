package team

import "context"

type ListQuery struct {
	Cursor string
	Limit  int
}

// Repository describes team persistence needs from use cases.
type Repository interface {
	GetByID(ctx context.Context, id string) (Team, bool, error)
	GetByExternalID(ctx context.Context, externalID int64) (Team, bool, error)
	ListByIDs(ctx context.Context, ids []string) ([]Team, error)
	List(ctx context.Context, query ListQuery) ([]Team, error)
	// HandleTaken reports whether handle is used by a team or a user account.
	HandleTaken(ctx context.Context, handle string) (bool, error)
	// Create inserts a new team; ErrHandleTaken when the handle collides.
	// When another writer created the same external id first, the stored
	// row is returned with created=false.
	Create(ctx context.Context, t Team) (stored Team, created bool, err error)
	Update(ctx context.Context, t Team) error
}
