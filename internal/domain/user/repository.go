package user

import "context"

type Repository interface {
	GetByID(ctx context.Context, id string) (User, bool, error)
	// EnsureExists creates a bare account row for a principal seen for the
	// first time. Existing rows are left untouched.
	EnsureExists(ctx context.Context, principal Principal) error
	// ListTopPredictors returns users with positive points, highest first.
	ListTopPredictors(ctx context.Context, limit int) ([]User, error)
}
