// Package ledger holds the durable per-user points balance.
//
// A Ledger is only ever obtained inside a settlement transaction; there is
// no general read-modify-write API.
package ledger

import (
	"context"
	"errors"
)

var ErrAccountNotFound = errors.New("ledger account not found")

type Ledger interface {
	Increment(ctx context.Context, userID string, delta int) error
}
