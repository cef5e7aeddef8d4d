package notification

import "context"

type ListQuery struct {
	RecipientID string
	Cursor      string
	Limit       int
}

type Repository interface {
	Create(ctx context.Context, n Notification) error
	GetByID(ctx context.Context, id string) (Notification, bool, error)
	ListByRecipient(ctx context.Context, query ListQuery) ([]Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int, error)
	// MarkRead returns false when the notification does not belong to recipientID.
	MarkRead(ctx context.Context, recipientID, id string) (bool, error)
	MarkAllRead(ctx context.Context, recipientID string) (int, error)
}
