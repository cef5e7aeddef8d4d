package memory

import (
	"context"

	"github.com/riskibarqy/fannax/internal/domain/notification"
)

type NotificationRepository struct {
	s *Store
}

func (r *NotificationRepository) Create(_ context.Context, n notification.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if n.CreatedAt.IsZero() {
		n.CreatedAt = r.s.now().UTC()
	}
	r.s.notifications[n.ID] = n
	return nil
}

func (r *NotificationRepository) GetByID(_ context.Context, id string) (notification.Notification, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	item, ok := r.s.notifications[id]
	return item, ok, nil
}

func (r *NotificationRepository) ListByRecipient(_ context.Context, query notification.ListQuery) ([]notification.Notification, error) {
	r.s.mu.RLock()
	items := make([]notification.Notification, 0)
	for _, item := range r.s.notifications {
		if item.RecipientID == query.RecipientID {
			items = append(items, item)
		}
	}
	r.s.mu.RUnlock()

	return pageFrom(items, func(a, b notification.Notification) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	}, func(n notification.Notification) string { return n.ID }, query.Cursor, query.Limit), nil
}

func (r *NotificationRepository) CountUnread(_ context.Context, recipientID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, item := range r.s.notifications {
		if item.RecipientID == recipientID && !item.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *NotificationRepository) MarkRead(_ context.Context, recipientID, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.notifications[id]
	if !ok || item.RecipientID != recipientID {
		return false, nil
	}
	item.IsRead = true
	r.s.notifications[id] = item
	return true, nil
}

func (r *NotificationRepository) MarkAllRead(_ context.Context, recipientID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for id, item := range r.s.notifications {
		if item.RecipientID == recipientID && !item.IsRead {
			item.IsRead = true
			r.s.notifications[id] = item
			n++
		}
	}
	return n, nil
}
