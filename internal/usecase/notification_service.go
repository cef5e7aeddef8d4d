package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/fannax/internal/domain/notification"
	"github.com/riskibarqy/fannax/internal/platform/id"
	"github.com/riskibarqy/fannax/internal/platform/logging"
)

// PushSender forwards a stored notification to a device push gateway.
type PushSender interface {
	Send(ctx context.Context, n notification.Notification) error
}

type NotificationPage struct {
	Items       []notification.Notification
	NextCursor  string
	UnreadCount int
}

type NotificationService struct {
	repo   notification.Repository
	push   PushSender
	ids    id.Generator
	logger *logging.Logger
	now    func() time.Time
}

func NewNotificationService(repo notification.Repository, push PushSender, ids id.Generator, logger *logging.Logger) *NotificationService {
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &NotificationService{repo: repo, push: push, ids: ids, logger: logger, now: time.Now}
}

// Notify persists n and then pushes it. Push failures are logged only.
func (s *NotificationService) Notify(ctx context.Context, n notification.Notification) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.NotificationService.Notify")
	defer span.End()

	if strings.TrimSpace(n.RecipientID) == "" {
		return fmt.Errorf("%w: recipient is required", ErrInvalidInput)
	}
	if n.ID == "" {
		notificationID, err := s.ids.NewID()
		if err != nil {
			return fmt.Errorf("generate notification id: %w", err)
		}
		n.ID = notificationID
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now().UTC()
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}

	if s.push != nil {
		if err := s.push.Send(ctx, n); err != nil {
			s.logger.WarnContext(ctx, "push notification failed", "notification_id", n.ID, "error", err)
		}
	}
	return nil
}

func (s *NotificationService) List(ctx context.Context, recipientID, cursor string, limit int) (NotificationPage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.NotificationService.List")
	defer span.End()

	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return NotificationPage{}, fmt.Errorf("%w: recipient is required", ErrInvalidInput)
	}
	limit, err := normalizeLimit(limit, defaultPageLimit, maxPageLimit)
	if err != nil {
		return NotificationPage{}, err
	}

	cursor = strings.TrimSpace(cursor)
	if cursor != "" {
		item, found, err := s.repo.GetByID(ctx, cursor)
		if err != nil {
			return NotificationPage{}, fmt.Errorf("get cursor notification: %w", err)
		}
		if !found || item.RecipientID != recipientID {
			return NotificationPage{}, fmt.Errorf("%w: unknown cursor", ErrInvalidInput)
		}
	}

	items, err := s.repo.ListByRecipient(ctx, notification.ListQuery{
		RecipientID: recipientID,
		Cursor:      cursor,
		Limit:       limit + 1,
	})
	if err != nil {
		return NotificationPage{}, fmt.Errorf("list notifications: %w", err)
	}
	unread, err := s.repo.CountUnread(ctx, recipientID)
	if err != nil {
		return NotificationPage{}, fmt.Errorf("count unread notifications: %w", err)
	}

	page, next := splitPage(items, limit, func(n notification.Notification) string { return n.ID })
	return NotificationPage{Items: page, NextCursor: next, UnreadCount: unread}, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, recipientID, notificationID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.NotificationService.MarkRead")
	defer span.End()

	if strings.TrimSpace(recipientID) == "" || strings.TrimSpace(notificationID) == "" {
		return fmt.Errorf("%w: recipient and notification id are required", ErrInvalidInput)
	}
	ok, err := s.repo.MarkRead(ctx, recipientID, notificationID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: notification=%s", ErrNotFound, notificationID)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.NotificationService.MarkAllRead")
	defer span.End()

	if strings.TrimSpace(recipientID) == "" {
		return 0, fmt.Errorf("%w: recipient is required", ErrInvalidInput)
	}
	n, err := s.repo.MarkAllRead(ctx, recipientID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return n, nil
}
