package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/fannax/internal/domain/notification"
	qb "github.com/riskibarqy/fannax/internal/platform/querybuilder"
)

const notificationColumns = "id, recipient_id, kind, message, prediction_id, is_read, created_at"

type NotificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n notification.Notification) error {
	createdAt := n.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	model := notificationInsertModel{
		ID:           n.ID,
		RecipientID:  n.RecipientID,
		Kind:         string(n.Kind),
		Message:      n.Message,
		PredictionID: optionalString(n.PredictionID),
		IsRead:       n.IsRead,
		CreatedAt:    createdAt,
	}

	query, args, err := qb.InsertModel("notifications", model, "ON CONFLICT (id) DO NOTHING")
	if err != nil {
		return fmt.Errorf("build insert notification query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert notification recipient_id=%s: %w", n.RecipientID, err)
	}
	return nil
}

func (r *NotificationRepository) GetByID(ctx context.Context, id string) (notification.Notification, bool, error) {
	query, args, err := qb.Select(notificationColumns).From("notifications").
		Where(qb.Eq("id", strings.TrimSpace(id))).
		Limit(1).
		ToSQL()
	if err != nil {
		return notification.Notification{}, false, fmt.Errorf("build select notification query: %w", err)
	}

	var row notificationTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return notification.Notification{}, false, nil
		}
		return notification.Notification{}, false, fmt.Errorf("select notification: %w", err)
	}
	return notificationFromRow(row), true, nil
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, listQuery notification.ListQuery) ([]notification.Notification, error) {
	conditions := []qb.Condition{qb.Eq("recipient_id", listQuery.RecipientID)}
	if cursor := strings.TrimSpace(listQuery.Cursor); cursor != "" {
		conditions = append(conditions, qb.Expr("(created_at, id) <= (SELECT created_at, id FROM notifications WHERE id = ?)", cursor))
	}

	query, args, err := qb.Select(notificationColumns).From("notifications").
		Where(conditions...).
		OrderBy("created_at DESC", "id DESC").
		Limit(fetchLimit(listQuery.Limit, 101)).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list notifications query: %w", err)
	}

	var rows []notificationTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	out := make([]notification.Notification, 0, len(rows))
	for _, row := range rows {
		out = append(out, notificationFromRow(row))
	}
	return out, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID string) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From("notifications").
		Where(
			qb.Eq("recipient_id", recipientID),
			qb.Eq("is_read", false),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count unread notifications query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, recipientID, id string) (bool, error) {
	query, args, err := qb.Update("notifications").
		Set("is_read", true).
		Where(
			qb.Eq("id", id),
			qb.Eq("recipient_id", recipientID),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build mark notification read query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("mark notification read id=%s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark notification read rows affected: %w", err)
	}
	return affected == 1, nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	query, args, err := qb.Update("notifications").
		Set("is_read", true).
		Where(
			qb.Eq("recipient_id", recipientID),
			qb.Eq("is_read", false),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build mark all notifications read query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read recipient_id=%s: %w", recipientID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read rows affected: %w", err)
	}
	return int(affected), nil
}

func notificationFromRow(row notificationTableModel) notification.Notification {
	return notification.Notification{
		ID:           row.ID,
		RecipientID:  row.RecipientID,
		Kind:         notification.Kind(row.Kind),
		Message:      row.Message,
		PredictionID: nullStringToString(row.PredictionID),
		IsRead:       row.IsRead,
		CreatedAt:    row.CreatedAt.UTC(),
	}
}
