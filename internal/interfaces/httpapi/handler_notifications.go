package httpapi

import (
	"net/http"
	"strings"
)

func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListNotifications")
	defer span.End()

	if h.notifications == nil {
		writeError(ctx, w, serviceUnavailable("notification service"))
		return
	}
	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	page, err := h.notifications.List(ctx, principal.UserID, queryString(r, "cursor"), limit)
	if err != nil {
		h.logFailure(ctx, "list notifications failed", err, "user_id", principal.UserID)
		writeError(ctx, w, err)
		return
	}

	items := make([]notificationDTO, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, notificationToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, notificationPageDTO{
		pageDTO:     newPage(items, page.NextCursor),
		UnreadCount: page.UnreadCount,
	})
}

func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.MarkNotificationRead")
	defer span.End()

	if h.notifications == nil {
		writeError(ctx, w, serviceUnavailable("notification service"))
		return
	}
	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	notificationID := strings.TrimSpace(r.PathValue("notificationID"))

	if err := h.notifications.MarkRead(ctx, principal.UserID, notificationID); err != nil {
		h.logFailure(ctx, "mark notification read failed", err, "user_id", principal.UserID, "notification_id", notificationID)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"id": notificationID, "is_read": true})
}

func (h *Handler) MarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.MarkAllNotificationsRead")
	defer span.End()

	if h.notifications == nil {
		writeError(ctx, w, serviceUnavailable("notification service"))
		return
	}
	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	updated, err := h.notifications.MarkAllRead(ctx, principal.UserID)
	if err != nil {
		h.logFailure(ctx, "mark all notifications read failed", err, "user_id", principal.UserID)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]int{"updated": updated})
}
