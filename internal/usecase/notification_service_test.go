package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/fannax/internal/domain/notification"
	"github.com/riskibarqy/fannax/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fannax/internal/platform/id"
	notificationmock "github.com/riskibarqy/fannax/internal/mocks/domain/notification"
	"github.com/stretchr/testify/mock"
)

type recordingPush struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (p *recordingPush) Send(_ context.Context, n notification.Notification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, n.ID)
	return p.err
}

func TestNotificationService_Notify_PersistsThenPushes(t *testing.T) {
	t.Parallel()

	store := memory.NewStore()
	push := &recordingPush{err: errors.New("gateway down")}
	service := NewNotificationService(store.Notifications(), push, &id.SequenceGenerator{Prefix: "ntf"}, nil)
	service.now = fixedNow

	err := service.Notify(context.Background(), notification.Notification{
		RecipientID: "u1", Kind: notification.KindPredictionResult, Message: "hi", PredictionID: "p1",
	})
	if err != nil {
		t.Fatalf("notify must ignore push failure: %v", err)
	}

	stored, found, err := store.Notifications().GetByID(context.Background(), "ntf-1")
	if err != nil || !found {
		t.Fatalf("expected stored notification: found=%v err=%v", found, err)
	}
	if !stored.CreatedAt.Equal(testNow) || stored.IsRead {
		t.Fatalf("unexpected stored notification: %+v", stored)
	}
	if len(push.sent) != 1 || push.sent[0] != "ntf-1" {
		t.Fatalf("expected one push attempt, got %v", push.sent)
	}
}

func TestNotificationService_Notify_CreateFailureSkipsPush(t *testing.T) {
	t.Parallel()

	repo := notificationmock.NewRepository(t)
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()
	push := &recordingPush{}
	service := NewNotificationService(repo, push, nil, nil)

	if err := service.Notify(context.Background(), notification.Notification{RecipientID: "u1"}); err == nil {
		t.Fatalf("expected error")
	}
	if len(push.sent) != 0 {
		t.Fatalf("push must not run after failed create")
	}
}

func TestNotificationService_ListAndMarkRead(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewStore()
	service := NewNotificationService(store.Notifications(), nil, nil, nil)
	for i := 1; i <= 3; i++ {
		err := store.Notifications().Create(ctx, notification.Notification{
			ID: fmt.Sprintf("n%d", i), RecipientID: "u1", Kind: notification.KindPredictionResult,
			Message: "m", CreatedAt: testNow.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	if err := store.Notifications().Create(ctx, notification.Notification{ID: "other", RecipientID: "u2", Message: "m", CreatedAt: testNow}); err != nil {
		t.Fatalf("seed other: %v", err)
	}

	page, err := service.List(ctx, "u1", "", 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 2 || page.Items[0].ID != "n3" || page.NextCursor != "n1" || page.UnreadCount != 3 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if _, err := service.List(ctx, "u1", "other", 2); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected foreign cursor rejected, got %v", err)
	}

	if err := service.MarkRead(ctx, "u1", "n3"); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if err := service.MarkRead(ctx, "u1", "other"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another user's notification, got %v", err)
	}

	marked, err := service.MarkAllRead(ctx, "u1")
	if err != nil || marked != 2 {
		t.Fatalf("mark all read: marked=%d err=%v", marked, err)
	}
	page, err = service.List(ctx, "u1", "", 10)
	if err != nil || page.UnreadCount != 0 {
		t.Fatalf("expected no unread left: %+v err=%v", page, err)
	}
}
