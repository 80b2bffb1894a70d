package services

import (
	"context"
	"testing"

	"github.com/anonto42/pressroom/backend/internal/models"
	"github.com/anonto42/pressroom/backend/internal/repositories/memory"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNotifyCountsFailures(t *testing.T) {
	store := memory.NewStore()
	good := primitive.NewObjectID()
	bad := primitive.NewObjectID()
	store.FailNotificationsFor(bad)
	n := NewNotifier(store, nil, 2)

	notes := []*models.Notification{
		{Recipient: good, Type: models.NotificationFollow},
		{Recipient: bad, Type: models.NotificationFollow},
		{Recipient: good, Type: models.NotificationBanned},
		{Recipient: bad, Type: models.NotificationBanned},
	}
	if failed := n.Notify(context.Background(), notes...); failed != 2 {
		t.Fatalf("expected 2 failures, got %d", failed)
	}
	if got := len(store.Notifications(good)); got != 2 {
		t.Fatalf("expected 2 stored notifications, got %d", got)
	}
}

func TestNotifySurvivesCancelledContext(t *testing.T) {
	store := memory.NewStore()
	recipient := primitive.NewObjectID()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if failed := NewNotifier(store, nil, 0).Notify(ctx, &models.Notification{Recipient: recipient}); failed != 0 {
		t.Fatalf("expected no failures, got %d", failed)
	}
	if got := len(store.Notifications(recipient)); got != 1 {
		t.Fatalf("expected notification to be stored, got %d", got)
	}
}

func TestNilNotifierIsNoop(t *testing.T) {
	var n *Notifier
	if failed := n.Notify(context.Background(), &models.Notification{}); failed != 0 {
		t.Fatalf("expected 0, got %d", failed)
	}
}

func TestNotificationService(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	admin := seedUser(t, store, "boss", true, false)
	user := seedUser(t, store, "reader", false, false)
	svc := NewNotificationService(store, store)

	NewNotifier(store, nil, 1).Notify(ctx,
		&models.Notification{Recipient: user.ID, Title: "a", TriggeredBy: admin.ID},
		&models.Notification{Recipient: user.ID, Title: "b", TriggeredBy: admin.ID},
	)

	page, err := svc.List(ctx, user.Actor(), 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 2 || page.Page != 1 || page.Limit != 20 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if page.Notifications[0].Actor == nil || page.Notifications[0].Actor.Username != "boss" {
		t.Fatalf("expected enriched actor, got %+v", page.Notifications[0].Actor)
	}

	count, _ := svc.UnreadCount(ctx, user.Actor())
	if count != 2 {
		t.Fatalf("expected 2 unread, got %d", count)
	}

	id := page.Notifications[0].ID
	expectKind(t, svc.MarkAsRead(ctx, admin.Actor(), id), KindNotFound)
	if err := svc.MarkAsRead(ctx, user.Actor(), id); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if count, _ = svc.UnreadCount(ctx, user.Actor()); count != 1 {
		t.Fatalf("expected 1 unread, got %d", count)
	}
	if err := svc.MarkAllAsRead(ctx, user.Actor()); err != nil {
		t.Fatalf("mark all: %v", err)
	}
	if count, _ = svc.UnreadCount(ctx, user.Actor()); count != 0 {
		t.Fatalf("expected 0 unread, got %d", count)
	}
}
