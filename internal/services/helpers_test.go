package services

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/pressroom/backend/internal/models"
	"github.com/anonto42/pressroom/backend/internal/repositories/memory"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type testTokens struct {
	issued []primitive.ObjectID
}

func (t *testTokens) Issue(user *models.User) (string, error) {
	t.issued = append(t.issued, user.ID)
	return "token-" + user.ID.Hex(), nil
}

var testNow = time.Date(2026, time.March, 10, 15, 30, 0, 0, time.UTC)

func seedUser(t *testing.T, store *memory.Store, username string, admin, publisher bool) *models.User {
	t.Helper()
	u := &models.User{
		Username:    username,
		Email:       username + "@example.com",
		IsAdmin:     admin,
		IsPublisher: publisher,
	}
	if err := store.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("seed %s: %v", username, err)
	}
	return u
}

func expectKind(t *testing.T, err error, want Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if got := KindOf(err); got != want {
		t.Fatalf("expected %s error, got %s (%v)", want, got, err)
	}
}

func newModeration(store *memory.Store, tokens *testTokens) *ModerationService {
	return NewModerationService(ModerationDeps{
		Users:    store,
		Requests: store,
		Logs:     store,
		Tx:       store,
		Notifier: NewNotifier(store, nil, 4),
		Tokens:   tokens,
		Clock:    fixedClock{now: testNow},
	})
}
