package services

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/pressroom/backend/internal/models"
	"github.com/anonto42/pressroom/backend/internal/repositories/memory"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newComments(store *memory.Store, now time.Time) *CommentService {
	return NewCommentService(CommentDeps{
		Comments: store,
		Logs:     store,
		Clock:    fixedClock{now: now},
	})
}

func TestCreateCommentRules(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	author := seedUser(t, store, "author", false, false)
	other := seedUser(t, store, "other", false, false)
	svc := newComments(store, testNow)

	_, err := svc.CreateComment(ctx, other.Actor(), author.ID, "post-1", "hi")
	expectKind(t, err, KindForbidden)
	_, err = svc.CreateComment(ctx, author.Actor(), author.ID, "post-1", " \n\t")
	expectKind(t, err, KindValidation)
	_, err = svc.CreateComment(ctx, author.Actor(), author.ID, "", "hi")
	expectKind(t, err, KindValidation)

	c, err := svc.CreateComment(ctx, author.Actor(), author.ID, "post-1", "hi")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.NumberOfLikes != 0 || len(c.Likes) != 0 || !c.CreatedAt.Equal(testNow) {
		t.Fatalf("unexpected new comment: %+v", c)
	}
}

func TestCreateCommentDailyLimit(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	author := seedUser(t, store, "author", false, false)
	svc := newComments(store, testNow)

	for i := 0; i < MaxCommentsPerPostPerDay; i++ {
		if _, err := svc.CreateComment(ctx, author.Actor(), author.ID, "P", "comment"); err != nil {
			t.Fatalf("comment %d: %v", i+1, err)
		}
	}
	_, err := svc.CreateComment(ctx, author.Actor(), author.ID, "P", "one too many")
	expectKind(t, err, KindRateLimit)

	if _, err := svc.CreateComment(ctx, author.Actor(), author.ID, "Q", "elsewhere"); err != nil {
		t.Fatalf("other post should not count toward P: %v", err)
	}

	tomorrow := newComments(store, testNow.AddDate(0, 0, 1))
	if _, err := tomorrow.CreateComment(ctx, author.Actor(), author.ID, "P", "new day"); err != nil {
		t.Fatalf("limit should reset the next day: %v", err)
	}
}

func TestCreateCommentLimitIgnoresYesterday(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	author := seedUser(t, store, "author", false, false)
	start, _ := DayWindow(testNow)

	for i := 0; i < MaxCommentsPerPostPerDay; i++ {
		err := store.CreateComment(ctx, &models.Comment{
			Content:   "old",
			PostID:    "P",
			UserID:    author.ID,
			CreatedAt: start.Add(-time.Millisecond),
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	svc := newComments(store, testNow)
	if _, err := svc.CreateComment(ctx, author.Actor(), author.ID, "P", "fresh"); err != nil {
		t.Fatalf("comments from yesterday must not count: %v", err)
	}
}

func TestToggleLikeKeepsCountInSync(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	author := seedUser(t, store, "author", false, false)
	fan := seedUser(t, store, "fan", false, false)
	svc := newComments(store, testNow)

	c, err := svc.CreateComment(ctx, author.Actor(), author.ID, "P", "likeable")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.ToggleLike(ctx, fan.Actor(), primitive.NewObjectID())
	expectKind(t, err, KindNotFound)

	sequence := []models.Actor{fan.Actor(), author.Actor(), fan.Actor(), fan.Actor(), author.Actor()}
	for i, actor := range sequence {
		updated, err := svc.ToggleLike(ctx, actor, c.ID)
		if err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
		if updated.NumberOfLikes != len(updated.Likes) {
			t.Fatalf("toggle %d: count %d != set size %d", i, updated.NumberOfLikes, len(updated.Likes))
		}
	}

	final, _ := store.GetCommentByID(ctx, c.ID)
	if final.NumberOfLikes != 1 || !final.LikedBy(fan.ID) || final.LikedBy(author.ID) {
		t.Fatalf("unexpected final like state: %+v", final)
	}
}

func TestToggleLikeTwiceRestoresState(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	author := seedUser(t, store, "author", false, false)
	svc := newComments(store, testNow)

	c, err := svc.CreateComment(ctx, author.Actor(), author.ID, "P", "hello")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.ToggleLike(ctx, author.Actor(), c.ID); err != nil {
		t.Fatalf("like: %v", err)
	}
	back, err := svc.ToggleLike(ctx, author.Actor(), c.ID)
	if err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if back.NumberOfLikes != 0 || len(back.Likes) != 0 {
		t.Fatalf("expected original state, got %+v", back)
	}
}

func TestEditAndDeleteComment(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	author := seedUser(t, store, "author", false, false)
	stranger := seedUser(t, store, "stranger", false, false)
	admin := seedUser(t, store, "boss", true, false)
	svc := newComments(store, testNow)

	c, err := svc.CreateComment(ctx, author.Actor(), author.ID, "P", "draft")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = svc.EditComment(ctx, stranger.Actor(), c.ID, "hijack")
	expectKind(t, err, KindForbidden)
	_, err = svc.EditComment(ctx, author.Actor(), primitive.NewObjectID(), "x")
	expectKind(t, err, KindNotFound)
	_, err = svc.EditComment(ctx, author.Actor(), c.ID, "   ")
	expectKind(t, err, KindValidation)

	edited, err := svc.EditComment(ctx, author.Actor(), c.ID, "final")
	if err != nil || edited.Content != "final" {
		t.Fatalf("author edit: %v %+v", err, edited)
	}
	edited, err = svc.EditComment(ctx, admin.Actor(), c.ID, "moderated")
	if err != nil || edited.Content != "moderated" {
		t.Fatalf("admin edit: %v %+v", err, edited)
	}

	expectKind(t, svc.DeleteComment(ctx, stranger.Actor(), c.ID), KindForbidden)
	if err := svc.DeleteComment(ctx, admin.Actor(), c.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	expectKind(t, svc.DeleteComment(ctx, author.Actor(), c.ID), KindNotFound)

	logs, total, _ := store.ListLogs(ctx, 1, 10)
	if total != 2 || logs[0].Action != models.ActionCommentDeleted || logs[1].Action != models.ActionCommentEdited {
		t.Fatalf("expected admin edit and delete in the log, got %+v", logs)
	}
}

func TestListComments(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	author := seedUser(t, store, "author", false, false)
	admin := seedUser(t, store, "boss", true, false)
	svc := newComments(store, testNow)

	if err := store.CreateComment(ctx, &models.Comment{Content: "ancient", PostID: "P", UserID: author.ID, CreatedAt: testNow.AddDate(0, -2, 0)}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.CreateComment(ctx, author.Actor(), author.ID, "P", "recent"); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := svc.ListComments(ctx, author.Actor(), 0, 9, false)
	expectKind(t, err, KindForbidden)

	page, err := svc.ListComments(ctx, admin.Actor(), 0, 9, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.TotalComments != 2 || page.LastMonthComments != 1 || page.Comments[0].Content != "recent" {
		t.Fatalf("unexpected page: %+v", page)
	}

	byPost, err := svc.ListPostComments(ctx, "P")
	if err != nil || len(byPost) != 2 || byPost[0].Content != "recent" {
		t.Fatalf("expected newest first, got %v %+v", err, byPost)
	}
}
