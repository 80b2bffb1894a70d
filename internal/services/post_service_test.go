package services

import (
	"context"
	"testing"

	"github.com/anonto42/pressroom/backend/internal/models"
	"github.com/anonto42/pressroom/backend/internal/repositories"
	"github.com/anonto42/pressroom/backend/internal/repositories/memory"
)

func newPosts(store *memory.Store) *PostService {
	return NewPostService(PostDeps{Posts: store, Logs: store, Clock: fixedClock{now: testNow}})
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello World":            "hello-world",
		"  Go 1.25: What's New ": "go-1-25-what-s-new",
		"---":                    "",
		"Ünïcode Títle":          "ünïcode-títle",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCreatePostRequiresPublisherOrAdmin(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	reader := seedUser(t, store, "reader", false, false)
	publisher := seedUser(t, store, "publisher", false, true)
	admin := seedUser(t, store, "admin", true, false)
	svc := newPosts(store)

	req := models.CreatePostRequest{Title: "First Post", Content: "body"}
	_, err := svc.CreatePost(ctx, reader.Actor(), req)
	expectKind(t, err, KindForbidden)

	post, err := svc.CreatePost(ctx, publisher.Actor(), req)
	if err != nil {
		t.Fatalf("publisher create: %v", err)
	}
	if post.Slug != "first-post" || post.Category != models.DefaultPostCategory || post.UserID != publisher.ID {
		t.Fatalf("unexpected post: %+v", post)
	}
	if !post.CreatedAt.Equal(testNow) {
		t.Fatalf("createdAt = %v, want %v", post.CreatedAt, testNow)
	}

	_, err = svc.CreatePost(ctx, admin.Actor(), req)
	expectKind(t, err, KindConflict)
	_, err = svc.CreatePost(ctx, admin.Actor(), models.CreatePostRequest{Title: "  ", Content: "body"})
	expectKind(t, err, KindValidation)
	_, err = svc.CreatePost(ctx, admin.Actor(), models.CreatePostRequest{Title: "!!!", Content: "body"})
	expectKind(t, err, KindValidation)
}

func TestListPostsByUser(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	a := seedUser(t, store, "alice", false, true)
	b := seedUser(t, store, "bob", false, true)
	svc := newPosts(store)

	for _, title := range []string{"one", "two", "three"} {
		if _, err := svc.CreatePost(ctx, a.Actor(), models.CreatePostRequest{Title: "alice " + title, Content: "text"}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := svc.CreatePost(ctx, b.Actor(), models.CreatePostRequest{Title: "bob one", Content: "golang"}); err != nil {
		t.Fatal(err)
	}

	got, err := svc.ListPosts(ctx, repositories.PostFilter{UserID: a.ID, Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if got.TotalPosts != 3 || len(got.Posts) != 2 || got.LastMonthPosts != 4 {
		t.Fatalf("unexpected page: total=%d len=%d lastMonth=%d", got.TotalPosts, len(got.Posts), got.LastMonthPosts)
	}
	for _, p := range got.Posts {
		if p.UserID != a.ID {
			t.Fatalf("post %s belongs to %s", p.Slug, p.UserID.Hex())
		}
	}

	got, err = svc.ListPosts(ctx, repositories.PostFilter{Search: "GOLANG"})
	if err != nil {
		t.Fatal(err)
	}
	if got.TotalPosts != 1 || got.Posts[0].UserID != b.ID {
		t.Fatalf("search returned %+v", got.Posts)
	}
}

func TestUpdatePostOwnership(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	author := seedUser(t, store, "author", false, true)
	other := seedUser(t, store, "other", false, true)
	admin := seedUser(t, store, "admin", true, false)
	svc := newPosts(store)

	post, err := svc.CreatePost(ctx, author.Actor(), models.CreatePostRequest{Title: "Draft", Content: "text"})
	if err != nil {
		t.Fatal(err)
	}

	title := "Final Title"
	_, err = svc.UpdatePost(ctx, other.Actor(), post.ID, models.UpdatePostRequest{Title: &title})
	expectKind(t, err, KindForbidden)

	updated, err := svc.UpdatePost(ctx, author.Actor(), post.ID, models.UpdatePostRequest{Title: &title})
	if err != nil {
		t.Fatalf("author update: %v", err)
	}
	if updated.Title != title || updated.Slug != "final-title" || updated.Content != "text" {
		t.Fatalf("unexpected update: %+v", updated)
	}

	blank := " "
	_, err = svc.UpdatePost(ctx, author.Actor(), post.ID, models.UpdatePostRequest{Content: &blank})
	expectKind(t, err, KindValidation)

	category := "news"
	if _, err := svc.UpdatePost(ctx, admin.Actor(), post.ID, models.UpdatePostRequest{Category: &category}); err != nil {
		t.Fatalf("admin update: %v", err)
	}
	logs, total, _ := store.ListLogs(ctx, 1, 10)
	if total != 1 || logs[0].Action != models.ActionPostEdited || logs[0].TargetID != author.ID.Hex() {
		t.Fatalf("expected one post_edited log, got %+v", logs)
	}
}

func TestDeletePost(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	author := seedUser(t, store, "author", false, true)
	other := seedUser(t, store, "other", false, false)
	admin := seedUser(t, store, "admin", true, false)
	svc := newPosts(store)

	own, _ := svc.CreatePost(ctx, author.Actor(), models.CreatePostRequest{Title: "mine", Content: "x"})
	moderated, _ := svc.CreatePost(ctx, author.Actor(), models.CreatePostRequest{Title: "spam", Content: "x"})

	expectKind(t, svc.DeletePost(ctx, other.Actor(), own.ID), KindForbidden)
	if err := svc.DeletePost(ctx, author.Actor(), own.ID); err != nil {
		t.Fatalf("author delete: %v", err)
	}
	expectKind(t, svc.DeletePost(ctx, author.Actor(), own.ID), KindNotFound)

	if err := svc.DeletePost(ctx, admin.Actor(), moderated.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	logs, total, _ := store.ListLogs(ctx, 1, 10)
	if total != 1 || logs[0].Action != models.ActionPostDeleted {
		t.Fatalf("expected one post_deleted log, got %+v", logs)
	}
}
