package services

import (
	"context"
	"strings"
	"testing"

	"github.com/anonto42/pressroom/backend/internal/models"
	"github.com/anonto42/pressroom/backend/internal/repositories/memory"
)

func newStories(store *memory.Store) *StoryService {
	return NewStoryService(StoryDeps{
		Stories:  store,
		Logs:     store,
		Notifier: NewNotifier(store, nil, 4),
		Clock:    fixedClock{now: testNow},
	})
}

func TestCreateStoryStatus(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	reader := seedUser(t, store, "reader", false, false)
	publisher := seedUser(t, store, "publisher", false, true)
	admin := seedUser(t, store, "admin", true, false)
	svc := newStories(store)

	_, err := svc.CreateStory(ctx, reader.Actor(), models.CreateStoryRequest{Title: "t", Content: "c"})
	expectKind(t, err, KindForbidden)

	pending, err := svc.CreateStory(ctx, publisher.Actor(), models.CreateStoryRequest{Title: "Harbor Lights", Content: "c", Country: " Norway "})
	if err != nil {
		t.Fatal(err)
	}
	if pending.Status != models.StoryPending || pending.Country != "Norway" || pending.Slug != "harbor-lights" {
		t.Fatalf("unexpected publisher story: %+v", pending)
	}

	approved, err := svc.CreateStory(ctx, admin.Actor(), models.CreateStoryRequest{Title: "Admin Story", Content: "c"})
	if err != nil {
		t.Fatal(err)
	}
	if approved.Status != models.StoryApproved {
		t.Fatalf("admin story status = %s, want approved", approved.Status)
	}
}

func TestListUserStoriesVisibility(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	author := seedUser(t, store, "author", false, true)
	reader := seedUser(t, store, "reader", false, false)
	admin := seedUser(t, store, "admin", true, false)
	svc := newStories(store)

	first, _ := svc.CreateStory(ctx, author.Actor(), models.CreateStoryRequest{Title: "first", Content: "c"})
	if _, err := svc.CreateStory(ctx, author.Actor(), models.CreateStoryRequest{Title: "second", Content: "c"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ReviewStory(ctx, admin.Actor(), first.ID, models.StoryApproved, ""); err != nil {
		t.Fatal(err)
	}

	own, err := svc.ListUserStories(ctx, author.Actor(), author.ID, "", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if own.TotalStories != 2 {
		t.Fatalf("author sees %d stories, want 2", own.TotalStories)
	}

	pending, err := svc.ListUserStories(ctx, admin.Actor(), author.ID, models.StoryPending, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if pending.TotalStories != 1 || pending.Stories[0].Title != "second" {
		t.Fatalf("admin pending view: %+v", pending.Stories)
	}

	public, err := svc.ListUserStories(ctx, reader.Actor(), author.ID, "", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if public.TotalStories != 1 || public.Stories[0].ID != first.ID {
		t.Fatalf("reader should only see the approved story: %+v", public.Stories)
	}

	_, err = svc.ListUserStories(ctx, reader.Actor(), author.ID, models.StoryPending, 0, 0)
	expectKind(t, err, KindForbidden)
	_, err = svc.ListUserStories(ctx, author.Actor(), author.ID, "archived", 0, 0)
	expectKind(t, err, KindValidation)
}

func TestReviewStory(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	author := seedUser(t, store, "author", false, true)
	admin := seedUser(t, store, "admin", true, false)
	svc := newStories(store)

	story, _ := svc.CreateStory(ctx, author.Actor(), models.CreateStoryRequest{Title: "Night Shift", Content: "c"})

	_, err := svc.ReviewStory(ctx, author.Actor(), story.ID, models.StoryApproved, "")
	expectKind(t, err, KindForbidden)
	_, err = svc.ReviewStory(ctx, admin.Actor(), story.ID, models.StoryPending, "")
	expectKind(t, err, KindValidation)

	queue, err := svc.ReviewQueue(ctx, admin.Actor(), "", 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if queue.TotalStories != 1 {
		t.Fatalf("queue holds %d stories, want 1", queue.TotalStories)
	}

	rejected, err := svc.ReviewStory(ctx, admin.Actor(), story.ID, models.StoryRejected, " off topic ")
	if err != nil {
		t.Fatal(err)
	}
	if rejected.Status != models.StoryRejected || rejected.RejectionReason != "off topic" {
		t.Fatalf("unexpected rejected story: %+v", rejected)
	}
	_, err = svc.ReadStory(ctx, story.Slug)
	expectKind(t, err, KindNotFound)

	approved, err := svc.ReviewStory(ctx, admin.Actor(), story.ID, models.StoryApproved, "")
	if err != nil {
		t.Fatal(err)
	}
	if approved.RejectionReason != "" {
		t.Fatalf("approval should clear the rejection reason, got %q", approved.RejectionReason)
	}

	notes := store.Notifications(author.ID)
	if len(notes) != 2 {
		t.Fatalf("author has %d notifications, want 2", len(notes))
	}
	types := map[models.NotificationType]string{}
	for _, n := range notes {
		types[n.Type] = n.Message
	}
	if !strings.Contains(types[models.NotificationStoryRejected], "off topic") {
		t.Fatalf("rejection notice should carry the reason: %q", types[models.NotificationStoryRejected])
	}
	if _, ok := types[models.NotificationStoryApproved]; !ok {
		t.Fatalf("missing approval notification: %+v", notes)
	}

	_, total, _ := store.ListLogs(ctx, 1, 10)
	if total != 2 {
		t.Fatalf("expected 2 audit entries, got %d", total)
	}

	read, err := svc.ReadStory(ctx, story.Slug)
	if err != nil {
		t.Fatal(err)
	}
	if read.Views != 1 {
		t.Fatalf("views = %d, want 1", read.Views)
	}
}

func TestUpdateStoryReturnsToPending(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	author := seedUser(t, store, "author", false, true)
	other := seedUser(t, store, "other", false, true)
	admin := seedUser(t, store, "admin", true, false)
	svc := newStories(store)

	story, _ := svc.CreateStory(ctx, author.Actor(), models.CreateStoryRequest{Title: "Old", Content: "c"})
	if _, err := svc.ReviewStory(ctx, admin.Actor(), story.ID, models.StoryApproved, ""); err != nil {
		t.Fatal(err)
	}

	content := "rewritten"
	_, err := svc.UpdateStory(ctx, other.Actor(), story.ID, models.UpdateStoryRequest{Content: &content})
	expectKind(t, err, KindForbidden)

	updated, err := svc.UpdateStory(ctx, author.Actor(), story.ID, models.UpdateStoryRequest{Content: &content})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != models.StoryPending || updated.Content != content {
		t.Fatalf("author edit should return the story to review: %+v", updated)
	}

	title := "New Title"
	updated, err = svc.UpdateStory(ctx, admin.Actor(), story.ID, models.UpdateStoryRequest{Title: &title})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != models.StoryPending || updated.Slug != "new-title" {
		t.Fatalf("admin edit should keep status and rename slug: %+v", updated)
	}
}

func TestDeleteStory(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	author := seedUser(t, store, "author", false, true)
	other := seedUser(t, store, "other", false, false)
	admin := seedUser(t, store, "admin", true, false)
	svc := newStories(store)

	story, _ := svc.CreateStory(ctx, author.Actor(), models.CreateStoryRequest{Title: "Gone", Content: "c"})
	expectKind(t, svc.DeleteStory(ctx, other.Actor(), story.ID), KindForbidden)
	if err := svc.DeleteStory(ctx, admin.Actor(), story.ID); err != nil {
		t.Fatal(err)
	}
	expectKind(t, svc.DeleteStory(ctx, author.Actor(), story.ID), KindNotFound)

	logs, total, _ := store.ListLogs(ctx, 1, 10)
	if total != 1 || logs[0].Action != models.ActionStoryDeleted {
		t.Fatalf("expected story_deleted log, got %+v", logs)
	}
}
