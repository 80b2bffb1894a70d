package services

import (
	"context"
	"strings"

	"github.com/anonto42/pressroom/backend/internal/models"
	"github.com/anonto42/pressroom/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// StoryService manages stories. Non-admin submissions wait in the pending
// queue and only approved stories are visible to other users.
type StoryService struct {
	stories  repositories.StoryRepository
	notifier *Notifier
	clock    Clock
	audit    auditor
	log      *zap.Logger
}

type StoryDeps struct {
	Stories  repositories.StoryRepository
	Logs     repositories.ModerationLogRepository // optional
	Notifier *Notifier
	Clock    Clock
	Log      *zap.Logger
}

func NewStoryService(d StoryDeps) *StoryService {
	if d.Clock == nil {
		d.Clock = SystemClock{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &StoryService{
		stories:  d.Stories,
		notifier: d.Notifier,
		clock:    d.Clock,
		audit:    auditor{repo: d.Logs, log: d.Log},
		log:      d.Log,
	}
}

type StoryPage struct {
	Stories      []models.Story `json:"stories"`
	TotalStories int64          `json:"totalStories"`
}

func (s *StoryService) list(ctx context.Context, f repositories.StoryFilter) (*StoryPage, error) {
	stories, total, err := s.stories.ListStories(ctx, f)
	if err != nil {
		return nil, err
	}
	return &StoryPage{Stories: stories, TotalStories: total}, nil
}

// CreateStory submits a story. Publishers and admins only; an admin's own story
// skips review.
func (s *StoryService) CreateStory(ctx context.Context, actor models.Actor, req models.CreateStoryRequest) (*models.Story, error) {
	if !canAuthor(actor) {
		return nil, ForbiddenError("You are not allowed to create a story")
	}
	title := strings.TrimSpace(req.Title)
	if title == "" || strings.TrimSpace(req.Content) == "" {
		return nil, ValidationError("Please provide all required fields")
	}
	slug, err := slugFor(title)
	if err != nil {
		return nil, err
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = models.DefaultPostCategory
	}
	status := models.StoryPending
	if actor.IsAdmin {
		status = models.StoryApproved
	}

	story := &models.Story{
		UserID:    actor.ID,
		Title:     title,
		Content:   req.Content,
		Image:     req.Image,
		Category:  category,
		Country:   strings.TrimSpace(req.Country),
		Slug:      slug,
		Status:    status,
		CreatedAt: s.clock.Now(),
	}
	if err := s.stories.CreateStory(ctx, story); err != nil {
		return nil, duplicateTitle(err, "story")
	}
	return story, nil
}

// ListUserStories lists the stories of userID. The author and admins may filter
// by any status; everyone else only sees approved stories.
func (s *StoryService) ListUserStories(ctx context.Context, actor models.Actor, userID primitive.ObjectID, status models.StoryStatus, startIndex, limit int64) (*StoryPage, error) {
	if status != "" && !status.Valid() {
		return nil, ValidationError("Invalid story status %q", status)
	}
	if !actor.Is(userID) && !actor.IsAdmin {
		if status != "" && status != models.StoryApproved {
			return nil, ForbiddenError("You are not allowed to view these stories")
		}
		status = models.StoryApproved
	}
	return s.list(ctx, repositories.StoryFilter{UserID: userID, Status: status, StartIndex: startIndex, Limit: limit})
}

// ListStories pages through approved stories, optionally in one category.
func (s *StoryService) ListStories(ctx context.Context, category string, startIndex, limit int64, sortAsc bool) (*StoryPage, error) {
	return s.list(ctx, repositories.StoryFilter{
		Status:     models.StoryApproved,
		Category:   category,
		StartIndex: startIndex,
		Limit:      limit,
		SortAsc:    sortAsc,
	})
}

// ReviewQueue lists stories in one status for admins, oldest first. The status defaults to pending.
func (s *StoryService) ReviewQueue(ctx context.Context, actor models.Actor, status models.StoryStatus, startIndex, limit int64) (*StoryPage, error) {
	if err := requireAdmin(actor, "You are not authorized to review stories"); err != nil {
		return nil, err
	}
	if status == "" {
		status = models.StoryPending
	}
	if !status.Valid() {
		return nil, ValidationError("Invalid story status %q", status)
	}
	return s.list(ctx, repositories.StoryFilter{Status: status, StartIndex: startIndex, Limit: limit, SortAsc: true})
}

// ReadStory returns an approved story by slug and counts the view.
func (s *StoryService) ReadStory(ctx context.Context, slug string) (*models.Story, error) {
	story, err := s.stories.ViewApprovedStory(ctx, slug)
	if err != nil {
		return nil, orNotFound(err, "Story not found")
	}
	return story, nil
}

func (s *StoryService) authorize(ctx context.Context, actor models.Actor, storyID primitive.ObjectID, denied string) (*models.Story, error) {
	story, err := s.stories.GetStoryByID(ctx, storyID)
	if err != nil {
		return nil, orNotFound(err, "Story not found")
	}
	if !actor.Is(story.UserID) && !actor.IsAdmin {
		return nil, ForbiddenError("%s", denied)
	}
	return story, nil
}

// UpdateStory applies a partial edit. Authors and admins only. An edit by a
// non-admin sends the story back to the pending queue.
func (s *StoryService) UpdateStory(ctx context.Context, actor models.Actor, storyID primitive.ObjectID, req models.UpdateStoryRequest) (*models.Story, error) {
	story, err := s.authorize(ctx, actor, storyID, "You are not allowed to update this story")
	if err != nil {
		return nil, err
	}
	update := repositories.StoryUpdate{
		Title:    trimmed(req.Title),
		Content:  req.Content,
		Image:    req.Image,
		Category: trimmed(req.Category),
		Country:  trimmed(req.Country),
	}
	if update.Title != nil {
		slug, err := slugFor(*update.Title)
		if err != nil {
			return nil, err
		}
		update.Slug = &slug
	}
	if update.Content != nil && strings.TrimSpace(*update.Content) == "" {
		return nil, ValidationError("Story content cannot be empty")
	}
	if update.Category != nil && *update.Category == "" {
		*update.Category = models.DefaultPostCategory
	}
	if !actor.IsAdmin {
		pending := models.StoryPending
		update.Status = &pending
	}

	updated, err := s.stories.UpdateStory(ctx, storyID, update)
	if err != nil {
		return nil, duplicateTitle(orNotFound(err, "Story not found"), "story")
	}
	if !actor.Is(story.UserID) {
		s.audit.record(ctx, actor, story.UserID, models.ActionStoryEdited, storyID.Hex())
	}
	return updated, nil
}

// ReviewStory approves or rejects a story and notifies its author. Admins only.
func (s *StoryService) ReviewStory(ctx context.Context, actor models.Actor, storyID primitive.ObjectID, status models.StoryStatus, reason string) (*models.Story, error) {
	if err := requireAdmin(actor, "You are not authorized to review stories"); err != nil {
		return nil, err
	}
	if status != models.StoryApproved && status != models.StoryRejected {
		return nil, ValidationError("Status must be approved or rejected")
	}
	reason = strings.TrimSpace(reason)

	story, err := s.stories.SetStoryStatus(ctx, storyID, status, reason)
	if err != nil {
		return nil, orNotFound(err, "Story not found")
	}

	note := &models.Notification{
		Recipient:   story.UserID,
		TriggeredBy: actor.ID,
	}
	if status == models.StoryApproved {
		s.audit.record(ctx, actor, story.UserID, models.ActionStoryApproved, storyID.Hex())
		note.Title = "Story Approved"
		note.Message = "Your story \"" + story.Title + "\" has been approved"
		note.Type = models.NotificationStoryApproved
	} else {
		s.audit.record(ctx, actor, story.UserID, models.ActionStoryRejected, storyID.Hex())
		note.Title = "Story Rejected"
		note.Message = "Your story \"" + story.Title + "\" has been rejected"
		if reason != "" {
			note.Message += ": " + reason
		}
		note.Type = models.NotificationStoryRejected
	}
	if !actor.Is(story.UserID) {
		s.notifier.Notify(ctx, note)
	}
	return story, nil
}

// DeleteStory removes a story. Authors and admins only.
func (s *StoryService) DeleteStory(ctx context.Context, actor models.Actor, storyID primitive.ObjectID) error {
	story, err := s.authorize(ctx, actor, storyID, "You are not allowed to delete this story")
	if err != nil {
		return err
	}
	if err := s.stories.DeleteStory(ctx, storyID); err != nil {
		return orNotFound(err, "Story not found")
	}
	if !actor.Is(story.UserID) {
		s.audit.record(ctx, actor, story.UserID, models.ActionStoryDeleted, storyID.Hex())
	}
	return nil
}
