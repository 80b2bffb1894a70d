package services

import (
	"context"
	"errors"
	"strings"

	"github.com/anonto42/pressroom/backend/internal/models"
	"github.com/anonto42/pressroom/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type PostService struct {
	posts repositories.PostRepository
	clock Clock
	audit auditor
	log   *zap.Logger
}

type PostDeps struct {
	Posts repositories.PostRepository
	Logs  repositories.ModerationLogRepository // optional
	Clock Clock
	Log   *zap.Logger
}

func NewPostService(d PostDeps) *PostService {
	if d.Clock == nil {
		d.Clock = SystemClock{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &PostService{
		posts: d.Posts,
		clock: d.Clock,
		audit: auditor{repo: d.Logs, log: d.Log},
		log:   d.Log,
	}
}

type PostPage struct {
	Posts          []models.Post `json:"posts"`
	TotalPosts     int64         `json:"totalPosts"`
	LastMonthPosts int64         `json:"lastMonthPosts"`
}

func canAuthor(actor models.Actor) bool {
	return actor.IsAdmin || actor.IsPublisher
}

func duplicateTitle(err error, what string) error {
	if errors.Is(err, repositories.ErrDuplicate) {
		return ConflictError("A %s with this title already exists", what)
	}
	return err
}

// CreatePost publishes a post authored by actor. Publishers and admins only.
func (s *PostService) CreatePost(ctx context.Context, actor models.Actor, req models.CreatePostRequest) (*models.Post, error) {
	if !canAuthor(actor) {
		return nil, ForbiddenError("You are not allowed to create a post")
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

	post := &models.Post{
		UserID:    actor.ID,
		Title:     title,
		Content:   req.Content,
		Image:     req.Image,
		Category:  category,
		Slug:      slug,
		CreatedAt: s.clock.Now(),
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, duplicateTitle(err, "post")
	}
	s.log.Info("post created", zap.String("post", post.ID.Hex()), zap.String("author", actor.ID.Hex()))
	return post, nil
}

// ListPosts pages through posts matching f, with a count of posts created in the last month.
func (s *PostService) ListPosts(ctx context.Context, f repositories.PostFilter) (*PostPage, error) {
	posts, total, err := s.posts.ListPosts(ctx, f)
	if err != nil {
		return nil, err
	}
	lastMonth, err := s.posts.CountPostsSince(ctx, s.clock.Now().AddDate(0, -1, 0))
	if err != nil {
		return nil, err
	}
	return &PostPage{Posts: posts, TotalPosts: total, LastMonthPosts: lastMonth}, nil
}

func (s *PostService) authorize(ctx context.Context, actor models.Actor, postID primitive.ObjectID, denied string) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, orNotFound(err, "Post not found")
	}
	if !actor.Is(post.UserID) && !actor.IsAdmin {
		return nil, ForbiddenError("%s", denied)
	}
	return post, nil
}

// UpdatePost applies a partial edit. Authors and admins only; a new title renames the slug.
func (s *PostService) UpdatePost(ctx context.Context, actor models.Actor, postID primitive.ObjectID, req models.UpdatePostRequest) (*models.Post, error) {
	post, err := s.authorize(ctx, actor, postID, "You are not allowed to update this post")
	if err != nil {
		return nil, err
	}
	update := repositories.PostUpdate{
		Title:    trimmed(req.Title),
		Content:  req.Content,
		Image:    req.Image,
		Category: trimmed(req.Category),
	}
	if update.Title != nil {
		slug, err := slugFor(*update.Title)
		if err != nil {
			return nil, err
		}
		update.Slug = &slug
	}
	if update.Content != nil && strings.TrimSpace(*update.Content) == "" {
		return nil, ValidationError("Post content cannot be empty")
	}
	if update.Category != nil && *update.Category == "" {
		*update.Category = models.DefaultPostCategory
	}

	updated, err := s.posts.UpdatePost(ctx, postID, update)
	if err != nil {
		return nil, duplicateTitle(orNotFound(err, "Post not found"), "post")
	}
	if !actor.Is(post.UserID) {
		s.audit.record(ctx, actor, post.UserID, models.ActionPostEdited, postID.Hex())
	}
	return updated, nil
}

// DeletePost removes a post. Authors and admins only.
func (s *PostService) DeletePost(ctx context.Context, actor models.Actor, postID primitive.ObjectID) error {
	post, err := s.authorize(ctx, actor, postID, "You are not allowed to delete this post")
	if err != nil {
		return err
	}
	if err := s.posts.DeletePost(ctx, postID); err != nil {
		return orNotFound(err, "Post not found")
	}
	if !actor.Is(post.UserID) {
		s.audit.record(ctx, actor, post.UserID, models.ActionPostDeleted, postID.Hex())
	}
	return nil
}
