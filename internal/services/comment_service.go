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

// likeAttempts bounds the read-then-conditional-update loop of ToggleLike.
const likeAttempts = 3

type CommentService struct {
	comments repositories.CommentRepository
	clock    Clock
	audit    auditor
	log      *zap.Logger
}

type CommentDeps struct {
	Comments repositories.CommentRepository
	Logs     repositories.ModerationLogRepository // optional
	Clock    Clock
	Log      *zap.Logger
}

func NewCommentService(d CommentDeps) *CommentService {
	if d.Clock == nil {
		d.Clock = SystemClock{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &CommentService{
		comments: d.Comments,
		clock:    d.Clock,
		audit:    auditor{repo: d.Logs, log: d.Log},
		log:      d.Log,
	}
}

type CommentPage struct {
	Comments          []models.Comment `json:"comments"`
	TotalComments     int64            `json:"totalComments"`
	LastMonthComments int64            `json:"lastMonthComments"`
}

// CreateComment stores a new comment by userID on postID. The caller may only
// comment as themself, and at most MaxCommentsPerPostPerDay times per post per day.
func (s *CommentService) CreateComment(ctx context.Context, actor models.Actor, userID primitive.ObjectID, postID, content string) (*models.Comment, error) {
	if !actor.Is(userID) {
		return nil, ForbiddenError("You are not allowed to create this comment")
	}
	if strings.TrimSpace(content) == "" {
		return nil, ValidationError("Comment content is required")
	}
	if strings.TrimSpace(postID) == "" {
		return nil, ValidationError("Post ID is required")
	}

	now := s.clock.Now()
	from, to := DayWindow(now)
	count, err := s.comments.CountByUserAndPost(ctx, userID, postID, from, to)
	if err != nil {
		return nil, err
	}
	if err := CheckCommentQuota(count); err != nil {
		commentsRateLimited.Inc()
		return nil, err
	}

	comment := &models.Comment{
		Content:   content,
		PostID:    postID,
		UserID:    userID,
		Likes:     []primitive.ObjectID{},
		CreatedAt: now,
	}
	if err := s.comments.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListPostComments returns the comments on a post, newest first.
func (s *CommentService) ListPostComments(ctx context.Context, postID string) ([]models.Comment, error) {
	return s.comments.GetCommentsByPostID(ctx, postID)
}

// ToggleLike adds actor to the comment's likes, or removes them if already present.
func (s *CommentService) ToggleLike(ctx context.Context, actor models.Actor, commentID primitive.ObjectID) (*models.Comment, error) {
	for range likeAttempts {
		comment, err := s.comments.GetCommentByID(ctx, commentID)
		if err != nil {
			return nil, orNotFound(err, "Comment not found")
		}

		var updated *models.Comment
		if comment.LikedBy(actor.ID) {
			updated, err = s.comments.RemoveLike(ctx, commentID, actor.ID)
		} else {
			updated, err = s.comments.AddLike(ctx, commentID, actor.ID)
		}
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		// like state changed under us or the comment vanished; re-read
	}
	return nil, ConflictError("Comment is being updated, please retry")
}

func (s *CommentService) authorize(ctx context.Context, actor models.Actor, commentID primitive.ObjectID, denied string) (*models.Comment, error) {
	comment, err := s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, orNotFound(err, "Comment not found")
	}
	if !actor.Is(comment.UserID) && !actor.IsAdmin {
		return nil, ForbiddenError("%s", denied)
	}
	return comment, nil
}

// EditComment replaces the content of a comment. Authors and admins only.
func (s *CommentService) EditComment(ctx context.Context, actor models.Actor, commentID primitive.ObjectID, content string) (*models.Comment, error) {
	comment, err := s.authorize(ctx, actor, commentID, "You are not allowed to edit this comment")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(content) == "" {
		return nil, ValidationError("Comment content is required")
	}
	updated, err := s.comments.UpdateContent(ctx, commentID, content)
	if err != nil {
		return nil, orNotFound(err, "Comment not found")
	}
	if !actor.Is(comment.UserID) {
		s.audit.record(ctx, actor, comment.UserID, models.ActionCommentEdited, commentID.Hex())
	}
	return updated, nil
}

// DeleteComment permanently removes a comment. Authors and admins only.
func (s *CommentService) DeleteComment(ctx context.Context, actor models.Actor, commentID primitive.ObjectID) error {
	comment, err := s.authorize(ctx, actor, commentID, "You are not allowed to delete this comment")
	if err != nil {
		return err
	}
	if err := s.comments.DeleteComment(ctx, commentID); err != nil {
		return orNotFound(err, "Comment not found")
	}
	if !actor.Is(comment.UserID) {
		s.audit.record(ctx, actor, comment.UserID, models.ActionCommentDeleted, commentID.Hex())
	}
	return nil
}

// ListComments pages through every comment for the admin dashboard.
func (s *CommentService) ListComments(ctx context.Context, actor models.Actor, startIndex, limit int64, sortAsc bool) (*CommentPage, error) {
	if !actor.IsAdmin {
		return nil, ForbiddenError("You are not allowed to get all comments")
	}
	comments, total, err := s.comments.ListComments(ctx, startIndex, limit, sortAsc)
	if err != nil {
		return nil, err
	}
	lastMonth, err := s.comments.CountCommentsSince(ctx, s.clock.Now().AddDate(0, -1, 0))
	if err != nil {
		return nil, err
	}
	return &CommentPage{Comments: comments, TotalComments: total, LastMonthComments: lastMonth}, nil
}
