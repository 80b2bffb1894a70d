package handlers

import (
	"net/http"

	"github.com/anonto42/pressroom/backend/internal/models"
	"github.com/anonto42/pressroom/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	comments *services.CommentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// RegisterCommentRoutes registers comment-related routes under /comments
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group, authed echo.MiddlewareFunc) {
	g.POST("", h.CreateComment, authed)
	g.GET("", h.ListComments, authed)
	g.GET("/post/:postId", h.GetCommentsByPostID)
	g.PUT("/:commentId/like", h.ToggleLike, authed)
	g.PUT("/:commentId", h.UpdateComment, authed)
	g.DELETE("/:commentId", h.DeleteComment, authed)
}

// CreateComment creates a new comment on a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	userID, err := parseObjectID(req.UserID, "user ID")
	if err != nil {
		return err
	}
	comment, err := h.comments.CreateComment(c.Request().Context(), actor, userID, req.PostID, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comment)
}

// GetCommentsByPostID lists a post's comments, newest first
func (h *CommentHandler) GetCommentsByPostID(c echo.Context) error {
	comments, err := h.comments.ListPostComments(c.Request().Context(), c.Param("postId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comments)
}

func (h *CommentHandler) ToggleLike(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := paramObjectID(c, "commentId", "comment ID")
	if err != nil {
		return err
	}
	comment, err := h.comments.ToggleLike(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comment)
}

// UpdateComment edits a comment's content
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := paramObjectID(c, "commentId", "comment ID")
	if err != nil {
		return err
	}
	var req models.UpdateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	comment, err := h.comments.EditComment(c.Request().Context(), actor, id, req.Content)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comment)
}

// DeleteComment deletes a comment
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := paramObjectID(c, "commentId", "comment ID")
	if err != nil {
		return err
	}
	if err := h.comments.DeleteComment(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, "Comment has been deleted")
}

// ListComments serves the admin dashboard comment table
func (h *CommentHandler) ListComments(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	page, err := h.comments.ListComments(c.Request().Context(), actor,
		queryInt64(c, "startIndex", 0),
		queryLimit(c, 9),
		c.QueryParam("sort") == "asc",
	)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}
