package handlers

import (
	"net/http"

	"github.com/anonto42/pressroom/backend/internal/models"
	"github.com/anonto42/pressroom/backend/internal/repositories"
	"github.com/anonto42/pressroom/backend/internal/services"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	posts *services.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// RegisterPostRoutes registers post-related routes under /post
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, authed echo.MiddlewareFunc) {
	g.POST("/create", h.CreatePost, authed)
	g.GET("/getposts", h.GetPosts)
	g.PUT("/updatepost/:postId", h.UpdatePost, authed)
	g.DELETE("/deletepost/:postId", h.DeletePost, authed)
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	post, err := h.posts.CreatePost(c.Request().Context(), actor, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, post)
}

// optionalObjectID parses query parameter name when present.
func optionalObjectID(c echo.Context, name, label string) (primitive.ObjectID, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return primitive.NilObjectID, nil
	}
	return parseObjectID(raw, label)
}

// GetPosts lists posts filtered by userId, postId, category, slug or searchTerm
func (h *PostHandler) GetPosts(c echo.Context) error {
	userID, err := optionalObjectID(c, "userId", "user ID")
	if err != nil {
		return err
	}
	postID, err := optionalObjectID(c, "postId", "post ID")
	if err != nil {
		return err
	}
	page, err := h.posts.ListPosts(c.Request().Context(), repositories.PostFilter{
		UserID:     userID,
		PostID:     postID,
		Category:   c.QueryParam("category"),
		Slug:       c.QueryParam("slug"),
		Search:     c.QueryParam("searchTerm"),
		StartIndex: queryInt64(c, "startIndex", 0),
		Limit:      queryLimit(c, 9),
		SortAsc:    c.QueryParam("order") == "asc",
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// UpdatePost edits a post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := paramObjectID(c, "postId", "post ID")
	if err != nil {
		return err
	}
	var req models.UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	post, err := h.posts.UpdatePost(c.Request().Context(), actor, id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost deletes a post
func (h *PostHandler) DeletePost(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := paramObjectID(c, "postId", "post ID")
	if err != nil {
		return err
	}
	if err := h.posts.DeletePost(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, "The post has been deleted")
}
