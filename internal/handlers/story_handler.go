package handlers

import (
	"net/http"

	"github.com/anonto42/pressroom/backend/internal/models"
	"github.com/anonto42/pressroom/backend/internal/services"
	"github.com/labstack/echo/v4"
)

type StoryHandler struct {
	stories *services.StoryService
}

func NewStoryHandler(stories *services.StoryService) *StoryHandler {
	return &StoryHandler{stories: stories}
}

// RegisterStoryRoutes registers story routes under /story
func (h *StoryHandler) RegisterStoryRoutes(g *echo.Group, authed echo.MiddlewareFunc) {
	g.POST("/create", h.CreateStory, authed)
	g.GET("/getstories", h.GetStories)
	g.GET("/review", h.ReviewQueue, authed)
	g.GET("/user/:userId", h.GetUserStories, authed)
	g.GET("/slug/:slug", h.ReadStory)
	g.PUT("/update/:storyId", h.UpdateStory, authed)
	g.PUT("/status/:storyId", h.ReviewStory, authed)
	g.DELETE("/delete/:storyId", h.DeleteStory, authed)
}

func (h *StoryHandler) CreateStory(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	var req models.CreateStoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	story, err := h.stories.CreateStory(c.Request().Context(), actor, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, story)
}

// GetStories lists approved stories, optionally in one category
func (h *StoryHandler) GetStories(c echo.Context) error {
	page, err := h.stories.ListStories(c.Request().Context(),
		c.QueryParam("category"),
		queryInt64(c, "startIndex", 0),
		queryLimit(c, 9),
		c.QueryParam("order") == "asc",
	)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// ReviewQueue lists stories awaiting a decision for admins
func (h *StoryHandler) ReviewQueue(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	page, err := h.stories.ReviewQueue(c.Request().Context(), actor,
		models.StoryStatus(c.QueryParam("status")),
		queryInt64(c, "startIndex", 0),
		queryLimit(c, 20),
	)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// GetUserStories lists one user's stories, filtered by ?status= for the owner and admins
func (h *StoryHandler) GetUserStories(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	userID, err := paramObjectID(c, "userId", "user ID")
	if err != nil {
		return err
	}
	page, err := h.stories.ListUserStories(c.Request().Context(), actor, userID,
		models.StoryStatus(c.QueryParam("status")),
		queryInt64(c, "startIndex", 0),
		queryLimit(c, 9),
	)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *StoryHandler) ReadStory(c echo.Context) error {
	story, err := h.stories.ReadStory(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, story)
}

func (h *StoryHandler) UpdateStory(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := paramObjectID(c, "storyId", "story ID")
	if err != nil {
		return err
	}
	var req models.UpdateStoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	story, err := h.stories.UpdateStory(c.Request().Context(), actor, id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, story)
}

// ReviewStory approves or rejects a story
func (h *StoryHandler) ReviewStory(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := paramObjectID(c, "storyId", "story ID")
	if err != nil {
		return err
	}
	var req models.ReviewStoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	story, err := h.stories.ReviewStory(c.Request().Context(), actor, id, models.StoryStatus(req.Status), req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, story)
}

func (h *StoryHandler) DeleteStory(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := paramObjectID(c, "storyId", "story ID")
	if err != nil {
		return err
	}
	if err := h.stories.DeleteStory(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, "Story has been deleted")
}
