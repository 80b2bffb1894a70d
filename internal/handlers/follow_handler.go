package handlers

import (
	"fmt"
	"net/http"

	"github.com/anonto42/pressroom/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	moderation *services.ModerationService
	users      *services.UserService
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(moderation *services.ModerationService, users *services.UserService) *FollowHandler {
	return &FollowHandler{moderation: moderation, users: users}
}

// RegisterFollowRoutes registers follow-related routes under /users
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group, authed echo.MiddlewareFunc) {
	g.POST("/:id/follow", h.FollowUser, authed)
	g.POST("/:id/unfollow", h.UnfollowUser, authed)
	g.GET("/:id/followers", h.Followers)
	g.GET("/:id/following", h.Following)
}

// FollowUser follows a publisher or admin
func (h *FollowHandler) FollowUser(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	targetID, err := paramObjectID(c, "id", "user ID")
	if err != nil {
		return err
	}
	target, err := h.moderation.FollowUser(c.Request().Context(), actor, targetID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": fmt.Sprintf("You are now following %s", target.Username),
	})
}

// UnfollowUser removes a follow
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	targetID, err := paramObjectID(c, "id", "user ID")
	if err != nil {
		return err
	}
	target, err := h.moderation.UnfollowUser(c.Request().Context(), actor, targetID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": fmt.Sprintf("You have unfollowed %s", target.Username),
	})
}

func (h *FollowHandler) Followers(c echo.Context) error {
	id, err := paramObjectID(c, "id", "user ID")
	if err != nil {
		return err
	}
	users, err := h.users.Followers(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "followers": users})
}

func (h *FollowHandler) Following(c echo.Context) error {
	id, err := paramObjectID(c, "id", "user ID")
	if err != nil {
		return err
	}
	users, err := h.users.Following(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "following": users})
}
