package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/anonto42/pressroom/backend/internal/models"
	"github.com/anonto42/pressroom/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// ModerationHandler serves the admin role and ban endpoints
type ModerationHandler struct {
	moderation *services.ModerationService
	cookie     SessionCookie
}

func NewModerationHandler(moderation *services.ModerationService, cookie SessionCookie) *ModerationHandler {
	return &ModerationHandler{moderation: moderation, cookie: cookie}
}

// RegisterModerationRoutes registers admin routes under /users; every route requires a session.
func (h *ModerationHandler) RegisterModerationRoutes(g *echo.Group, authed echo.MiddlewareFunc) {
	g.PUT("/role", h.UpdateRole, authed)
	g.PUT("/ban", h.BanUser, authed)
	g.PUT("/:id/unban", h.UnbanUser, authed)
	g.GET("/moderation-log", h.ModerationLog, authed)
}

// UpdateRole grants or revokes publisher access. The session cookie is only
// rewritten when admins change their own role.
func (h *ModerationHandler) UpdateRole(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	var req models.UpdateRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	targetID, err := parseObjectID(req.UserID, "user ID")
	if err != nil {
		return err
	}
	res, err := h.moderation.SetUserRole(c.Request().Context(), actor, targetID, req.IsPublisher)
	if err != nil {
		return err
	}
	if res.Token != "" {
		h.cookie.Set(c, res.Token)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "User updated successfully.",
		"user":    res.User.ToCompact(),
	})
}

func (h *ModerationHandler) BanUser(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	var req models.BanUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.UserID == "" || req.Duration == "" {
		return services.ValidationError("User ID and ban duration are required")
	}
	targetID, err := parseObjectID(req.UserID, "user ID")
	if err != nil {
		return err
	}
	user, err := h.moderation.BanUser(c.Request().Context(), actor, targetID, req.Duration, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": fmt.Sprintf("User banned successfully until %s", user.BanExpiresAt.Format("2006-01-02 15:04 MST")),
		"user":    user,
	})
}

func (h *ModerationHandler) UnbanUser(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	targetID, err := paramObjectID(c, "id", "user ID")
	if err != nil {
		return err
	}
	if err := h.moderation.UnbanUser(c.Request().Context(), actor, targetID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "User unbanned successfully"})
}

func (h *ModerationHandler) ModerationLog(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	logs, err := h.moderation.ListModerationLog(c.Request().Context(), actor, page, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, logs)
}
