package handlers

import (
	"net/http"

	"github.com/anonto42/pressroom/backend/internal/models"
	"github.com/anonto42/pressroom/backend/internal/repositories"
	"github.com/anonto42/pressroom/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to user accounts
type UserHandler struct {
	users  *services.UserService
	cookie SessionCookie
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users *services.UserService, cookie SessionCookie) *UserHandler {
	return &UserHandler{users: users, cookie: cookie}
}

// RegisterUserRoutes registers account routes; authed guards the routes that need a session.
func (h *UserHandler) RegisterUserRoutes(g *echo.Group, authed echo.MiddlewareFunc) {
	g.GET("/refresh", h.Refresh, authed)
	g.GET("/getusers", h.ListUsers, authed)
	g.GET("/search", h.SearchUsers)
	g.GET("/username/:username", h.GetUserByUsername)
	g.PUT("/update/:userId", h.UpdateUser, authed)
	g.DELETE("/delete/:userId", h.DeleteUser, authed)
	g.GET("/:userId", h.GetUser)
}

// Refresh reissues the caller's token with their current role flags
func (h *UserHandler) Refresh(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	session, err := h.users.RefreshSession(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	h.cookie.Set(c, session.Token)
	return c.JSON(http.StatusOK, session.User)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := paramObjectID(c, "userId", "user ID")
	if err != nil {
		return err
	}
	user, err := h.users.GetUser(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GetUserByUsername(c echo.Context) error {
	user, err := h.users.GetUserByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// SearchUsers finds users by partial username
func (h *UserHandler) SearchUsers(c echo.Context) error {
	users, err := h.users.SearchUsers(c.Request().Context(), c.QueryParam("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// ListUsers serves the admin dashboard user table
func (h *UserHandler) ListUsers(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	filter := repositories.UserFilter{
		Search:     c.QueryParam("searchTerm"),
		Role:       c.QueryParam("role"),
		Status:     c.QueryParam("status"),
		Verified:   c.QueryParam("verified"),
		StartIndex: queryInt64(c, "startIndex", 0),
		Limit:      queryLimit(c, 9),
		SortAsc:    c.QueryParam("sort") == "asc",
	}
	page, err := h.users.ListUsers(c.Request().Context(), actor, filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// UpdateUser updates the caller's own profile
func (h *UserHandler) UpdateUser(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := paramObjectID(c, "userId", "user ID")
	if err != nil {
		return err
	}
	var req models.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.users.UpdateUser(c.Request().Context(), actor, id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser removes an account; deleting your own account also signs you out
func (h *UserHandler) DeleteUser(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := paramObjectID(c, "userId", "user ID")
	if err != nil {
		return err
	}
	if err := h.users.DeleteUser(c.Request().Context(), actor, id); err != nil {
		return err
	}
	if actor.Is(id) {
		h.cookie.Clear(c)
	}
	return c.JSON(http.StatusOK, "User has been deleted successfully")
}
