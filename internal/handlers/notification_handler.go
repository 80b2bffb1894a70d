package handlers

import (
	"math"
	"net/http"

	"github.com/anonto42/pressroom/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notifications *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterNotificationRoutes registers notification routes; all need a session
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("", h.GetNotifications)
	g.GET("/unread-count", h.GetUnreadCount)
	g.PUT("/read-all", h.MarkAllAsRead)
	g.PUT("/:id/read", h.MarkAsRead)
}

// GetNotifications returns paginated notifications
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	page, err := h.notifications.List(c.Request().Context(), actor, queryInt64(c, "page", 1), queryLimit(c, 20))
	if err != nil {
		return err
	}

	totalPages := int64(math.Ceil(float64(page.Total) / float64(page.Limit)))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": page.Notifications,
		},
		"meta": echo.Map{
			"currentPage":     page.Page,
			"totalPages":      totalPages,
			"totalItems":      page.Total,
			"itemsPerPage":    page.Limit,
			"hasNextPage":     page.Page < totalPages,
			"hasPreviousPage": page.Page > 1,
		},
	})
}

// GetUnreadCount returns the number of unread notifications
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	count, err := h.notifications.UnreadCount(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"count": count}})
}

// MarkAsRead marks a single notification as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := paramObjectID(c, "id", "notification ID")
	if err != nil {
		return err
	}
	if err := h.notifications.MarkAsRead(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Notification marked as read"})
}

// MarkAllAsRead marks all notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	if err := h.notifications.MarkAllAsRead(c.Request().Context(), actor); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "All notifications marked as read"})
}
