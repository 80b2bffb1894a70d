package handlers

import (
	"net/http"

	"github.com/anonto42/pressroom/backend/internal/models"
	"github.com/anonto42/pressroom/backend/internal/services"
	"github.com/labstack/echo/v4"
)

type PublisherRequestHandler struct {
	moderation *services.ModerationService
	cookie     SessionCookie
}

func NewPublisherRequestHandler(moderation *services.ModerationService, cookie SessionCookie) *PublisherRequestHandler {
	return &PublisherRequestHandler{moderation: moderation, cookie: cookie}
}

// RegisterPublisherRequestRoutes registers the publisher request workflow; all routes need a session.
func (h *PublisherRequestHandler) RegisterPublisherRequestRoutes(g *echo.Group) {
	g.POST("", h.Submit)
	g.GET("", h.List)
	g.PUT("/:id", h.Decide)
}

func (h *PublisherRequestHandler) Submit(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	var req models.CreatePublisherRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	userID, err := parseObjectID(req.UserID, "user ID")
	if err != nil {
		return err
	}
	if _, err := h.moderation.SubmitPublisherRequest(c.Request().Context(), actor, userID, req.Reason); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Request sent successfully."})
}

func (h *PublisherRequestHandler) List(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	page, err := h.moderation.ListPublisherRequests(c.Request().Context(), actor,
		models.PublisherRequestStatus(c.QueryParam("status")),
		queryInt64(c, "startIndex", 0),
		queryLimit(c, 9),
		c.QueryParam("sort") == "asc",
	)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, page)
}

// Decide approves or rejects a request. The session cookie is only rewritten
// when admins decide their own request.
func (h *PublisherRequestHandler) Decide(c echo.Context) error {
	actor, err := actorOf(c)
	if err != nil {
		return err
	}
	id, err := paramObjectID(c, "id", "request ID")
	if err != nil {
		return err
	}
	var req models.DecidePublisherRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	decision, err := h.moderation.DecidePublisherRequest(c.Request().Context(), actor, id, models.PublisherRequestStatus(req.Status))
	if err != nil {
		return err
	}
	if decision.Token != "" {
		h.cookie.Set(c, decision.Token)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Request updated successfully",
		"request": decision.Request,
	})
}
