package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/pressroom/backend/internal/auth"
	"github.com/anonto42/pressroom/backend/internal/middleware"
	"github.com/anonto42/pressroom/backend/internal/models"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// actorOf returns the authenticated caller or a 401.
func actorOf(c echo.Context) (models.Actor, error) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return models.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	return actor, nil
}

func parseObjectID(raw, label string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+label)
	}
	return id, nil
}

func paramObjectID(c echo.Context, name, label string) (primitive.ObjectID, error) {
	return parseObjectID(c.Param(name), label)
}

func queryInt64(c echo.Context, name string, def int64) int64 {
	v, err := strconv.ParseInt(c.QueryParam(name), 10, 64)
	if err != nil || v < 0 {
		return def
	}
	return v
}

const maxPageSize = 100

// queryLimit reads a page size; values below 1 fall back to def and large ones are capped.
func queryLimit(c echo.Context, def int64) int64 {
	v := queryInt64(c, "limit", def)
	if v < 1 {
		return def
	}
	return min(v, maxPageSize)
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// SessionCookie writes and clears the HTTP-only session cookie.
type SessionCookie struct {
	Secure bool
}

func (s SessionCookie) Set(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(auth.SessionTTL.Seconds()),
	})
}

func (s SessionCookie) Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
