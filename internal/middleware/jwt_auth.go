package middleware

import (
	"net/http"
	"strings"

	"github.com/anonto42/pressroom/backend/internal/auth"
	"github.com/anonto42/pressroom/backend/internal/models"
	"github.com/labstack/echo/v4"
)

const (
	// SessionCookie carries the session token issued at sign-in.
	SessionCookie = "access_token"
	actorKey      = "actor"
)

// TokenParser verifies a session token.
type TokenParser interface {
	Parse(tokenString string) (*models.JwtCustomClaims, error)
}

func tokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	parts := strings.SplitN(c.Request().Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// JWTAuthMiddleware requires a valid session token, read from the session
// cookie or an "Authorization: Bearer" header, and stores the caller's actor.
func JWTAuthMiddleware(parser TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := tokenFromRequest(c)
			if tokenString == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}
			claims, err := parser.Parse(tokenString)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}
			actor, err := auth.ActorFromClaims(claims)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}
			c.Set(actorKey, actor)
			return next(c)
		}
	}
}

// ActorFrom returns the actor stored by JWTAuthMiddleware.
func ActorFrom(c echo.Context) (models.Actor, bool) {
	actor, ok := c.Get(actorKey).(models.Actor)
	return actor, ok
}
