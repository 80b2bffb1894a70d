package middleware

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var sensitiveKeys = map[string]struct{}{
	"password": {}, "token": {}, "idtoken": {}, "authorization": {},
	"secret": {}, "access_token": {},
}

func maskQuery(kv map[string][]string) map[string][]string {
	out := make(map[string][]string, len(kv))
	for k, v := range kv {
		if _, ok := sensitiveKeys[strings.ToLower(k)]; ok {
			out[k] = []string{"****"}
		} else {
			out[k] = v
		}
	}
	return out
}

// AccessLog writes one zap line per request. Server errors log at error level.
func AccessLog(l *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// let the error handler write the status before we read it
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status
			fields := []zap.Field{
				zap.String("rid", requestIDOf(c)),
				zap.String("method", req.Method),
				zap.String("path", routePath(c)),
				zap.Int("status", status),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", c.RealIP()),
				zap.String("ua", req.UserAgent()),
				zap.Any("query", maskQuery(req.URL.Query())),
				zap.Int64("size", c.Response().Size),
			}
			if actor, ok := ActorFrom(c); ok {
				fields = append(fields, zap.String("actor", actor.ID.Hex()))
			}
			if status >= 500 {
				l.Error("HTTP", append(fields, zap.Error(err))...)
			} else {
				l.Info("HTTP", fields...)
			}
			return nil
		}
	}
}

func routePath(c echo.Context) string {
	if p := c.Path(); p != "" {
		return p
	}
	return c.Request().URL.Path
}
