package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger reports whether a backing store is reachable.
type Pinger func(ctx context.Context) error

// HealthCheck reports service liveness and the reachability of each dependency.
func HealthCheck(deps map[string]Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := make(map[string]string, len(deps))
		for name, ping := range deps {
			if err := ping(ctx); err != nil {
				checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}
		state := "healthy"
		if status != http.StatusOK {
			state = "degraded"
		}
		return c.JSON(status, echo.Map{
			"status":  state,
			"service": "pressroom-api",
			"checks":  checks,
		})
	}
}
