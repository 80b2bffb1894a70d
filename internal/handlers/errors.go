package handlers

import (
	"errors"
	"net/http"

	"github.com/anonto42/pressroom/backend/internal/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var kindStatus = map[services.Kind]int{
	services.KindValidation:   http.StatusBadRequest,
	services.KindForbidden:    http.StatusForbidden,
	services.KindNotFound:     http.StatusNotFound,
	services.KindRateLimit:    http.StatusForbidden,
	services.KindConflict:     http.StatusBadRequest,
	services.KindUnauthorized: http.StatusUnauthorized,
}

// StatusFor maps an error to its HTTP status and client message.
func StatusFor(err error) (int, string) {
	var se *services.Error
	if errors.As(err, &se) {
		if code, ok := kindStatus[se.Kind]; ok {
			return code, se.Message
		}
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if msg, ok := he.Message.(string); ok {
			return he.Code, msg
		}
		return he.Code, http.StatusText(he.Code)
	}
	return http.StatusInternalServerError, "Internal Server Error"
}

// ErrorHandler renders every error as {success:false, statusCode, message}.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code, msg := StatusFor(err)
		if code >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Request().URL.Path),
				zap.Error(err),
			)
		}

		var werr error
		if c.Request().Method == http.MethodHead {
			werr = c.NoContent(code)
		} else {
			werr = c.JSON(code, echo.Map{
				"success":    false,
				"statusCode": code,
				"message":    msg,
			})
		}
		if werr != nil {
			log.Warn("error response not written", zap.Error(werr))
		}
	}
}
