package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/content-hub/internal/apperr"
)

var errBadBody = apperr.Invalid("", "invalid request body")

// respondError maps an error kind onto a status and a JSON body of the form
// {"error": msg} plus "field" for validation failures and "reason" for
// capacity refusals. Anything unclassified is logged and reported as 500.
func respondError(c echo.Context, log *zap.Logger, err error) error {
	var fe *apperr.FieldError
	var ce *apperr.CapacityError
	switch {
	case errors.As(err, &fe):
		body := echo.Map{"error": fe.Message}
		if fe.Field != "" {
			body["field"] = fe.Field
		}
		return c.JSON(http.StatusBadRequest, body)
	case errors.As(err, &ce):
		return c.JSON(http.StatusConflict, echo.Map{"error": ce.Message, "reason": ce.Reason})
	case errors.Is(err, apperr.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, apperr.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
	case errors.Is(err, apperr.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, apperr.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, apperr.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	}
	logger(log).Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("path", c.Request().URL.Path),
		zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Internal server error"})
}

// ErrorHandler is installed as echo's HTTPErrorHandler so that errors
// returned by handlers and middleware share the same JSON shape.
func ErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		if errors.As(err, &he) {
			msg, ok := he.Message.(string)
			if !ok {
				msg = http.StatusText(he.Code)
			}
			_ = c.JSON(he.Code, echo.Map{"error": msg})
			return
		}
		_ = respondError(c, log, err)
	}
}

func logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}
