package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
)

const requestTimeout = 5 * time.Second

// reqCtx bounds store calls made on behalf of one request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// bind decodes the body into v and runs the registered validator on it.
func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return errBadBody
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(v)
}
