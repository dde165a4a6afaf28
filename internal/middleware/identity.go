package middleware

import "github.com/labstack/echo/v4"

// UserID returns the verified user id of the request, or "" for anonymous
// callers.
func UserID(c echo.Context) string {
	if v, ok := c.Get(CtxUserID).(string); ok {
		return v
	}
	return ""
}

// Role returns the verified role of the request, or "".
func Role(c echo.Context) string {
	if v, ok := c.Get(CtxRole).(string); ok {
		return v
	}
	return ""
}

// rateIdentity names the caller in rate-limit keys.
func rateIdentity(c echo.Context) string {
	if id := UserID(c); id != "" {
		return id
	}
	return "anon"
}
