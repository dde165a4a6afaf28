package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/content-hub/internal/auth"
	"github.com/iliyamo/content-hub/internal/middleware"
)

// AuthHandler exposes the authentication provider over HTTP.
type AuthHandler struct {
	Auth auth.Provider
	Log  *zap.Logger
}

func NewAuthHandler(p auth.Provider, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Auth: p, Log: log}
}

type signupReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type resetReq struct {
	Email      string `json:"email" validate:"required,email"`
	RedirectTo string `json:"redirect_to"`
}

type resetConfirmReq struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SignUp handles POST /signup.
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signupReq
	if err := bind(c, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	meta := map[string]any{}
	if n := strings.TrimSpace(req.Name); n != "" {
		meta["name"] = n
	}
	if r := strings.TrimSpace(req.Role); r != "" {
		meta["role"] = r
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Auth.SignUp(ctx, req.Email, req.Password, meta)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"user": u})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	s, err := h.Auth.SignInWithPassword(ctx, req.Email, req.Password)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, s)
}

// Refresh handles POST /auth/refresh. The submitted refresh token is
// consumed; the response carries its replacement.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := bind(c, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	s, err := h.Auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, s)
}

// Logout handles POST /auth/logout. With a refresh token in the body only
// that token is revoked; otherwise every token of the bearer is.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return respondError(c, h.Log, errBadBody)
		}
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Auth.SignOut(ctx, req.RefreshToken, middleware.UserID(c)); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ResetPassword handles POST /auth/reset-password. It always answers 200 for
// a well-formed address.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetReq
	if err := bind(c, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Auth.ResetPasswordForEmail(ctx, req.Email, req.RedirectTo); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "If the address is registered, a reset link is on its way"})
}

// ConfirmReset handles POST /auth/reset-password/confirm.
func (h *AuthHandler) ConfirmReset(c echo.Context) error {
	var req resetConfirmReq
	if err := bind(c, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Auth.CompletePasswordReset(ctx, req.Token, req.Password); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Password updated"})
}

// Session handles GET /auth/session and echoes the verified claims.
func (h *AuthHandler) Session(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user": echo.Map{
			"id":    middleware.UserID(c),
			"email": c.Get(middleware.CtxEmail),
			"role":  middleware.Role(c),
		},
	})
}

// UpdateUser handles PUT /auth/user.
func (h *AuthHandler) UpdateUser(c echo.Context) error {
	var upd auth.UserUpdate
	if err := c.Bind(&upd); err != nil {
		return respondError(c, h.Log, errBadBody)
	}
	if upd.Data == nil && upd.Password == nil {
		return badRequest(c, "nothing to update")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Auth.UpdateUser(ctx, middleware.UserID(c), upd)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}
