package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/content-hub/internal/model"
	"github.com/iliyamo/content-hub/internal/repository"
)

type HeroHandler struct {
	Hero *repository.HeroRepo
	Log  *zap.Logger
}

func NewHeroHandler(r *repository.HeroRepo, log *zap.Logger) *HeroHandler {
	return &HeroHandler{Hero: r, Log: log}
}

// Get handles GET /hero.
func (h *HeroHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	hero, err := h.Hero.Get(ctx)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, hero)
}

// Put handles PUT /hero.
func (h *HeroHandler) Put(c echo.Context) error {
	var hero model.Hero
	if err := c.Bind(&hero); err != nil {
		return respondError(c, h.Log, errBadBody)
	}
	if strings.TrimSpace(hero.Title) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required", "field": "title"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Hero.Put(ctx, hero); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, hero)
}
