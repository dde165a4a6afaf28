package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/content-hub/internal/handler"
)

// registerForms mounts the form builder, public submission and the
// response dashboard.
func registerForms(api *echo.Group, user *routes, h *handler.FormHandler, o Options) {
	cache := o.Cache.Cache()

	api.GET("/forms/:slug", h.Get, cache)
	api.GET("/forms/:slug/render", h.Render, cache)
	api.POST("/forms/:slug/submit", h.Submit, o.RateLimit)

	user.GET("/forms", h.List)
	user.GET("/forms/templates/:key", h.Template)
	user.POST("/forms", h.Create)
	user.DELETE("/forms/:slug", h.Delete)
	user.GET("/forms/:slug/responses", h.Responses)
	user.GET("/forms/:slug/submissions", h.Responses)
	user.GET("/forms/:slug/responses/export", h.Export)
	user.GET("/forms/:slug/analytics", h.Analytics)
}
