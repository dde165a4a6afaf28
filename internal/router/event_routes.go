package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/content-hub/internal/handler"
)

// registerEvents mounts events, registration and the attendee desk.
func registerEvents(api *echo.Group, user *routes, h *handler.EventHandler, o Options) {
	cache := o.Cache.Cache()

	api.GET("/events", h.List, cache)
	api.GET("/events/:id", h.Get, cache)
	api.POST("/events/:id/register", h.Register, o.RateLimit)

	user.POST("/events", h.Create)
	user.PUT("/events/:id", h.Update)
	user.DELETE("/events/:id", h.Delete)
	user.POST("/events/:id/registration/toggle", h.ToggleRegistration)
	user.GET("/events/:id/check-in-settings", h.GetCheckInSettings)
	user.PUT("/events/:id/check-in-settings", h.PutCheckInSettings)
	user.POST("/events/:id/reminders", h.SendReminders)

	user.GET("/events/:id/attendees", h.Attendees)
	user.GET("/events/:id/attendees/stats", h.Stats)
	user.GET("/events/:id/attendees/export", h.Export)
	user.POST("/events/:id/attendees/check-in", h.BulkCheckIn)
	user.POST("/events/:id/attendees/:attendeeId/check-in", h.CheckIn)
	user.DELETE("/events/:id/attendees/:attendeeId", h.Cancel)
}
