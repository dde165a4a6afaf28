// Package router registers every API route together with its middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/content-hub/internal/handler"
	"github.com/iliyamo/content-hub/internal/middleware"
	"github.com/iliyamo/content-hub/internal/model"
)

// Handlers bundles the HTTP handlers served under the API prefix.
type Handlers struct {
	Auth   *handler.AuthHandler
	Hero   *handler.HeroHandler
	Posts  *handler.PostHandler
	Events *handler.EventHandler
	Forms  *handler.FormHandler
	Media  *handler.MediaHandler
	Stats  *handler.StatsHandler
}

// Options carry the middleware shared by the route groups.
type Options struct {
	Prefix       string
	Authenticate echo.MiddlewareFunc // bearer check: anon key or user token
	RateLimit    echo.MiddlewareFunc // applied to public writes
	Cache        *middleware.ResponseCache
}

// RegisterRoutes registers the routes that need no token at all.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// Register mounts the whole API on e.
func Register(e *echo.Echo, h Handlers, o Options) {
	if o.RateLimit == nil {
		o.RateLimit = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	RegisterRoutes(e)
	e.GET(o.Prefix+"/healthz", handler.Health)

	// Signed links carry their own authorization, so media sits outside the
	// bearer check.
	if h.Media != nil {
		e.GET(o.Prefix+"/media/:name", h.Media.Serve)
	}

	api := e.Group(o.Prefix, o.Authenticate, o.Cache.Bust())
	user := &routes{g: api, mw: []echo.MiddlewareFunc{
		middleware.RequireUser(),
		middleware.RequireRole(model.RoleAdmin, model.RoleEditor),
	}}

	registerAuth(api, user, h.Auth, o)
	registerContent(api, user, h, o)
	registerEvents(api, user, h.Events, o)
	registerForms(api, user, h.Forms, o)
	if h.Media != nil {
		user.POST("/upload", h.Media.Upload)
	}
	user.GET("/stats", h.Stats.Get)
}

// routes registers on g with mw appended to every route. Unlike a nested
// echo group it leaves the group's not-found handling alone.
type routes struct {
	g  *echo.Group
	mw []echo.MiddlewareFunc
}

func (r *routes) GET(path string, h echo.HandlerFunc)    { r.g.GET(path, h, r.mw...) }
func (r *routes) POST(path string, h echo.HandlerFunc)   { r.g.POST(path, h, r.mw...) }
func (r *routes) PUT(path string, h echo.HandlerFunc)    { r.g.PUT(path, h, r.mw...) }
func (r *routes) DELETE(path string, h echo.HandlerFunc) { r.g.DELETE(path, h, r.mw...) }

func registerAuth(api *echo.Group, user *routes, a *handler.AuthHandler, o Options) {
	api.POST("/signup", a.SignUp, o.RateLimit)
	api.POST("/auth/login", a.Login, o.RateLimit)
	api.POST("/auth/refresh", a.Refresh)
	api.POST("/auth/logout", a.Logout)
	api.POST("/auth/reset-password", a.ResetPassword, o.RateLimit)
	api.POST("/auth/reset-password/confirm", a.ConfirmReset, o.RateLimit)

	user.GET("/auth/session", a.Session)
	user.PUT("/auth/user", a.UpdateUser)
}
