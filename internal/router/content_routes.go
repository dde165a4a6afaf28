package router

import "github.com/labstack/echo/v4"

// registerContent mounts the hero and the blog. Public reads go through
// the response cache.
func registerContent(api *echo.Group, user *routes, h Handlers, o Options) {
	cache := o.Cache.Cache()

	api.GET("/hero", h.Hero.Get, cache)
	user.PUT("/hero", h.Hero.Put)

	api.GET("/posts", h.Posts.List, cache)
	api.GET("/posts/:slug", h.Posts.Get, cache)
	user.POST("/posts", h.Posts.Create)
	user.PUT("/posts/:id", h.Posts.Update)
	user.DELETE("/posts/:id", h.Posts.Delete)
	user.PUT("/posts/:id/draft", h.Posts.SaveDraft)
	user.DELETE("/posts/:id/draft", h.Posts.DiscardDraft)
}
