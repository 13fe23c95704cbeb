package router // package router defines how HTTP routes are registered for the API

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/connection-monitor/internal/handler"
	"github.com/iliyamo/connection-monitor/internal/middleware"
	"github.com/iliyamo/connection-monitor/internal/model"
)

// Handlers bundles everything the routes dispatch to.
type Handlers struct {
	Auth        *handler.AuthHandler
	Connections *handler.ConnectionHandler
	Addresses   *handler.AddressHandler
	Attachments *handler.AttachmentHandler
	UI          *handler.UIStateHandler
}

// Middleware bundles the per-route middleware built from configuration.
// Nil entries are skipped.
type Middleware struct {
	Authorizer middleware.Authorizer
	Cache      echo.MiddlewareFunc
	RateLimit  echo.MiddlewareFunc
	Metrics    http.Handler
}

func optional(mws ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, 0, len(mws))
	for _, m := range mws {
		if m != nil {
			out = append(out, m)
		}
	}
	return out
}

// RegisterRoutes registers routes that do not require authentication: the
// health check and, when a handler is given, Prometheus metrics.
func RegisterRoutes(e *echo.Echo, mw Middleware) {
	e.GET("/healthz", handler.Health)
	if mw.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(mw.Metrics))
	}
}

// RegisterPublic registers the read-only API.  Connection reads go through
// the response cache.
func RegisterPublic(e *echo.Echo, h Handlers, mw Middleware) {
	cached := optional(mw.Cache)
	e.GET("/v1/connections", h.Connections.List, cached...)
	e.GET("/v1/connections/export.csv", h.Connections.ExportCSV, cached...)
	e.GET("/v1/connections/:id", h.Connections.Get, cached...)
	e.GET("/v1/addresses", h.Addresses.List)
	e.GET("/v1/ui-state", h.UI.Get)

	e.POST("/v1/auth/login", h.Auth.Login, optional(mw.RateLimit)...)
}

// RegisterProtected registers everything that needs a valid access token.
// JWTAuth runs first so the rate limiter can key buckets by user.  Deleting
// connections and addresses is reserved to admins and moderators.
func RegisterProtected(e *echo.Echo, h Handlers, mw Middleware) {
	g := e.Group("/v1", optional(middleware.JWTAuth(mw.Authorizer), mw.RateLimit)...)
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleModerator)

	g.POST("/auth/logout", h.Auth.Logout)
	g.POST("/auth/logout-all", h.Auth.LogoutAll)
	g.GET("/me", h.Auth.Me)

	g.POST("/connections", h.Connections.Create)
	g.PUT("/connections/:id", h.Connections.Update)
	g.PATCH("/connections/:id", h.Connections.Update)
	g.DELETE("/connections/:id", h.Connections.Delete, staff)

	g.POST("/addresses", h.Addresses.Create)
	g.DELETE("/addresses/:id", h.Addresses.Delete, staff)

	g.POST("/connections/:id/photos", h.Attachments.AddPhoto)
	g.DELETE("/connections/:id/photos/:photoId", h.Attachments.DeletePhoto)
	g.POST("/connections/:id/schedules", h.Attachments.AddSchedule)
	g.PATCH("/connections/:id/schedules/:scheduleId", h.Attachments.UpdateSchedule)
	g.DELETE("/connections/:id/schedules/:scheduleId", h.Attachments.DeleteSchedule)

	g.PUT("/ui-state", h.UI.Put)
	g.POST("/ui-state/sort-by-address", h.UI.ToggleSort)
}

// Register wires every route group.
func Register(e *echo.Echo, h Handlers, mw Middleware) {
	RegisterRoutes(e, mw)
	RegisterPublic(e, h, mw)
	RegisterProtected(e, h, mw)
}
