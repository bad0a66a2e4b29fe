// Package router wires the HTTP routes of the booking platform.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fitness-class-booking/internal/handler"
	"github.com/iliyamo/fitness-class-booking/internal/middleware"
	"github.com/iliyamo/fitness-class-booking/internal/model"
)

// Handlers groups everything RegisterRoutes needs.
type Handlers struct {
	Auth    *handler.AuthHandler
	Class   *handler.ClassHandler
	Admin   *handler.AdminClassHandler
	Booking *handler.BookingHandler
	Stats   *handler.StatsHandler
}

// RegisterRoutes attaches all routes to the Echo instance. The cache
// middleware, when non-nil, wraps only the public class listing; JWT
// and role middleware protect everything under /v1 except auth and
// browsing.
func RegisterRoutes(e *echo.Echo, h Handlers, jwtSecret string, cache echo.MiddlewareFunc) {
	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	// Auth endpoints; no session required.
	auth := e.Group("/v1/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)

	// Public browsing: anyone can inspect the schedule before signing
	// up. The list is the read-heavy route, so it takes the cache.
	if cache != nil {
		e.GET("/v1/classes", h.Class.List, cache)
	} else {
		e.GET("/v1/classes", h.Class.List)
	}
	e.GET("/v1/classes/:id", h.Class.Get)

	// Authenticated routes: any known role.
	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(jwtSecret))
	v1.Use(middleware.RequireRole(model.RoleAdmin, model.RoleMember))
	v1.GET("/me", h.Auth.Me)
	v1.POST("/book", h.Booking.Reserve)
	v1.GET("/bookings", h.Booking.List)
	v1.POST("/bookings/:id/cancel", h.Booking.Cancel)
	v1.GET("/stats/me", h.Stats.Me)

	// Admin-only routes: catalog mutations and platform statistics.
	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.POST("/admin/classes", h.Admin.Create)
	admin.PUT("/admin/classes/:id", h.Admin.Update)
	admin.DELETE("/admin/classes/:id", h.Admin.Delete)
	admin.GET("/stats", h.Stats.Admin)
}
