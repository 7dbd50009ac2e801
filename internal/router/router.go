package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/example/school-meeting-booking/internal/handler"
	"github.com/example/school-meeting-booking/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance. Currently it exposes only a health check
// for load balancers and monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/v1/healthz", handler.Health)
}

// RegisterPublic registers the parent-facing endpoints: browsing active
// events, reading availability, and the booking submission and code
// confirmation flow. The rate limiter fronts the endpoints that write
// or that accept guessable codes; the read endpoints stay unthrottled.
func RegisterPublic(e *echo.Echo, ev *handler.PublicEventHandler, b *handler.PublicBookingHandler, limit echo.MiddlewareFunc) {
	e.GET("/v1/meeting-events", ev.List)
	e.GET("/v1/meeting-events/:id", ev.Get)
	// Availability is recomputed per request and must never be cached.
	e.GET("/v1/meeting-events/:id/slots", b.Slots)
	e.GET("/v1/meeting-bookings", b.BookedSlots)

	e.POST("/v1/meeting-bookings", b.Create, limit)
	e.POST("/v1/meeting-bookings/:id/verify", b.Verify, limit)
	e.POST("/v1/meeting-bookings/:id/resend-code", b.ResendCode, limit)
}

// RegisterAuth registers the administrator login flow under /v1/auth.
// Both endpoints are unauthenticated by nature and sit behind the rate
// limiter to blunt code guessing and email probing.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limit echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	g.POST("/request-code", a.RequestCode, limit)
	g.POST("/login", a.Login, limit)
}

// RegisterAdmin registers the administrator surface under /v1/admin.
// Every route requires a valid session token carrying the ADMIN role.
func RegisterAdmin(e *echo.Echo, ev *handler.AdminEventHandler, b *handler.AdminBookingHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN"))

	g.GET("/meeting-events", ev.List)
	g.POST("/meeting-events", ev.Create)
	g.GET("/meeting-events/:id", ev.Get)
	g.PUT("/meeting-events/:id", ev.Update)
	g.DELETE("/meeting-events/:id", ev.Delete)

	g.GET("/meeting-bookings", b.List)
	g.GET("/meeting-bookings/:id", b.Get)
	g.PUT("/meeting-bookings/:id", b.UpdateStatus)
	g.DELETE("/meeting-bookings/:id", b.Delete)
	g.GET("/meeting-bookings/:id/calendar.ics", b.CalendarICS)
}
