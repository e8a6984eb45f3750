// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/ventech/venue-locator/internal/config"
	"github.com/ventech/venue-locator/internal/handler"
	"github.com/ventech/venue-locator/internal/middleware"
)

// Deps carries everything route registration needs.
type Deps struct {
	Cfg          config.Config
	RateLimit    config.RateLimitConfig
	Cache        config.CacheConfig
	Redis        *redis.Client
	Auth         *handler.AuthHandler
	Venues       *handler.VenueHandler
	Reservations *handler.ReservationHandler
	Owner        *handler.OwnerHandler
}

// Register mounts all routes on the Echo instance.
//
// Public browse endpoints sit behind the redis response cache; the
// calendar and date-check endpoints bypass it so availability is never
// stale. The reservation request path is rate limited per user.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	// Unauthenticated session endpoints.
	auth := e.Group("/v1/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)

	// Guest browse. Listing and detail may be cached; availability reads
	// must always hit the store.
	cached := e.Group("/v1", middleware.NewRedisCache(d.Cache, d.Redis))
	cached.GET("/venues", d.Venues.List)
	cached.GET("/venues/:id", d.Venues.Get)

	e.GET("/v1/venues/:id/calendar", d.Venues.Calendar)
	e.GET("/v1/venues/:id/availability", d.Venues.CheckDate)

	// Authenticated surface. Both roles pass the gate; per-operation
	// authorization happens in the booking core and handlers.
	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(d.Cfg.JWTSecret))
	v1.Use(middleware.RequireRole("client", "owner"))

	v1.GET("/me", d.Auth.Me)

	limiter := middleware.NewTokenBucket(d.RateLimit, d.Redis)
	v1.POST("/reservations", d.Reservations.Request, limiter)
	v1.GET("/reservations/mine", d.Reservations.Mine)
	v1.POST("/reservations/:id/transition", d.Reservations.Transition)

	owner := v1.Group("/owner", middleware.RequireRole("owner"))
	owner.GET("/dashboard", d.Owner.Dashboard)
	owner.GET("/venues", d.Owner.MyVenues)
	owner.POST("/venues/:id/blackouts", d.Owner.AddBlackout)
	owner.DELETE("/venues/:id/blackouts", d.Owner.RemoveBlackout)
}
