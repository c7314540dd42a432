package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/habibb2r/SPEAKIFYR-Server/internal/config"
	"github.com/habibb2r/SPEAKIFYR-Server/internal/handler"
	"github.com/habibb2r/SPEAKIFYR-Server/internal/middleware"
)

// Handlers groups every handler the router wires up.
type Handlers struct {
	Auth    *handler.AuthHandler
	Public  *handler.PublicHandler
	Cart    *handler.CartHandler
	Enroll  *handler.EnrollHandler
	Payment *handler.PaymentHandler
	Admin   *handler.AdminHandler
}

// Register wires all application routes onto the provided Echo instance.
// Public browse endpoints sit behind the Redis response cache and the
// token-bucket rate limiter; everything under /v1 (except auth and browse)
// requires a valid access token, and /v1/admin additionally requires the
// admin role.
func Register(e *echo.Echo, cfg config.Config, h Handlers, rdb *redis.Client) {
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	// Unauthenticated browse endpoints, cached.
	cache := middleware.ResponseCache(config.LoadCacheConfig(), rdb)
	e.GET("/v1/classes", h.Public.GetClasses, cache)
	e.GET("/v1/classes/popular", h.Public.GetPopularClasses, cache)
	e.GET("/v1/instructors", h.Public.GetInstructors, cache)

	// Registration and login issue tokens; no middleware.
	auth := e.Group("/v1/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)

	// Authenticated endpoints.
	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(cfg.JWTSecret))
	v1.Use(middleware.RequireRole("student", "admin"))
	v1.GET("/me", h.Auth.Me)
	v1.GET("/admin-status", h.Admin.CheckAdmin)

	v1.GET("/cart", h.Cart.ListCart)
	v1.POST("/cart", h.Cart.AddToCart)
	v1.DELETE("/cart/:id", h.Cart.RemoveFromCart)

	v1.POST("/payments/intent", h.Payment.CreateIntent)
	v1.POST("/enroll", h.Enroll.Enroll)
	v1.GET("/enrollments", h.Enroll.ListMyEnrollments)
	v1.GET("/enrollments/code/:code", h.Enroll.GetByCode)

	// Admin-only endpoints.
	admin := e.Group("/v1/admin")
	admin.Use(middleware.JWTAuth(cfg.JWTSecret))
	admin.Use(middleware.RequireRole("admin"))
	admin.GET("/users", h.Admin.ListUsers)
	admin.PATCH("/users/:id/admin", h.Admin.PromoteUser)
	admin.DELETE("/users/:id", h.Admin.DeleteUser)
	admin.POST("/classes", h.Admin.CreateClass)
	admin.GET("/classes/:id/enrollments", h.Enroll.ListByClass)
}
