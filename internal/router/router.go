package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/uniresto/meal-reservation/internal/config"
	"github.com/uniresto/meal-reservation/internal/handler"
	"github.com/uniresto/meal-reservation/internal/middleware"
	"github.com/uniresto/meal-reservation/internal/model"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the authentication endpoints.  Unauthenticated
// operations live under /v1/auth and sit behind the rate limiter to
// slow credential stuffing; /v1/me requires a valid access token for
// any role.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/v1/auth", middleware.NewTokenBucket(rlCfg, rdb))
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout works either with a refresh token in the body (no JWT
	// needed) or authenticated without a body to revoke all sessions.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.POST("/logout", a.Logout)
}

// RegisterPublic wires the guest browse endpoints.  Responses are
// identity free, so the Redis response cache can front them when a
// client is configured.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cacheCfg config.CacheConfig, rdb *redis.Client) {
	e.GET("/v1/menus", p.ListMenus, middleware.NewRedisCache(cacheCfg, rdb))
}

// RegisterStudent wires the booking flow.  Every route requires a JWT
// carrying the STUDENT role; the booking mutation is additionally rate
// limited per user.
func RegisterStudent(e *echo.Echo, s *handler.StudentHandler, jwtSecret string, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleStudent))

	g.GET("/student/dashboard", s.Dashboard)
	g.POST("/menus/:id/book", s.Book, middleware.NewTokenBucket(rlCfg, rdb))
	g.GET("/tickets", s.MyTickets)
}

// RegisterStaff wires menu management and the redemption counter under
// the STAFF role.
func RegisterStaff(e *echo.Echo, s *handler.StaffHandler, jwtSecret string) {
	g := e.Group("/v1/staff")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleStaff))

	g.GET("/dashboard", s.Dashboard)

	g.POST("/menus", s.CreateMenu)
	g.GET("/menus", s.ListMenus)
	g.GET("/menus/:id", s.GetMenu)
	g.PUT("/menus/:id", s.UpdateMenu)
	g.POST("/menus/:id/toggle", s.ToggleMenu)
	g.DELETE("/menus/:id", s.DeleteMenu)

	g.POST("/tickets/search", s.SearchTicket)
	g.POST("/tickets/:id/consume", s.ConsumeTicket)
}

// RegisterAdmin wires staff administration and revenue reporting under
// the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin))

	g.GET("/dashboard", a.Dashboard)
	g.GET("/revenue", a.Revenue)
	g.GET("/staff", a.ListStaff)
	g.POST("/staff", a.AddStaff)
	g.DELETE("/staff/:id", a.DeleteStaff)
}
