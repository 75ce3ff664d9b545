package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/eliteadvisers/portal/internal/config"
	"github.com/eliteadvisers/portal/internal/handler"
	"github.com/eliteadvisers/portal/internal/middleware"
	"github.com/eliteadvisers/portal/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth    *handler.AuthHandler
	Home    *handler.HomeHandler
	Profile *handler.ProfileHandler
	Admin   *handler.AdminHandler
	Library *handler.LibraryHandler
	WS      *handler.WSHandler
	System  *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// authLimiter may be nil to disable rate limiting of the auth routes.
func SetupRouter(handlers *Handlers, authLimiter *middleware.RateLimiter, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Location"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Request IDs are forwarded on every API call made for the request.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.Brotli())
	router.Use(middleware.Navigation())

	router.GET("/health", handlers.System.Health)

	// ─── 1. Auth (Rate Limited) ────────────────────────────────────────
	auth := router.Group("/")
	if authLimiter != nil {
		auth.Use(authLimiter.Middleware())
	}
	{
		auth.POST("/login", handlers.Auth.Login)
		auth.POST("/admin-login", handlers.Auth.AdminLogin)
		auth.POST("/signup", handlers.Auth.Signup)
		auth.POST("/signup/verify", handlers.Auth.VerifyOTP)
		auth.POST("/logout", handlers.Auth.Logout)
		auth.POST("/admin-logout", handlers.Auth.AdminLogout)
	}

	// ─── 2. Client Views (Session Gated) ───────────────────────────────
	views := router.Group("/")
	views.Use(middleware.NoStore())
	{
		views.GET("/home", handlers.Home.GetHome)
		views.DELETE("/home/notifications/:index", handlers.Home.DismissNotification)
		views.POST("/home/queries/:id/rate", handlers.Home.RateQuery)
		views.POST("/home/queries/:id/reopen", handlers.Home.ReopenQuery)

		views.GET("/profile", handlers.Profile.GetProfile)
		views.PUT("/profile", handlers.Profile.UpdateProfile)

		views.GET("/notices", handlers.System.Notices)
	}

	// ─── 3. Admin Console (Admin Session Gated) ────────────────────────
	admin := router.Group("/admin-dashboard")
	admin.Use(middleware.NoStore())
	{
		admin.GET("", handlers.Admin.GetDashboard)
		admin.PATCH("/problems/:id", handlers.Admin.EditProblem)
		admin.POST("/problems/:id/save", handlers.Admin.SaveProblem)
		admin.PUT("/profile", handlers.Admin.UpdateProfile)
		admin.POST("/articles", handlers.Admin.PublishArticle)
	}

	// ─── 4. Public ─────────────────────────────────────────────────────
	router.GET("/library", handlers.Library.Search)

	// ─── 5. WebSocket ──────────────────────────────────────────────────
	router.GET("/ws/admin/clock", handlers.WS.AdminClockStream)

	return router
}
