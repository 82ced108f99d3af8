// Package routes defines HTTP routes for the workshop planner.
package routes

import (
	"log/slog"
	"time"

	"github.com/GunarsK-portfolio/workshop-planner/docs"
	"github.com/GunarsK-portfolio/workshop-planner/internal/config"
	"github.com/GunarsK-portfolio/workshop-planner/internal/handlers"
	"github.com/GunarsK-portfolio/workshop-planner/internal/metrics"
	"github.com/GunarsK-portfolio/workshop-planner/internal/middleware"
	"github.com/GunarsK-portfolio/workshop-planner/internal/models"
	"github.com/GunarsK-portfolio/workshop-planner/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Workshops *handlers.WorkshopHandler
	Health    *handlers.HealthHandler
}

// Dependencies are the shared collaborators the middleware chain needs.
type Dependencies struct {
	Logger        *slog.Logger
	Authenticator middleware.Authenticator
	Cookies       *handlers.CookieHelper
	Guard         service.CsrfGuard
	Metrics       *metrics.Metrics
	Gatherer      prometheus.Gatherer
}

// Setup configures all HTTP routes for the application.
func Setup(router *gin.Engine, h Handlers, cfg *config.Config, deps Dependencies) {
	router.Use(middleware.RequestLogger(deps.Logger))
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
	}

	// Browsers only send credentials cross-origin to listed origins.
	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "Authorization", middleware.CSRFHeader, middleware.RequestIDHeader},
			ExposeHeaders:    []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.Use(middleware.Authenticate(deps.Authenticator, deps.Cookies.GetAuthToken))

	csrf := middleware.CSRF(middleware.CSRFConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		Guard:          deps.Guard,
		SessionID:      deps.Cookies.SessionID,
		Metrics:        deps.Metrics,
	})

	// Health check
	router.GET("/health", h.Health.Check)
	// Metrics
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	// Auth routes
	auth := router.Group("/api/v1/auth")
	{
		auth.GET("/csrf", h.Auth.CSRFToken)
		auth.GET("/token-status", h.Auth.TokenStatus)
		auth.POST("/register", csrf, h.Auth.Register)
		auth.POST("/login", csrf, h.Auth.Login)
		auth.POST("/logout", csrf, h.Auth.Logout)
		auth.GET("/me", middleware.RequireAuth(), h.Auth.Me)
		auth.POST("/change-password", middleware.RequireAuth(), csrf, h.Auth.ChangePassword)
	}

	// Workshop routes
	workshops := router.Group("/api/v1/workshops")
	{
		workshops.GET("", h.Workshops.List)
		workshops.GET("/:id", h.Workshops.Get)

		manage := workshops.Group("", middleware.RequireRole(models.RoleTeacher, models.RoleAdmin), csrf)
		manage.POST("", h.Workshops.Create)
		manage.PUT("/:id", h.Workshops.Update)
		manage.DELETE("/:id", h.Workshops.Delete)
	}

	// Swagger documentation (only if SWAGGER_HOST is configured)
	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
}
