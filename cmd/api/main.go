// Package main is the entry point for the workshop planner API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/GunarsK-portfolio/workshop-planner/docs"
	"github.com/GunarsK-portfolio/workshop-planner/internal/config"
	"github.com/GunarsK-portfolio/workshop-planner/internal/database"
	"github.com/GunarsK-portfolio/workshop-planner/internal/events"
	"github.com/GunarsK-portfolio/workshop-planner/internal/handlers"
	"github.com/GunarsK-portfolio/workshop-planner/internal/logger"
	"github.com/GunarsK-portfolio/workshop-planner/internal/metrics"
	"github.com/GunarsK-portfolio/workshop-planner/internal/repository"
	"github.com/GunarsK-portfolio/workshop-planner/internal/routes"
	"github.com/GunarsK-portfolio/workshop-planner/internal/service"
	"github.com/GunarsK-portfolio/workshop-planner/internal/validation"
	"github.com/GunarsK-portfolio/workshop-planner/pkg/redis"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 15 * time.Second

// @title Workshop Planner API
// @version 1.0
// @description Workshop scheduling with teacher accounts and cookie sessions
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token. Browsers use the auth_token cookie instead.
func main() {
	if err := run(); err != nil {
		slog.Error("Workshop planner stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	appLogger := logger.New(os.Stdout, cfg.Environment, cfg.LogLevel)
	slog.SetDefault(appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.Connect(database.PostgresConfig{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
		TimeZone: "UTC",
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			appLogger.Warn("Failed to close database", "error", err)
		}
	}()
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}

	// Initialize Redis
	redisClient, err := redis.NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	// Audit events are optional
	var audit events.Publisher = events.NewNoopPublisher()
	if cfg.NATSURL != "" {
		publisher, err := events.NewNATSPublisher(cfg.NATSURL, appLogger)
		if err != nil {
			return err
		}
		audit = publisher
	}
	defer audit.Close()

	if err := validation.RegisterWithGin(); err != nil {
		return err
	}
	appMetrics := metrics.New(prometheus.DefaultRegisterer)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	attemptRepo := repository.NewLoginAttemptRepository(db)
	workshopRepo := repository.NewWorkshopRepository(db)

	// Initialize services
	tokens, err := service.NewTokenCodec(service.TokenConfig{
		Secret:   cfg.JWTSecret,
		TTL:      cfg.JWTTTL,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	})
	if err != nil {
		return err
	}
	credentials := service.NewCredentialStore(userRepo, attemptRepo, cfg.BcryptCost)
	limiter := service.NewRateLimiter(attemptRepo, cfg.LoginMaxAttempts, cfg.LoginWindow)
	csrfGuard := service.NewCsrfGuard(redisClient, cfg.SessionTTL)
	authService := service.NewAuthService(userRepo, credentials, limiter, tokens, audit)
	workshopService := service.NewWorkshopService(workshopRepo, audit)

	// Initialize handlers
	cookies := handlers.NewCookieHelper(cfg.Cookie, cfg.SessionTTL)
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	h := routes.Handlers{
		Auth:      handlers.NewAuthHandler(authService, csrfGuard, cookies, appMetrics),
		Workshops: handlers.NewWorkshopHandler(workshopService, appMetrics),
		Health: handlers.NewHealthHandler(map[string]handlers.HealthCheck{
			"postgres": sqlDB.PingContext,
			"redis":    func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		}),
	}

	// Setup router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	routes.Setup(router, h, cfg, routes.Dependencies{
		Logger:        appLogger,
		Authenticator: authService,
		Cookies:       cookies,
		Guard:         csrfGuard,
		Metrics:       appMetrics,
		Gatherer:      prometheus.DefaultGatherer,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("Starting workshop planner", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
