package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/roksva123/go-wrike-export/internal/api/handlers"
	"github.com/roksva123/go-wrike-export/internal/config"
	"github.com/roksva123/go-wrike-export/internal/logging"
	"github.com/roksva123/go-wrike-export/internal/middleware"
	"github.com/roksva123/go-wrike-export/internal/repository"
	"github.com/roksva123/go-wrike-export/internal/service"
	"github.com/roksva123/go-wrike-export/internal/storage"
	"github.com/roksva123/go-wrike-export/internal/wrike"
)

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}

func main() {
	// LOAD ENV
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fatal(slog.Default(), "failed load config", err)
	}

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	if cfg.WrikeToken == "" {
		logger.Warn("WRIKE_TOKEN is not set; export runs will fail until it is configured")
	}

	ctx := context.Background()

	// INIT DB
	repo, err := repository.NewPostgresRepo(ctx, cfg.DatabaseURL)
	if err != nil {
		fatal(logger, "database error", err)
	}
	defer repo.Close()

	// MIGRATIONS
	if err := repo.RunMigrations(ctx); err != nil {
		fatal(logger, "migration error", err)
	}
	gormDB, err := repo.Gorm()
	if err != nil {
		fatal(logger, "gorm init error", err)
	}

	// ADMIN SEED
	authService := service.NewAuthService(repo, cfg.JWTSecret)
	created, err := authService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		logger.Error("failed seeding admin", "error", err)
	} else if created {
		logger.Info("admin seeded", "username", cfg.AdminUsername)
	}

	// SERVICES
	client := wrike.NewClient(wrike.Config{
		BaseURL:   cfg.WrikeBaseURL,
		Timeout:   cfg.HTTPTimeout.Duration,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
	})
	exportService := service.NewExportService(client, storage.NewFileSink(cfg.OutputPath, cfg.OutputFormat), logger)
	exportService.Recorder = repo
	exportService.Parallel = cfg.ParallelFetch
	historyService := service.NewHistoryService(gormDB)

	// HANDLERS
	authHandler := handlers.NewAuthHandler(authService)
	exportHandler := handlers.NewExportHandler(exportService, historyService, cfg.WrikeToken, cfg.OutputPath, logger)

	// ROUTER
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	api := r.Group("/api/v1")

	// AUTH ROUTES
	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
	}

	// EXPORT ROUTES
	protected := api.Group("", middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		protected.POST("/exports", exportHandler.RunExport)
		protected.GET("/exports", exportHandler.ListRuns)
		protected.GET("/exports/:id", exportHandler.GetRun)
		protected.GET("/document", exportHandler.Document)
	}

	// START SERVER
	logger.Info("server running", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		fatal(logger, "server stopped", err)
	}
}
