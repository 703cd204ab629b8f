package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"chillingstories/database"
	"chillingstories/internal/api/handler"
	"chillingstories/internal/api/middleware"
	"chillingstories/internal/api/repository"
	"chillingstories/internal/api/service"
	"chillingstories/internal/config"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Error("invalid redis url", "error", err)
		os.Exit(1)
	}
	if cfg.RedisPassword != "" {
		redisOpts.Password = cfg.RedisPassword
	}
	redisClient := redis.NewClient(redisOpts)

	if err := os.MkdirAll(cfg.PosterDir, 0o755); err != nil {
		logger.Error("could not create poster directory", "dir", cfg.PosterDir, "error", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	storyRepo := repository.NewStoryRepo(db)
	chapterRepo := repository.NewChapterRepo(db)
	progressRepo := repository.NewProgressRepository(db)

	// Expired refresh tokens only stop validating; the rows pile up until
	// someone deletes them.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			if err := refreshTokenRepo.DeleteExpired(context.Background()); err != nil {
				logger.Warn("refresh token cleanup failed", "error", err)
			}
		}
	}()

	// Services
	authService := service.NewAuthService(userRepo, refreshTokenRepo, redisClient, cfg)
	userService := service.NewUserService(userRepo)
	storyService := service.NewStoryService(storyRepo)
	chapterService := service.NewChapterService(chapterRepo)
	engagementService := service.NewEngagementService(progressRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	storyHandler := handler.NewStoryHandler(storyService, cfg.PosterDir)
	chapterHandler := handler.NewChapterHandler(chapterService)
	engagementHandler := handler.NewEngagementHandler(engagementService)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	r.Static("/assets/images/poster/stories", cfg.PosterDir)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"success": true, "message": "ok"})
	})

	requireAuth := middleware.RequireAuth(authService)
	optionalAuth := middleware.OptionalAuth(authService)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimit(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst))
	authHandler.RegisterRoutes(authGroup)

	userHandler.RegisterRoutes(api.Group("/users"), requireAuth)

	storyGroup := api.Group("/stories")
	storyHandler.RegisterRoutes(storyGroup, requireAuth, optionalAuth)
	chapterHandler.RegisterStoryRoutes(storyGroup, requireAuth, optionalAuth)
	chapterHandler.RegisterChapterRoutes(api.Group("/chapters"), requireAuth, optionalAuth)

	engagementHandler.RegisterRoutes(api.Group("/me"), requireAuth)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info("server starting", "addr", addr, "env", cfg.GoEnv)
	if err := r.Run(addr); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
