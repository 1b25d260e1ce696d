package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/darijalingo/practice-engine/internal/backend"
	"github.com/darijalingo/practice-engine/internal/cache"
	"github.com/darijalingo/practice-engine/internal/catalog"
	"github.com/darijalingo/practice-engine/internal/config"
	"github.com/darijalingo/practice-engine/internal/games"
	"github.com/darijalingo/practice-engine/internal/handlers"
	"github.com/darijalingo/practice-engine/internal/repositories/postgres"
	"github.com/darijalingo/practice-engine/internal/services"
	"github.com/darijalingo/practice-engine/internal/utils"
	"github.com/darijalingo/practice-engine/internal/validator"
	"github.com/darijalingo/practice-engine/pkg"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := utils.NewLogger(cfg.IsProduction())
	slogger := logger.Slog()

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.LogError(err, "Database initialisation failed")
		os.Exit(1)
	}

	// Lessons are served uncached when Redis is down.
	var lessonCache cache.CacheService
	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, lesson cache disabled", "error", err)
	} else {
		defer redisClient.Close()
		lessonCache = cache.NewRedisCache(redisClient, slogger)
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.LogError(err, "Event publisher initialisation failed")
		os.Exit(1)
	}

	backendClient := backend.NewHTTPClient(cfg.Backend.URL, cfg.Backend.RequestTimeout, slogger)
	loader := catalog.NewLoader(backendClient, catalog.Config{
		Timeout:         cfg.Practice.CatalogTimeout,
		FallbackEnabled: cfg.Practice.FallbackEnabled,
	}, slogger)

	serviceManager := services.NewServiceManager(services.Dependencies{
		Repo:      postgres.NewRepository(db),
		Backend:   backendClient,
		Loader:    loader,
		Cache:     lessonCache,
		Publisher: publisher,
		Validator: validator.New(),
		Registry:  games.DefaultRegistry(),
		Practice:  services.PracticeOptions{SubmitTimeout: cfg.Practice.SubmitTimeout},
		Lesson:    services.LessonOptions{CacheTTL: cfg.Practice.LessonCacheTTL},
	}, slogger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), utils.LoggerMiddleware(logger), utils.ContextLogger(logger))
	handlers.NewHandlerManager(serviceManager, logger).SetupRoutes(router)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("Practice engine listening", "addr", server.Addr, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.LogError(err, "HTTP server error")
			os.Exit(1)
		}
	}()

	<-shutdown
	logger.Info("Shutdown signal received, draining requests")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.LogError(err, "Graceful shutdown failed")
	}

	// Let in-flight result reconciliations finish before the publisher goes away.
	serviceManager.Practice().Wait()

	if err := publisher.Close(); err != nil {
		logger.Warn("Event publisher close error", "error", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	logger.Info("Practice engine stopped")
}
