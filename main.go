// File: workhive/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workhive/config"
	"workhive/cron"
	"workhive/database"
	bookingRepoPkg "workhive/database/repository/booking"
	providerRepoPkg "workhive/database/repository/provider"
	taskRepoPkg "workhive/database/repository/task"
	"workhive/handlers"
	"workhive/middleware"
	"workhive/routes"
	"workhive/services/booking"
	"workhive/services/geo"
	"workhive/services/matching"
	"workhive/services/task"
	"workhive/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	utils.InitializeLogger()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitGeoCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	taskRepo := taskRepoPkg.NewMongoTaskRepo()
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	candidateSource := providerRepoPkg.NewMongoCandidateSource()

	for name, fn := range map[string]func() error{
		"task":     taskRepo.EnsureIndexes,
		"booking":  bookingRepo.EnsureIndexes,
		"provider": candidateSource.EnsureIndexes,
	} {
		if err := fn(); err != nil {
			logger.Sugar().Fatalf("main: failed to ensure %s indexes: %v", name, err)
		}
	}

	// services.
	geocoder := &geo.Geocoder{
		BaseURL: config.AppConfig.GeoBaseURL,
		APIKey:  config.AppConfig.GeoAPIKey,
		Cache:   utils.GetGeoCacheClient(),
		Timeout: config.GeoTimeout(),
		Logger:  logger,
	}
	geoService := &geo.DefaultGeoService{
		Geocoder:       geocoder,
		VerifyCutoffKm: config.AppConfig.GeoVerifyCutoffKm,
		ToleranceKm:    config.AppConfig.GeoToleranceKm,
	}

	matchingEngine := &matching.DefaultEngine{
		Providers:            candidateSource,
		Geo:                  geoService,
		Cache:                utils.GetCacheClient(),
		Logger:               logger,
		DefaultMaxDistanceKm: config.AppConfig.MatchMaxDistanceKm,
		DefaultLimit:         config.AppConfig.MatchLimit,
		CacheTTL:             config.MatchCacheTTL(),
	}

	bookingService := &booking.DefaultBookingService{
		Repo:   bookingRepo,
		Logger: logger,
	}

	taskService := &task.DefaultTaskService{
		Repo:      taskRepo,
		Matching:  matchingEngine,
		Converter: bookingService,
		Providers: candidateSource,
		Geo:       geoService,
		Logger:    logger,
	}

	// Assemble the handler bundle.
	handlerBundle := &routes.Handlers{
		Task:    handlers.NewTaskHandler(taskService, logger),
		Booking: handlers.NewBookingHandler(bookingService, logger),
		Geo:     handlers.NewGeoHandler(geoService),
	}
	routes.RegisterRoutes(router, handlerBundle)

	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetCacheClient(), utils.GetGeoCacheClient()},
		database.MongoClient,
	)

	cron.InitRematchWorker(taskService, logger)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Info("starting server", zap.String("addr", srv.Addr))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
