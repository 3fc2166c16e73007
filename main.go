package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"timeslice/config"
	"timeslice/cron"
	"timeslice/database"
	analyticsRepo "timeslice/database/repository/analytics"
	applicationRepo "timeslice/database/repository/application"
	bookingRepo "timeslice/database/repository/booking"
	chatRepo "timeslice/database/repository/chat"
	notificationRepo "timeslice/database/repository/notification"
	taskRepo "timeslice/database/repository/task"
	userRepo "timeslice/database/repository/user"
	"timeslice/handlers"
	"timeslice/middleware"
	"timeslice/routes"
	"timeslice/services/analytics"
	"timeslice/services/cache"
	"timeslice/services/dashboard"
	"timeslice/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	database.InitDB()
	utils.InitCache()
	utils.InitQueueClient()

	rootCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	utils.StartHealthMonitor(rootCtx,
		[]*redis.Client{utils.GetCacheClient(), utils.GetQueueClient()},
		database.MongoClient,
		utils.HealthCheckInterval)

	// repositories.
	users := userRepo.NewMongoUserRepo()
	taskStore := taskRepo.NewMongoTaskRepo()
	applications := applicationRepo.NewMongoApplicationRepo()
	bookings := bookingRepo.NewMongoBookingRepo()
	chats := chatRepo.NewMongoChatRepo()
	notifications := notificationRepo.NewMongoNotificationRepo()
	snapshots := analyticsRepo.NewMongoSnapshotRepo()

	// services.
	resultCache := cache.New(config.AppConfig.AnalyticsCacheSize)

	queue := asynq.NewClient(utils.QueueRedisOpt())
	defer queue.Close()

	analyticsService := analytics.NewService(analytics.Deps{
		Cache:        resultCache,
		Users:        users,
		Tasks:        taskStore,
		Applications: applications,
		Bookings:     bookings,
		Chats:        chats,
		Benchmarks:   analytics.NewRedisBenchmarkStore(utils.GetCacheClient(), config.AppConfig.BenchmarkCacheTTL),
		Snapshots:    analytics.NewAsynqSnapshotWriter(queue),
	}, analytics.Config{
		AnalyticsTTL: config.AppConfig.AnalyticsCacheTTL,
		BenchmarkTTL: config.AppConfig.BenchmarkCacheTTL,
	}, logger.Named("analytics"))

	dashboardService := dashboard.NewService(dashboard.Deps{
		Cache:         resultCache,
		Users:         users,
		Tasks:         taskStore,
		Applications:  applications,
		Bookings:      bookings,
		Chats:         chats,
		Notifications: notifications,
	}, config.AppConfig.DashboardCacheTTL, logger.Named("dashboard"))

	worker := cron.InitSnapshotWorker(snapshots, config.AppConfig.SnapshotTTL, config.AppConfig.SnapshotWorkerConcurrency)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(handlers.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin, logger))

	routes.RegisterRoutes(router, handlers.NewHandlerBundle(analyticsService, dashboardService))

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Info("Starting server", zap.String("addr", srv.Addr))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("main: server failed to start", zap.Error(err))
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	worker.Shutdown()
	if err := database.Disconnect(ctx); err != nil {
		logger.Warn("main: failed to disconnect from MongoDB", zap.Error(err))
	}

	logger.Info("main: server stopped gracefully")
}
