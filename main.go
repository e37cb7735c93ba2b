package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kpitracker/config"
	"kpitracker/cron"
	"kpitracker/database"
	periodsRepo "kpitracker/database/repository/periods"
	recordsRepo "kpitracker/database/repository/records"
	"kpitracker/handlers"
	"kpitracker/middleware"
	"kpitracker/routes"
	"kpitracker/services/entry"
	"kpitracker/services/period"
	"kpitracker/services/stats"
	"kpitracker/services/tasks"
	"kpitracker/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	database.InitDB()
	db := database.Database()

	// repositories.
	records := recordsRepo.NewMongoRecordRepo(db)
	var snapshots periodsRepo.SnapshotRepository = periodsRepo.NewMongoSnapshotRepo(db)
	if err := records.EnsureIndexes(); err != nil {
		logger.Fatal("main: failed to ensure daily record indexes", zap.Error(err))
	}
	if err := snapshots.EnsureIndexes(); err != nil {
		logger.Fatal("main: failed to ensure snapshot indexes", zap.Error(err))
	}

	var (
		locker       period.Locker
		redisClients []*redis.Client
	)
	if cfg.LockEnabled {
		client, err := utils.InitLockClient(rootCtx)
		if err != nil {
			logger.Fatal("main: archive lock enabled but Redis is unreachable", zap.Error(err))
		}
		redisClients = append(redisClients, client)
		locker = utils.NewRedisLocker(client)
	}

	if cfg.CacheEnabled {
		client, err := utils.InitCacheClient(rootCtx)
		if err != nil {
			logger.Fatal("main: snapshot cache enabled but Redis is unreachable", zap.Error(err))
		}
		redisClients = append(redisClients, client)
		ttl := time.Duration(cfg.CacheTTLHours) * time.Hour
		snapshots = periodsRepo.NewCachedSnapshotRepo(snapshots, utils.NewRedisCache(client), ttl, logger)
	}

	// services.
	cal := period.NewCalendar(cfg.Location(), nil)
	archiver := period.NewArchiveManager(cal, records, snapshots, cfg.Goals, locker, logger)
	migrator := period.NewMigrator(cal, records, archiver, logger)
	entryService := entry.NewEntryService(cal, records, archiver, cfg.SpinRules, logger)
	statsService := stats.NewStatsService(cal, records, archiver, cfg.Goals, logger)

	adminHandler := handlers.NewAdminHandler(archiver, migrator, entryService, nil, nil)

	if cfg.SchedulerEnabled {
		scheduler, err := cron.NewArchiveScheduler(archiver, cfg.Location(), cfg.ArchiveHour, cfg.ArchiveMinute, logger)
		if err != nil {
			logger.Fatal("main: failed to create archive scheduler", zap.Error(err))
		}
		scheduler.Start()
		defer scheduler.Stop()
		adminHandler.Scheduler = scheduler
	}

	if cfg.TasksEnabled {
		redisOpt := asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisTaskDB,
		}
		worker := cron.NewPeriodWorker(redisOpt, archiver, migrator, logger)
		if err := worker.Start(); err != nil {
			logger.Fatal("main: failed to start task worker", zap.Error(err))
		}
		defer worker.Shutdown()

		enqueuer := tasks.NewEnqueuer(redisOpt)
		defer func() { _ = enqueuer.Close() }()
		adminHandler.Tasks = enqueuer
	}

	utils.StartHealthMonitor(rootCtx, time.Minute, database.MongoClient, redisClients...)
	defer utils.CloseRedis()

	// Create the Gin router.
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Info:        handlers.NewInfoHandler(cal, cfg.Goals, cfg.Env),
		Entries:     handlers.NewEntryHandler(entryService),
		Periods:     handlers.NewPeriodHandler(archiver),
		Stats:       handlers.NewStatsHandler(statsService),
		Webhook:     handlers.NewWebhookHandler(entryService),
		Admin:       adminHandler,
		AdminAuth:   middleware.AdminAuthMiddleware(cfg.AdminToken),
		WebhookAuth: middleware.WebhookAuthMiddleware(cfg.WebhookAPIKey),
	}
	routes.RegisterRoutes(router, handlerBundle)

	// Close a period missed while the server was down.
	if snapshot, err := archiver.EnsurePreviousClosed(rootCtx); err != nil {
		logger.Warn("main: startup archive check failed", zap.Error(err))
	} else if snapshot != nil {
		logger.Info("main: closed previous period at startup", zap.String("periodID", snapshot.PeriodID))
	}

	// Start the HTTP server.
	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting server", zap.String("addr", srv.Addr), zap.String("currentPeriod", cal.Current().ID))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("main: server failed to start", zap.Error(err))
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: server is shutting down...")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	if err := database.CloseDB(ctx); err != nil {
		logger.Warn("main: mongo disconnect failed", zap.Error(err))
	}
	logger.Info("main: server stopped gracefully")
}
