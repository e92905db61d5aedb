package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/fla-ops/fla/internal/app"
	"github.com/fla-ops/fla/internal/clients"
	"github.com/fla-ops/fla/internal/dashboard"
	"github.com/fla-ops/fla/internal/observability"
	"github.com/fla-ops/fla/internal/platform/cache"
	"github.com/fla-ops/fla/internal/platform/db"
	"github.com/fla-ops/fla/internal/settings"
	"github.com/fla-ops/fla/internal/work"
	"github.com/fla-ops/fla/internal/workers"
	"github.com/fla-ops/fla/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	// The queue lives in Redis, so unlike the API the worker cannot run without it.
	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	reports := cache.NewVersioned(redisClient, dashboard.CacheNamespace, cfg.DashboardCacheTTL)

	settingsService := settings.NewService(settings.NewRepository(pool), reports, logger)
	clientService := clients.NewService(clients.NewRepository(pool))
	workerService := workers.NewService(workers.NewRepository(pool))
	workService := work.NewService(work.Deps{
		Repo:     work.NewRepository(pool),
		Settings: settingsService,
		Clients:  clientService,
		Workers:  workerService,
		Cache:    reports,
		Logger:   logger,
	})
	dashboardService := dashboard.NewService(dashboard.Sources{
		Jobs:     workService,
		Settings: settingsService,
		Clients:  clientService,
		Workers:  workerService,
	}, reports, logger)

	metrics := observability.NewMetrics()
	warmupJob := jobs.NewDashboardWarmupJob(dashboardService, logger, metrics.Jobs())
	overdueJob := jobs.NewOverdueScanJob(dashboardService, logger, metrics.Jobs())

	warmupTask, err := jobs.NewDashboardWarmupTask(jobs.DefaultWarmupMonths)
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}
	overdueTask, err := jobs.NewOverdueScanTask(time.Time{})
	if err != nil {
		logger.Error("build overdue scan task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword},
		Logger:      logger,
		Concurrency: cfg.WorkerConcurrency,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskDashboardWarmup, Handler: warmupJob.Handle},
			{Type: jobs.TaskOverdueScan, Handler: overdueJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "5 0 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "@every " + cfg.OverdueScanInterval.String(), Task: overdueTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	mux := chi.NewRouter()
	mux.Method(http.MethodGet, "/metrics", metrics.Handler())
	metricsServer := &http.Server{Addr: cfg.WorkerMetricsAddr, Handler: mux, ReadTimeout: 5 * time.Second}
	go func() {
		logger.Info("starting metrics server", slog.String("addr", cfg.WorkerMetricsAddr))
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("metrics server", slog.Any("error", err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
