package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/fla-ops/fla/internal/app"
	"github.com/fla-ops/fla/internal/backup"
	"github.com/fla-ops/fla/internal/clients"
	"github.com/fla-ops/fla/internal/dashboard"
	dashboardhttp "github.com/fla-ops/fla/internal/dashboard/http"
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
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	dbpool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	applied, err := db.Migrate(ctx, dbpool)
	if err != nil {
		logger.Error("migrate", slog.Any("error", err))
		os.Exit(1)
	}
	if len(applied) > 0 {
		logger.Info("migrations applied", slog.Any("files", applied))
	}

	// Redis is optional: without it the dashboard is rebuilt on every request
	// and no warmups are queued.
	var redisClient *redis.Client
	redisClient, err = cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	if err != nil {
		logger.Warn("redis unavailable, caching disabled", slog.Any("error", err))
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
	}
	reports := cache.NewVersioned(redisClient, dashboard.CacheNamespace, cfg.DashboardCacheTTL)

	settingsService := settings.NewService(settings.NewRepository(dbpool), reports, logger)
	clientService := clients.NewService(clients.NewRepository(dbpool))
	workerService := workers.NewService(workers.NewRepository(dbpool))

	workService := work.NewService(work.Deps{
		Repo:     work.NewRepository(dbpool),
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

	exporter := &backup.Exporter{
		Settings: settingsService,
		Clients:  clientService,
		Workers:  workerService,
		Jobs:     workService,
		Logger:   logger,
	}

	health := map[string]app.Pinger{"postgres": dbpool}
	var jobHandler *jobs.Handler
	if redisClient != nil {
		redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}

		jobClient := jobs.NewClient(redisOpts, logger)
		defer func() {
			if err := jobClient.Close(); err != nil {
				logger.Warn("asynq client close", slog.Any("error", err))
			}
		}()
		reports.Subscribe(ctx, func(version int64) {
			if err := jobClient.EnqueueDashboardWarmup(ctx); err != nil {
				logger.Warn("enqueue dashboard warmup", slog.Int64("version", version), slog.Any("error", err))
			}
		})

		inspector := asynq.NewInspector(redisOpts)
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
		jobHandler = jobs.NewHandler(inspector, logger)

		health["redis"] = app.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	} else {
		jobHandler = jobs.NewHandler(nil, logger)
	}

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:  logger,
		Config:  cfg,
		Metrics: metrics,
		Health:  health,
		API: []app.Mounter{
			settings.NewHandler(settingsService),
			clients.NewHandler(clientService),
			workers.NewHandler(workerService),
			work.NewHandler(workService),
			dashboardhttp.NewHandler(logger, dashboardService),
			exporter,
			jobHandler,
		},
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
