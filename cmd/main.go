/**
 * @description
 * This is the main entry point for the core service. It initializes
 * configuration, the database pool, the optional RabbitMQ producer and Redis
 * client, the repository, the application services, the cron scheduler, and
 * the HTTP server, then runs until a termination signal arrives.
 *
 * @dependencies
 * - log/slog, net/http, os/signal: Standard Go libraries.
 * - github.com/jackc/pgx/v5: PostgreSQL driver and pool.
 * - github.com/redis/go-redis/v9: Redis client for rate limiting.
 * - internal/api, internal/app, internal/config, internal/sources, internal/store: Internal packages.
 * - pkg/rabbitmq: Event producer.
 */

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sooohaaan/fintech-study-01-XAI-prototype-admin-sub000/internal/api"
	"github.com/sooohaaan/fintech-study-01-XAI-prototype-admin-sub000/internal/app"
	"github.com/sooohaaan/fintech-study-01-XAI-prototype-admin-sub000/internal/config"
	"github.com/sooohaaan/fintech-study-01-XAI-prototype-admin-sub000/internal/sources"
	"github.com/sooohaaan/fintech-study-01-XAI-prototype-admin-sub000/internal/store"
	rmrabbit "github.com/sooohaaan/fintech-study-01-XAI-prototype-admin-sub000/pkg/rabbitmq"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if strings.TrimSpace(cfg.AdminAPISecret) == "" {
		logger.Error("admin api secret must be configured", "env", "ADMIN_API_SECRET")
		os.Exit(1)
	}

	ctx := context.Background()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Error("unable to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = 50
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()
	logger.Info("database connection established")

	// Events degrade gracefully when the broker is unavailable.
	var publisher rmrabbit.Publisher
	if strings.TrimSpace(cfg.RabbitMQURL) != "" {
		producer, err := rmrabbit.NewEventProducer(cfg.RabbitMQURL)
		if err != nil {
			logger.Warn("rabbitmq producer unavailable; events disabled", "error", err)
		} else {
			defer producer.Close()
			publisher = producer
			logger.Info("rabbitmq producer connected")
		}
	}

	var redisClient *redis.Client
	if strings.TrimSpace(cfg.RedisURL) != "" {
		redisOptions, parseErr := redis.ParseURL(cfg.RedisURL)
		if parseErr != nil {
			logger.Warn("redis url parse failed; adjustment rate limiting disabled", "error", parseErr)
		} else {
			redisClient = redis.NewClient(redisOptions)
			pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
			if pingErr := redisClient.Ping(pingCtx).Err(); pingErr != nil {
				logger.Warn("redis ping failed; adjustment rate limiting disabled", "error", pingErr)
				redisClient.Close()
				redisClient = nil
			} else {
				defer redisClient.Close()
				logger.Info("redis connected")
			}
			cancelPing()
		}
	}

	repository := store.NewPostgresRepository(dbpool)

	pipeline := app.NewPipeline(sources.Defaults(), repository, app.DefaultRetryPolicy(), publisher, logger)
	recommender := app.NewRecommender(repository, logger)
	evaluator := app.NewMissionEvaluator(repository, publisher, logger)
	ledger := app.NewLedger(repository, publisher, logger)
	// A nil limiter disables rate limiting; Consume handles the nil receiver.
	var limiter *app.RedisAdjustRateLimiter
	if redisClient != nil {
		limiter = app.NewRedisAdjustRateLimiter(redisClient, cfg.RedisRateLimitPrefix)
	}

	scheduler := app.NewScheduler(pipeline, logger, cfg.CollectionCronSpec)
	scheduler.Start()
	logger.Info("collection scheduler started", "spec", cfg.CollectionCronSpec)

	handlers := api.NewHandlers(
		pipeline,
		recommender,
		evaluator,
		ledger,
		repository,
		limiter,
		cfg.AdjustRateLimitPerMinute,
		cfg.CollectionRunAt,
		logger,
	)
	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: api.Routes(handlers, cfg.AdminAPISecret),
	}

	go func() {
		logger.Info("http server listening", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", "error", err)
	}

	stopCtx := scheduler.Stop()
	<-stopCtx.Done()
	logger.Info("scheduler stopped gracefully")
}
