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

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/keshav-rathi-0/Medilink-sub001/internal/config"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/handler/health"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/handler/prometheus"
	"github.com/keshav-rathi-0/Medilink-sub001/internal/repository/postgres"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/circuitbreaker"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/logger"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/messaging/redis"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/metrics"
	"github.com/keshav-rathi-0/Medilink-sub001/pkg/worker"
)

func main() {
	var configFile string
	cmd := &cobra.Command{
		Use:           "medilink-worker",
		Short:         "Relay outbox events to Redis and prune delivered rows",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "path to config.yaml")

	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("worker failed")
		os.Exit(1)
	}
}

func run(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Console:    cfg.Log.Console,
	})
	appLogger.SetGlobal()

	zl, err := zap.NewProduction()
	if err != nil {
		zl = zap.NewNop()
	}
	defer func() { _ = zl.Sync() }()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := postgres.NewDB(connectCtx, cfg.Database)
	cancel()
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(ctx, redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultSettings("redis"), zl), appLogger.Zerolog())
	if err != nil {
		return fmt.Errorf("redis broker: %w", err)
	}
	defer broker.Close()

	base := postgres.NewBaseRepository(db)
	outboxRepo := postgres.NewOutboxRepository(base)
	m := metrics.NewMetrics("medilink_worker", nil)

	processor, err := worker.NewOutboxProcessor(postgres.NewTransactor(db), outboxRepo, broker, worker.OutboxProcessorConfig{
		Channel:       cfg.Redis.Channel,
		BatchSize:     cfg.Outbox.BatchSize,
		PollInterval:  cfg.Outbox.PollInterval,
		RetryAttempts: cfg.Outbox.RetryAttempts,
	}, appLogger.WithFields(map[string]interface{}{"component": "outbox-processor"}), m)
	if err != nil {
		return fmt.Errorf("outbox processor: %w", err)
	}
	cleanup := worker.NewOutboxCleanupWorker(outboxRepo, cfg.Outbox.Retention, time.Hour,
		appLogger.WithFields(map[string]interface{}{"component": "outbox-cleanup"}), m)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	health.NewHandler(map[string]health.Check{
		"database": db.PingContext,
		"redis":    broker.Ping,
	}).RegisterRoutes(engine)
	prometheus.New(nil).RegisterRoutes(engine)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Outbox.HealthPort),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		processor.Start(gctx)
		return nil
	})
	g.Go(func() error {
		cleanup.Start(gctx)
		return nil
	})
	g.Go(func() error {
		appLogger.Info("health server listening", "port", cfg.Outbox.HealthPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	appLogger.Info("worker stopped")
	return err
}
