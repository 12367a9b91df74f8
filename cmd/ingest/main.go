package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/movementpass/public-api/internal/auth"
	"github.com/movementpass/public-api/internal/clock"
	"github.com/movementpass/public-api/internal/config"
	"github.com/movementpass/public-api/internal/ingest"
	"github.com/movementpass/public-api/internal/observability"
	"github.com/movementpass/public-api/internal/persistence"
	"github.com/movementpass/public-api/internal/repository"
	"github.com/movementpass/public-api/internal/service"
	"github.com/movementpass/public-api/internal/validation"
	"github.com/movementpass/public-api/internal/worker"
)

var errMissingDSN = errors.New("POSTGRES_DSN is required for the ingest worker")

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, "ingest")
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("ingest stopped", zap.Error(err))
	}
	logger.Info("ingest shut down")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.Postgres.DSN == "" {
		return errMissingDSN
	}
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer pg.Close()

	redis, err := persistence.NewRedis(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}
	defer redis.Close()

	reader, err := worker.NewKafkaReader(cfg.Kafka)
	if err != nil {
		return err
	}
	defer reader.Close()

	clk := clock.System{}
	tokens := auth.NewTokenManager(auth.TokenOptions{
		Secret:   cfg.Auth.JWTSecret,
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
		TTL:      cfg.Auth.TokenTTL(),
	}, clk)
	metrics := observability.NewMetrics()

	reducer := ingest.NewReducer(validation.New(clk), tokens, service.NewPassNormalizer(clk, clock.UUIDSource{}), metrics)
	loader := ingest.NewLoader(repository.NewPassRepository(pg.PoolHandle()))
	dedupe := ingest.NewRedisDeduper(redis.Client, cfg.Ingest.DedupeTTL())

	consumer := worker.NewBatchConsumer(reader, reducer, loader, dedupe, worker.BatchOptions{
		Size:   cfg.Ingest.BatchSize,
		Window: cfg.Ingest.BatchWindow(),
	}, logger, metrics)

	metricsServer := &http.Server{
		Addr:              cfg.Ingest.MetricsAddr,
		Handler:           promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server stopped", zap.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("consuming apply stream",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.Topic),
		zap.String("group", cfg.Kafka.GroupID),
	)
	return consumer.Run(ctx)
}
