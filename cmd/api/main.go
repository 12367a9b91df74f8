package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/movementpass/public-api/internal/api/http"
	"github.com/movementpass/public-api/internal/api/http/handlers"
	"github.com/movementpass/public-api/internal/auth"
	"github.com/movementpass/public-api/internal/clock"
	"github.com/movementpass/public-api/internal/config"
	"github.com/movementpass/public-api/internal/observability"
	"github.com/movementpass/public-api/internal/persistence"
	"github.com/movementpass/public-api/internal/repository"
	"github.com/movementpass/public-api/internal/service"
	"github.com/movementpass/public-api/internal/validation"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, "api")
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	var redis *persistence.Redis
	if cfg.Redis.Addr != "" {
		if redis, err = persistence.NewRedis(ctx, cfg.Redis, logger); err != nil {
			logger.Warn("redis unavailable; readiness will skip it", zap.Error(err))
		}
	}
	defer redis.Close()

	passRepo, applicantRepo := repositories(pg, logger)

	clk := clock.System{}
	validator := validation.New(clk)
	tokens := auth.NewTokenManager(auth.TokenOptions{
		Secret:   cfg.Auth.JWTSecret,
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
		TTL:      cfg.Auth.TokenTTL(),
	}, clk)
	metrics := observability.NewMetrics()

	routes := httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Identity: handlers.NewIdentityHandler(
			service.NewRegisterHandler(validator, applicantRepo, tokens, clk),
			service.NewLoginHandler(validator, applicantRepo, tokens),
		),
		Passes: handlers.NewPassesHandler(
			service.NewApplyHandler(validator, service.NewPassNormalizer(clk, clock.UUIDSource{}), passRepo),
			service.NewViewPassHandler(passRepo, applicantRepo),
			service.NewViewPassesHandler(passRepo, 0),
		),
		AuthMiddleware: auth.NewMiddleware(tokens),
		Metrics:        metrics,
	}
	app := httptransport.NewApp(cfg.App.Name, logger, metrics, cfg.App.RequestTimeout(), routes)

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// repositories picks Postgres when a DSN is configured and in-memory stores
// otherwise.
func repositories(pg *persistence.Postgres, logger *zap.Logger) (repository.PassRepository, repository.ApplicantRepository) {
	if pg.Enabled() {
		pool := pg.PoolHandle()
		return repository.NewPassRepository(pool), repository.NewApplicantRepository(pool)
	}
	logger.Warn("using in-memory stores; data is lost on restart")
	mem := repository.NewInMemory()
	return mem, mem
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
