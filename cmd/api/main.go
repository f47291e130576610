package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/rashup198/merchant-mailer/internal/channel"
	"github.com/rashup198/merchant-mailer/internal/compose"
	"github.com/rashup198/merchant-mailer/internal/config"
	"github.com/rashup198/merchant-mailer/internal/handler"
	"github.com/rashup198/merchant-mailer/internal/infra/postgresql"
	"github.com/rashup198/merchant-mailer/internal/infra/postgresql/migrations"
	infraredis "github.com/rashup198/merchant-mailer/internal/infra/redis"
	"github.com/rashup198/merchant-mailer/internal/observability"
	"github.com/rashup198/merchant-mailer/internal/repository"
	"github.com/rashup198/merchant-mailer/internal/service"
	"github.com/rashup198/merchant-mailer/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}

	if err := migrations.Migrate(db); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("postgres underlying db init failed", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	limiter, err := infraredis.NewRedisRateLimiter(rdb, cfg.RateLimitPerSec)
	if err != nil {
		logger.Fatal("rate limiter initialization failed", zap.Error(err))
	}

	composer, err := compose.NewComposer()
	if err != nil {
		logger.Fatal("composer initialization failed", zap.Error(err))
	}

	relay, err := channel.NewMailRelay(cfg.MailRelayURL, cfg.MailRelayToken, cfg.MailFrom)
	if err != nil {
		logger.Fatal("mail relay initialization failed", zap.Error(err))
	}

	outcomes := repository.NewGormOutcomeRepo(db)
	batches := repository.NewGormBatchRepo(db)

	pipeline, err := service.NewDispatchPipeline(outcomes, batches, relay, composer, limiter, logger)
	if err != nil {
		logger.Fatal("dispatch pipeline initialization failed", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	pipeline.SetMetrics(metrics)

	app := fiber.New(fiber.Config{
		AppName:      "merchant-mailer",
		ErrorHandler: transport.ErrorHandler(logger),
	})

	app.Use(requestid.New())
	app.Use(metrics.HTTPMiddleware())

	handler.RegisterHealthRoutes(app, sqlDB, rdb)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	if err := handler.RegisterDispatchRoutes(app, pipeline); err != nil {
		logger.Fatal("route registration failed", zap.Error(err))
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig

		logger.Info("shutdown signal received")
		if err := app.Shutdown(); err != nil {
			logger.Error("server shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("merchant-mailer api started", zap.Int("port", cfg.APIPort))
	if err := app.Listen(fmt.Sprintf(":%d", cfg.APIPort)); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
