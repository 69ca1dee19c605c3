package components

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"exquisitos/internal/api"
	"exquisitos/internal/config"
	"exquisitos/internal/redis"
	"exquisitos/internal/service"
	"exquisitos/internal/storage/postgres"
	"exquisitos/pkg/logger"
)

type Components struct {
	logger     *slog.Logger
	HttpServer *api.Server
	MailSender *service.MailSender
	Postgres   *postgres.Postgres
	Redis      *redis.Redis
	MailQ      *redis.MailQueue
}

func InitComponents(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	logger.Info("Initializing Postgres")

	storage, err := postgres.NewPostgres(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to init postgres",
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("failed to init postgres: %w", err)
	}

	logger.Info("Initializing Redis")
	redisClient, err := redis.NewRedis(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to init redis: %w", err)
	}

	placeCache := redis.NewPlaceCache(redisClient)
	mailQueue := redis.NewMailQueue(redisClient.Client, "mail:reset:queue")

	authSvc := service.NewAuthService(storage.Users(), mailQueue, service.NewGoogleVerifier(cfg.Auth.GoogleClientID), logger, cfg.Auth)
	placeSvc := service.NewPlaceService(storage.Places(), placeCache, logger, cfg.Places)
	reviewSvc := service.NewReviewService(storage.Reviews(), placeCache, logger, cfg.Reviews)

	srv := service.NewService(authSvc, placeSvc, reviewSvc)

	httpServer := api.NewServer(cfg, logger, srv)
	mailSender := service.NewMailSender(logger, cfg.Mail, mailQueue)
	logger.Info("Initialized server")

	return &Components{
		logger:     logger,
		HttpServer: httpServer,
		MailSender: mailSender,
		Postgres:   storage,
		Redis:      redisClient,
		MailQ:      mailQueue,
	}, nil
}

func SetupLogger(env string) *slog.Logger {
	switch env {
	case "local":
		return logger.SetupPrettySlog()
	case "dev":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	default:
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	}
}

func (c *Components) ShutdownAll() {
	start := time.Now()
	c.logger.Info("Shutting down components")

	c.Postgres.Pool.Close()
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.logger.Error("Redis close failed", slog.String("err", err.Error()))
		}
	}

	c.logger.Info("All components stopped",
		slog.Duration("latency", time.Since(start)))
}
