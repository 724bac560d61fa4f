package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/orionfest/backend/config"
	"github.com/orionfest/backend/internal/email"
	"github.com/orionfest/backend/internal/emaillogs"
	"github.com/orionfest/backend/internal/worker"
	"github.com/orionfest/backend/pkg/database"
	"github.com/orionfest/backend/pkg/queue"
	redisclient "github.com/orionfest/backend/pkg/redis"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := redisclient.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	jobQueue := queue.NewQueue(rdb.Client, logger)
	emailLogs := emaillogs.NewRepository(pool)
	sender := email.NewSMTPSender(cfg.Email)

	processor := worker.NewEmailProcessor(sender, emailLogs, jobQueue, logger)

	logger.Info("email worker started")
	processor.Run(ctx)
	logger.Info("email worker stopped")
}
