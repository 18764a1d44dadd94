// Package main runs the background job worker (registration confirmation emails).
package main

import (
	"context"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/charity-events/backend/config"
	"github.com/charity-events/backend/internal/activities"
	"github.com/charity-events/backend/internal/mailer"
	"github.com/charity-events/backend/internal/worker"
	"github.com/charity-events/backend/pkg/database"
	"github.com/charity-events/backend/pkg/logger"
	"github.com/charity-events/backend/pkg/queue"
	"github.com/charity-events/backend/pkg/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if !cfg.Redis.Enabled() {
		log.Fatal("worker requires REDIS_ADDR")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	}, log)
	if err != nil {
		log.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := redis.NewClient(ctx, redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}, log)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	m := mailer.New(mailer.Config{
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SMTPHost:    cfg.Email.SMTPHost,
		SMTPPort:    cfg.Email.SMTPPort,
		SMTPUser:    cfg.Email.SMTPUser,
		SMTPPass:    cfg.Email.SMTPPass,
	}, log)
	activityRepo := activities.NewRepository(pool, cfg.Database.CascadeActivityDelete)
	jobQueue := queue.NewQueue(rdb.Client, log)
	processor := worker.NewConfirmationProcessor(jobQueue, activityRepo, m, log)

	if err := processor.Run(ctx); err != nil {
		log.Error("worker", zap.Error(err))
	}
	log.Info("worker stopped")
}
