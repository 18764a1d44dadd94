// Package main runs the charity events HTTP API with the live feed and graceful shutdown.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/charity-events/backend/config"
	"github.com/charity-events/backend/internal/activities"
	"github.com/charity-events/backend/internal/analytics"
	"github.com/charity-events/backend/internal/categories"
	"github.com/charity-events/backend/internal/exports"
	"github.com/charity-events/backend/internal/mailer"
	"github.com/charity-events/backend/internal/observability"
	"github.com/charity-events/backend/internal/realtime"
	"github.com/charity-events/backend/internal/registrations"
	"github.com/charity-events/backend/internal/worker"
	"github.com/charity-events/backend/pkg/database"
	"github.com/charity-events/backend/pkg/logger"
	"github.com/charity-events/backend/pkg/queue"
	"github.com/charity-events/backend/pkg/redis"
	"github.com/charity-events/backend/pkg/storage"
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.Init(ctx, observability.Config{
		Enabled:      cfg.Telemetry.Enabled,
		ServiceName:  cfg.Telemetry.ServiceName,
		Environment:  cfg.Telemetry.Environment,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		OTLPHeaders:  cfg.Telemetry.OTLPHeaders,
		Insecure:     cfg.Telemetry.OTLPInsecure,
		SampleRatio:  cfg.Telemetry.SampleRatio,
	}, log)
	if err != nil {
		log.Warn("tracing disabled", zap.Error(err))
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	}, log)
	if err != nil {
		log.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if cfg.Database.MigrateOnStart {
		if err := database.Migrate(ctx, pool, log); err != nil {
			log.Fatal("migrate", zap.Error(err))
		}
	}

	// Redis is optional: without it there is no confirmation queue and the live feed is local only.
	var (
		rdb      *redis.Client
		jobQueue *queue.Queue
		enqueuer registrations.Enqueuer
		pubsub   *realtime.RedisPubSub
		hub      *realtime.Hub
	)
	if cfg.Redis.Enabled() {
		rdb, err = redis.NewClient(ctx, redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}, log)
		if err != nil {
			log.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
		jobQueue = queue.NewQueue(rdb.Client, log)
		enqueuer = jobQueue
		pubsub = realtime.NewRedisPubSub(rdb.Client, log)
		hub = realtime.NewHub(log, pubsub)
	} else {
		log.Info("redis not configured: confirmation emails disabled, live feed is single-instance")
		hub = realtime.NewHub(log, nil)
	}

	var exportStore exports.ObjectStore
	if cfg.AWS.Enabled() {
		s3Client, err := storage.NewS3(ctx, storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			ExportsBucket:        cfg.AWS.ExportsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}, log)
		if err != nil {
			log.Warn("s3 disabled", zap.Error(err))
		} else {
			exportStore = s3Client
		}
	}

	activityRepo := activities.NewRepository(pool, cfg.Database.CascadeActivityDelete)
	categoryRepo := categories.NewRepository(pool)
	registrationRepo := registrations.NewRepository(pool)
	analyticsRepo := analytics.NewRepository(pool)

	rt := routes{
		activities:    activities.NewHandler(activityRepo, registrationRepo, hub, log),
		categories:    categories.NewHandler(categoryRepo, log),
		registrations: registrations.NewHandler(registrationRepo, enqueuer, hub, log),
		analytics:     analytics.NewHandler(analyticsRepo, log),
		exports:       exports.NewHandler(activityRepo, registrationRepo, exportStore, log),
		hub:           hub,
		db:            pool,
		corsOrigins:   cfg.Server.CORSAllowedOrigins,
	}
	if cfg.Telemetry.Enabled {
		rt.tracing = cfg.Telemetry.ServiceName
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      newRouter(rt, log),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if pubsub != nil {
		g.Go(func() error { return hub.Run(gctx, pubsub) })
	}
	if cfg.Worker.Enabled && jobQueue != nil {
		processor := worker.NewConfirmationProcessor(jobQueue, activityRepo, mailer.New(mailerConfig(cfg.Email), log), log)
		g.Go(func() error { return processor.Run(gctx) })
	}

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", zap.Error(err))
	}
	tracingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(tracingCtx); err != nil {
		log.Warn("tracing shutdown", zap.Error(err))
	}
	log.Info("server stopped")
}

func mailerConfig(c config.EmailConfig) mailer.Config {
	return mailer.Config{
		FromAddress: c.FromAddress,
		FromName:    c.FromName,
		SMTPHost:    c.SMTPHost,
		SMTPPort:    c.SMTPPort,
		SMTPUser:    c.SMTPUser,
		SMTPPass:    c.SMTPPass,
	}
}
