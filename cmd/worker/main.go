// Package main runs the standalone schedule refresh worker. Useful when the
// periodic Sessionize sync should live outside the API process.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/confcompanion/backend/config"
	"github.com/confcompanion/backend/internal/conference"
	"github.com/confcompanion/backend/internal/sessionize"
	"github.com/confcompanion/backend/internal/worker"
	"github.com/confcompanion/backend/pkg/database"
	"github.com/confcompanion/backend/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if cfg.Sessionize.ScheduleURL == "" {
		logger.Fatal("SESSIONIZE_SCHEDULE_URL must be set for the worker")
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	conferenceRepo := conference.NewRepository(pool)
	datasetCache := conference.NewCache(rdb.Client, time.Duration(cfg.Sync.CacheTTLMinutes)*time.Minute, logger)
	client := sessionize.NewClient(cfg.Sessionize.ScheduleURL, cfg.Sessionize.SpeakersURL, cfg.Sessionize.ImageBaseURL, logger)
	syncer := sessionize.NewSyncer(client, conferenceRepo, datasetCache, logger)

	interval := time.Duration(cfg.Sync.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	refresher := worker.NewRefresher(syncer, interval, logger)

	workerCtx, cancel := context.WithCancel(ctx)
	go refresher.Run(workerCtx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
