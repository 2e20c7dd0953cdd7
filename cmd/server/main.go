// Package main runs the conference companion HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/confcompanion/backend/config"
	"github.com/confcompanion/backend/internal/conference"
	"github.com/confcompanion/backend/internal/feedback"
	"github.com/confcompanion/backend/internal/middleware"
	"github.com/confcompanion/backend/internal/podcast"
	"github.com/confcompanion/backend/internal/sessionize"
	"github.com/confcompanion/backend/internal/timecontrol"
	"github.com/confcompanion/backend/internal/users"
	"github.com/confcompanion/backend/internal/votes"
	"github.com/confcompanion/backend/internal/worker"
	"github.com/confcompanion/backend/pkg/clock"
	"github.com/confcompanion/backend/pkg/database"
	"github.com/confcompanion/backend/pkg/redis"
	"github.com/confcompanion/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
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

	// Overridable server clock; every time-gated decision goes through it.
	clk := clock.New()

	// Users
	userRepo := users.NewRepository(pool)
	userHandler := users.NewHandler(userRepo, clk, logger)

	// Conference reference data
	conferenceRepo := conference.NewRepository(pool)
	datasetCache := conference.NewCache(rdb.Client, time.Duration(cfg.Sync.CacheTTLMinutes)*time.Minute, logger)
	conferenceHandler := conference.NewHandler(conferenceRepo, datasetCache, logger)

	// Votes
	voteRepo := votes.NewRepository(pool)
	voteHandler := votes.NewHandler(voteRepo, conferenceRepo, clk, logger)

	// Feedback
	feedbackRepo := feedback.NewRepository(pool)
	feedbackHandler := feedback.NewHandler(feedbackRepo, clk, logger)

	// Sessionize upstream
	sessionizeClient := sessionize.NewClient(cfg.Sessionize.ScheduleURL, cfg.Sessionize.SpeakersURL, cfg.Sessionize.ImageBaseURL, logger)
	syncer := sessionize.NewSyncer(sessionizeClient, conferenceRepo, datasetCache, logger)
	sessionizeHandler := sessionize.NewHandler(syncer, sessionizeClient, logger)

	// Podcasts
	podcastRepo := podcast.NewRepository(pool)
	podcastHandler := podcast.NewHandler(podcastRepo, logger)

	// Time control
	timeHandler := timecontrol.NewHandler(clk, logger)

	userAuth := middleware.UserAuth(userRepo)
	adminAuth := middleware.AdminAuth(cfg.Auth.AdminSecret)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Public
	router.POST("/sign", userHandler.Sign)
	router.GET("/conference", conferenceHandler.Dataset)
	router.GET("/time", timeHandler.Now)
	router.GET("/sessionize/image/:id", sessionizeHandler.Image)
	router.GET("/podcast/all", podcastHandler.All)

	// User token required
	user := router.Group("")
	user.Use(userAuth)
	{
		user.GET("/vote", voteHandler.List)
		user.POST("/vote", voteHandler.Cast)
		user.POST("/feedback", feedbackHandler.Submit)

		get := user.Group("/get")
		{
			get.GET("/sessions", conferenceHandler.GetSessions)
			get.GET("/rooms", conferenceHandler.GetRooms)
			get.GET("/speakers", conferenceHandler.GetSpeakers)
			get.GET("/categories", conferenceHandler.GetCategories)
			get.GET("/sessionSpeakers", conferenceHandler.GetSessionSpeakers)
			get.GET("/sessionCategories", conferenceHandler.GetSessionCategories)
		}

		// Writes that report failure in the body instead of failing the call.
		send := user.Group("/send")
		{
			send.POST("/session", conferenceHandler.SendAddSession)
			send.POST("/room", conferenceHandler.SendAddRoom)
			send.POST("/speaker", conferenceHandler.SendAddSpeaker)
			send.POST("/category", conferenceHandler.SendAddCategory)
			send.POST("/sessionSpeaker", conferenceHandler.SendAddSessionSpeaker)
			send.POST("/sessionCategory", conferenceHandler.SendAddSessionCategory)
		}
	}

	// Admin secret required
	admin := router.Group("")
	admin.Use(adminAuth)
	{
		admin.GET("/vote/all", voteHandler.ListAll)
		admin.GET("/feedback/summary", feedbackHandler.Summary)
		admin.POST("/time/:value", timeHandler.Set)
		admin.POST("/sessionizeSync", sessionizeHandler.Sync)
		admin.POST("/podcast/import", podcastHandler.Import)

		adm := admin.Group("/admin")
		{
			adm.POST("/session", conferenceHandler.AdminAddSession)
			adm.POST("/room", conferenceHandler.AdminAddRoom)
			adm.POST("/speaker", conferenceHandler.AdminAddSpeaker)
			adm.POST("/category", conferenceHandler.AdminAddCategory)
			adm.POST("/sessionSpeaker", conferenceHandler.AdminAddSessionSpeaker)
			adm.POST("/sessionCategory", conferenceHandler.AdminAddSessionCategory)

			adm.GET("/sessions", conferenceHandler.GetSessions)
			adm.GET("/rooms", conferenceHandler.GetRooms)
			adm.GET("/speakers", conferenceHandler.GetSpeakers)
			adm.GET("/categories", conferenceHandler.GetCategories)
			adm.GET("/sessionSpeakers", conferenceHandler.GetSessionSpeakers)
			adm.GET("/sessionCategories", conferenceHandler.GetSessionCategories)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Background schedule refresher (optional).
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if cfg.Sync.IntervalMinutes > 0 && cfg.Sessionize.ScheduleURL != "" {
		refresher := worker.NewRefresher(syncer, time.Duration(cfg.Sync.IntervalMinutes)*time.Minute, logger)
		go refresher.Run(workerCtx)
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
