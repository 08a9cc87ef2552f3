package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	v1 "github.com/SanjayNepali/MANTRA-sub001/cmd/api/router/v1"
	"github.com/SanjayNepali/MANTRA-sub001/internal/config"
	cacheadapter "github.com/SanjayNepali/MANTRA-sub001/internal/infrastructure/cache/adapter"
	cacheport "github.com/SanjayNepali/MANTRA-sub001/internal/infrastructure/cache/port"
	"github.com/SanjayNepali/MANTRA-sub001/internal/infrastructure/database"
	queueadapter "github.com/SanjayNepali/MANTRA-sub001/internal/infrastructure/queue/adapter"
	"github.com/SanjayNepali/MANTRA-sub001/internal/infrastructure/realtime"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/application/usecase"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/moderation"
	repoadapter "github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/persistence/repository/adapter"
	httpHandler "github.com/SanjayNepali/MANTRA-sub001/internal/pkg/messaging/presentation/http"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/notifications"
	notifytask "github.com/SanjayNepali/MANTRA-sub001/internal/pkg/notifications/task"
	"github.com/SanjayNepali/MANTRA-sub001/internal/pkg/presence"
	presencetask "github.com/SanjayNepali/MANTRA-sub001/internal/pkg/presence/task"
)

func main() {
	cfg := config.Load()

	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer pool.Close()
	logger.Info().Msg("connected to PostgreSQL")

	var cache cacheport.Cache
	if cfg.RedisURL != "" {
		rctx, rcancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisCache, err := cacheadapter.NewRedisCache(rctx, cfg.RedisURL)
		rcancel()
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		cache = redisCache
		logger.Info().Msg("connected to Redis")
	} else {
		cache = cacheadapter.NewMemoryCache()
		logger.Warn().Msg("REDIS_URL not set, using in-memory cache")
	}
	defer cache.Close()

	hub := realtime.NewHub()

	store := repoadapter.NewPgConversationStore(pool, cfg.StoreTimeout)
	graph := repoadapter.NewPgSocialGraph(pool)
	presenceStore := repoadapter.NewPgPresenceStore(pool)
	notificationStore := notifications.NewPgStore(pool)

	unreadCache := notifications.NewUnreadCache(cache, store, cfg.UnreadCacheTTL, logger)
	directFanout := notifications.NewFanout(notificationStore, graph, hub, unreadCache, logger)
	inlineStatus := presence.NewInlineFanout(graph, hub)

	// The queue offloads notification delivery and presence fan-out; when
	// Redis is absent both run inline on the caller's goroutine.
	var notifier usecase.Notifier = directFanout
	var statusFanout presence.StatusFanout = inlineStatus
	var queueServer *queueadapter.AsynqServer
	if cfg.RedisURL != "" {
		queueClient, err := queueadapter.NewAsynqClient(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("queue client failed")
		}
		defer queueClient.Close()

		queueServer, err = queueadapter.NewAsynqServer(cfg.RedisURL, 10, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("queue server failed")
		}
		notifytask.RegisterDeliverTask(queueServer, directFanout)
		presencetask.RegisterStatusFanoutTask(queueServer, inlineStatus)

		notifier = notifytask.NewQueuedNotifier(queueClient, directFanout, logger)
		statusFanout = presencetask.NewQueuedFanout(queueClient, inlineStatus, cfg.HeartbeatWindow, logger)
	}

	tracker := presence.NewTracker(presenceStore, statusFanout, logger)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		if err := cache.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1.RegisterRoutes(r, httpHandler.Deps{
		Hub:               hub,
		Store:             store,
		Graph:             graph,
		Analyzer:          moderation.NewWordListAnalyzer(),
		Notifier:          notifier,
		Tracker:           tracker,
		NotificationStore: notificationStore,
		UnreadCache:       unreadCache,
		HeartbeatWindow:   cfg.HeartbeatWindow,
		MaxMessageLength:  cfg.MaxMessageLength,
		ModerationTimeout: cfg.ModerationTimeout,
		Logger:            logger,
	})

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	if queueServer != nil {
		go func() {
			if err := queueServer.Run(serverCtx); err != nil {
				logger.Error().Err(err).Msg("queue server stopped")
			}
		}()
	}

	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting messaging server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if queueServer != nil {
		if err := queueServer.Stop(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("queue server shutdown failed")
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
