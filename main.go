package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"imposter/config"
	"imposter/handlers"
	"imposter/logger"
	"imposter/middleware"
	"imposter/models"
	"imposter/routes"
	"imposter/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		observers []services.RoomObserver
		snapshots handlers.SnapshotReader
		history   handlers.HistoryReader
	)

	// Optional backends: each one is skipped when not configured.
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if db != nil {
		if err := db.AutoMigrate(&models.GameRecord{}); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}
		historyService := services.NewHistoryService(db)
		observers = append(observers, historyService)
		history = historyService
		log.Info().Str("host", cfg.DBHost).Msg("Game history enabled")
	}

	if redisClient := config.InitRedis(cfg); redisClient != nil {
		defer redisClient.Close()
		cache := services.NewSnapshotCache(redisClient, cfg.SnapshotTTL)
		observers = append(observers, cache)
		snapshots = cache
		log.Info().Str("host", cfg.RedisHost).Msg("Redis room mirror enabled")
	}

	nc, err := config.InitNATS(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to NATS")
	}
	if nc != nil {
		defer nc.Drain()
		observers = append(observers, services.NewEventPublisher(nc, cfg.NATSSubjectPrefix))
		log.Info().Str("url", cfg.NATSURL).Msg("NATS room events enabled")
	}

	notifier := services.NewNotifier(services.DefaultNotifierQueue, observers...)
	go notifier.Run(ctx)

	// Game core
	store := services.NewRoomStore(services.NewWordBank(), services.WithPlayerLimits(cfg.MinPlayers, cfg.MaxPlayers))
	registry := services.NewMemoryRegistry()
	hub := services.NewHub(services.HubConfig{
		SendBuffer:        256,
		MessagesPerSecond: cfg.MessagesPerSecond,
		Burst:             cfg.MessageBurst,
	})
	scheduler := services.NewTimerScheduler(hub.Post)
	sessions := services.NewSessionHandler(store, registry, scheduler, notifier, services.WithRevealDelay(cfg.RevealDelay))
	go hub.Run(ctx, sessions)

	adminService := services.NewAdminService(cfg.AdminPasswordHash, cfg.JWTSecret, cfg.AdminTokenTTL)
	if !adminService.Enabled() {
		log.Info().Msg("Admin API disabled: set ADMIN_PASSWORD_HASH and JWT_SECRET to enable it")
	}

	// Initialize handlers
	roomHandler := handlers.NewRoomHandler(store, registry, cfg.PublicBaseURL)
	adminHandler := handlers.NewAdminHandler(adminService, store, registry, snapshots, history)

	// Setup Gin router
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.Logger(), middleware.CORS(cfg.AllowedOrigins))

	routes.SetupRoutes(router, hub, routes.NewUpgrader(cfg.AllowedOrigins), roomHandler, adminHandler, adminService)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}
}
