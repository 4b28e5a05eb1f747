package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"asset-marketplace/config"
	"asset-marketplace/internal/adapter/events"
	httpHandler "asset-marketplace/internal/adapter/http/handler"
	"asset-marketplace/internal/adapter/oracle"
	"asset-marketplace/internal/adapter/sink"
	pebbleStorage "asset-marketplace/internal/adapter/storage/pebble"
	pgStorage "asset-marketplace/internal/adapter/storage/postgres"
	redisStorage "asset-marketplace/internal/adapter/storage/redis"
	"asset-marketplace/internal/adapter/ws"
	"asset-marketplace/internal/core/ledger"
	"asset-marketplace/internal/core/ports"
	"asset-marketplace/internal/service"
	"asset-marketplace/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting Asset Marketplace")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	accountRepo := pgStorage.NewAccountRepo(pool)
	eventRepo := pgStorage.NewEventRepo(pool)

	// Initialize core services
	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	authSvc := service.NewAuthService(accountRepo, hashSvc, tokenSvc)

	// Initialize the in-memory ledger, restoring the last snapshot if
	// snapshot persistence is enabled.
	led := ledger.New()
	var snapStore *pebbleStorage.SnapshotStore
	if cfg.Snapshot.Enabled {
		snapStore, err = pebbleStorage.Open(cfg.Snapshot.Dir, log)
		if err != nil {
			log.Fatal().Err(err).Str("dir", cfg.Snapshot.Dir).Msg("Failed to open snapshot store")
		}
		defer snapStore.Close()

		state, err := snapStore.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load ledger snapshot")
		}
		if state != nil {
			led.Restore(state)
			log.Info().
				Int("listings", len(state.Listings)).
				Int("proceeds", len(state.Proceeds)).
				Msg("Ledger restored from snapshot")
		}
	}

	// External dependencies
	oracleClient := oracle.NewClient(cfg.Oracle.BaseURL, cfg.Oracle.Timeout, log)
	sinkClient := sink.NewClient(cfg.Sink.BaseURL, cfg.Sink.Timeout, log)

	// Event fanout: journal always, websocket hub always, Kafka optional.
	hub := ws.NewHub(log)
	var publisher ports.EventPublisher
	if cfg.Events.Enabled {
		kafkaPub := events.NewKafkaPublisher(cfg.Events.Brokers, cfg.Events.Topic)
		defer kafkaPub.Close()
		publisher = kafkaPub
		log.Info().Strs("brokers", cfg.Events.Brokers).Str("topic", cfg.Events.Topic).Msg("Kafka event mirroring enabled")
	}
	eventSink := service.NewEventFanout(eventRepo, hub, publisher, log)

	// Marketplace service
	marketSvc := service.NewMarketplaceService(
		led,
		oracleClient,
		sinkClient,
		eventSink,
		cfg.Market.OperatorID,
		log,
	)

	// Initialize rate limit store
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		MarketSvc:      marketSvc,
		TokenSvc:       tokenSvc,
		Journal:        eventRepo,
		Hub:            hub,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		PriceDecimals:  cfg.Market.PriceDecimals,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	hub.Close()

	// Snapshot the ledger so listings and proceeds survive the restart.
	if snapStore != nil {
		if err := snapStore.Save(led.Snapshot()); err != nil {
			log.Error().Err(err).Msg("Failed to save ledger snapshot")
		} else {
			log.Info().Msg("Ledger snapshot saved")
		}
	}

	log.Info().Msg("Server exited")
}
