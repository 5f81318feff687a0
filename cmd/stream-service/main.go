package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisClient "github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"

	"nft-marketplace/internal/api/middleware"
	"nft-marketplace/internal/config"
	"nft-marketplace/internal/infrastructure/redis"
	"nft-marketplace/internal/infrastructure/websocket"
	"nft-marketplace/internal/services"
	"nft-marketplace/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewWithLevel(cfg.Log.Level)

	// Initialize Redis
	rdb := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	// Initialize connection manager and stream handler
	connManager := websocket.NewConnectionManager(log)
	streamHandler := websocket.NewStreamHandler(connManager, log)

	// Relay market events to connected clients
	eventSubscriber := redis.NewEventSubscriber(rdb, log)
	relay := services.NewEventRelay(connManager, log)

	relayCtx, relayCancel := context.WithCancel(context.Background())
	defer relayCancel()
	go func() {
		if err := relay.Start(relayCtx, eventSubscriber); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Event relay stopped", "error", err)
		}
	}()

	// Setup routes
	router := mux.NewRouter()
	router.Use(middleware.CORS)

	router.HandleFunc("/ws/market", streamHandler.HandleConnection)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK, %d clients connected", connManager.ConnectionCount())
	}).Methods("GET")

	// Start HTTP server
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Stream.Host, cfg.Stream.Port),
		Handler: router,
	}

	go func() {
		log.Info("Starting stream service", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down stream service...")

	relayCancel()

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := connManager.CloseAll(); err != nil {
		log.Error("Failed to close client connections", "error", err)
	}

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Stream service stopped")
}
