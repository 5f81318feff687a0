package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisClient "github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"nft-marketplace/internal/api/handlers"
	"nft-marketplace/internal/config"
	"nft-marketplace/internal/infrastructure/memory"
	"nft-marketplace/internal/infrastructure/mysql"
	"nft-marketplace/internal/infrastructure/redis"
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
	log.Info("Starting market service", "config", cfg.String())

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

	// Initialize MySQL
	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		log.Error("Failed to connect to MySQL", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		log.Error("Failed to ping MySQL", "error", err)
		os.Exit(1)
	}

	// Collaborators: the item registry and the fund ledger. The
	// marketplace account gets the minter role so createItem works.
	registry := memory.NewItemRegistry()
	registry.GrantMinter(cfg.Market.Account)
	ledger := memory.NewFundLedger()

	// Engine
	eventPublisher := redis.NewEventPublisher(rdb)
	guard := services.NewAccessGuard(registry)
	tradeBook := services.NewTradeBook(registry, ledger, guard, cfg.Market.Account, log)
	auctionBook := services.NewAuctionBook(registry, ledger, guard, cfg.Market.Account, log)
	market := services.NewMarketplace(registry, tradeBook, auctionBook, eventPublisher, cfg.Market.Account, log)

	// Archival write-behind
	tradeArchive := mysql.NewMySQLTradeArchive(db)
	auctionArchive := mysql.NewMySQLAuctionArchive(db)
	archiver := services.NewArchiver(tradeBook, auctionBook, tradeArchive, auctionArchive,
		cfg.Market.ArchiveInterval, log)

	// HTTP server
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))

	marketHandler := handlers.NewMarketHandler(market, log)
	opsHandler := handlers.NewOpsHandler(registry, ledger, log)

	api := e.Group("/api/v1")
	api.POST("/items", marketHandler.CreateItem)
	api.GET("/items/:id/owner", opsHandler.GetItemOwner)
	api.POST("/items/:id/approve", opsHandler.ApproveItem)
	api.POST("/trades", marketHandler.ListItem)
	api.GET("/trades/:id", marketHandler.GetTrade)
	api.POST("/trades/:id/buy", marketHandler.BuyItem)
	api.POST("/trades/:id/cancel", marketHandler.CancelTrade)
	api.POST("/auctions", marketHandler.ListItemOnAuction)
	api.GET("/auctions/:id", marketHandler.GetAuction)
	api.POST("/auctions/:id/bids", marketHandler.MakeBid)
	api.POST("/auctions/:id/finish", marketHandler.FinishAuction)
	api.POST("/auctions/:id/cancel", marketHandler.CancelAuction)
	api.POST("/accounts/:account/deposit", opsHandler.Deposit)
	api.GET("/accounts/:account/balance", opsHandler.GetBalance)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":    "ok",
			"service":   "market-service",
			"timestamp": time.Now().Format(time.RFC3339),
			"instance":  cfg.Instance.ID,
		})
	})

	// Start background services
	go func() {
		if err := archiver.Start(context.Background()); err != nil {
			log.Error("Failed to start archiver", "error", err)
		}
	}()

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		log.Info("Starting market API server", "address", serverAddr)
		if err := e.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down market service...")

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := archiver.Stop(); err != nil {
		log.Error("Failed to stop archiver", "error", err)
	}
	// One final flush so the archive reflects the latest transitions.
	archiver.Flush(ctx)

	if err := e.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Market service stopped")
}
