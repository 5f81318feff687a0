package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"nft-marketplace/internal/domain"
	"nft-marketplace/pkg/logger"
)

// Archiver periodically mirrors the in-memory books into durable
// storage. The books stay authoritative; the archive is a write-behind
// audit copy, so a failed flush is retried on the next tick and never
// touches a transition. The archiver never closes auctions -- expiry
// stays lazy inside the book operations.
type Archiver struct {
	cron           *cron.Cron
	trades         *TradeBook
	auctions       *AuctionBook
	tradeArchive   domain.TradeArchive
	auctionArchive domain.AuctionArchive
	interval       time.Duration
	log            logger.Logger
}

func NewArchiver(
	trades *TradeBook,
	auctions *AuctionBook,
	tradeArchive domain.TradeArchive,
	auctionArchive domain.AuctionArchive,
	interval time.Duration,
	log logger.Logger,
) *Archiver {
	return &Archiver{
		cron:           cron.New(cron.WithSeconds()),
		trades:         trades,
		auctions:       auctions,
		tradeArchive:   tradeArchive,
		auctionArchive: auctionArchive,
		interval:       interval,
		log:            log,
	}
}

func (a *Archiver) Start(ctx context.Context) error {
	a.log.Info("Starting market archiver", "interval", a.interval)

	_, err := a.cron.AddFunc(fmt.Sprintf("@every %s", a.interval), func() {
		a.Flush(ctx)
	})
	if err != nil {
		return err
	}

	a.cron.Start()
	return nil
}

func (a *Archiver) Stop() error {
	a.log.Info("Stopping market archiver")
	a.cron.Stop()
	return nil
}

// Flush upserts a snapshot of every record. Upserts are idempotent, so
// re-flushing unchanged records is harmless.
func (a *Archiver) Flush(ctx context.Context) {
	for _, trade := range a.trades.Snapshot() {
		t := trade
		if err := a.tradeArchive.UpsertTrade(ctx, &t); err != nil {
			a.log.Error("Failed to archive trade", "trade_id", t.ID, "error", err)
		}
	}

	for _, auction := range a.auctions.Snapshot() {
		au := auction
		if err := a.auctionArchive.UpsertAuction(ctx, &au); err != nil {
			a.log.Error("Failed to archive auction", "auction_id", au.ID, "error", err)
		}
	}
}
