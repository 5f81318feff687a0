package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"nft-marketplace/internal/domain"
	"nft-marketplace/pkg/logger"
)

// Marketplace is the single entry surface composing the trade book,
// the auction book and the external item registry. It performs the
// mint delegation and emits one MarketEvent per committed transition;
// no collaborator ever calls back into it.
type Marketplace struct {
	registry domain.ItemRegistry
	trades   *TradeBook
	auctions *AuctionBook
	eventPub domain.EventPublisher
	account  string
	log      logger.Logger
}

func NewMarketplace(
	registry domain.ItemRegistry,
	trades *TradeBook,
	auctions *AuctionBook,
	eventPub domain.EventPublisher,
	account string,
	log logger.Logger,
) *Marketplace {
	return &Marketplace{
		registry: registry,
		trades:   trades,
		auctions: auctions,
		eventPub: eventPub,
		account:  account,
		log:      log,
	}
}

// CreateItem mints a new item owned by caller. The marketplace account
// must hold the registry's minter role.
func (m *Marketplace) CreateItem(ctx context.Context, caller, tokenURI string) (uint64, error) {
	return m.registry.Mint(ctx, m.account, caller, tokenURI)
}

func (m *Marketplace) ListItem(ctx context.Context, item, price uint64, seller string) (*domain.Trade, error) {
	trade, err := m.trades.ListItem(ctx, item, price, seller)
	if err != nil {
		return nil, err
	}
	m.publishTradeEvent(ctx, trade, seller, trade.Price)
	return trade, nil
}

func (m *Marketplace) BuyItem(ctx context.Context, tradeID, paid uint64, buyer string) (*domain.Trade, error) {
	trade, err := m.trades.BuyItem(ctx, tradeID, paid, buyer)
	if err != nil {
		return nil, err
	}
	m.publishTradeEvent(ctx, trade, buyer, paid)
	return trade, nil
}

func (m *Marketplace) Cancel(ctx context.Context, tradeID uint64, caller string) (*domain.Trade, error) {
	trade, err := m.trades.Cancel(ctx, tradeID, caller)
	if err != nil {
		return nil, err
	}
	m.publishTradeEvent(ctx, trade, caller, 0)
	return trade, nil
}

func (m *Marketplace) ListItemOnAuction(ctx context.Context, item, bidStartPrice uint64, seller string) (*domain.Auction, error) {
	auction, err := m.auctions.ListItemOnAuction(ctx, item, bidStartPrice, seller)
	if err != nil {
		return nil, err
	}
	m.publishAuctionEvent(ctx, auction, seller)
	return auction, nil
}

func (m *Marketplace) MakeBid(ctx context.Context, auctionID, amount uint64, bidder string) (*domain.Auction, error) {
	auction, err := m.auctions.MakeBid(ctx, auctionID, amount, bidder)
	if err != nil {
		return nil, err
	}
	m.publishAuctionEvent(ctx, auction, bidder)
	return auction, nil
}

func (m *Marketplace) FinishAuction(ctx context.Context, auctionID uint64, caller string) (*domain.Auction, error) {
	auction, err := m.auctions.FinishAuction(ctx, auctionID, caller)
	if err != nil {
		return nil, err
	}
	m.publishAuctionEvent(ctx, auction, caller)
	return auction, nil
}

func (m *Marketplace) CancelAuction(ctx context.Context, auctionID uint64, caller string) (*domain.Auction, error) {
	auction, err := m.auctions.CancelAuction(ctx, auctionID, caller)
	if err != nil {
		return nil, err
	}
	m.publishAuctionEvent(ctx, auction, caller)
	return auction, nil
}

func (m *Marketplace) GetTrade(tradeID uint64) (*domain.Trade, error) {
	return m.trades.GetTrade(tradeID)
}

func (m *Marketplace) GetAuction(auctionID uint64) (*domain.Auction, error) {
	return m.auctions.GetAuction(auctionID)
}

// Publish failures are logged and swallowed: the transition is already
// committed and must not be rolled back for an observer's sake.
func (m *Marketplace) publishTradeEvent(ctx context.Context, trade *domain.Trade, actor string, amount uint64) {
	event := &domain.MarketEvent{
		EventID:   uuid.New().String(),
		Kind:      domain.TradeStateChanged,
		RecordID:  trade.ID,
		State:     trade.State.String(),
		Item:      trade.Item,
		Seller:    trade.Seller,
		Actor:     actor,
		Amount:    amount,
		Timestamp: time.Now(),
	}
	if err := m.eventPub.PublishMarketEvent(ctx, event); err != nil {
		m.log.Error("Failed to publish trade event", "trade_id", trade.ID, "error", err)
	}
}

func (m *Marketplace) publishAuctionEvent(ctx context.Context, auction *domain.Auction, actor string) {
	event := &domain.MarketEvent{
		EventID:   uuid.New().String(),
		Kind:      domain.AuctionStateChanged,
		RecordID:  auction.ID,
		State:     auction.State.String(),
		Item:      auction.Item,
		Seller:    auction.Seller,
		Actor:     actor,
		Amount:    auction.HighestBid,
		Timestamp: time.Now(),
	}
	if err := m.eventPub.PublishMarketEvent(ctx, event); err != nil {
		m.log.Error("Failed to publish auction event", "auction_id", auction.ID, "error", err)
	}
}
