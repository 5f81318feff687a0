package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nft-marketplace/internal/domain"
	"nft-marketplace/pkg/logger"
)

type stubTradeArchive struct {
	mutex  sync.Mutex
	trades map[uint64]domain.Trade
}

func (a *stubTradeArchive) UpsertTrade(ctx context.Context, trade *domain.Trade) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.trades[trade.ID] = *trade
	return nil
}

func (a *stubTradeArchive) GetTrade(ctx context.Context, id uint64) (*domain.Trade, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	trade, ok := a.trades[id]
	if !ok {
		return nil, domain.ErrTradeNotFound
	}
	return &trade, nil
}

type stubAuctionArchive struct {
	mutex    sync.Mutex
	auctions map[uint64]domain.Auction
}

func (a *stubAuctionArchive) UpsertAuction(ctx context.Context, auction *domain.Auction) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.auctions[auction.ID] = *auction
	return nil
}

func (a *stubAuctionArchive) GetAuction(ctx context.Context, id uint64) (*domain.Auction, error) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	auction, ok := a.auctions[id]
	if !ok {
		return nil, domain.ErrAuctionNotFound
	}
	return &auction, nil
}

func TestArchiverFlush(t *testing.T) {
	m := newTestMarket()
	ctx := context.Background()

	tradeArchive := &stubTradeArchive{trades: make(map[uint64]domain.Trade)}
	auctionArchive := &stubAuctionArchive{auctions: make(map[uint64]domain.Auction)}
	archiver := NewArchiver(m.trades, m.auctions, tradeArchive, auctionArchive, time.Minute, logger.Nop())

	item := m.mintItem(seller)
	trade, err := m.trades.ListItem(ctx, item, 100, seller)
	require.NoError(t, err)

	other := m.mintItem(seller)
	auction, err := m.auctions.ListItemOnAuction(ctx, other, 1000, seller)
	require.NoError(t, err)

	archiver.Flush(ctx)

	archived, err := tradeArchive.GetTrade(ctx, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TradeOnSale, archived.State)

	// A later transition is picked up by the next flush.
	m.ledger.Credit(buyer, 100)
	_, err = m.trades.BuyItem(ctx, trade.ID, 100, buyer)
	require.NoError(t, err)

	archiver.Flush(ctx)

	archived, err = tradeArchive.GetTrade(ctx, trade.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TradeSold, archived.State)

	archivedAuction, err := auctionArchive.GetAuction(ctx, auction.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AuctionActive, archivedAuction.State)
}
