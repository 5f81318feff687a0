package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nft-marketplace/internal/domain"
)

func TestCreateItem(t *testing.T) {
	m := newTestMarket()
	ctx := context.Background()

	m.registry.RevokeMinter(marketAccount)
	_, err := m.market.CreateItem(ctx, seller, "https://example.com/item-id-0.json")
	assert.ErrorIs(t, err, domain.ErrMintNotAuthorized)

	m.registry.GrantMinter(marketAccount)

	itemID, err := m.market.CreateItem(ctx, seller, "https://example.com/item-id-0.json")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), itemID)

	owner, err := m.registry.OwnerOf(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, seller, owner)

	uri, err := m.registry.TokenURI(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/item-id-0.json", uri)

	next, err := m.market.CreateItem(ctx, seller, "https://example.com/item-id-1.json")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), next)
}

func TestFixedPriceSaleScenario(t *testing.T) {
	m := newTestMarket()
	ctx := context.Background()

	// Price in the ledger's smallest unit.
	const price = uint64(10_000_000)

	itemID, err := m.market.CreateItem(ctx, seller, "https://example.com/item-id-0.json")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), itemID)

	trade, err := m.market.ListItem(ctx, itemID, price, seller)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), trade.ID)

	m.ledger.Credit(buyer, price)
	sold, err := m.market.BuyItem(ctx, trade.ID, price, buyer)
	require.NoError(t, err)
	assert.Equal(t, domain.TradeSold, sold.State)

	owner, err := m.registry.OwnerOf(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, buyer, owner)
	assert.Equal(t, price, m.ledger.Balance(seller))
	assert.Equal(t, uint64(0), m.ledger.Balance(buyer))
}

func TestTwoBidderAuctionScenario(t *testing.T) {
	m := newTestMarket()
	ctx := context.Background()

	const startPrice = uint64(100_000)

	itemID, err := m.market.CreateItem(ctx, seller, "https://example.com/item-id-0.json")
	require.NoError(t, err)

	auction, err := m.market.ListItemOnAuction(ctx, itemID, startPrice, seller)
	require.NoError(t, err)

	m.ledger.Credit(bidderA, startPrice+100)
	m.ledger.Credit(bidderB, startPrice+200)

	_, err = m.market.MakeBid(ctx, auction.ID, startPrice+100, bidderA)
	require.NoError(t, err)
	second, err := m.market.MakeBid(ctx, auction.ID, startPrice+200, bidderB)
	require.NoError(t, err)

	assert.Equal(t, startPrice+100, m.ledger.Balance(bidderA))
	assert.Equal(t, bidderB, second.HighestBidder)
	assert.Equal(t, uint64(2), second.BidCount)

	m.clock.Advance(domain.AuctionDuration)

	finished, err := m.market.FinishAuction(ctx, auction.ID, seller)
	require.NoError(t, err)
	assert.Equal(t, domain.AuctionSold, finished.State)

	owner, err := m.registry.OwnerOf(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, bidderB, owner)
	assert.Equal(t, startPrice+200, m.ledger.Balance(seller))
}

func TestMarketplaceEmitsStateChangeEvents(t *testing.T) {
	m := newTestMarket()
	ctx := context.Background()

	itemID, err := m.market.CreateItem(ctx, seller, "https://example.com/item-id-0.json")
	require.NoError(t, err)

	trade, err := m.market.ListItem(ctx, itemID, 100, seller)
	require.NoError(t, err)

	m.ledger.Credit(buyer, 100)

	// A failed operation emits nothing.
	_, err = m.market.BuyItem(ctx, trade.ID, 99, buyer)
	require.Error(t, err)
	require.Len(t, m.events.Events(), 1)

	_, err = m.market.BuyItem(ctx, trade.ID, 100, buyer)
	require.NoError(t, err)

	events := m.events.Events()
	require.Len(t, events, 2)

	assert.Equal(t, domain.TradeStateChanged, events[0].Kind)
	assert.Equal(t, trade.ID, events[0].RecordID)
	assert.Equal(t, "on_sale", events[0].State)
	assert.NotEmpty(t, events[0].EventID)

	assert.Equal(t, domain.TradeStateChanged, events[1].Kind)
	assert.Equal(t, trade.ID, events[1].RecordID)
	assert.Equal(t, "sold", events[1].State)
	assert.Equal(t, buyer, events[1].Actor)
	assert.Equal(t, uint64(100), events[1].Amount)
}

func TestMarketplaceEmitsAuctionEvents(t *testing.T) {
	m := newTestMarket()
	ctx := context.Background()

	itemID, err := m.market.CreateItem(ctx, seller, "https://example.com/item-id-0.json")
	require.NoError(t, err)

	auction, err := m.market.ListItemOnAuction(ctx, itemID, 1000, seller)
	require.NoError(t, err)

	m.ledger.Credit(bidderA, 2000)
	_, err = m.market.MakeBid(ctx, auction.ID, 1100, bidderA)
	require.NoError(t, err)

	m.clock.Advance(domain.AuctionDuration)
	_, err = m.market.FinishAuction(ctx, auction.ID, seller)
	require.NoError(t, err)

	events := m.events.Events()
	require.Len(t, events, 3)
	assert.Equal(t, "active", events[0].State)
	assert.Equal(t, "active", events[1].State)
	assert.Equal(t, uint64(1100), events[1].Amount)
	assert.Equal(t, "invalid", events[2].State)
}

func TestGetUnknownRecords(t *testing.T) {
	m := newTestMarket()

	_, err := m.market.GetTrade(0)
	assert.ErrorIs(t, err, domain.ErrTradeNotFound)

	_, err = m.market.GetAuction(0)
	assert.ErrorIs(t, err, domain.ErrAuctionNotFound)
}
