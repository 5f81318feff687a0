package services

import (
	"context"
	"sync"
	"time"

	"nft-marketplace/internal/domain"
	"nft-marketplace/internal/infrastructure/memory"
	"nft-marketplace/pkg/logger"
)

const (
	marketAccount = "marketplace"
	seller        = "0xseller"
	buyer         = "0xbuyer"
	bidderA       = "0xbidder-a"
	bidderB       = "0xbidder-b"
)

type fakeClock struct {
	mutex sync.Mutex
	now   time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.now = c.now.Add(d)
}

type capturePublisher struct {
	mutex  sync.Mutex
	events []*domain.MarketEvent
}

func (p *capturePublisher) PublishMarketEvent(ctx context.Context, event *domain.MarketEvent) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) Events() []*domain.MarketEvent {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return append([]*domain.MarketEvent(nil), p.events...)
}

type testMarket struct {
	registry *memory.ItemRegistry
	ledger   *memory.FundLedger
	trades   *TradeBook
	auctions *AuctionBook
	market   *Marketplace
	events   *capturePublisher
	clock    *fakeClock
}

func newTestMarket() *testMarket {
	registry := memory.NewItemRegistry()
	registry.GrantMinter(marketAccount)
	ledger := memory.NewFundLedger()
	events := &capturePublisher{}
	clock := newFakeClock()
	log := logger.Nop()

	guard := NewAccessGuard(registry)
	trades := NewTradeBook(registry, ledger, guard, marketAccount, log)
	trades.SetClock(clock.Now)
	auctions := NewAuctionBook(registry, ledger, guard, marketAccount, log)
	auctions.SetClock(clock.Now)
	market := NewMarketplace(registry, trades, auctions, events, marketAccount, log)

	return &testMarket{
		registry: registry,
		ledger:   ledger,
		trades:   trades,
		auctions: auctions,
		market:   market,
		events:   events,
		clock:    clock,
	}
}

// mintItem mints an item directly on the registry for owner.
func (m *testMarket) mintItem(owner string) uint64 {
	id, err := m.registry.Mint(context.Background(), marketAccount, owner, "https://example.com/item.json")
	if err != nil {
		panic(err)
	}
	return id
}
