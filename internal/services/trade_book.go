package services

import (
	"context"
	"sync"
	"time"

	"nft-marketplace/internal/domain"
	"nft-marketplace/pkg/logger"
)

// TradeBook is the registry of fixed-price listings. All mutating
// operations run under one lock, so every transition is atomic with
// respect to the others and no caller ever observes a half-applied
// custody move. Records are append-only and survive as an audit trail.
type TradeBook struct {
	registry domain.ItemRegistry
	ledger   domain.FundLedger
	guard    *AccessGuard
	account  string
	log      logger.Logger

	mutex  sync.RWMutex
	trades map[uint64]*domain.Trade
	nextID uint64

	now func() time.Time
}

func NewTradeBook(
	registry domain.ItemRegistry,
	ledger domain.FundLedger,
	guard *AccessGuard,
	account string,
	log logger.Logger,
) *TradeBook {
	return &TradeBook{
		registry: registry,
		ledger:   ledger,
		guard:    guard,
		account:  account,
		log:      log,
		trades:   make(map[uint64]*domain.Trade),
		now:      time.Now,
	}
}

// SetClock overrides the time source. Tests use this to step past
// state-change timestamps deterministically.
func (b *TradeBook) SetClock(now func() time.Time) {
	b.now = now
}

// ListItem creates a trade in ON_SALE and moves the item into
// marketplace custody. The seller must be the item's owner or an
// approved operator.
func (b *TradeBook) ListItem(ctx context.Context, item, price uint64, seller string) (*domain.Trade, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if err := b.guard.CanTransfer(ctx, item, seller); err != nil {
		return nil, err
	}

	if err := b.registry.Transfer(ctx, item, seller, b.account); err != nil {
		return nil, err
	}

	now := b.now()
	trade := &domain.Trade{
		ID:             b.nextID,
		Item:           item,
		Seller:         seller,
		Price:          price,
		CreatedAt:      now,
		StateChangedAt: now,
		State:          domain.TradeOnSale,
	}
	b.trades[trade.ID] = trade
	b.nextID++

	b.log.Info("Item listed", "trade_id", trade.ID, "item", item, "price", price, "seller", seller)

	copied := *trade
	return &copied, nil
}

// BuyItem settles a trade: the buyer pays exactly the asking price,
// the payment is forwarded to the seller and the item leaves
// marketplace custody. Any payment mismatch is rejected.
func (b *TradeBook) BuyItem(ctx context.Context, tradeID, paid uint64, buyer string) (*domain.Trade, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	trade, ok := b.trades[tradeID]
	if !ok {
		return nil, domain.ErrTradeNotFound
	}
	if trade.State != domain.TradeOnSale {
		return nil, domain.ErrTradeNotActive
	}
	if paid != trade.Price {
		return nil, domain.ErrIncorrectPayment
	}

	if err := b.ledger.Transfer(ctx, buyer, trade.Seller, paid); err != nil {
		return nil, err
	}
	if err := b.registry.Transfer(ctx, trade.Item, b.account, buyer); err != nil {
		// Unwind the payment so the failed call leaves balances untouched.
		if rbErr := b.ledger.Transfer(ctx, trade.Seller, buyer, paid); rbErr != nil {
			b.log.Error("Failed to unwind payment", "trade_id", tradeID, "error", rbErr)
		}
		return nil, err
	}

	trade.State = domain.TradeSold
	trade.StateChangedAt = b.now()

	b.log.Info("Item sold", "trade_id", tradeID, "item", trade.Item, "buyer", buyer, "price", paid)

	copied := *trade
	return &copied, nil
}

// Cancel delists a trade. Only the seller may cancel, and only while
// the trade is still on sale; the item returns to the seller's custody.
func (b *TradeBook) Cancel(ctx context.Context, tradeID uint64, caller string) (*domain.Trade, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	trade, ok := b.trades[tradeID]
	if !ok {
		return nil, domain.ErrTradeNotFound
	}
	if !b.guard.IsSeller(trade.Seller, caller) {
		return nil, domain.ErrNotSeller
	}
	if trade.State != domain.TradeOnSale {
		return nil, domain.ErrTradeNotActive
	}

	if err := b.registry.Transfer(ctx, trade.Item, b.account, trade.Seller); err != nil {
		return nil, err
	}

	trade.State = domain.TradeCanceled
	trade.StateChangedAt = b.now()

	b.log.Info("Trade canceled", "trade_id", tradeID, "item", trade.Item, "seller", trade.Seller)

	copied := *trade
	return &copied, nil
}

// GetTrade returns a copy of the trade record.
func (b *TradeBook) GetTrade(tradeID uint64) (*domain.Trade, error) {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	trade, ok := b.trades[tradeID]
	if !ok {
		return nil, domain.ErrTradeNotFound
	}
	copied := *trade
	return &copied, nil
}

// Snapshot returns copies of all trade records ordered by id. The
// archiver flushes these to durable storage.
func (b *TradeBook) Snapshot() []domain.Trade {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	trades := make([]domain.Trade, 0, len(b.trades))
	for id := uint64(0); id < b.nextID; id++ {
		if trade, ok := b.trades[id]; ok {
			trades = append(trades, *trade)
		}
	}
	return trades
}
