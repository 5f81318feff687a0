package services

import (
	"context"
	"sync"
	"time"

	"nft-marketplace/internal/domain"
	"nft-marketplace/pkg/logger"
)

// AuctionBook is the registry of timed English auctions. Like the
// trade book it serializes every mutation under one lock: refunding the
// outbid leader and recording the new bid are indivisible, so escrow
// for an auction never holds more than one bid's worth of funds.
//
// The bidding window is fixed at listing time. Expiry is evaluated
// lazily against the injected clock whenever a time-sensitive operation
// runs; nothing closes an auction in the background.
type AuctionBook struct {
	registry domain.ItemRegistry
	ledger   domain.FundLedger
	guard    *AccessGuard
	account  string
	log      logger.Logger

	mutex    sync.RWMutex
	auctions map[uint64]*domain.Auction
	nextID   uint64

	now func() time.Time
}

func NewAuctionBook(
	registry domain.ItemRegistry,
	ledger domain.FundLedger,
	guard *AccessGuard,
	account string,
	log logger.Logger,
) *AuctionBook {
	return &AuctionBook{
		registry: registry,
		ledger:   ledger,
		guard:    guard,
		account:  account,
		log:      log,
		auctions: make(map[uint64]*domain.Auction),
		now:      time.Now,
	}
}

func (b *AuctionBook) SetClock(now func() time.Time) {
	b.now = now
}

// ListItemOnAuction creates an auction in ON_AUCTION with no bids and
// moves the item into marketplace custody. The bidding window runs for
// AuctionDuration from creation.
func (b *AuctionBook) ListItemOnAuction(ctx context.Context, item, bidStartPrice uint64, seller string) (*domain.Auction, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if err := b.guard.CanTransfer(ctx, item, seller); err != nil {
		return nil, err
	}

	if err := b.registry.Transfer(ctx, item, seller, b.account); err != nil {
		return nil, err
	}

	now := b.now()
	auction := &domain.Auction{
		ID:             b.nextID,
		Item:           item,
		Seller:         seller,
		BidStartPrice:  bidStartPrice,
		CreatedAt:      now,
		StateChangedAt: now,
		State:          domain.AuctionActive,
	}
	b.auctions[auction.ID] = auction
	b.nextID++

	b.log.Info("Item listed on auction", "auction_id", auction.ID, "item", item,
		"start_price", bidStartPrice, "seller", seller)

	copied := *auction
	return &copied, nil
}

// MakeBid escrows the bidder's funds and records the new highest bid.
// The first bid must meet the start price; later bids must strictly
// beat the current highest, whose bidder is refunded in full before the
// new bid is recorded.
func (b *AuctionBook) MakeBid(ctx context.Context, auctionID, amount uint64, bidder string) (*domain.Auction, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	auction, ok := b.auctions[auctionID]
	if !ok {
		return nil, domain.ErrAuctionNotFound
	}
	if auction.State != domain.AuctionActive {
		return nil, domain.ErrAuctionNotActive
	}
	if !b.now().Before(auction.Deadline()) {
		return nil, domain.ErrAuctionEnded
	}
	if auction.BidCount == 0 {
		if amount < auction.BidStartPrice {
			return nil, domain.ErrBidBelowStartPrice
		}
	} else if amount <= auction.HighestBid {
		return nil, domain.ErrBidBelowHighest
	}

	// Escrow the new bid first, then release the old one. If the refund
	// fails the new escrow is unwound, leaving everything as it was.
	if err := b.ledger.Transfer(ctx, bidder, b.account, amount); err != nil {
		return nil, err
	}
	if auction.BidCount > 0 {
		if err := b.ledger.Transfer(ctx, b.account, auction.HighestBidder, auction.HighestBid); err != nil {
			if rbErr := b.ledger.Transfer(ctx, b.account, bidder, amount); rbErr != nil {
				b.log.Error("Failed to unwind bid escrow", "auction_id", auctionID, "error", rbErr)
			}
			return nil, err
		}
	}

	auction.HighestBid = amount
	auction.HighestBidder = bidder
	auction.BidCount++
	auction.StateChangedAt = b.now()

	b.log.Info("Bid accepted", "auction_id", auctionID, "bidder", bidder,
		"amount", amount, "bid_count", auction.BidCount)

	copied := *auction
	return &copied, nil
}

// FinishAuction settles an auction after its window has elapsed. With
// two or more bids the item goes to the highest bidder and the funds to
// the seller; with fewer the auction is invalidated, the item returns
// to the seller and a lone bid is refunded in full.
func (b *AuctionBook) FinishAuction(ctx context.Context, auctionID uint64, caller string) (*domain.Auction, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	auction, err := b.closable(auctionID, caller)
	if err != nil {
		return nil, err
	}

	if auction.BidCount >= domain.MinBidsForSale {
		if err := b.ledger.Transfer(ctx, b.account, auction.Seller, auction.HighestBid); err != nil {
			return nil, err
		}
		if err := b.registry.Transfer(ctx, auction.Item, b.account, auction.HighestBidder); err != nil {
			if rbErr := b.ledger.Transfer(ctx, auction.Seller, b.account, auction.HighestBid); rbErr != nil {
				b.log.Error("Failed to unwind settlement", "auction_id", auctionID, "error", rbErr)
			}
			return nil, err
		}
		auction.State = domain.AuctionSold
	} else {
		if err := b.unwind(ctx, auction); err != nil {
			return nil, err
		}
		auction.State = domain.AuctionInvalid
	}

	auction.StateChangedAt = b.now()

	b.log.Info("Auction finished", "auction_id", auctionID, "state", auction.State.String(),
		"bid_count", auction.BidCount, "highest_bid", auction.HighestBid)

	copied := *auction
	return &copied, nil
}

// CancelAuction unwinds an auction after its window has elapsed: the
// item returns to the seller and any escrowed bid is refunded. Sellers
// cannot pull a live auction early.
func (b *AuctionBook) CancelAuction(ctx context.Context, auctionID uint64, caller string) (*domain.Auction, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	auction, err := b.closable(auctionID, caller)
	if err != nil {
		return nil, err
	}

	if err := b.unwind(ctx, auction); err != nil {
		return nil, err
	}

	auction.State = domain.AuctionCanceled
	auction.StateChangedAt = b.now()

	b.log.Info("Auction canceled", "auction_id", auctionID, "seller", auction.Seller)

	copied := *auction
	return &copied, nil
}

// closable checks the shared finish/cancel preconditions: the auction
// exists, is active, its window has elapsed and the caller is the
// seller. Caller must hold the write lock.
func (b *AuctionBook) closable(auctionID uint64, caller string) (*domain.Auction, error) {
	auction, ok := b.auctions[auctionID]
	if !ok {
		return nil, domain.ErrAuctionNotFound
	}
	if auction.State != domain.AuctionActive {
		return nil, domain.ErrAuctionNotActive
	}
	if b.now().Before(auction.Deadline()) {
		return nil, domain.ErrAuctionNotEnded
	}
	if !b.guard.IsSeller(auction.Seller, caller) {
		return nil, domain.ErrNotSeller
	}
	return auction, nil
}

// unwind returns the item to the seller and refunds the escrowed bid,
// if any. The item move is compensated when the refund fails.
func (b *AuctionBook) unwind(ctx context.Context, auction *domain.Auction) error {
	if err := b.registry.Transfer(ctx, auction.Item, b.account, auction.Seller); err != nil {
		return err
	}
	if auction.BidCount > 0 {
		if err := b.ledger.Transfer(ctx, b.account, auction.HighestBidder, auction.HighestBid); err != nil {
			if rbErr := b.registry.Transfer(ctx, auction.Item, auction.Seller, b.account); rbErr != nil {
				b.log.Error("Failed to unwind item return", "auction_id", auction.ID, "error", rbErr)
			}
			return err
		}
	}
	return nil
}

// GetAuction returns a copy of the auction record.
func (b *AuctionBook) GetAuction(auctionID uint64) (*domain.Auction, error) {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	auction, ok := b.auctions[auctionID]
	if !ok {
		return nil, domain.ErrAuctionNotFound
	}
	copied := *auction
	return &copied, nil
}

// Snapshot returns copies of all auction records ordered by id.
func (b *AuctionBook) Snapshot() []domain.Auction {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	auctions := make([]domain.Auction, 0, len(b.auctions))
	for id := uint64(0); id < b.nextID; id++ {
		if auction, ok := b.auctions[id]; ok {
			auctions = append(auctions, *auction)
		}
	}
	return auctions
}
