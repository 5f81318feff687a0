package domain

import (
	"time"
)

// AuctionDuration is the fixed bidding window measured from listing
// time. Bids never extend it; expiry is checked lazily on every
// time-sensitive operation.
const AuctionDuration = 72 * time.Hour

// MinBidsForSale is the number of competing bids an auction needs to
// settle as a sale. Auctions that close with fewer are invalidated and
// fully unwound.
const MinBidsForSale = 2

// Trade is a fixed-price listing for a single item. Records are
// append-only: once created they are never deleted, and a terminal
// state is final.
type Trade struct {
	ID             uint64
	Item           uint64
	Seller         string
	Price          uint64
	CreatedAt      time.Time
	StateChangedAt time.Time
	State          TradeState
}

type TradeState int

const (
	TradeOnSale TradeState = iota
	TradeSold
	TradeCanceled
)

func (s TradeState) String() string {
	switch s {
	case TradeOnSale:
		return "on_sale"
	case TradeSold:
		return "sold"
	case TradeCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is permitted.
func (s TradeState) Terminal() bool {
	return s != TradeOnSale
}

// Auction is a timed English-auction listing for a single item. While
// active, the marketplace escrows exactly the current highest bid; the
// previous leader is refunded the moment they are outbid.
type Auction struct {
	ID             uint64
	Item           uint64
	Seller         string
	BidStartPrice  uint64
	HighestBid     uint64
	HighestBidder  string
	BidCount       uint64
	CreatedAt      time.Time
	StateChangedAt time.Time
	State          AuctionState
}

// Deadline returns the moment the bidding window closes.
func (a *Auction) Deadline() time.Time {
	return a.CreatedAt.Add(AuctionDuration)
}

type AuctionState int

const (
	AuctionInvalid AuctionState = iota
	AuctionActive
	AuctionSold
	AuctionCanceled
)

func (s AuctionState) String() string {
	switch s {
	case AuctionInvalid:
		return "invalid"
	case AuctionActive:
		return "active"
	case AuctionSold:
		return "sold"
	case AuctionCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

func (s AuctionState) Terminal() bool {
	return s != AuctionActive
}
