package domain

import "time"

type MarketEventKind string

const (
	TradeStateChanged   MarketEventKind = "trade_state_changed"
	AuctionStateChanged MarketEventKind = "auction_state_changed"
)

// MarketEvent is emitted once per committed Trade/Auction transition.
// External observers (indexers, UIs) consume these; the engine never
// reads them back.
type MarketEvent struct {
	EventID   string          `json:"event_id"`
	Kind      MarketEventKind `json:"kind"`
	RecordID  uint64          `json:"record_id"`
	State     string          `json:"state"`
	Item      uint64          `json:"item"`
	Seller    string          `json:"seller"`
	Actor     string          `json:"actor,omitempty"`
	Amount    uint64          `json:"amount,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}
