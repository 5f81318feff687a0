package domain

import (
	"context"
)

// ItemRegistry is the external ownership ledger holding the items the
// marketplace trades. The engine only queries ownership, asks for
// custodial transfers and mints on behalf of callers; it never
// interprets item content.
type ItemRegistry interface {
	// Mint creates a new item owned by owner. The minter account must
	// hold the registry's minter role (ErrMintNotAuthorized otherwise).
	Mint(ctx context.Context, minter, owner, tokenURI string) (uint64, error)
	// OwnerOf fails with ErrItemNotFound for unknown items.
	OwnerOf(ctx context.Context, item uint64) (string, error)
	IsApprovedOrOwner(ctx context.Context, caller string, item uint64) (bool, error)
	// Transfer moves custody of item and fails if from is not the
	// current holder. It either fully applies or fully fails.
	Transfer(ctx context.Context, item uint64, from, to string) error
}

// FundLedger is the value-settlement primitive supplied by the
// environment. Transfer is atomic-or-failing: on error no balance
// changed.
type FundLedger interface {
	Transfer(ctx context.Context, from, to string, amount uint64) error
}

// EventPublisher fans committed state transitions out to external
// observers.
type EventPublisher interface {
	PublishMarketEvent(ctx context.Context, event *MarketEvent) error
}

type EventSubscriber interface {
	SubscribeToMarketEvents(ctx context.Context, handler EventHandler) error
}

type EventHandler func(event *MarketEvent) error

// TradeArchive and AuctionArchive mirror committed records into
// durable storage. They are write-behind: the in-memory books stay
// authoritative and archive failures never affect a transition.
type TradeArchive interface {
	UpsertTrade(ctx context.Context, trade *Trade) error
	GetTrade(ctx context.Context, id uint64) (*Trade, error)
}

type AuctionArchive interface {
	UpsertAuction(ctx context.Context, auction *Auction) error
	GetAuction(ctx context.Context, id uint64) (*Auction, error)
}

// WebSocket interfaces for the market event stream.
type WebSocketConnection interface {
	Send(message interface{}) error
	Close() error
	ClientID() string
}

type ConnectionManager interface {
	RegisterConnection(clientID string, conn WebSocketConnection) error
	UnregisterConnection(clientID string) error
	Broadcast(message interface{}) error
	CloseAll() error
}
