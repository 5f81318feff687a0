package services

import (
	"context"

	"nft-marketplace/internal/domain"
	"nft-marketplace/pkg/logger"
)

// EventRelay bridges the market event channel to the websocket fan-out:
// every committed Trade/Auction transition received from the
// subscriber is pushed to all connected stream clients.
type EventRelay struct {
	connManager domain.ConnectionManager
	log         logger.Logger
}

func NewEventRelay(connManager domain.ConnectionManager, log logger.Logger) *EventRelay {
	return &EventRelay{
		connManager: connManager,
		log:         log,
	}
}

func (r *EventRelay) Start(ctx context.Context, subscriber domain.EventSubscriber) error {
	r.log.Info("Starting market event relay")
	return subscriber.SubscribeToMarketEvents(ctx, r.handleMarketEvent)
}

func (r *EventRelay) handleMarketEvent(event *domain.MarketEvent) error {
	r.log.Debug("Relaying market event", "kind", event.Kind, "record_id", event.RecordID,
		"state", event.State)

	return r.connManager.Broadcast(event)
}
