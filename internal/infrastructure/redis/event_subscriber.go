package redis

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"

	"nft-marketplace/internal/domain"
	"nft-marketplace/pkg/logger"
)

type EventSubscriberImpl struct {
	client *redis.Client
	log    logger.Logger
}

func NewEventSubscriber(client *redis.Client, log logger.Logger) *EventSubscriberImpl {
	return &EventSubscriberImpl{
		client: client,
		log:    log,
	}
}

func (r *EventSubscriberImpl) SubscribeToMarketEvents(ctx context.Context, handler domain.EventHandler) error {
	pubsub := r.client.Subscribe(ctx, marketEventsChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()

	r.log.Info("Subscribed to market events", "channel", marketEventsChannel)

	for {
		select {
		case msg := <-ch:
			var event domain.MarketEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				r.log.Error("Failed to parse event", "payload", msg.Payload, "error", err)
				continue
			}

			if err := handler(&event); err != nil {
				r.log.Error("Failed to handle event", "event_id", event.EventID, "error", err)
			}

		case <-ctx.Done():
			r.log.Info("Event subscriber stopped")
			return ctx.Err()
		}
	}
}
