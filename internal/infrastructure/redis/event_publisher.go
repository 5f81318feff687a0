package redis

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"

	"nft-marketplace/internal/domain"
)

const marketEventsChannel = "market_events"

type EventPublisherImpl struct {
	client *redis.Client
}

func NewEventPublisher(client *redis.Client) *EventPublisherImpl {
	return &EventPublisherImpl{client: client}
}

func (r *EventPublisherImpl) PublishMarketEvent(ctx context.Context, event *domain.MarketEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, marketEventsChannel, payload).Err()
}
