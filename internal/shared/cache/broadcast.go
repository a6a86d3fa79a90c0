package cache

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/pick-control/pkg/contracts/events"
)

// Broadcaster publica atualizações no canal Pub/Sub lido pelos hubs WebSocket
type Broadcaster struct {
	R       *redis.Client
	Channel string
}

func NewBroadcaster(r *redis.Client, channel string) *Broadcaster {
	return &Broadcaster{R: r, Channel: channel}
}

func (b *Broadcaster) Publish(ctx context.Context, msg events.Broadcast) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return b.R.Publish(ctx, b.Channel, payload).Err()
}
