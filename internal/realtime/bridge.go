package realtime

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const bridgeChannel = "realtime:events"

// Bridge routes published events through Redis so every server instance,
// including the publishing one, delivers them to its local connections.
// Without Redis configured the Hub publishes directly and the Bridge is
// never constructed.
type Bridge struct {
	hub *Hub
	rdb *redis.Client
}

func NewBridge(hub *Hub, rdb *redis.Client) *Bridge {
	return &Bridge{hub: hub, rdb: rdb}
}

// Publish implements Publisher by pushing the event into Redis. Local
// delivery happens when the subscription loop gets it back.
func (b *Bridge) Publish(channel, eventType string, data any) {
	e := newEvent(channel, eventType, data)
	payload, err := json.Marshal(e)
	if err != nil {
		slog.Error("realtime: marshal event", "type", eventType, "error", err)
		return
	}
	if err := b.rdb.Publish(context.Background(), bridgeChannel, payload).Err(); err != nil {
		slog.Error("realtime: redis publish failed", "type", eventType, "error", err)
	}
}

// Run consumes the Redis channel until ctx is done. Call it in its own
// goroutine at startup.
func (b *Bridge) Run(ctx context.Context) {
	sub := b.rdb.Subscribe(ctx, bridgeChannel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var e Event
			if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
				slog.Error("realtime: bad event payload", "error", err)
				continue
			}
			b.hub.Deliver(e)
		}
	}
}
