package realtime

import (
	"encoding/json"
	"log/slog"

	"github.com/puzpuzpuz/xsync/v3"
)

// Hub tracks channel subscriptions and delivers events to the local
// process's connections. It is constructed once and handed to whoever
// needs it; there is no package-level instance.
type Hub struct {
	channels *xsync.MapOf[string, *xsync.MapOf[*Client, struct{}]]
}

func NewHub() *Hub {
	return &Hub{
		channels: xsync.NewMapOf[string, *xsync.MapOf[*Client, struct{}]](),
	}
}

func (h *Hub) subscribe(channel string, c *Client) {
	set, _ := h.channels.LoadOrCompute(channel, func() *xsync.MapOf[*Client, struct{}] {
		return xsync.NewMapOf[*Client, struct{}]()
	})
	set.Store(c, struct{}{})
	c.channels.Store(channel, struct{}{})
}

func (h *Hub) unsubscribe(channel string, c *Client) {
	c.channels.Delete(channel)
	h.channels.Compute(channel, func(set *xsync.MapOf[*Client, struct{}], loaded bool) (*xsync.MapOf[*Client, struct{}], bool) {
		if !loaded {
			return nil, true
		}
		set.Delete(c)
		return set, set.Size() == 0
	})
}

// drop tears down every subscription the client holds and closes its send
// queue, which in turn stops the write pump.
func (h *Hub) drop(c *Client) {
	c.channels.Range(func(channel string, _ struct{}) bool {
		h.unsubscribe(channel, c)
		return true
	})
	c.close()
}

// Publish implements Publisher with direct local delivery.
func (h *Hub) Publish(channel, eventType string, data any) {
	h.Deliver(newEvent(channel, eventType, data))
}

// Deliver fans a ready event out to the channel's local subscribers.
// Slow clients are skipped rather than waited on.
func (h *Hub) Deliver(e Event) {
	set, ok := h.channels.Load(e.Channel)
	if !ok {
		return
	}
	payload, err := json.Marshal(e)
	if err != nil {
		slog.Error("realtime: marshal event", "type", e.Type, "error", err)
		return
	}
	set.Range(func(c *Client, _ struct{}) bool {
		c.enqueue(payload)
		return true
	})
}

// Subscribers reports the current subscriber count for a channel.
func (h *Hub) Subscribers(channel string) int {
	set, ok := h.channels.Load(channel)
	if !ok {
		return 0
	}
	return set.Size()
}
