package realtime

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/campuswatch/backend/internal/authz"
	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"github.com/puzpuzpuz/xsync/v3"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 256
)

// JoinValidator decides whether the connected user may watch a report
// channel. The websocket handler wires in a campus-scope check.
type JoinValidator func(reportID uuid.UUID) bool

// Client is one websocket connection with its subscription set and a
// bounded outbound queue.
type Client struct {
	identity authz.Identity
	conn     *websocket.Conn
	send     chan []byte
	done     chan struct{}
	channels *xsync.MapOf[string, struct{}]
	once     sync.Once
}

func newClient(conn *websocket.Conn, id authz.Identity) *Client {
	return &Client{
		identity: id,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		done:     make(chan struct{}),
		channels: xsync.NewMapOf[string, struct{}](),
	}
}

// enqueue never blocks: publishing is best-effort and a slow reader loses
// events instead of stalling the hub.
func (c *Client) enqueue(payload []byte) {
	select {
	case <-c.done:
	case c.send <- payload:
	default:
		slog.Warn("realtime: dropping event for slow client", "user_id", c.identity.UserID)
	}
}

func (c *Client) close() {
	c.once.Do(func() { close(c.done) })
}

// clientFrame is the only inbound message shape accepted.
type clientFrame struct {
	Action   string    `json:"action"`
	ReportID uuid.UUID `json:"report_id"`
}

// ServeConn subscribes the connection to its standing channels and runs
// the pumps. It blocks until the peer goes away, which is what the fiber
// websocket handler expects.
func (h *Hub) ServeConn(conn *websocket.Conn, id authz.Identity, canJoin JoinValidator) {
	c := newClient(conn, id)

	h.subscribe(CampusChannel(id.CampusID), c)
	if id.IsModerator() {
		h.subscribe(ModeratorChannel(id.CampusID), c)
	}
	if id.IsAdmin() {
		h.subscribe(AdminChannel(id.CampusID), c)
	}

	go c.writePump()
	c.readPump(h, canJoin)
	h.drop(c)
}

func (c *Client) readPump(h *Hub, canJoin JoinValidator) {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var frame clientFrame
		if err := json.Unmarshal(message, &frame); err != nil || frame.ReportID == uuid.Nil {
			continue
		}
		switch frame.Action {
		case "join_report":
			if canJoin != nil && canJoin(frame.ReportID) {
				h.subscribe(ReportChannel(frame.ReportID), c)
			}
		case "leave_report":
			h.unsubscribe(ReportChannel(frame.ReportID), c)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
