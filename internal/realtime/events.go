package realtime

import (
	"time"

	"github.com/google/uuid"
)

// Event types pushed to subscribed clients.
const (
	EventNewReport    = "new_report"
	EventReportUpdate = "report_update"
	EventNewComment   = "new_comment"
	EventUserBanned   = "user_banned"
	EventUserUnbanned = "user_unbanned"
)

// Event is the wire shape delivered over websocket connections.
type Event struct {
	Type      string    `json:"type"`
	Channel   string    `json:"channel"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

func newEvent(channel, eventType string, data any) Event {
	return Event{
		Type:      eventType,
		Channel:   channel,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}
}

// Channel keys. Clients are auto-subscribed to their campus channel and,
// role permitting, the moderator/admin ones; report channels are joined on
// request and never restored across reconnects.
func CampusChannel(id uuid.UUID) string { return "campus:" + id.String() }

func ModeratorChannel(id uuid.UUID) string { return "moderator:" + id.String() }

func AdminChannel(id uuid.UUID) string { return "admin:" + id.String() }

func ReportChannel(id uuid.UUID) string { return "report:" + id.String() }

// Publisher is what services use for fan-out. Implementations are
// best-effort: a failed or slow delivery never fails the mutation that
// triggered it.
type Publisher interface {
	Publish(channel, eventType string, data any)
}
