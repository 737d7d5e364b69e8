package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/campuswatch/backend/internal/authz"
	"github.com/campuswatch/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(role string) *Client {
	id := authz.Identity{UserID: uuid.New(), CampusID: uuid.New(), Role: role}
	return newClient(nil, id)
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case payload := <-c.send:
		var e Event
		require.NoError(t, json.Unmarshal(payload, &e))
		return e
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
		return Event{}
	}
}

func TestPublishReachesSubscribers(t *testing.T) {
	h := NewHub()
	campusID := uuid.New()
	a := testClient(models.RoleUser)
	b := testClient(models.RoleUser)
	h.subscribe(CampusChannel(campusID), a)
	h.subscribe(CampusChannel(campusID), b)

	h.Publish(CampusChannel(campusID), EventNewReport, map[string]string{"title": "hello"})

	for _, c := range []*Client{a, b} {
		e := receive(t, c)
		assert.Equal(t, EventNewReport, e.Type)
		assert.Equal(t, CampusChannel(campusID), e.Channel)
		assert.False(t, e.Timestamp.IsZero())
	}
}

func TestPublishIsChannelScoped(t *testing.T) {
	h := NewHub()
	c := testClient(models.RoleUser)
	h.subscribe(CampusChannel(uuid.New()), c)

	h.Publish(CampusChannel(uuid.New()), EventNewReport, nil)

	select {
	case <-c.send:
		t.Fatal("event leaked across channels")
	default:
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	h := NewHub()
	reportID := uuid.New()
	c := testClient(models.RoleUser)
	h.subscribe(ReportChannel(reportID), c)
	require.Equal(t, 1, h.Subscribers(ReportChannel(reportID)))

	h.unsubscribe(ReportChannel(reportID), c)
	assert.Equal(t, 0, h.Subscribers(ReportChannel(reportID)))

	h.Publish(ReportChannel(reportID), EventNewComment, nil)
	select {
	case <-c.send:
		t.Fatal("event delivered after unsubscribe")
	default:
	}
}

func TestDropClearsAllSubscriptions(t *testing.T) {
	h := NewHub()
	campusID := uuid.New()
	reportID := uuid.New()
	c := testClient(models.RoleModerator)
	h.subscribe(CampusChannel(campusID), c)
	h.subscribe(ModeratorChannel(campusID), c)
	h.subscribe(ReportChannel(reportID), c)

	h.drop(c)

	assert.Equal(t, 0, h.Subscribers(CampusChannel(campusID)))
	assert.Equal(t, 0, h.Subscribers(ModeratorChannel(campusID)))
	assert.Equal(t, 0, h.Subscribers(ReportChannel(reportID)))

	select {
	case _, open := <-c.done:
		assert.False(t, open, "done channel is closed")
	default:
		t.Fatal("drop did not close the client")
	}
}

func TestSlowClientDoesNotBlockPublish(t *testing.T) {
	h := NewHub()
	channel := CampusChannel(uuid.New())
	c := testClient(models.RoleUser)
	h.subscribe(channel, c)

	// Nobody drains the queue; the hub must keep going regardless.
	for i := 0; i < sendBuffer+10; i++ {
		h.Publish(channel, EventNewReport, i)
	}

	assert.Len(t, c.send, sendBuffer)
}
