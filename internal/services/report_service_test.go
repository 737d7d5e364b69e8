package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/campuswatch/backend/internal/apperr"
	"github.com/campuswatch/backend/internal/authz"
	"github.com/campuswatch/backend/internal/config"
	"github.com/campuswatch/backend/internal/dto"
	"github.com/campuswatch/backend/internal/models"
	"github.com/campuswatch/backend/internal/realtime"
	"github.com/campuswatch/backend/internal/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pubEvent struct {
	channel string
	event   string
	data    any
}

// capturePub records fan-out instead of delivering it.
type capturePub struct {
	events []pubEvent
}

func (p *capturePub) Publish(channel, eventType string, data any) {
	p.events = append(p.events, pubEvent{channel: channel, event: eventType, data: data})
}

func (p *capturePub) reset() { p.events = nil }

type stubQuota struct {
	allowed bool
	err     error
	limits  []int
}

func (q *stubQuota) Allow(_ context.Context, _ uuid.UUID, limit int) (bool, error) {
	q.limits = append(q.limits, limit)
	return q.allowed, q.err
}

type capturePush struct {
	calls int
}

func (p *capturePush) NotifyHighSeverity(_ context.Context, _ uuid.UUID, _ *models.Report) {
	p.calls++
}

type fixture struct {
	mem   *storage.Memory
	pub   *capturePub
	quota *stubQuota
	push  *capturePush
	svc   *ReportService
	cfg   *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := storage.NewMemory()
	pub := &capturePub{}
	quota := &stubQuota{allowed: true}
	push := &capturePush{}
	cfg := &config.Config{
		ReportEditWindow:       30 * time.Minute,
		CommentEditWindow:      10 * time.Minute,
		SpamFlagThreshold:      5,
		ReportRateLimitPerHour: 5,
	}
	return &fixture{
		mem:   mem,
		pub:   pub,
		quota: quota,
		push:  push,
		svc:   NewReportService(mem, pub, quota, NewContentFilter(), push, cfg),
		cfg:   cfg,
	}
}

func (f *fixture) seedCampus(t *testing.T, code string) *models.Campus {
	t.Helper()
	c := &models.Campus{Name: "Campus " + code, Code: code, CenterLat: 40.0, CenterLng: -75.0}
	require.NoError(t, f.mem.Campuses().Create(context.Background(), c))
	return c
}

func (f *fixture) seedUser(t *testing.T, campusID uuid.UUID, role string) authz.Identity {
	t.Helper()
	u := &models.User{
		CampusID:      campusID,
		Email:         uuid.NewString() + "@campus.edu",
		Password:      "x",
		DisplayName:   "Test " + role,
		Role:          role,
		EmailVerified: true,
	}
	require.NoError(t, f.mem.Users().Create(context.Background(), u))
	return authz.Identity{UserID: u.ID, CampusID: u.CampusID, Role: u.Role, EmailVerified: true}
}

func validCreateReq() dto.CreateReportRequest {
	return dto.CreateReportRequest{
		Category:    "theft",
		Severity:    2,
		Title:       "Bike stolen near the library",
		Description: "Lock was cut sometime this afternoon, bike gone.",
		Latitude:    40.0,
		Longitude:   -75.0,
	}
}

func (f *fixture) seedReport(t *testing.T, actor authz.Identity, req dto.CreateReportRequest) uuid.UUID {
	t.Helper()
	resp, err := f.svc.Create(context.Background(), actor, req, RequestMeta{})
	require.NoError(t, err)
	f.pub.reset()
	return resp.ID
}

func TestReportCreateAndGet(t *testing.T) {
	f := newFixture(t)
	campus := f.seedCampus(t, "NE")
	reporter := f.seedUser(t, campus.ID, models.RoleUser)
	ctx := context.Background()

	resp, err := f.svc.Create(ctx, reporter, validCreateReq(), RequestMeta{IP: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusReported, resp.Status)
	assert.Equal(t, "theft", resp.Category)
	assert.Equal(t, 0, resp.ViewCount)

	// Creation announces on the campus channel.
	require.Len(t, f.pub.events, 1)
	assert.Equal(t, realtime.CampusChannel(campus.ID), f.pub.events[0].channel)
	assert.Equal(t, realtime.EventNewReport, f.pub.events[0].event)

	// Creation is audited with a snapshot on the same write.
	entries, total, err := f.mem.Audits().ByEntity(ctx, campus.ID, resp.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, models.ActionCreateReport, entries[0].Action)
	assert.Equal(t, reporter.UserID, entries[0].ActorID)
	assert.NotEmpty(t, entries[0].Payload)

	// A direct fetch counts the view.
	got, err := f.svc.Get(ctx, reporter, resp.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ViewCount)
	assert.Equal(t, resp.ID, got.ID)
}

func TestReportCreateRequiresVerifiedEmail(t *testing.T) {
	f := newFixture(t)
	campus := f.seedCampus(t, "NE")
	actor := f.seedUser(t, campus.ID, models.RoleUser)
	actor.EmailVerified = false

	_, err := f.svc.Create(context.Background(), actor, validCreateReq(), RequestMeta{})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestReportCreateQuota(t *testing.T) {
	f := newFixture(t)
	campus := f.seedCampus(t, "NE")
	actor := f.seedUser(t, campus.ID, models.RoleUser)
	ctx := context.Background()

	f.quota.allowed = false
	_, err := f.svc.Create(ctx, actor, validCreateReq(), RequestMeta{})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindRateLimited))
	assert.Equal(t, []int{5}, f.quota.limits, "server default limit when campus has no override")

	// A broken quota backend fails open.
	f.quota.allowed = false
	f.quota.err = errors.New("redis down")
	resp, err := f.svc.Create(ctx, actor, validCreateReq(), RequestMeta{})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, resp.ID)
}

func TestReportCreateCampusLimitOverride(t *testing.T) {
	f := newFixture(t)
	campus := f.seedCampus(t, "NE")
	_, err := f.mem.Campuses().Update(context.Background(), campus.ID, storage.CampusUpdate{ReportRateLimitPerHour: intPtr(2)})
	require.NoError(t, err)
	actor := f.seedUser(t, campus.ID, models.RoleUser)

	_, err = f.svc.Create(context.Background(), actor, validCreateReq(), RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, []int{2}, f.quota.limits)
}

func TestHighSeverityAlertsStaff(t *testing.T) {
	f := newFixture(t)
	campus := f.seedCampus(t, "NE") // MinSeverityForPush defaults to 4
	reporter := f.seedUser(t, campus.ID, models.RoleUser)
	security := f.seedUser(t, campus.ID, models.RoleSecurity)
	moderator := f.seedUser(t, campus.ID, models.RoleModerator)
	otherCampus := f.seedCampus(t, "SW")
	f.seedUser(t, otherCampus.ID, models.RoleSecurity)
	ctx := context.Background()

	req := validCreateReq()
	req.Category = "assault"
	req.Severity = 5
	_, err := f.svc.Create(ctx, reporter, req, RequestMeta{})
	require.NoError(t, err)

	assert.Equal(t, 1, f.push.calls)
	for _, staff := range []authz.Identity{security, moderator} {
		list, total, err := f.mem.Notifications().ListByUser(ctx, staff.UserID, false, 1, 10)
		require.NoError(t, err)
		require.EqualValues(t, 1, total)
		assert.Equal(t, models.NotifyHighSeverityAlert, list[0].Type)
		assert.Equal(t, models.PriorityHigh, list[0].Priority)
	}

	// Below the threshold nothing fires.
	low := validCreateReq()
	_, err = f.svc.Create(ctx, reporter, low, RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, 1, f.push.calls)
}

func TestHighSeverityAlertSkipsStaffReporter(t *testing.T) {
	f := newFixture(t)
	campus := f.seedCampus(t, "NE")
	security := f.seedUser(t, campus.ID, models.RoleSecurity)
	ctx := context.Background()

	req := validCreateReq()
	req.Severity = 5
	_, err := f.svc.Create(ctx, security, req, RequestMeta{})
	require.NoError(t, err)

	_, total, err := f.mem.Notifications().ListByUser(ctx, security.UserID, false, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total, "reporter does not get alerted about their own report")
}

func TestNearbyCampusIsolation(t *testing.T) {
	f := newFixture(t)
	campusA := f.seedCampus(t, "NE")
	campusB := f.seedCampus(t, "SW")
	alice := f.seedUser(t, campusA.ID, models.RoleUser)
	bob := f.seedUser(t, campusB.ID, models.RoleUser)
	ctx := context.Background()

	// Same spot, different campuses.
	f.seedReport(t, alice, validCreateReq())
	f.seedReport(t, bob, validCreateReq())

	// ~200m north of the center, still campus A.
	near := validCreateReq()
	near.Latitude = 40.0018
	f.seedReport(t, alice, near)

	// ~11km away, outside any sane radius.
	far := validCreateReq()
	far.Latitude = 40.1
	f.seedReport(t, alice, far)

	// Query from a spot ~22m off the center so every hit has a distance.
	got, err := f.svc.Nearby(ctx, alice, 40.0002, -75.0, 500, storage.NearbyFilters{})
	require.NoError(t, err)
	require.Len(t, got, 2, "only campus A reports inside the radius")
	for _, r := range got {
		assert.Equal(t, campusA.ID, r.CampusID)
		require.NotNil(t, r.DistanceMeters)
		assert.LessOrEqual(t, *r.DistanceMeters, 500.0)
	}
}

func TestNearbyRejectsBadInputs(t *testing.T) {
	f := newFixture(t)
	campus := f.seedCampus(t, "NE")
	actor := f.seedUser(t, campus.ID, models.RoleUser)
	ctx := context.Background()

	cases := []struct {
		name             string
		lat, lng, radius float64
	}{
		{"latitude out of range", 91, 0, 1000},
		{"longitude out of range", 0, -181, 1000},
		{"radius too small", 40, -75, 50},
		{"radius too large", 40, -75, 20000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Nearby(ctx, actor, tc.lat, tc.lng, tc.radius, storage.NearbyFilters{})
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.KindInvalidArgument))
		})
	}
}

func TestVoteMoveAndRepeat(t *testing.T) {
	f := newFixture(t)
	campus := f.seedCampus(t, "NE")
	reporter := f.seedUser(t, campus.ID, models.RoleUser)
	alice := f.seedUser(t, campus.ID, models.RoleUser)
	bob := f.seedUser(t, campus.ID, models.RoleUser)
	ctx := context.Background()
	id := f.seedReport(t, reporter, validCreateReq())

	vote := func(actor authz.Identity, kind string) *dto.VoteResponse {
		resp, err := f.svc.Vote(ctx, actor, id, dto.VoteRequest{Kind: kind}, RequestMeta{})
		require.NoError(t, err)
		return resp
	}

	vote(alice, models.VoteConfirm)
	resp := vote(bob, models.VoteConfirm)
	assert.Equal(t, 2, resp.Votes.Confirms)
	assert.Equal(t, 0, resp.Votes.Disputes)
	assert.Equal(t, 2, resp.Votes.Net)

	// Switching sides moves the vote rather than stacking it.
	resp = vote(bob, models.VoteDispute)
	assert.Equal(t, 1, resp.Votes.Confirms)
	assert.Equal(t, 1, resp.Votes.Disputes)
	assert.Equal(t, 0, resp.Votes.Net)

	// Voting the same way again changes nothing.
	resp = vote(alice, models.VoteConfirm)
	assert.Equal(t, 1, resp.Votes.Confirms)
	assert.Equal(t, 1, resp.Votes.Disputes)

	// Denormalized counters follow.
	got, err := f.svc.Get(ctx, alice, id)
	require.NoError(t, err)
	assert.Equal(t, 1, got.ConfirmCount)
	assert.Equal(t, 1, got.DisputeCount)
	assert.Equal(t, 0, got.NetVotes)
}

func TestReporterMayVoteOwnReport(t *testing.T) {
	f := newFixture(t)
	campus := f.seedCampus(t, "NE")
	reporter := f.seedUser(t, campus.ID, models.RoleUser)
	ctx := context.Background()
	id := f.seedReport(t, reporter, validCreateReq())

	resp, err := f.svc.Vote(ctx, reporter, id, dto.VoteRequest{Kind: models.VoteConfirm}, RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Votes.Confirms)
}

func TestSpamFlagThreshold(t *testing.T) {
	f := newFixture(t)
	campus := f.seedCampus(t, "NE")
	reporter := f.seedUser(t, campus.ID, models.RoleUser)
	ctx := context.Background()
	id := f.seedReport(t, reporter, validCreateReq())

	flaggers := make([]authz.Identity, 5)
	for i := range flaggers {
		flaggers[i] = f.seedUser(t, campus.ID, models.RoleUser)
	}

	for i := 0; i < 4; i++ {
		resp, err := f.svc.FlagSpam(ctx, flaggers[i], id, RequestMeta{})
		require.NoError(t, err)
		assert.Equal(t, i+1, resp.FlagCount)
		assert.False(t, resp.MarkedSpam)
	}

	moderator := f.seedUser(t, campus.ID, models.RoleModerator)
	got, err := f.svc.Get(ctx, moderator, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReported, got.Status, "four flags are not enough")

	resp, err := f.svc.FlagSpam(ctx, flaggers[4], id, RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, 5, resp.FlagCount)
	assert.True(t, resp.MarkedSpam)

	got, err = f.svc.Get(ctx, moderator, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSpam, got.Status)
	assert.True(t, got.IsSpam)
}

func TestSpamFlagIdempotent(t *testing.T) {
	f := newFixture(t)
	campus := f.seedCampus(t, "NE")
	reporter := f.seedUser(t, campus.ID, models.RoleUser)
	flagger := f.seedUser(t, campus.ID, models.RoleUser)
	ctx := context.Background()
	id := f.seedReport(t, reporter, validCreateReq())

	first, err := f.svc.FlagSpam(ctx, flagger, id, RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.FlagCount)

	second, err := f.svc.FlagSpam(ctx, flagger, id, RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, 1, second.FlagCount, "same user flagging twice is a no-op")

	// Only the first flag is audited.
	entries, _, err := f.mem.Audits().ByActor(ctx, campus.ID, flagger.UserID, 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionReportSpam, entries[0].Action)
}

func TestEditInsideWindow(t *testing.T) {
	f := newFixture(t)
	campus := f.seedCampus(t, "NE")
	author := f.seedUser(t, campus.ID, models.RoleUser)
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	f.mem.Clock = func() time.Time { return base }
	id := f.seedReport(t, author, validCreateReq())

	later := base.Add(29*time.Minute + 59*time.Second)
	f.svc.Clock = func() time.Time { return later }
	f.mem.Clock = func() time.Time { return later }
	newTitle := "Bike stolen near the gym"
	resp, err := f.svc.Edit(ctx, author, id, dto.UpdateReportRequest{Title: &newTitle}, RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, newTitle, resp.Title)
	assert.True(t, resp.Edited)

	// The pre-edit snapshot lands in the edit history.
	assert.Len(t, f.mem.Edits(id), 1)

	// And the audit trail carries before/after.
	entries, _, err := f.mem.Audits().ByEntity(ctx, campus.ID, id, 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.ActionEditReport, entries[0].Action)
	assert.NotEmpty(t, entries[0].Changes)

	// Watchers of the report hear about it.
	require.Len(t, f.pub.events, 1)
	assert.Equal(t, realtime.ReportChannel(id), f.pub.events[0].channel)
	assert.Equal(t, realtime.EventReportUpdate, f.pub.events[0].event)
}

func TestEditWindowCloses(t *testing.T) {
	f := newFixture(t)
	campus := f.seedCampus(t, "NE")
	author := f.seedUser(t, campus.ID, models.RoleUser)
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	f.mem.Clock = func() time.Time { return base }
	id := f.seedReport(t, author, validCreateReq())

	newTitle := "Too late to change this"
	for _, offset := range []time.Duration{30 * time.Minute, 30*time.Minute + 1*time.Second} {
		f.svc.Clock = func() time.Time { return base.Add(offset) }
		_, err := f.svc.Edit(ctx, author, id, dto.UpdateReportRequest{Title: &newTitle}, RequestMeta{})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindEditWindowClosed))
	}
}

func TestEditBlockedOnceReviewed(t *testing.T) {
	f := newFixture(t)
	campus := f.seedCampus(t, "NE")
	author := f.seedUser(t, campus.ID, models.RoleUser)
	ctx := context.Background()
	id := f.seedReport(t, author, validCreateReq())

	upd := storage.ModerationUpdate{Status: models.StatusVerified, ActorID: uuid.New()}
	require.NoError(t, f.mem.Reports().UpdateModeration(ctx, id, upd))

	newTitle := "Should not go through"
	_, err := f.svc.Edit(ctx, author, id, dto.UpdateReportRequest{Title: &newTitle}, RequestMeta{})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestEditOnlyByAuthor(t *testing.T) {
	f := newFixture(t)
	campus := f.seedCampus(t, "NE")
	author := f.seedUser(t, campus.ID, models.RoleUser)
	other := f.seedUser(t, campus.ID, models.RoleUser)
	ctx := context.Background()
	id := f.seedReport(t, author, validCreateReq())

	newTitle := "Not your report to change"
	_, err := f.svc.Edit(ctx, other, id, dto.UpdateReportRequest{Title: &newTitle}, RequestMeta{})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	_, err = f.svc.Edit(ctx, author, id, dto.UpdateReportRequest{}, RequestMeta{})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidArgument), "empty edit is rejected")
}

func TestRetract(t *testing.T) {
	f := newFixture(t)
	campus := f.seedCampus(t, "NE")
	author := f.seedUser(t, campus.ID, models.RoleUser)
	ctx := context.Background()
	id := f.seedReport(t, author, validCreateReq())

	require.NoError(t, f.svc.Retract(ctx, author, id, RequestMeta{}))
	assert.Empty(t, f.pub.events, "retraction is not fanned out")

	moderator := f.seedUser(t, campus.ID, models.RoleModerator)
	got, err := f.svc.Get(ctx, moderator, id)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInvalid, got.Status)

	entries, _, err := f.mem.Audits().ByEntity(ctx, campus.ID, id, 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.ActionDeleteReport, entries[0].Action)

	err = f.svc.Retract(ctx, author, id, RequestMeta{})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict), "double retract conflicts")
}

func TestFeedHidesSpamFromUsers(t *testing.T) {
	f := newFixture(t)
	campus := f.seedCampus(t, "NE")
	reporter := f.seedUser(t, campus.ID, models.RoleUser)
	moderator := f.seedUser(t, campus.ID, models.RoleModerator)
	ctx := context.Background()

	visible := f.seedReport(t, reporter, validCreateReq())
	hidden := f.seedReport(t, reporter, validCreateReq())
	_, err := f.mem.Reports().MarkSpam(ctx, hidden)
	require.NoError(t, err)

	feed, err := f.svc.Feed(ctx, reporter, storage.FeedFilters{IncludeHidden: true}, "", 1, 20)
	require.NoError(t, err)
	require.Len(t, feed.Reports, 1, "include_hidden is a moderator switch")
	assert.Equal(t, visible, feed.Reports[0].ID)

	modFeed, err := f.svc.Feed(ctx, moderator, storage.FeedFilters{IncludeHidden: true}, "", 1, 20)
	require.NoError(t, err)
	assert.Len(t, modFeed.Reports, 2)

	// The hidden report still resolves by direct fetch.
	got, err := f.svc.Get(ctx, reporter, hidden)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSpam, got.Status)
}

func TestCommentCreateNotifiesReporter(t *testing.T) {
	f := newFixture(t)
	campus := f.seedCampus(t, "NE")
	reporter := f.seedUser(t, campus.ID, models.RoleUser)
	commenter := f.seedUser(t, campus.ID, models.RoleUser)
	ctx := context.Background()
	id := f.seedReport(t, reporter, validCreateReq())

	resp, err := f.svc.CommentCreate(ctx, commenter, id, dto.CreateCommentRequest{Content: "I saw this happen"})
	require.NoError(t, err)
	assert.Equal(t, "I saw this happen", resp.Content)

	got, err := f.svc.Get(ctx, reporter, id)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CommentCount)

	list, total, err := f.mem.Notifications().ListByUser(ctx, reporter.UserID, true, 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, models.NotifyCommentReply, list[0].Type)
	assert.Equal(t, models.PriorityLow, list[0].Priority)

	require.Len(t, f.pub.events, 1)
	assert.Equal(t, realtime.ReportChannel(id), f.pub.events[0].channel)
	assert.Equal(t, realtime.EventNewComment, f.pub.events[0].event)
}

func TestCommentOnOwnReportIsSilent(t *testing.T) {
	f := newFixture(t)
	campus := f.seedCampus(t, "NE")
	reporter := f.seedUser(t, campus.ID, models.RoleUser)
	ctx := context.Background()
	id := f.seedReport(t, reporter, validCreateReq())

	_, err := f.svc.CommentCreate(ctx, reporter, id, dto.CreateCommentRequest{Content: "adding more details here"})
	require.NoError(t, err)

	_, total, err := f.mem.Notifications().ListByUser(ctx, reporter.UserID, false, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}

func TestCommentContentFilter(t *testing.T) {
	f := newFixture(t)
	campus := f.seedCampus(t, "NE")
	reporter := f.seedUser(t, campus.ID, models.RoleUser)
	ctx := context.Background()
	id := f.seedReport(t, reporter, validCreateReq())

	for _, content := range []string{
		"check out www.totally-legit.com for details",
		"this is bullshit",
		"whyyyyyyy did nobody stop them",
	} {
		_, err := f.svc.CommentCreate(ctx, reporter, id, dto.CreateCommentRequest{Content: content})
		require.Error(t, err, "content %q should be rejected", content)
		assert.True(t, apperr.IsKind(err, apperr.KindInvalidArgument))
	}
}

func TestCommentDeleteKeepsThreadSlot(t *testing.T) {
	f := newFixture(t)
	campus := f.seedCampus(t, "NE")
	reporter := f.seedUser(t, campus.ID, models.RoleUser)
	commenter := f.seedUser(t, campus.ID, models.RoleUser)
	ctx := context.Background()
	id := f.seedReport(t, reporter, validCreateReq())

	c, err := f.svc.CommentCreate(ctx, commenter, id, dto.CreateCommentRequest{Content: "first comment"})
	require.NoError(t, err)
	_, err = f.svc.CommentCreate(ctx, commenter, id, dto.CreateCommentRequest{Content: "second comment"})
	require.NoError(t, err)

	require.NoError(t, f.svc.CommentDelete(ctx, commenter, c.ID, RequestMeta{}))

	list, err := f.svc.CommentList(ctx, reporter, id, 1, 20)
	require.NoError(t, err)
	require.Len(t, list.Comments, 2, "deleted comment keeps its slot")
	assert.True(t, list.Comments[0].Deleted)
	assert.Equal(t, "[deleted]", list.Comments[0].Content)
	assert.Nil(t, list.Comments[0].AuthorID)
	assert.False(t, list.Comments[1].Deleted)

	// The denormalized count does not shrink.
	got, err := f.svc.Get(ctx, reporter, id)
	require.NoError(t, err)
	assert.Equal(t, 2, got.CommentCount)

	// Deleting again is a no-op, and the author's own delete is not audited.
	require.NoError(t, f.svc.CommentDelete(ctx, commenter, c.ID, RequestMeta{}))
	entries, _, err := f.mem.Audits().ByActor(ctx, campus.ID, commenter.UserID, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCommentDeleteByModeratorIsAudited(t *testing.T) {
	f := newFixture(t)
	campus := f.seedCampus(t, "NE")
	reporter := f.seedUser(t, campus.ID, models.RoleUser)
	commenter := f.seedUser(t, campus.ID, models.RoleUser)
	moderator := f.seedUser(t, campus.ID, models.RoleModerator)
	ctx := context.Background()
	id := f.seedReport(t, reporter, validCreateReq())

	c, err := f.svc.CommentCreate(ctx, commenter, id, dto.CreateCommentRequest{Content: "off topic rambling"})
	require.NoError(t, err)

	require.NoError(t, f.svc.CommentDelete(ctx, moderator, c.ID, RequestMeta{IP: "10.1.1.1"}))

	entries, _, err := f.mem.Audits().ByActor(ctx, campus.ID, moderator.UserID, 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionDeleteComment, entries[0].Action)
	assert.Equal(t, models.EntityComment, entries[0].EntityType)
	assert.Equal(t, "10.1.1.1", entries[0].IPAddress)
}

func TestCommentEditWindow(t *testing.T) {
	f := newFixture(t)
	campus := f.seedCampus(t, "NE")
	author := f.seedUser(t, campus.ID, models.RoleUser)
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	f.mem.Clock = func() time.Time { return base }
	id := f.seedReport(t, author, validCreateReq())

	c, err := f.svc.CommentCreate(ctx, author, id, dto.CreateCommentRequest{Content: "original words"})
	require.NoError(t, err)

	f.svc.Clock = func() time.Time { return base.Add(9 * time.Minute) }
	edited, err := f.svc.CommentEdit(ctx, author, c.ID, dto.UpdateCommentRequest{Content: "better words"})
	require.NoError(t, err)
	assert.Equal(t, "better words", edited.Content)
	assert.True(t, edited.Edited)

	f.svc.Clock = func() time.Time { return base.Add(11 * time.Minute) }
	_, err = f.svc.CommentEdit(ctx, author, c.ID, dto.UpdateCommentRequest{Content: "too late now"})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindEditWindowClosed))
}

func TestAnonymousReportHidesReporter(t *testing.T) {
	f := newFixture(t)
	campus := f.seedCampus(t, "NE")
	reporter := f.seedUser(t, campus.ID, models.RoleUser)
	other := f.seedUser(t, campus.ID, models.RoleUser)
	moderator := f.seedUser(t, campus.ID, models.RoleModerator)
	ctx := context.Background()

	req := validCreateReq()
	req.IsAnonymous = true
	id := f.seedReport(t, reporter, req)

	asOther, err := f.svc.Get(ctx, other, id)
	require.NoError(t, err)
	assert.Nil(t, asOther.ReporterID, "anonymous reporter is withheld from peers")

	asSelf, err := f.svc.Get(ctx, reporter, id)
	require.NoError(t, err)
	require.NotNil(t, asSelf.ReporterID)
	assert.Equal(t, reporter.UserID, *asSelf.ReporterID)

	asMod, err := f.svc.Get(ctx, moderator, id)
	require.NoError(t, err)
	require.NotNil(t, asMod.ReporterID)
}

func intPtr(n int) *int { return &n }
