package services

import (
	"context"
	"testing"
	"time"

	"github.com/campuswatch/backend/internal/apperr"
	"github.com/campuswatch/backend/internal/authz"
	"github.com/campuswatch/backend/internal/dto"
	"github.com/campuswatch/backend/internal/models"
	"github.com/campuswatch/backend/internal/realtime"
	"github.com/campuswatch/backend/internal/storage"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type modFixture struct {
	*fixture
	mod *ModerationService
}

func newModFixture(t *testing.T) *modFixture {
	t.Helper()
	f := newFixture(t)
	return &modFixture{fixture: f, mod: NewModerationService(f.mem, f.pub)}
}

func TestModeratorResolve(t *testing.T) {
	f := newModFixture(t)
	campus := f.seedCampus(t, "NE")
	reporter := f.seedUser(t, campus.ID, models.RoleUser)
	moderator := f.seedUser(t, campus.ID, models.RoleModerator)
	ctx := context.Background()
	id := f.seedReport(t, reporter, validCreateReq())

	notes := "confirmed with campus security footage"
	resp, err := f.mod.ModeratorUpdate(ctx, moderator, id, dto.ModerationUpdateRequest{
		Status:         models.StatusResolved,
		ModeratorNotes: &notes,
	}, RequestMeta{IP: "10.2.0.9"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, resp.Status)
	assert.Equal(t, notes, resp.ModeratorNotes)
	require.NotNil(t, resp.ResolvedBy)
	assert.Equal(t, moderator.UserID, *resp.ResolvedBy)
	assert.NotNil(t, resp.ResolvedAt)

	// Audited under the status-specific action, with before/after.
	entries, _, err := f.mem.Audits().ByActor(ctx, campus.ID, moderator.UserID, 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionResolveReport, entries[0].Action)
	assert.NotEmpty(t, entries[0].Changes)
	assert.Equal(t, "10.2.0.9", entries[0].IPAddress)

	// The reporter hears about it in their inbox.
	list, total, err := f.mem.Notifications().ListByUser(ctx, reporter.UserID, true, 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, models.NotifyModeratorAction, list[0].Type)

	// And watchers of the report over the wire.
	require.Len(t, f.pub.events, 1)
	assert.Equal(t, realtime.ReportChannel(id), f.pub.events[0].channel)
	assert.Equal(t, realtime.EventReportUpdate, f.pub.events[0].event)
}

func TestModeratorUpdateRequiresRole(t *testing.T) {
	f := newModFixture(t)
	campus := f.seedCampus(t, "NE")
	reporter := f.seedUser(t, campus.ID, models.RoleUser)
	ctx := context.Background()
	id := f.seedReport(t, reporter, validCreateReq())

	_, err := f.mod.ModeratorUpdate(ctx, reporter, id, dto.ModerationUpdateRequest{
		Status: models.StatusVerified,
	}, RequestMeta{})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestNotesOnlyUpdateDoesNotNotify(t *testing.T) {
	f := newModFixture(t)
	campus := f.seedCampus(t, "NE")
	reporter := f.seedUser(t, campus.ID, models.RoleUser)
	moderator := f.seedUser(t, campus.ID, models.RoleModerator)
	ctx := context.Background()
	id := f.seedReport(t, reporter, validCreateReq())

	notes := "checked, waiting for more witnesses"
	_, err := f.mod.ModeratorUpdate(ctx, moderator, id, dto.ModerationUpdateRequest{
		ModeratorNotes: &notes,
	}, RequestMeta{})
	require.NoError(t, err)

	_, total, err := f.mem.Notifications().ListByUser(ctx, reporter.UserID, false, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 0, total, "a notes change is not a status change")

	entries, _, err := f.mem.Audits().ByActor(ctx, campus.ID, moderator.UserID, 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionUpdateReportStatus, entries[0].Action)
}

func TestAssigneeMustBeCampusSecurity(t *testing.T) {
	f := newModFixture(t)
	campus := f.seedCampus(t, "NE")
	other := f.seedCampus(t, "SW")
	reporter := f.seedUser(t, campus.ID, models.RoleUser)
	moderator := f.seedUser(t, campus.ID, models.RoleModerator)
	security := f.seedUser(t, campus.ID, models.RoleSecurity)
	plainUser := f.seedUser(t, campus.ID, models.RoleUser)
	foreignSecurity := f.seedUser(t, other.ID, models.RoleSecurity)
	ctx := context.Background()
	id := f.seedReport(t, reporter, validCreateReq())

	resp, err := f.mod.ModeratorUpdate(ctx, moderator, id, dto.ModerationUpdateRequest{
		AssignedTo: &security.UserID,
	}, RequestMeta{})
	require.NoError(t, err)
	require.NotNil(t, resp.AssignedTo)
	assert.Equal(t, security.UserID, *resp.AssignedTo)

	// Non-security and cross-campus targets are dropped, not errored.
	for _, bad := range []uuid.UUID{plainUser.UserID, foreignSecurity.UserID} {
		resp, err := f.mod.ModeratorUpdate(ctx, moderator, id, dto.ModerationUpdateRequest{
			Status:     models.StatusVerified,
			AssignedTo: &bad,
		}, RequestMeta{})
		require.NoError(t, err)
		require.NotNil(t, resp.AssignedTo)
		assert.Equal(t, security.UserID, *resp.AssignedTo, "previous assignment stays")
	}
}

func TestModeratorListIncludesHidden(t *testing.T) {
	f := newModFixture(t)
	campus := f.seedCampus(t, "NE")
	reporter := f.seedUser(t, campus.ID, models.RoleUser)
	moderator := f.seedUser(t, campus.ID, models.RoleModerator)
	ctx := context.Background()

	f.seedReport(t, reporter, validCreateReq())
	hidden := f.seedReport(t, reporter, validCreateReq())
	_, err := f.mem.Reports().MarkSpam(ctx, hidden)
	require.NoError(t, err)

	resp, err := f.mod.ListReports(ctx, moderator, storage.FeedFilters{}, "", 1, 20)
	require.NoError(t, err)
	assert.Len(t, resp.Reports, 2)

	_, err = f.mod.ListReports(ctx, reporter, storage.FeedFilters{}, "", 1, 20)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestSummaryCountsAndActivity(t *testing.T) {
	f := newModFixture(t)
	campus := f.seedCampus(t, "NE")
	reporter := f.seedUser(t, campus.ID, models.RoleUser)
	moderator := f.seedUser(t, campus.ID, models.RoleModerator)
	ctx := context.Background()

	f.seedReport(t, reporter, validCreateReq())
	id := f.seedReport(t, reporter, validCreateReq())

	// One old report that must not count as today's.
	old := &models.Report{
		CampusID:    campus.ID,
		ReporterID:  reporter.UserID,
		Category:    "safety",
		Severity:    1,
		Title:       "Broken light by the east gate",
		Description: "Dark stretch of path, has been out for a while.",
		CreatedAt:   time.Now().UTC().Add(-48 * time.Hour),
	}
	require.NoError(t, f.mem.Reports().Create(ctx, old))

	_, err := f.mod.ModeratorUpdate(ctx, moderator, id, dto.ModerationUpdateRequest{
		Status: models.StatusVerified,
	}, RequestMeta{})
	require.NoError(t, err)

	sum, err := f.mod.Summary(ctx, moderator)
	require.NoError(t, err)
	assert.EqualValues(t, 1, sum.TodayByStatus[models.StatusReported])
	assert.EqualValues(t, 1, sum.TodayByStatus[models.StatusVerified])
	assert.EqualValues(t, 2, sum.TotalByStatus[models.StatusReported])
	assert.EqualValues(t, 0, sum.SpamTotal)

	// Recent activity shows moderation actions only, not report intake.
	require.NotEmpty(t, sum.RecentActivity)
	for _, a := range sum.RecentActivity {
		assert.NotEqual(t, models.ActionCreateReport, a.Action)
	}
	assert.Equal(t, models.ActionVerifyReport, sum.RecentActivity[0].Action)
	assert.Equal(t, moderator.UserID, sum.RecentActivity[0].ActorID)

	_, err = f.mod.Summary(ctx, reporter)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestBanAndUnban(t *testing.T) {
	f := newModFixture(t)
	campus := f.seedCampus(t, "NE")
	moderator := f.seedUser(t, campus.ID, models.RoleModerator)
	target := f.seedUser(t, campus.ID, models.RoleUser)
	ctx := context.Background()

	req := dto.BanUserRequest{Reason: "repeated spam reports"}
	require.NoError(t, f.mod.BanUser(ctx, moderator, target.UserID, req, RequestMeta{}))

	u, err := f.mem.Users().GetByID(ctx, target.UserID)
	require.NoError(t, err)
	assert.True(t, u.IsBanned)

	entries, _, err := f.mem.Audits().ByActor(ctx, campus.ID, moderator.UserID, 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActionBanUser, entries[0].Action)
	assert.Equal(t, models.EntityUser, entries[0].EntityType)

	require.Len(t, f.pub.events, 1)
	assert.Equal(t, realtime.ModeratorChannel(campus.ID), f.pub.events[0].channel)
	assert.Equal(t, realtime.EventUserBanned, f.pub.events[0].event)

	err = f.mod.BanUser(ctx, moderator, target.UserID, req, RequestMeta{})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict), "double ban conflicts")

	require.NoError(t, f.mod.UnbanUser(ctx, moderator, target.UserID, RequestMeta{}))
	u, err = f.mem.Users().GetByID(ctx, target.UserID)
	require.NoError(t, err)
	assert.False(t, u.IsBanned)

	err = f.mod.UnbanUser(ctx, moderator, target.UserID, RequestMeta{})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict), "unbanning the unbanned conflicts")
}

func TestBanRespectsRoleRank(t *testing.T) {
	f := newModFixture(t)
	campus := f.seedCampus(t, "NE")
	moderator := f.seedUser(t, campus.ID, models.RoleModerator)
	peer := f.seedUser(t, campus.ID, models.RoleModerator)
	admin := f.seedUser(t, campus.ID, models.RoleAdmin)
	ctx := context.Background()

	for _, target := range []authz.Identity{peer, admin} {
		err := f.mod.BanUser(ctx, moderator, target.UserID, dto.BanUserRequest{}, RequestMeta{})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
	}

	// An admin can ban a moderator.
	require.NoError(t, f.mod.BanUser(ctx, admin, moderator.UserID, dto.BanUserRequest{Reason: "abuse of tools"}, RequestMeta{}))
}

func TestSuperAdminCrossesCampuses(t *testing.T) {
	f := newModFixture(t)
	campusA := f.seedCampus(t, "NE")
	campusB := f.seedCampus(t, "SW")
	reporterA := f.seedUser(t, campusA.ID, models.RoleUser)
	reporterB := f.seedUser(t, campusB.ID, models.RoleUser)
	super := f.seedUser(t, campusA.ID, models.RoleSuperAdmin)
	moderatorA := f.seedUser(t, campusA.ID, models.RoleModerator)
	ctx := context.Background()

	f.seedReport(t, reporterA, validCreateReq())
	idB := f.seedReport(t, reporterB, validCreateReq())

	all, err := f.mod.ListReports(ctx, super, storage.FeedFilters{}, "", 1, 20)
	require.NoError(t, err)
	assert.Len(t, all.Reports, 2)

	scoped, err := f.mod.ListReports(ctx, moderatorA, storage.FeedFilters{}, "", 1, 20)
	require.NoError(t, err)
	assert.Len(t, scoped.Reports, 1)

	// A campus moderator cannot touch another campus's report.
	_, err = f.mod.ModeratorUpdate(ctx, moderatorA, idB, dto.ModerationUpdateRequest{
		Status: models.StatusVerified,
	}, RequestMeta{})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	// The super admin can.
	_, err = f.mod.ModeratorUpdate(ctx, super, idB, dto.ModerationUpdateRequest{
		Status: models.StatusVerified,
	}, RequestMeta{})
	require.NoError(t, err)
}
