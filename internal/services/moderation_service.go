package services

import (
	"context"
	"fmt"
	"time"

	"github.com/campuswatch/backend/internal/apperr"
	"github.com/campuswatch/backend/internal/authz"
	"github.com/campuswatch/backend/internal/dto"
	"github.com/campuswatch/backend/internal/models"
	"github.com/campuswatch/backend/internal/realtime"
	"github.com/campuswatch/backend/internal/storage"
	"github.com/google/uuid"
)

// ModerationService covers the moderator surface: status transitions,
// full listings, the dashboard summary and user bans.
type ModerationService struct {
	stores storage.Stores
	pub    realtime.Publisher

	// Clock is swappable so summary tests can pin "today".
	Clock func() time.Time
}

func NewModerationService(stores storage.Stores, pub realtime.Publisher) *ModerationService {
	return &ModerationService{
		stores: stores,
		pub:    pub,
		Clock:  time.Now,
	}
}

// ModeratorUpdate applies a status, notes or assignment change. An
// assignee who does not hold the security role is silently dropped
// instead of rejected.
func (s *ModerationService) ModeratorUpdate(ctx context.Context, actor authz.Identity, reportID uuid.UUID, req dto.ModerationUpdateRequest, meta RequestMeta) (*dto.ReportResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if req.Status == "" && req.ModeratorNotes == nil && req.AssignedTo == nil {
		return nil, apperr.Invalid("no fields to update")
	}
	r, err := s.stores.Reports().GetByID(ctx, actor.CampusScope(), reportID)
	if err != nil {
		return nil, err
	}
	if err := authz.ModerateReport.Allow(actor, r.CampusID, uuid.Nil); err != nil {
		return nil, err
	}

	assignee := req.AssignedTo
	if assignee != nil && *assignee != uuid.Nil {
		target, err := s.stores.Users().GetByID(ctx, *assignee)
		if err != nil || target.CampusID != r.CampusID || target.Role != models.RoleSecurity {
			assignee = nil
		}
	}

	before := models.StatusSnapshot{
		Status:         r.Status,
		ModeratorNotes: r.ModeratorNotes,
		AssignedTo:     r.AssignedTo,
	}
	after := before
	if req.Status != "" {
		after.Status = req.Status
	}
	if req.ModeratorNotes != nil {
		after.ModeratorNotes = *req.ModeratorNotes
	}
	if assignee != nil {
		if *assignee == uuid.Nil {
			after.AssignedTo = nil
		} else {
			after.AssignedTo = assignee
		}
	}

	action := models.ActionUpdateReportStatus
	if req.Status != "" {
		action = auditActionForStatus(req.Status)
	}
	statusChanged := req.Status != "" && req.Status != r.Status

	err = s.stores.Transact(ctx, func(tx storage.Stores) error {
		upd := storage.ModerationUpdate{
			Status:     req.Status,
			Notes:      req.ModeratorNotes,
			AssignedTo: assignee,
			ActorID:    actor.UserID,
		}
		if err := tx.Reports().UpdateModeration(ctx, reportID, upd); err != nil {
			return err
		}
		entry := auditEntry(actor, r.CampusID, action, models.EntityReport, reportID, meta)
		if err := tx.Audits().Append(ctx, withChanges(entry, models.StatusChanges{Before: before, After: after})); err != nil {
			return err
		}
		if !statusChanged || r.ReporterID == actor.UserID {
			return nil
		}
		n := newNotification(r.ReporterID, &reportID, models.NotifyModeratorAction,
			"Your report was updated",
			fmt.Sprintf("Your report %q was marked %s.", r.Title, req.Status),
			models.PriorityNormal,
			models.ModeratorActionData{ReportID: reportID, OldStatus: r.Status, NewStatus: req.Status})
		return tx.Notifications().Create(ctx, n)
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.stores.Reports().GetByID(ctx, actor.CampusScope(), reportID)
	if err != nil {
		return nil, err
	}
	s.pub.Publish(realtime.ReportChannel(reportID), realtime.EventReportUpdate,
		dto.NewReportResponse(updated, uuid.Nil, false))

	resp := dto.NewReportResponse(updated, actor.UserID, true)
	return &resp, nil
}

// ListReports is the moderator feed: spam and invalid included by default.
func (s *ModerationService) ListReports(ctx context.Context, viewer authz.Identity, f storage.FeedFilters, sort string, page, pageSize int) (*dto.ReportListResponse, error) {
	if err := authz.ModerateReport.Allow(viewer, viewer.CampusID, uuid.Nil); err != nil {
		return nil, err
	}
	f.IncludeHidden = true
	page, pageSize = storage.NormalizePage(page, pageSize)
	reports, total, err := s.stores.Reports().FindFeed(ctx, viewer.CampusScope(), f, sort, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &dto.ReportListResponse{
		Reports: dto.NewReportResponses(reports, viewer.UserID, true),
		Meta:    dto.PageMeta{Page: page, PageSize: pageSize, Total: total},
	}, nil
}

// Summary composes the dashboard read model fresh on every call.
func (s *ModerationService) Summary(ctx context.Context, viewer authz.Identity) (*dto.DashboardSummary, error) {
	if err := authz.ModerateReport.Allow(viewer, viewer.CampusID, uuid.Nil); err != nil {
		return nil, err
	}
	scope := viewer.CampusScope()

	now := s.Clock().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	todayCounts, err := s.stores.Reports().CountByStatus(ctx, scope, &today)
	if err != nil {
		return nil, err
	}
	totalCounts, err := s.stores.Reports().CountByStatus(ctx, scope, nil)
	if err != nil {
		return nil, err
	}
	recent, err := s.stores.Audits().Recent(ctx, scope, moderationActions, 10)
	if err != nil {
		return nil, err
	}

	return &dto.DashboardSummary{
		TodayByStatus:  todayCounts,
		TotalByStatus:  totalCounts,
		SpamTotal:      totalCounts[models.StatusSpam],
		RecentActivity: dto.NewAuditEntryResponses(recent),
	}, nil
}

// BanUser blocks a user from the platform. Bans take effect on their next
// request because identity is reloaded from storage each time.
func (s *ModerationService) BanUser(ctx context.Context, actor authz.Identity, userID uuid.UUID, req dto.BanUserRequest, meta RequestMeta) error {
	if err := dto.Validate(req); err != nil {
		return err
	}
	target, err := s.stores.Users().GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := authz.ManageUsers.Allow(actor, target.CampusID, uuid.Nil); err != nil {
		return err
	}
	if authz.RoleRank(target.Role) >= authz.RoleRank(actor.Role) {
		return apperr.Forbidden("cannot ban a user of equal or higher role")
	}
	if target.IsBanned {
		return apperr.Conflict("user is already banned")
	}

	err = s.stores.Transact(ctx, func(tx storage.Stores) error {
		if err := tx.Users().SetBanned(ctx, userID, true); err != nil {
			return err
		}
		entry := auditEntry(actor, target.CampusID, models.ActionBanUser, models.EntityUser, userID, meta)
		return tx.Audits().Append(ctx, withPayload(entry, models.BanPayload{Reason: req.Reason}))
	})
	if err != nil {
		return err
	}

	s.pub.Publish(realtime.ModeratorChannel(target.CampusID), realtime.EventUserBanned,
		map[string]any{"user_id": userID})
	return nil
}

// UnbanUser lifts a ban.
func (s *ModerationService) UnbanUser(ctx context.Context, actor authz.Identity, userID uuid.UUID, meta RequestMeta) error {
	target, err := s.stores.Users().GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := authz.ManageUsers.Allow(actor, target.CampusID, uuid.Nil); err != nil {
		return err
	}
	if !target.IsBanned {
		return apperr.Conflict("user is not banned")
	}

	err = s.stores.Transact(ctx, func(tx storage.Stores) error {
		if err := tx.Users().SetBanned(ctx, userID, false); err != nil {
			return err
		}
		entry := auditEntry(actor, target.CampusID, models.ActionUnbanUser, models.EntityUser, userID, meta)
		return tx.Audits().Append(ctx, entry)
	})
	if err != nil {
		return err
	}

	s.pub.Publish(realtime.ModeratorChannel(target.CampusID), realtime.EventUserUnbanned,
		map[string]any{"user_id": userID})
	return nil
}
