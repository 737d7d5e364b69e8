package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/campuswatch/backend/internal/apperr"
	"github.com/campuswatch/backend/internal/authz"
	"github.com/campuswatch/backend/internal/config"
	"github.com/campuswatch/backend/internal/dto"
	"github.com/campuswatch/backend/internal/models"
	"github.com/campuswatch/backend/internal/ratelimit"
	"github.com/campuswatch/backend/internal/realtime"
	"github.com/campuswatch/backend/internal/storage"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ReportService owns the report lifecycle: creation, crowd actions (votes,
// spam flags, comments) and the author-side edit and retract paths. Every
// audited mutation writes its audit entry on the same transaction.
type ReportService struct {
	stores storage.Stores
	pub    realtime.Publisher
	quota  ratelimit.Quota
	filter *ContentFilter
	push   PushGateway
	cfg    *config.Config

	// Clock is swappable so edit-window tests can move time.
	Clock func() time.Time
}

func NewReportService(stores storage.Stores, pub realtime.Publisher, quota ratelimit.Quota, filter *ContentFilter, push PushGateway, cfg *config.Config) *ReportService {
	return &ReportService{
		stores: stores,
		pub:    pub,
		quota:  quota,
		filter: filter,
		push:   push,
		cfg:    cfg,
		Clock:  time.Now,
	}
}

// Create files a new incident report. Requires a verified email and an
// available slot in the hourly quota; the campus limit overrides the server
// default when set.
func (s *ReportService) Create(ctx context.Context, actor authz.Identity, req dto.CreateReportRequest, meta RequestMeta) (*dto.ReportResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if !actor.EmailVerified {
		return nil, apperr.Forbidden("verify your email before posting reports")
	}

	campus, err := s.stores.Campuses().GetByID(ctx, actor.CampusID)
	if err != nil {
		return nil, err
	}

	limit := s.cfg.ReportRateLimitPerHour
	if campus.ReportRateLimitPerHour > 0 {
		limit = campus.ReportRateLimitPerHour
	}
	allowed, err := s.quota.Allow(ctx, actor.UserID, limit)
	if err != nil {
		// A broken quota backend must not take report intake down with it.
		slog.Warn("quota check failed, allowing report", "error", err, "user_id", actor.UserID.String())
	} else if !allowed {
		return nil, apperr.RateLimited("hourly report limit reached")
	}

	report := &models.Report{
		CampusID:    actor.CampusID,
		ReporterID:  actor.UserID,
		IsAnonymous: req.IsAnonymous,
		Category:    req.Category,
		Severity:    req.Severity,
		Title:       req.Title,
		Description: req.Description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		MediaURLs:   pq.StringArray(req.MediaURLs),
		Status:      models.StatusReported,
	}
	err = s.stores.Transact(ctx, func(tx storage.Stores) error {
		if err := tx.Reports().Create(ctx, report); err != nil {
			return err
		}
		entry := auditEntry(actor, actor.CampusID, models.ActionCreateReport, models.EntityReport, report.ID, meta)
		return tx.Audits().Append(ctx, withPayload(entry, snapshotOf(report)))
	})
	if err != nil {
		return nil, err
	}

	s.pub.Publish(realtime.CampusChannel(actor.CampusID), realtime.EventNewReport,
		dto.NewReportResponse(report, uuid.Nil, false))

	if campus.MinSeverityForPush > 0 && report.Severity >= campus.MinSeverityForPush {
		s.alertStaff(ctx, report)
		s.push.NotifyHighSeverity(ctx, campus.ID, report)
	}

	resp := dto.NewReportResponse(report, actor.UserID, actor.IsModerator())
	return &resp, nil
}

// alertStaff files a high-priority inbox row for each staff member of the
// campus. Best-effort: the report itself is already committed.
func (s *ReportService) alertStaff(ctx context.Context, r *models.Report) {
	staff, err := s.stores.Users().ListStaff(ctx, r.CampusID)
	if err != nil {
		slog.Warn("staff lookup for severity alert failed", "error", err, "report_id", r.ID.String())
		return
	}
	data := models.HighSeverityData{ReportID: r.ID, Category: r.Category, Severity: r.Severity}
	for i := range staff {
		if staff[i].ID == r.ReporterID {
			continue
		}
		n := newNotification(staff[i].ID, &r.ID, models.NotifyHighSeverityAlert,
			"High severity report",
			fmt.Sprintf("A severity %d %s report was filed on your campus.", r.Severity, r.Category),
			models.PriorityHigh, data)
		if err := s.stores.Notifications().Create(ctx, n); err != nil {
			slog.Warn("severity alert notification failed", "error", err, "user_id", staff[i].ID.String())
		}
	}
}

// Get returns one report and counts the view.
func (s *ReportService) Get(ctx context.Context, viewer authz.Identity, id uuid.UUID) (*dto.ReportResponse, error) {
	r, err := s.stores.Reports().GetByID(ctx, viewer.CampusScope(), id)
	if err != nil {
		return nil, err
	}
	if err := s.stores.Reports().IncrementViews(ctx, id); err == nil {
		r.ViewCount++
	}
	resp := dto.NewReportResponse(r, viewer.UserID, viewer.IsModerator())
	return &resp, nil
}

// Feed is the paginated campus listing. Hidden statuses stay hidden unless
// a moderator asks for them.
func (s *ReportService) Feed(ctx context.Context, viewer authz.Identity, f storage.FeedFilters, sort string, page, pageSize int) (*dto.ReportListResponse, error) {
	if !viewer.IsModerator() {
		f.IncludeHidden = false
	}
	page, pageSize = storage.NormalizePage(page, pageSize)
	reports, total, err := s.stores.Reports().FindFeed(ctx, viewer.CampusScope(), f, sort, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &dto.ReportListResponse{
		Reports: dto.NewReportResponses(reports, viewer.UserID, viewer.IsModerator()),
		Meta:    dto.PageMeta{Page: page, PageSize: pageSize, Total: total},
	}, nil
}

// Nearby lists reports within radiusMeters of a point, closest-in-time
// first, each annotated with its distance.
func (s *ReportService) Nearby(ctx context.Context, viewer authz.Identity, lat, lng, radiusMeters float64, f storage.NearbyFilters) ([]dto.ReportResponse, error) {
	switch {
	case math.IsNaN(lat) || math.IsInf(lat, 0) || lat < -90 || lat > 90:
		return nil, apperr.Invalid("latitude must be a finite value between -90 and 90")
	case math.IsNaN(lng) || math.IsInf(lng, 0) || lng < -180 || lng > 180:
		return nil, apperr.Invalid("longitude must be a finite value between -180 and 180")
	case math.IsNaN(radiusMeters) || radiusMeters < 100 || radiusMeters > 10000:
		return nil, apperr.Invalid("radius must be between 100 and 10000 meters")
	}
	reports, err := s.stores.Reports().FindNearby(ctx, viewer.CampusScope(), lng, lat, radiusMeters, f)
	if err != nil {
		return nil, err
	}
	return dto.NewReportResponses(reports, viewer.UserID, viewer.IsModerator()), nil
}

// Edit applies an author edit while the report is still in its edit window
// and has not been picked up by moderation.
func (s *ReportService) Edit(ctx context.Context, actor authz.Identity, id uuid.UUID, req dto.UpdateReportRequest, meta RequestMeta) (*dto.ReportResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if req.Empty() {
		return nil, apperr.Invalid("no fields to update")
	}
	r, err := s.stores.Reports().GetByID(ctx, actor.CampusScope(), id)
	if err != nil {
		return nil, err
	}
	if err := authz.EditReport.Allow(actor, r.CampusID, r.ReporterID); err != nil {
		return nil, err
	}
	if r.Status != models.StatusReported {
		return nil, apperr.Conflict("report can no longer be edited once reviewed")
	}
	if s.Clock().Sub(r.CreatedAt) >= s.cfg.ReportEditWindow {
		return nil, apperr.EditWindowClosed("the edit window for this report has closed")
	}

	fields := storage.EditFields{
		Category:    req.Category,
		Severity:    req.Severity,
		Title:       req.Title,
		Description: req.Description,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	}
	before := snapshotOf(r)
	after := before
	applyFields(&after, fields)

	err = s.stores.Transact(ctx, func(tx storage.Stores) error {
		applied, err := tx.Reports().ApplyEdit(ctx, id, actor.UserID, fields, before)
		if err != nil {
			return err
		}
		if !applied {
			// Moderation raced us between the read above and here.
			return apperr.Conflict("report can no longer be edited once reviewed")
		}
		entry := auditEntry(actor, r.CampusID, models.ActionEditReport, models.EntityReport, id, meta)
		return tx.Audits().Append(ctx, withChanges(entry, models.EditChanges{Before: before, After: after}))
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.stores.Reports().GetByID(ctx, actor.CampusScope(), id)
	if err != nil {
		return nil, err
	}
	s.pub.Publish(realtime.ReportChannel(id), realtime.EventReportUpdate,
		dto.NewReportResponse(updated, uuid.Nil, false))

	resp := dto.NewReportResponse(updated, actor.UserID, actor.IsModerator())
	return &resp, nil
}

// Retract marks the author's own report invalid. Deliberately no fan-out:
// retracted content is not advertised, readers drop it on the next fetch.
func (s *ReportService) Retract(ctx context.Context, actor authz.Identity, id uuid.UUID, meta RequestMeta) error {
	r, err := s.stores.Reports().GetByID(ctx, actor.CampusScope(), id)
	if err != nil {
		return err
	}
	if err := authz.RetractReport.Allow(actor, r.CampusID, r.ReporterID); err != nil {
		return err
	}
	if r.Status == models.StatusInvalid {
		return apperr.Conflict("report is already retracted")
	}
	return s.stores.Transact(ctx, func(tx storage.Stores) error {
		upd := storage.ModerationUpdate{Status: models.StatusInvalid, ActorID: actor.UserID}
		if err := tx.Reports().UpdateModeration(ctx, id, upd); err != nil {
			return err
		}
		entry := auditEntry(actor, r.CampusID, models.ActionDeleteReport, models.EntityReport, id, meta)
		return tx.Audits().Append(ctx, withPayload(entry, models.RetractPayload{PriorStatus: r.Status}))
	})
}

// Vote records a confirm or dispute. One vote per user per report; voting
// the same way twice is a no-op, voting the other way moves the vote.
func (s *ReportService) Vote(ctx context.Context, actor authz.Identity, id uuid.UUID, req dto.VoteRequest, meta RequestMeta) (*dto.VoteResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	r, err := s.stores.Reports().GetByID(ctx, actor.CampusScope(), id)
	if err != nil {
		return nil, err
	}

	var counts storage.VoteCounts
	err = s.stores.Transact(ctx, func(tx storage.Stores) error {
		var err error
		counts, err = tx.Reports().PutVote(ctx, id, actor.UserID, req.Kind)
		if err != nil {
			return err
		}
		entry := auditEntry(actor, r.CampusID, models.ActionVoteReport, models.EntityReport, id, meta)
		return tx.Audits().Append(ctx, withPayload(entry, models.VotePayload{
			Kind:     req.Kind,
			Confirms: counts.Confirms,
			Disputes: counts.Disputes,
			Net:      counts.Net,
		}))
	})
	if err != nil {
		return nil, err
	}
	return &dto.VoteResponse{Kind: req.Kind, Votes: counts}, nil
}

// FlagSpam adds the actor to the report's spam-flagger set. The report is
// marked spam once, on the flag that reaches the threshold.
func (s *ReportService) FlagSpam(ctx context.Context, actor authz.Identity, id uuid.UUID, meta RequestMeta) (*dto.SpamFlagResponse, error) {
	r, err := s.stores.Reports().GetByID(ctx, actor.CampusScope(), id)
	if err != nil {
		return nil, err
	}

	var (
		count  int
		marked bool
	)
	err = s.stores.Transact(ctx, func(tx storage.Stores) error {
		n, added, err := tx.Reports().AddSpamFlag(ctx, id, actor.UserID)
		if err != nil {
			return err
		}
		count = n
		if !added {
			return nil
		}
		if n >= s.cfg.SpamFlagThreshold {
			marked, err = tx.Reports().MarkSpam(ctx, id)
			if err != nil {
				return err
			}
		}
		entry := auditEntry(actor, r.CampusID, models.ActionReportSpam, models.EntityReport, id, meta)
		return tx.Audits().Append(ctx, withPayload(entry, models.SpamPayload{FlagCount: n, Marked: marked}))
	})
	if err != nil {
		return nil, err
	}
	return &dto.SpamFlagResponse{FlagCount: count, MarkedSpam: marked}, nil
}

// CommentCreate adds a comment, bumps the denormalized counter and notifies
// the reporter when someone else comments.
func (s *ReportService) CommentCreate(ctx context.Context, actor authz.Identity, reportID uuid.UUID, req dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if ok, reason := s.filter.Check(req.Content); !ok {
		return nil, apperr.Invalid(s.filter.RejectionMessage(reason))
	}
	r, err := s.stores.Reports().GetByID(ctx, actor.CampusScope(), reportID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ReportID:    reportID,
		CampusID:    r.CampusID,
		AuthorID:    actor.UserID,
		Content:     req.Content,
		IsAnonymous: req.IsAnonymous,
	}
	err = s.stores.Transact(ctx, func(tx storage.Stores) error {
		if err := tx.Comments().Create(ctx, comment); err != nil {
			return err
		}
		if err := tx.Reports().IncrementComments(ctx, reportID, 1); err != nil {
			return err
		}
		if r.ReporterID == actor.UserID {
			return nil
		}
		author := s.commentAuthorName(ctx, comment)
		n := newNotification(r.ReporterID, &reportID, models.NotifyCommentReply,
			"New comment on your report",
			fmt.Sprintf("%s commented on %q.", author, r.Title),
			models.PriorityLow,
			models.CommentReplyData{ReportID: reportID, CommentID: comment.ID, Author: author})
		return tx.Notifications().Create(ctx, n)
	})
	if err != nil {
		return nil, err
	}

	s.pub.Publish(realtime.ReportChannel(reportID), realtime.EventNewComment,
		dto.NewCommentResponse(comment, uuid.Nil, false))

	resp := dto.NewCommentResponse(comment, actor.UserID, actor.IsModerator())
	return &resp, nil
}

func (s *ReportService) commentAuthorName(ctx context.Context, c *models.Comment) string {
	if c.IsAnonymous {
		return "Someone"
	}
	u, err := s.stores.Users().GetByID(ctx, c.AuthorID)
	if err != nil {
		return "Someone"
	}
	return u.DisplayName
}

// CommentList returns the report's thread oldest first. Deleted comments
// keep their slot with placeholder content.
func (s *ReportService) CommentList(ctx context.Context, viewer authz.Identity, reportID uuid.UUID, page, pageSize int) (*dto.CommentListResponse, error) {
	if _, err := s.stores.Reports().GetByID(ctx, viewer.CampusScope(), reportID); err != nil {
		return nil, err
	}
	page, pageSize = storage.NormalizePage(page, pageSize)
	comments, total, err := s.stores.Comments().ListByReport(ctx, reportID, page, pageSize)
	if err != nil {
		return nil, err
	}
	return &dto.CommentListResponse{
		Comments: dto.NewCommentResponses(comments, viewer.UserID, viewer.IsModerator()),
		Meta:     dto.PageMeta{Page: page, PageSize: pageSize, Total: total},
	}, nil
}

// CommentEdit lets the author revise a comment within the edit window.
func (s *ReportService) CommentEdit(ctx context.Context, actor authz.Identity, commentID uuid.UUID, req dto.UpdateCommentRequest) (*dto.CommentResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	if ok, reason := s.filter.Check(req.Content); !ok {
		return nil, apperr.Invalid(s.filter.RejectionMessage(reason))
	}
	c, err := s.stores.Comments().GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if c.DeletedAt != nil {
		return nil, apperr.NotFound("comment")
	}
	if err := authz.EditComment.Allow(actor, c.CampusID, c.AuthorID); err != nil {
		return nil, err
	}
	now := s.Clock()
	if now.Sub(c.CreatedAt) >= s.cfg.CommentEditWindow {
		return nil, apperr.EditWindowClosed("the edit window for this comment has closed")
	}
	if err := s.stores.Comments().UpdateContent(ctx, commentID, req.Content, now); err != nil {
		return nil, err
	}
	c.Content = req.Content
	c.Edited = true
	c.EditedAt = &now

	resp := dto.NewCommentResponse(c, actor.UserID, actor.IsModerator())
	return &resp, nil
}

// CommentDelete soft-deletes a comment. Author or moderator+; a moderator
// removing someone else's comment is audited.
func (s *ReportService) CommentDelete(ctx context.Context, actor authz.Identity, commentID uuid.UUID, meta RequestMeta) error {
	c, err := s.stores.Comments().GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if c.DeletedAt != nil {
		return nil
	}
	if err := authz.DeleteComment.Allow(actor, c.CampusID, c.AuthorID); err != nil {
		return err
	}
	now := s.Clock()
	return s.stores.Transact(ctx, func(tx storage.Stores) error {
		if err := tx.Comments().SoftDelete(ctx, commentID, now); err != nil {
			return err
		}
		if actor.UserID == c.AuthorID {
			return nil
		}
		entry := auditEntry(actor, c.CampusID, models.ActionDeleteComment, models.EntityComment, commentID, meta)
		return tx.Audits().Append(ctx, entry)
	})
}

func snapshotOf(r *models.Report) models.ReportSnapshot {
	return models.ReportSnapshot{
		Category:    r.Category,
		Severity:    r.Severity,
		Title:       r.Title,
		Description: r.Description,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
	}
}

func applyFields(snap *models.ReportSnapshot, f storage.EditFields) {
	if f.Category != nil {
		snap.Category = *f.Category
	}
	if f.Severity != nil {
		snap.Severity = *f.Severity
	}
	if f.Title != nil {
		snap.Title = *f.Title
	}
	if f.Description != nil {
		snap.Description = *f.Description
	}
	if f.Latitude != nil {
		snap.Latitude = *f.Latitude
	}
	if f.Longitude != nil {
		snap.Longitude = *f.Longitude
	}
}
