package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/campuswatch/backend/internal/apperr"
	"github.com/campuswatch/backend/internal/campus"
	"github.com/campuswatch/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// distanceExpr computes great-circle meters between the query point and a
// report row (spherical law of cosines; LEAST guards acos from rounding
// past 1.0). Placeholder order: lat, lng, lat.
const distanceExpr = "(6371000 * acos(LEAST(1.0, " +
	"cos(radians(?)) * cos(radians(latitude)) * cos(radians(longitude) - radians(?)) + " +
	"sin(radians(?)) * sin(radians(latitude)))))"

type reportDB struct {
	db *gorm.DB
}

func (s *reportDB) Create(ctx context.Context, r *models.Report) error {
	return wrapErr(s.db.WithContext(ctx).Create(r).Error, "report")
}

func (s *reportDB) GetByID(ctx context.Context, campusID, id uuid.UUID) (*models.Report, error) {
	var r models.Report
	err := s.db.WithContext(ctx).
		Scopes(campus.ForCampus(campusID)).
		Where("id = ?", id).
		First(&r).Error
	if err != nil {
		return nil, wrapErr(err, "report")
	}
	return &r, nil
}

func (s *reportDB) IncrementViews(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
	return wrapErr(err, "report")
}

func (s *reportDB) IncrementComments(ctx context.Context, id uuid.UUID, delta int) error {
	err := s.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ?", id).
		UpdateColumn("comment_count", gorm.Expr("comment_count + ?", delta)).Error
	return wrapErr(err, "report")
}

func (s *reportDB) FindNearby(ctx context.Context, campusID uuid.UUID, lng, lat, radiusMeters float64, f NearbyFilters) ([]models.Report, error) {
	box := boundingBox(lat, lng, radiusMeters)

	inner := s.db.WithContext(ctx).Model(&models.Report{}).
		Select("reports.*, "+distanceExpr+" AS distance_meters", lat, lng, lat).
		Scopes(campus.ForCampus(campusID)).
		Where("latitude BETWEEN ? AND ?", box.minLat, box.maxLat).
		Where("longitude BETWEEN ? AND ?", box.minLng, box.maxLng)

	if f.Status != "" {
		inner = inner.Where("status = ?", f.Status)
	} else {
		inner = inner.Where("status IN ?", visibleStatuses)
	}
	if f.Category != "" {
		inner = inner.Where("category = ?", f.Category)
	}
	if f.MinSeverity > 0 {
		inner = inner.Where("severity >= ?", f.MinSeverity)
	}
	if f.CreatedSince != nil {
		inner = inner.Where("created_at >= ?", *f.CreatedSince)
	}

	// Alias columns are not addressable in WHERE, hence the wrapping query.
	var reports []models.Report
	err := s.db.WithContext(ctx).
		Table("(?) AS nearby", inner).
		Where("nearby.distance_meters <= ?", radiusMeters).
		Order("nearby.created_at DESC").
		Scan(&reports).Error
	if err != nil {
		return nil, wrapErr(err, "report")
	}
	return reports, nil
}

func (s *reportDB) FindFeed(ctx context.Context, campusID uuid.UUID, f FeedFilters, sort string, page, pageSize int) ([]models.Report, int64, error) {
	page, pageSize = NormalizePage(page, pageSize)

	q := s.db.WithContext(ctx).Model(&models.Report{}).
		Scopes(campus.ForCampus(campusID))

	switch {
	case f.Status != "":
		q = q.Where("status = ?", f.Status)
	case !f.IncludeHidden:
		q = q.Where("status IN ?", visibleStatuses)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.MinSeverity > 0 {
		q = q.Where("severity >= ?", f.MinSeverity)
	}
	if f.CreatedSince != nil {
		q = q.Where("created_at >= ?", *f.CreatedSince)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrapErr(err, "report")
	}

	var reports []models.Report
	err := q.Order(feedOrder(sort)).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&reports).Error
	if err != nil {
		return nil, 0, wrapErr(err, "report")
	}
	return reports, total, nil
}

func feedOrder(sort string) string {
	switch sort {
	case SortOldest:
		return "created_at ASC"
	case SortSeverityDesc:
		return "severity DESC, created_at DESC"
	case SortSeverityAsc:
		return "severity ASC, created_at DESC"
	case SortPopular:
		return "view_count DESC, created_at DESC"
	default:
		return "created_at DESC"
	}
}

func (s *reportDB) ApplyEdit(ctx context.Context, id, editorID uuid.UUID, fields EditFields, before models.ReportSnapshot) (bool, error) {
	updates := map[string]any{
		"edited":    true,
		"edited_at": time.Now(),
	}
	if fields.Category != nil {
		updates["category"] = *fields.Category
	}
	if fields.Severity != nil {
		updates["severity"] = *fields.Severity
	}
	if fields.Title != nil {
		updates["title"] = *fields.Title
	}
	if fields.Description != nil {
		updates["description"] = *fields.Description
	}
	if fields.Latitude != nil {
		updates["latitude"] = *fields.Latitude
	}
	if fields.Longitude != nil {
		updates["longitude"] = *fields.Longitude
	}

	applied := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Report{}).
			Where("id = ? AND status = ?", id, models.StatusReported).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		snap, err := json.Marshal(before)
		if err != nil {
			return err
		}
		history := models.ReportEdit{
			ReportID: id,
			EditorID: editorID,
			Before:   datatypes.JSON(snap),
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, wrapErr(err, "report")
	}
	return applied, nil
}

func (s *reportDB) UpdateModeration(ctx context.Context, id uuid.UUID, upd ModerationUpdate) error {
	updates := map[string]any{}
	if upd.Status != "" {
		updates["status"] = upd.Status
		if upd.Status == models.StatusResolved {
			updates["resolved_by"] = upd.ActorID
			updates["resolved_at"] = time.Now()
		} else {
			updates["resolved_by"] = nil
			updates["resolved_at"] = nil
		}
	}
	if upd.Notes != nil {
		updates["moderator_notes"] = *upd.Notes
	}
	if upd.AssignedTo != nil {
		if *upd.AssignedTo == uuid.Nil {
			updates["assigned_to"] = nil
		} else {
			updates["assigned_to"] = *upd.AssignedTo
		}
	}
	if len(updates) == 0 {
		return nil
	}

	res := s.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return wrapErr(res.Error, "report")
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("report")
	}
	return nil
}

func (s *reportDB) PutVote(ctx context.Context, reportID, userID uuid.UUID, kind string) (VoteCounts, error) {
	var counts VoteCounts
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vote := models.ReportVote{ReportID: reportID, UserID: userID, Kind: kind}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "report_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]any{"kind": kind, "updated_at": time.Now()}),
		}).Create(&vote).Error
		if err != nil {
			return err
		}

		var confirms, disputes int64
		if err := tx.Model(&models.ReportVote{}).
			Where("report_id = ? AND kind = ?", reportID, models.VoteConfirm).
			Count(&confirms).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ReportVote{}).
			Where("report_id = ? AND kind = ?", reportID, models.VoteDispute).
			Count(&disputes).Error; err != nil {
			return err
		}

		counts = VoteCounts{
			Confirms: int(confirms),
			Disputes: int(disputes),
			Net:      int(confirms - disputes),
		}
		return tx.Model(&models.Report{}).
			Where("id = ?", reportID).
			UpdateColumns(map[string]any{
				"confirm_count": counts.Confirms,
				"dispute_count": counts.Disputes,
			}).Error
	})
	if err != nil {
		return VoteCounts{}, wrapErr(err, "report")
	}
	return counts, nil
}

func (s *reportDB) AddSpamFlag(ctx context.Context, reportID, userID uuid.UUID) (int, bool, error) {
	var (
		count int64
		added bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		flag := models.SpamFlag{ReportID: reportID, UserID: userID}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "report_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).Create(&flag)
		if res.Error != nil {
			return res.Error
		}
		added = res.RowsAffected > 0

		if err := tx.Model(&models.SpamFlag{}).
			Where("report_id = ?", reportID).
			Count(&count).Error; err != nil {
			return err
		}
		return tx.Model(&models.Report{}).
			Where("id = ?", reportID).
			UpdateColumn("spam_flag_count", count).Error
	})
	if err != nil {
		return 0, false, wrapErr(err, "report")
	}
	return int(count), added, nil
}

func (s *reportDB) MarkSpam(ctx context.Context, reportID uuid.UUID) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ? AND is_spam = ?", reportID, false).
		Updates(map[string]any{"is_spam": true, "status": models.StatusSpam})
	if res.Error != nil {
		return false, wrapErr(res.Error, "report")
	}
	return res.RowsAffected > 0, nil
}

func (s *reportDB) CountByStatus(ctx context.Context, campusID uuid.UUID, since *time.Time) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	q := s.db.WithContext(ctx).Model(&models.Report{}).
		Select("status, COUNT(*) AS count").
		Scopes(campus.ForCampus(campusID)).
		Group("status")
	if since != nil {
		q = q.Where("created_at >= ?", *since)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, wrapErr(err, "report")
	}

	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}
