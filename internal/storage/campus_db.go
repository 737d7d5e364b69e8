package storage

import (
	"context"

	"github.com/campuswatch/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type campusDB struct {
	db *gorm.DB
}

func (s *campusDB) Create(ctx context.Context, c *models.Campus) error {
	return wrapErr(s.db.WithContext(ctx).Create(c).Error, "campus")
}

func (s *campusDB) GetByID(ctx context.Context, id uuid.UUID) (*models.Campus, error) {
	var c models.Campus
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		return nil, wrapErr(err, "campus")
	}
	return &c, nil
}

func (s *campusDB) GetByCode(ctx context.Context, code string) (*models.Campus, error) {
	var c models.Campus
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&c).Error
	if err != nil {
		return nil, wrapErr(err, "campus")
	}
	return &c, nil
}

func (s *campusDB) List(ctx context.Context) ([]models.Campus, error) {
	var campuses []models.Campus
	err := s.db.WithContext(ctx).Order("name ASC").Find(&campuses).Error
	if err != nil {
		return nil, wrapErr(err, "campus")
	}
	return campuses, nil
}

func (s *campusDB) Update(ctx context.Context, id uuid.UUID, upd CampusUpdate) (*models.Campus, error) {
	updates := map[string]any{}
	if upd.Name != nil {
		updates["name"] = *upd.Name
	}
	if upd.City != nil {
		updates["city"] = *upd.City
	}
	if upd.CenterLat != nil {
		updates["center_lat"] = *upd.CenterLat
	}
	if upd.CenterLng != nil {
		updates["center_lng"] = *upd.CenterLng
	}
	if upd.MinSeverityForPush != nil {
		updates["min_severity_for_push"] = *upd.MinSeverityForPush
	}
	if upd.ReportRateLimitPerHour != nil {
		updates["report_rate_limit_per_hour"] = *upd.ReportRateLimitPerHour
	}
	if upd.IsActive != nil {
		updates["is_active"] = *upd.IsActive
	}

	if len(updates) > 0 {
		res := s.db.WithContext(ctx).Model(&models.Campus{}).
			Where("id = ?", id).
			Updates(updates)
		if res.Error != nil {
			return nil, wrapErr(res.Error, "campus")
		}
		if res.RowsAffected == 0 {
			return nil, wrapErr(gorm.ErrRecordNotFound, "campus")
		}
	}
	return s.GetByID(ctx, id)
}
