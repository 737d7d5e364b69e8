package storage

import (
	"context"
	"time"

	"github.com/campuswatch/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type commentDB struct {
	db *gorm.DB
}

func (s *commentDB) Create(ctx context.Context, c *models.Comment) error {
	return wrapErr(s.db.WithContext(ctx).Create(c).Error, "comment")
}

func (s *commentDB) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var c models.Comment
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		return nil, wrapErr(err, "comment")
	}
	return &c, nil
}

func (s *commentDB) ListByReport(ctx context.Context, reportID uuid.UUID, page, pageSize int) ([]models.Comment, int64, error) {
	page, pageSize = NormalizePage(page, pageSize)

	q := s.db.WithContext(ctx).Model(&models.Comment{}).
		Where("report_id = ?", reportID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrapErr(err, "comment")
	}

	var comments []models.Comment
	err := q.Order("created_at ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&comments).Error
	if err != nil {
		return nil, 0, wrapErr(err, "comment")
	}
	return comments, total, nil
}

func (s *commentDB) UpdateContent(ctx context.Context, id uuid.UUID, content string, editedAt time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"content":   content,
			"edited":    true,
			"edited_at": editedAt,
		})
	if res.Error != nil {
		return wrapErr(res.Error, "comment")
	}
	if res.RowsAffected == 0 {
		return wrapErr(gorm.ErrRecordNotFound, "comment")
	}
	return nil
}

func (s *commentDB) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", at)
	if res.Error != nil {
		return wrapErr(res.Error, "comment")
	}
	return nil
}
