package storage

import (
	"context"
	"time"

	"github.com/campuswatch/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type notificationDB struct {
	db *gorm.DB
}

func (s *notificationDB) Create(ctx context.Context, n *models.Notification) error {
	return wrapErr(s.db.WithContext(ctx).Create(n).Error, "notification")
}

func (s *notificationDB) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, pageSize int) ([]models.Notification, int64, error) {
	page, pageSize = NormalizePage(page, pageSize)

	q := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrapErr(err, "notification")
	}

	var notifications []models.Notification
	err := q.Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, wrapErr(err, "notification")
	}
	return notifications, total, nil
}

func (s *notificationDB) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"is_read": true, "read_at": time.Now()})
	if res.Error != nil {
		return wrapErr(res.Error, "notification")
	}
	if res.RowsAffected == 0 {
		return wrapErr(gorm.ErrRecordNotFound, "notification")
	}
	return nil
}

func (s *notificationDB) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]any{"is_read": true, "read_at": time.Now()})
	if res.Error != nil {
		return 0, wrapErr(res.Error, "notification")
	}
	return res.RowsAffected, nil
}
