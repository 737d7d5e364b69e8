package services

import (
	"context"
	"encoding/json"

	"github.com/campuswatch/backend/internal/models"
	"github.com/campuswatch/backend/internal/storage"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// newNotification builds an inbox row. Creation rides the caller's
// transaction through the stores handle it was given.
func newNotification(userID uuid.UUID, reportID *uuid.UUID, typ, title, message, priority string, data any) *models.Notification {
	n := &models.Notification{
		UserID:   userID,
		ReportID: reportID,
		Type:     typ,
		Title:    title,
		Message:  message,
		Priority: priority,
	}
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			n.Data = datatypes.JSON(b)
		}
	}
	return n
}

// NotificationService exposes a user's own inbox.
type NotificationService struct {
	stores storage.Stores
}

func NewNotificationService(stores storage.Stores) *NotificationService {
	return &NotificationService{stores: stores}
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool, page, pageSize int) ([]models.Notification, int64, error) {
	return s.stores.Notifications().ListByUser(ctx, userID, unreadOnly, page, pageSize)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.stores.Notifications().MarkRead(ctx, userID, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.stores.Notifications().MarkAllRead(ctx, userID)
}
