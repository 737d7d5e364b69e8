package storage

import (
	"context"

	"github.com/campuswatch/backend/internal/apperr"
	"github.com/campuswatch/backend/internal/campus"
	"github.com/campuswatch/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type auditDB struct {
	db *gorm.DB
}

func (s *auditDB) Append(ctx context.Context, e *models.AuditLogEntry) error {
	if !models.ValidAuditAction(e.Action) {
		return apperr.Newf(apperr.KindInvalidArgument, "unknown audit action %q", e.Action)
	}
	return wrapErr(s.db.WithContext(ctx).Create(e).Error, "audit entry")
}

func (s *auditDB) ByEntity(ctx context.Context, campusID, entityID uuid.UUID, page, pageSize int) ([]models.AuditLogEntry, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.AuditLogEntry{}).
		Scopes(campus.ForCampus(campusID)).
		Where("entity_id = ?", entityID)
	return s.page(q, page, pageSize)
}

func (s *auditDB) ByActor(ctx context.Context, campusID, actorID uuid.UUID, page, pageSize int) ([]models.AuditLogEntry, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.AuditLogEntry{}).
		Scopes(campus.ForCampus(campusID)).
		Where("actor_id = ?", actorID)
	return s.page(q, page, pageSize)
}

func (s *auditDB) Recent(ctx context.Context, campusID uuid.UUID, actions []string, limit int) ([]models.AuditLogEntry, error) {
	if limit < 1 {
		limit = 10
	}
	q := s.db.WithContext(ctx).
		Scopes(campus.ForCampus(campusID))
	if len(actions) > 0 {
		q = q.Where("action IN ?", actions)
	}

	var entries []models.AuditLogEntry
	err := q.Preload("Actor").
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, wrapErr(err, "audit entry")
	}
	return entries, nil
}

func (s *auditDB) page(q *gorm.DB, page, pageSize int) ([]models.AuditLogEntry, int64, error) {
	page, pageSize = NormalizePage(page, pageSize)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrapErr(err, "audit entry")
	}

	var entries []models.AuditLogEntry
	err := q.Preload("Actor").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error
	if err != nil {
		return nil, 0, wrapErr(err, "audit entry")
	}
	return entries, total, nil
}
