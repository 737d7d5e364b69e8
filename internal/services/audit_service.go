package services

import (
	"context"
	"encoding/json"

	"github.com/campuswatch/backend/internal/authz"
	"github.com/campuswatch/backend/internal/models"
	"github.com/campuswatch/backend/internal/storage"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// RequestMeta is the request-scoped context recorded on audit entries.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// auditEntry builds an append-ready entry. Payload and changes attach via
// the with helpers; the append itself always happens on the mutating
// operation's transaction so entry and mutation commit together.
func auditEntry(actor authz.Identity, campusID uuid.UUID, action, entityType string, entityID uuid.UUID, meta RequestMeta) *models.AuditLogEntry {
	return &models.AuditLogEntry{
		CampusID:   campusID,
		ActorID:    actor.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	}
}

func withPayload(e *models.AuditLogEntry, v any) *models.AuditLogEntry {
	if b, err := json.Marshal(v); err == nil {
		e.Payload = datatypes.JSON(b)
	}
	return e
}

func withChanges(e *models.AuditLogEntry, v any) *models.AuditLogEntry {
	if b, err := json.Marshal(v); err == nil {
		e.Changes = datatypes.JSON(b)
	}
	return e
}

// auditActionForStatus names the audit action for a status transition.
// Statuses without a dedicated action log as update_report_status.
func auditActionForStatus(status string) string {
	switch status {
	case models.StatusVerified:
		return models.ActionVerifyReport
	case models.StatusInvestigating:
		return models.ActionInvestigateReport
	case models.StatusResolved:
		return models.ActionResolveReport
	case models.StatusInvalid:
		return models.ActionInvalidateReport
	default:
		return models.ActionUpdateReportStatus
	}
}

// moderationActions is what the dashboard's recent-activity pane shows.
var moderationActions = []string{
	models.ActionVerifyReport,
	models.ActionInvestigateReport,
	models.ActionResolveReport,
	models.ActionInvalidateReport,
	models.ActionUpdateReportStatus,
	models.ActionDeleteComment,
	models.ActionBanUser,
	models.ActionUnbanUser,
}

// AuditService is the moderator-facing read side of the audit log.
type AuditService struct {
	stores storage.Stores
}

func NewAuditService(stores storage.Stores) *AuditService {
	return &AuditService{stores: stores}
}

func (s *AuditService) ByReport(ctx context.Context, viewer authz.Identity, reportID uuid.UUID, page, pageSize int) ([]models.AuditLogEntry, int64, error) {
	if err := authz.ViewAudit.Allow(viewer, viewer.CampusID, uuid.Nil); err != nil {
		return nil, 0, err
	}
	return s.stores.Audits().ByEntity(ctx, viewer.CampusScope(), reportID, page, pageSize)
}

func (s *AuditService) ByActor(ctx context.Context, viewer authz.Identity, actorID uuid.UUID, page, pageSize int) ([]models.AuditLogEntry, int64, error) {
	if err := authz.ViewAudit.Allow(viewer, viewer.CampusID, uuid.Nil); err != nil {
		return nil, 0, err
	}
	return s.stores.Audits().ByActor(ctx, viewer.CampusScope(), actorID, page, pageSize)
}

func (s *AuditService) Recent(ctx context.Context, viewer authz.Identity, limit int) ([]models.AuditLogEntry, error) {
	if err := authz.ViewAudit.Allow(viewer, viewer.CampusID, uuid.Nil); err != nil {
		return nil, err
	}
	return s.stores.Audits().Recent(ctx, viewer.CampusScope(), nil, limit)
}
