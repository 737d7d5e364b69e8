package dto

import (
	"time"

	"github.com/campuswatch/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ModerationUpdateRequest struct {
	Status         string     `json:"status" validate:"omitempty,oneof=reported verified investigating resolved invalid spam"`
	ModeratorNotes *string    `json:"moderator_notes" validate:"omitempty,max=1000"`
	AssignedTo     *uuid.UUID `json:"assigned_to"`
}

type BanUserRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

type AuditEntryResponse struct {
	ID         uuid.UUID      `json:"id"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   uuid.UUID      `json:"entity_id"`
	ActorID    uuid.UUID      `json:"actor_id"`
	ActorName  string         `json:"actor_name,omitempty"`
	ActorRole  string         `json:"actor_role,omitempty"`
	Payload    datatypes.JSON `json:"payload,omitempty"`
	Changes    datatypes.JSON `json:"changes,omitempty"`
	IPAddress  string         `json:"ip_address,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}

func NewAuditEntryResponse(e *models.AuditLogEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:         e.ID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		ActorID:    e.ActorID,
		ActorName:  e.Actor.DisplayName,
		ActorRole:  e.Actor.Role,
		Payload:    e.Payload,
		Changes:    e.Changes,
		IPAddress:  e.IPAddress,
		CreatedAt:  e.CreatedAt,
	}
}

func NewAuditEntryResponses(entries []models.AuditLogEntry) []AuditEntryResponse {
	out := make([]AuditEntryResponse, len(entries))
	for i := range entries {
		out[i] = NewAuditEntryResponse(&entries[i])
	}
	return out
}

type AuditListResponse struct {
	Entries []AuditEntryResponse `json:"entries"`
	Meta    PageMeta             `json:"meta"`
}

// DashboardSummary is rebuilt from storage on every request.
type DashboardSummary struct {
	TodayByStatus  map[string]int64     `json:"today_by_status"`
	TotalByStatus  map[string]int64     `json:"total_by_status"`
	SpamTotal      int64                `json:"spam_total"`
	RecentActivity []AuditEntryResponse `json:"recent_activity"`
}
