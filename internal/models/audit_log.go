package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Audit actions. Closed enum: the audit store rejects anything else.
const (
	ActionCreateReport       = "create_report"
	ActionEditReport         = "edit_report"
	ActionDeleteReport       = "delete_report"
	ActionVoteReport         = "vote_report"
	ActionReportSpam         = "report_spam"
	ActionVerifyReport       = "verify_report"
	ActionInvestigateReport  = "investigate_report"
	ActionResolveReport      = "resolve_report"
	ActionInvalidateReport   = "invalidate_report"
	ActionUpdateReportStatus = "update_report_status"
	ActionDeleteComment      = "delete_comment"
	ActionBanUser            = "ban_user"
	ActionUnbanUser          = "unban_user"
)

// ValidAuditAction reports whether a is a known audit action.
func ValidAuditAction(a string) bool {
	switch a {
	case ActionCreateReport, ActionEditReport, ActionDeleteReport,
		ActionVoteReport, ActionReportSpam,
		ActionVerifyReport, ActionInvestigateReport, ActionResolveReport,
		ActionInvalidateReport, ActionUpdateReportStatus,
		ActionDeleteComment, ActionBanUser, ActionUnbanUser:
		return true
	}
	return false
}

// Audit entity types.
const (
	EntityReport  = "report"
	EntityComment = "comment"
	EntityUser    = "user"
)

// AuditLogEntry is an append-only record of a moderation-relevant action.
// The store exposes no update or delete for it.
type AuditLogEntry struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CampusID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"campus_id"`
	ActorID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"actor_id"`
	Action     string         `gorm:"not null;size:50;index" json:"action"`
	EntityType string         `gorm:"not null;size:20" json:"entity_type"`
	EntityID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"entity_id"`
	Payload    datatypes.JSON `gorm:"type:jsonb" json:"payload,omitempty"`
	Changes    datatypes.JSON `gorm:"type:jsonb" json:"changes,omitempty"`
	IPAddress  string         `gorm:"size:45" json:"ip_address,omitempty"`
	UserAgent  string         `gorm:"size:500" json:"user_agent,omitempty"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
	Actor      User           `gorm:"foreignKey:ActorID" json:"-"`
}

// ReportSnapshot is the editable slice of a report captured in audit changes
// and edit history rows.
type ReportSnapshot struct {
	Category    string  `json:"category"`
	Severity    int     `json:"severity"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

// EditChanges is the Changes shape for edit_report.
type EditChanges struct {
	Before ReportSnapshot `json:"before"`
	After  ReportSnapshot `json:"after"`
}

// StatusSnapshot is the moderation slice of a report.
type StatusSnapshot struct {
	Status         string     `json:"status"`
	ModeratorNotes string     `json:"moderator_notes,omitempty"`
	AssignedTo     *uuid.UUID `json:"assigned_to,omitempty"`
}

// StatusChanges is the Changes shape for the status-transition actions.
type StatusChanges struct {
	Before StatusSnapshot `json:"before"`
	After  StatusSnapshot `json:"after"`
}

// VotePayload is the Payload shape for vote_report.
type VotePayload struct {
	Kind     string `json:"kind"`
	Confirms int    `json:"confirms"`
	Disputes int    `json:"disputes"`
	Net      int    `json:"net"`
}

// SpamPayload is the Payload shape for report_spam.
type SpamPayload struct {
	FlagCount int  `json:"flag_count"`
	Marked    bool `json:"marked"`
}

// RetractPayload is the Payload shape for delete_report.
type RetractPayload struct {
	PriorStatus string `json:"prior_status"`
}

// BanPayload is the Payload shape for ban_user.
type BanPayload struct {
	Reason string `json:"reason,omitempty"`
}
