package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Notification types.
const (
	NotifyCommentReply      = "comment_reply"
	NotifyModeratorAction   = "moderator_action"
	NotifyStatusChange      = "status_change"
	NotifyHighSeverityAlert = "high_severity_alert"
)

// Notification priorities.
const (
	PriorityLow    = "low"
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// Notification is a per-user inbox record. The core only creates rows and
// flips delivery flags; email/push delivery happens elsewhere.
type Notification struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	ReportID  *uuid.UUID     `gorm:"type:uuid;index" json:"report_id,omitempty"`
	Type      string         `gorm:"not null;size:30" json:"type"`
	Title     string         `gorm:"not null;size:200" json:"title"`
	Message   string         `gorm:"size:500" json:"message"`
	Data      datatypes.JSON `gorm:"type:jsonb" json:"data,omitempty"`
	Priority  string         `gorm:"size:10;default:'normal'" json:"priority"`
	IsRead    bool           `gorm:"default:false;index" json:"is_read"`
	ReadAt    *time.Time     `json:"read_at,omitempty"`
	PushSent  bool           `gorm:"default:false" json:"push_sent"`
	EmailSent bool           `gorm:"default:false" json:"email_sent"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

// CommentReplyData is the Data shape for comment_reply.
type CommentReplyData struct {
	ReportID  uuid.UUID `json:"report_id"`
	CommentID uuid.UUID `json:"comment_id"`
	Author    string    `json:"author"`
}

// ModeratorActionData is the Data shape for moderator_action.
type ModeratorActionData struct {
	ReportID  uuid.UUID `json:"report_id"`
	OldStatus string    `json:"old_status"`
	NewStatus string    `json:"new_status"`
}

// HighSeverityData is the Data shape for high_severity_alert.
type HighSeverityData struct {
	ReportID uuid.UUID `json:"report_id"`
	Category string    `json:"category"`
	Severity int       `json:"severity"`
}
