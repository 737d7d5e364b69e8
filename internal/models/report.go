package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// Report lifecycle statuses.
const (
	StatusReported      = "reported"
	StatusVerified      = "verified"
	StatusInvestigating = "investigating"
	StatusResolved      = "resolved"
	StatusInvalid       = "invalid"
	StatusSpam          = "spam"
)

// ReportCategories is the closed set of incident types.
var ReportCategories = []string{
	"theft",
	"assault",
	"harassment",
	"vandalism",
	"suspicious_activity",
	"safety",
	"infrastructure",
	"other",
}

// ValidCategory reports whether c is one of ReportCategories.
func ValidCategory(c string) bool {
	for _, v := range ReportCategories {
		if v == c {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is a known lifecycle status.
func ValidStatus(s string) bool {
	switch s {
	case StatusReported, StatusVerified, StatusInvestigating, StatusResolved, StatusInvalid, StatusSpam:
		return true
	}
	return false
}

// Report is a geotagged incident record. Vote, comment and spam-flag counts
// are denormalized; the vote/flag tables stay authoritative.
type Report struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CampusID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"campus_id"`
	ReporterID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"reporter_id"`
	IsAnonymous    bool           `gorm:"default:false" json:"is_anonymous"`
	Category       string         `gorm:"not null;size:50;index" json:"category"`
	Severity       int            `gorm:"not null" json:"severity"`
	Title          string         `gorm:"not null;size:200" json:"title"`
	Description    string         `gorm:"not null;type:text" json:"description"`
	Latitude       float64        `gorm:"not null" json:"latitude"`
	Longitude      float64        `gorm:"not null" json:"longitude"`
	MediaURLs      pq.StringArray `gorm:"type:text[]" json:"media_urls"`
	Status         string         `gorm:"not null;default:'reported';size:20;index" json:"status"`
	ModeratorNotes string         `gorm:"size:1000" json:"moderator_notes,omitempty"`
	AssignedTo     *uuid.UUID     `gorm:"type:uuid" json:"assigned_to,omitempty"`
	ResolvedBy     *uuid.UUID     `gorm:"type:uuid" json:"resolved_by,omitempty"`
	ResolvedAt     *time.Time     `json:"resolved_at,omitempty"`
	ConfirmCount   int            `gorm:"default:0" json:"confirm_count"`
	DisputeCount   int            `gorm:"default:0" json:"dispute_count"`
	CommentCount   int            `gorm:"default:0" json:"comment_count"`
	ViewCount      int            `gorm:"default:0" json:"view_count"`
	SpamFlagCount  int            `gorm:"default:0" json:"spam_flag_count"`
	IsSpam         bool           `gorm:"default:false" json:"is_spam"`
	Edited         bool           `gorm:"default:false" json:"edited"`
	EditedAt       *time.Time     `json:"edited_at,omitempty"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	Reporter       User           `gorm:"foreignKey:ReporterID" json:"-"`

	// DistanceMeters is populated by nearby queries only; not a real column.
	DistanceMeters float64 `gorm:"->;-:migration" json:"distance_meters,omitempty"`
}

// Vote kinds.
const (
	VoteConfirm = "confirm"
	VoteDispute = "dispute"
)

// ReportVote holds at most one row per (report, user); switching sides
// updates Kind in place.
type ReportVote struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReportID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_report_votes_report_user" json:"report_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_report_votes_report_user" json:"user_id"`
	Kind      string    `gorm:"not null;size:10" json:"kind"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SpamFlag is one distinct user's spam report against a report.
type SpamFlag struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReportID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_spam_flags_report_user" json:"report_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_spam_flags_report_user" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ReportEdit is an append-only pre-edit snapshot.
type ReportEdit struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReportID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"report_id"`
	EditorID  uuid.UUID      `gorm:"type:uuid;not null" json:"editor_id"`
	Before    datatypes.JSON `gorm:"type:jsonb" json:"before"`
	CreatedAt time.Time      `json:"created_at"`
}
