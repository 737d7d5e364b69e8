package models

import (
	"time"

	"github.com/google/uuid"
)

// Campus is the partition boundary: every user, report and comment belongs
// to exactly one campus, and non-super-admin access never crosses it.
type Campus struct {
	ID                     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name                   string    `gorm:"not null;size:200" json:"name"`
	Code                   string    `gorm:"not null;size:20;uniqueIndex" json:"code"`
	City                   string    `gorm:"size:100" json:"city"`
	CenterLat              float64   `json:"center_lat"`
	CenterLng              float64   `json:"center_lng"`
	MinSeverityForPush     int       `gorm:"default:4" json:"min_severity_for_push"`
	ReportRateLimitPerHour int       `gorm:"default:0" json:"report_rate_limit_per_hour"`
	IsActive               bool      `gorm:"default:true" json:"is_active"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}
