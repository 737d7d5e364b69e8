package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment on a report. Deletion is soft: the row stays, reads substitute a
// placeholder for Content.
type Comment struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReportID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"report_id"`
	CampusID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"campus_id"`
	AuthorID    uuid.UUID  `gorm:"type:uuid;not null" json:"author_id"`
	Content     string     `gorm:"not null;size:500" json:"content"`
	IsAnonymous bool       `gorm:"default:false" json:"is_anonymous"`
	Edited      bool       `gorm:"default:false" json:"edited"`
	EditedAt    *time.Time `json:"edited_at,omitempty"`
	DeletedAt   *time.Time `gorm:"index" json:"deleted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Author      User       `gorm:"foreignKey:AuthorID" json:"-"`
}
