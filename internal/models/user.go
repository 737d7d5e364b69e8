package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role values, lowest to highest privilege.
const (
	RoleUser       = "user"
	RoleSecurity   = "security"
	RoleModerator  = "moderator"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// User is a campus-scoped account. Email is unique within a campus.
type User struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CampusID      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_users_campus_email" json:"campus_id"`
	Email         string         `gorm:"not null;size:255;uniqueIndex:idx_users_campus_email" json:"email"`
	Password      string         `gorm:"not null" json:"-"`
	DisplayName   string         `gorm:"size:100" json:"display_name"`
	Role          string         `gorm:"size:20;default:'user'" json:"role"`
	EmailVerified bool           `gorm:"default:false" json:"email_verified"`
	IsActive      bool           `gorm:"default:true" json:"is_active"`
	IsBanned      bool           `gorm:"default:false" json:"is_banned"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	Campus        Campus         `gorm:"foreignKey:CampusID" json:"-"`
}
