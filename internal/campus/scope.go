package campus

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ForCampus returns a GORM scope that filters by campus_id. uuid.Nil skips
// the filter, which is how super-admin reads cross campuses.
func ForCampus(id uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if id == uuid.Nil {
			return db
		}
		return db.Where("campus_id = ?", id)
	}
}
