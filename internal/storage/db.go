package storage

import (
	"context"

	"gorm.io/gorm"
)

// DB implements Stores on top of GORM/Postgres.
type DB struct {
	db            *gorm.DB
	reports       *reportDB
	comments      *commentDB
	audits        *auditDB
	notifications *notificationDB
	users         *userDB
	campuses      *campusDB
}

func NewDB(db *gorm.DB) *DB {
	return &DB{
		db:            db,
		reports:       &reportDB{db: db},
		comments:      &commentDB{db: db},
		audits:        &auditDB{db: db},
		notifications: &notificationDB{db: db},
		users:         &userDB{db: db},
		campuses:      &campusDB{db: db},
	}
}

func (s *DB) Reports() ReportStore             { return s.reports }
func (s *DB) Comments() CommentStore           { return s.comments }
func (s *DB) Audits() AuditStore               { return s.audits }
func (s *DB) Notifications() NotificationStore { return s.notifications }
func (s *DB) Users() UserStore                 { return s.users }
func (s *DB) Campuses() CampusStore            { return s.campuses }

func (s *DB) Transact(ctx context.Context, fn func(Stores) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewDB(tx))
	})
}
