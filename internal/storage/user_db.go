package storage

import (
	"context"

	"github.com/campuswatch/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type userDB struct {
	db *gorm.DB
}

func (s *userDB) Create(ctx context.Context, u *models.User) error {
	return wrapErr(s.db.WithContext(ctx).Create(u).Error, "user")
}

func (s *userDB) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		return nil, wrapErr(err, "user")
	}
	return &u, nil
}

func (s *userDB) GetByEmail(ctx context.Context, campusID uuid.UUID, email string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).
		Where("campus_id = ? AND email = ?", campusID, email).
		First(&u).Error
	if err != nil {
		return nil, wrapErr(err, "user")
	}
	return &u, nil
}

func (s *userDB) ListStaff(ctx context.Context, campusID uuid.UUID) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("campus_id = ? AND role IN ? AND is_active = ? AND is_banned = ?",
			campusID, staffRoles, true, false).
		Order("created_at ASC").
		Find(&users).Error
	if err != nil {
		return nil, wrapErr(err, "user")
	}
	return users, nil
}

func (s *userDB) SetEmailVerified(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("email_verified", true)
	if res.Error != nil {
		return wrapErr(res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return wrapErr(gorm.ErrRecordNotFound, "user")
	}
	return nil
}

func (s *userDB) SetBanned(ctx context.Context, id uuid.UUID, banned bool) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("is_banned", banned)
	if res.Error != nil {
		return wrapErr(res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return wrapErr(gorm.ErrRecordNotFound, "user")
	}
	return nil
}
