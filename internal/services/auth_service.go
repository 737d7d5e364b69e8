package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/campuswatch/backend/internal/apperr"
	"github.com/campuswatch/backend/internal/config"
	"github.com/campuswatch/backend/internal/dto"
	"github.com/campuswatch/backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const verifyPurpose = "email_verify"

// VerificationSender hands verification tokens to the external delivery
// collaborator. The default implementation records the event; the token
// itself only surfaces at debug level.
type VerificationSender interface {
	SendVerification(ctx context.Context, user *models.User, token string)
}

type logVerificationSender struct{}

func NewLogVerificationSender() VerificationSender { return logVerificationSender{} }

func (logVerificationSender) SendVerification(_ context.Context, user *models.User, token string) {
	slog.Info("email verification token issued", "user_id", user.ID.String(), "email", user.Email)
	slog.Debug("verification token", "token", token)
}

// AuthService handles registration, login and the token lifecycle. It talks
// to gorm directly: auth owns its own tables and never enters the report
// flow, so it does not go through the storage interfaces.
type AuthService struct {
	db     *gorm.DB
	cfg    *config.Config
	sender VerificationSender
}

func NewAuthService(db *gorm.DB, cfg *config.Config, sender VerificationSender) *AuthService {
	return &AuthService{db: db, cfg: cfg, sender: sender}
}

// Register creates an account under the campus matching the given code.
// The account starts unverified; a verification token goes out through the
// sender.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	var campus models.Campus
	err := s.db.WithContext(ctx).
		Where("code = ? AND is_active = ?", req.CampusCode, true).
		First(&campus).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Invalid("unknown campus code")
		}
		return nil, apperr.Unavailable(err)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing models.User
	if err := s.db.WithContext(ctx).Where("campus_id = ? AND email = ?", campus.ID, email).First(&existing).Error; err == nil {
		return nil, apperr.Conflict("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = strings.Split(email, "@")[0]
	}

	user := models.User{
		ID:          uuid.New(),
		CampusID:    campus.ID,
		Email:       email,
		Password:    string(hash),
		DisplayName: displayName,
		Role:        models.RoleUser,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("email already registered")
		}
		return nil, apperr.Unavailable(err)
	}

	if token, err := s.generateVerificationToken(&user); err == nil {
		s.sender.SendVerification(ctx, &user, token)
	} else {
		slog.Error("verification token generation failed", "error", err, "user_id", user.ID.String())
	}

	return s.generateTokenPair(ctx, &user)
}

func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	var campus models.Campus
	if err := s.db.WithContext(ctx).Where("code = ?", req.CampusCode).First(&campus).Error; err != nil {
		return nil, apperr.Unauthenticated("invalid email or password")
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Where("campus_id = ? AND email = ?", campus.ID, strings.ToLower(strings.TrimSpace(req.Email))).
		First(&user).Error
	if err != nil {
		return nil, apperr.Unauthenticated("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperr.Unauthenticated("invalid email or password")
	}
	if user.IsBanned {
		return nil, apperr.Forbidden("account banned")
	}
	if !user.IsActive {
		return nil, apperr.Forbidden("account disabled")
	}

	return s.generateTokenPair(ctx, &user)
}

// Refresh rotates the presented refresh token: it is revoked whether or not
// a new pair is issued.
func (s *AuthService) Refresh(ctx context.Context, req dto.RefreshRequest) (*dto.AuthResponse, error) {
	if err := dto.Validate(req); err != nil {
		return nil, err
	}
	tokenHash := hashToken(req.RefreshToken)

	var stored models.RefreshToken
	if err := s.db.WithContext(ctx).Where("token_hash = ? AND revoked = false", tokenHash).First(&stored).Error; err != nil {
		return nil, apperr.Unauthenticated("invalid or expired refresh token")
	}
	if time.Now().After(stored.ExpiresAt) {
		s.db.WithContext(ctx).Model(&stored).Update("revoked", true)
		return nil, apperr.Unauthenticated("invalid or expired refresh token")
	}

	s.db.WithContext(ctx).Model(&stored).Update("revoked", true)

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, apperr.Unauthenticated("invalid or expired refresh token")
	}
	if user.IsBanned || !user.IsActive {
		return nil, apperr.Forbidden("account disabled")
	}

	return s.generateTokenPair(ctx, &user)
}

func (s *AuthService) Logout(ctx context.Context, req dto.LogoutRequest) error {
	if err := dto.Validate(req); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", hashToken(req.RefreshToken)).
		Update("revoked", true).Error
}

// VerifyEmail redeems a verification token and flips the account's flag.
func (s *AuthService) VerifyEmail(ctx context.Context, req dto.VerifyEmailRequest) error {
	if err := dto.Validate(req); err != nil {
		return err
	}

	token, err := jwt.Parse(req.Token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return apperr.Unauthenticated("invalid or expired verification token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["purpose"] != verifyPurpose {
		return apperr.Unauthenticated("invalid or expired verification token")
	}
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return apperr.Unauthenticated("invalid or expired verification token")
	}

	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("email_verified", true)
	if res.Error != nil {
		return apperr.Unavailable(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user")
		}
		return nil, apperr.Unavailable(err)
	}
	resp := dto.NewUserResponse(&user)
	return &resp, nil
}

func (s *AuthService) generateTokenPair(ctx context.Context, user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	refreshToken, err := s.generateRefreshToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         dto.NewUserResponse(user),
	}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":       user.ID.String(),
		"email":     user.Email,
		"campus_id": user.CampusID.String(),
		"role":      user.Role,
		"iat":       now.Unix(),
		"exp":       now.Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateVerificationToken(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":     user.ID.String(),
		"purpose": verifyPurpose,
		"iat":     now.Unix(),
		"exp":     now.Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(ctx context.Context, user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", apperr.Internal(err)
	}
	rawToken := base64.URLEncoding.EncodeToString(rawBytes)

	record := models.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: time.Now().Add(s.cfg.JWTRefreshExpiry),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", apperr.Unavailable(err)
	}

	return rawToken, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
