package services

import (
	"context"
	"strings"

	"github.com/campuswatch/backend/internal/authz"
	"github.com/campuswatch/backend/internal/dto"
	"github.com/campuswatch/backend/internal/models"
	"github.com/campuswatch/backend/internal/storage"
	"github.com/google/uuid"
)

// CampusService is the admin surface for campus settings the report flow
// reads (severity threshold, rate limit override, active flag).
type CampusService struct {
	stores storage.Stores
}

func NewCampusService(stores storage.Stores) *CampusService {
	return &CampusService{stores: stores}
}

func (s *CampusService) Create(ctx context.Context, actor authz.Identity, req dto.CreateCampusRequest) (*models.Campus, error) {
	if err := authz.ManageCampuses.Allow(actor, uuid.Nil, uuid.Nil); err != nil {
		return nil, err
	}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	campus := &models.Campus{
		ID:                     uuid.New(),
		Name:                   req.Name,
		Code:                   strings.ToUpper(strings.TrimSpace(req.Code)),
		City:                   req.City,
		CenterLat:              req.CenterLat,
		CenterLng:              req.CenterLng,
		MinSeverityForPush:     req.MinSeverityForPush,
		ReportRateLimitPerHour: req.ReportRateLimitPerHour,
		IsActive:               true,
	}
	if err := s.stores.Campuses().Create(ctx, campus); err != nil {
		return nil, err
	}
	return campus, nil
}

func (s *CampusService) List(ctx context.Context, actor authz.Identity) ([]models.Campus, error) {
	if err := authz.ManageCampuses.Allow(actor, uuid.Nil, uuid.Nil); err != nil {
		return nil, err
	}
	return s.stores.Campuses().List(ctx)
}

func (s *CampusService) Update(ctx context.Context, actor authz.Identity, id uuid.UUID, req dto.UpdateCampusRequest) (*models.Campus, error) {
	if err := authz.ManageCampuses.Allow(actor, uuid.Nil, uuid.Nil); err != nil {
		return nil, err
	}
	if err := dto.Validate(req); err != nil {
		return nil, err
	}

	return s.stores.Campuses().Update(ctx, id, storage.CampusUpdate{
		Name:                   req.Name,
		City:                   req.City,
		CenterLat:              req.CenterLat,
		CenterLng:              req.CenterLng,
		MinSeverityForPush:     req.MinSeverityForPush,
		ReportRateLimitPerHour: req.ReportRateLimitPerHour,
		IsActive:               req.IsActive,
	})
}
