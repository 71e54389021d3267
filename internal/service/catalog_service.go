package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushub/room-booking-api/internal/models"
	appErrors "github.com/campushub/room-booking-api/pkg/errors"
)

type catalogLocationRepository interface {
	List(ctx context.Context) ([]models.Location, error)
	FindByID(ctx context.Context, id string) (*models.Location, error)
	Create(ctx context.Context, location *models.Location) error
	Update(ctx context.Context, location *models.Location) error
	Delete(ctx context.Context, id string) error
}

type catalogVenueTypeRepository interface {
	List(ctx context.Context) ([]models.VenueType, error)
	FindByID(ctx context.Context, id string) (*models.VenueType, error)
	Create(ctx context.Context, venueType *models.VenueType) error
	Update(ctx context.Context, venueType *models.VenueType) error
	Delete(ctx context.Context, id string) error
}

// UpsertLocationRequest creates or updates a building.
type UpsertLocationRequest struct {
	Name   string `json:"name" validate:"required"`
	Levels int    `json:"levels" validate:"min=1"`
}

// UpsertVenueTypeRequest creates or updates a venue type label.
type UpsertVenueTypeRequest struct {
	Name string `json:"name" validate:"required"`
}

// CatalogService manages the buildings and venue types rooms reference.
type CatalogService struct {
	locations  catalogLocationRepository
	venueTypes catalogVenueTypeRepository
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewCatalogService instantiates CatalogService.
func NewCatalogService(locations catalogLocationRepository, venueTypes catalogVenueTypeRepository, validate *validator.Validate, logger *zap.Logger) *CatalogService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{locations: locations, venueTypes: venueTypes, validator: validate, logger: logger}
}

// ListLocations returns every building.
func (s *CatalogService) ListLocations(ctx context.Context) ([]models.Location, error) {
	locations, err := s.locations.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list locations")
	}
	return locations, nil
}

// CreateLocation inserts a building.
func (s *CatalogService) CreateLocation(ctx context.Context, req UpsertLocationRequest) (*models.Location, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid location payload")
	}
	location := models.Location{Name: req.Name, Levels: req.Levels}
	if err := s.locations.Create(ctx, &location); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create location")
	}
	return &location, nil
}

// UpdateLocation modifies a building.
func (s *CatalogService) UpdateLocation(ctx context.Context, id string, req UpsertLocationRequest) (*models.Location, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid location payload")
	}
	existing, err := s.locations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "location not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load location")
	}
	existing.Name = req.Name
	existing.Levels = req.Levels
	if err := s.locations.Update(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update location")
	}
	return existing, nil
}

// DeleteLocation removes a building.
func (s *CatalogService) DeleteLocation(ctx context.Context, id string) error {
	if _, err := s.locations.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "location not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load location")
	}
	if err := s.locations.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete location")
	}
	return nil
}

// ListVenueTypes returns every venue type.
func (s *CatalogService) ListVenueTypes(ctx context.Context) ([]models.VenueType, error) {
	venueTypes, err := s.venueTypes.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list venue types")
	}
	return venueTypes, nil
}

// CreateVenueType inserts a venue type label.
func (s *CatalogService) CreateVenueType(ctx context.Context, req UpsertVenueTypeRequest) (*models.VenueType, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid venue type payload")
	}
	venueType := models.VenueType{Name: req.Name}
	if err := s.venueTypes.Create(ctx, &venueType); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create venue type")
	}
	return &venueType, nil
}

// UpdateVenueType modifies a venue type label.
func (s *CatalogService) UpdateVenueType(ctx context.Context, id string, req UpsertVenueTypeRequest) (*models.VenueType, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid venue type payload")
	}
	existing, err := s.venueTypes.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "venue type not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load venue type")
	}
	existing.Name = req.Name
	if err := s.venueTypes.Update(ctx, existing); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update venue type")
	}
	return existing, nil
}

// DeleteVenueType removes a venue type label.
func (s *CatalogService) DeleteVenueType(ctx context.Context, id string) error {
	if _, err := s.venueTypes.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "venue type not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load venue type")
	}
	if err := s.venueTypes.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete venue type")
	}
	return nil
}
