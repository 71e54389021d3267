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

type roomRepository interface {
	List(ctx context.Context, filter models.RoomFilter) ([]models.RoomDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.RoomDetail, error)
	Create(ctx context.Context, room *models.Room) error
	Update(ctx context.Context, room *models.Room) error
	Delete(ctx context.Context, id string) error
}

type roomAvailabilityReader interface {
	FindConflicts(ctx context.Context, roomID, date, startTime, endTime string) ([]models.BookingConflict, error)
	ListByRoomAndDate(ctx context.Context, roomID, date string) ([]models.BookingConflict, error)
}

type locationReader interface {
	FindByID(ctx context.Context, id string) (*models.Location, error)
}

type venueTypeReader interface {
	FindByID(ctx context.Context, id string) (*models.VenueType, error)
}

// SearchRoomsRequest filters rooms and annotates each with availability for
// the requested slot.
type SearchRoomsRequest struct {
	Date        string `json:"date" validate:"required"`
	StartTime   string `json:"start_time" validate:"required"`
	EndTime     string `json:"end_time" validate:"required"`
	BuildingID  string `json:"building_id"`
	VenueTypeID string `json:"venue_type_id"`
	MinCapacity int    `json:"min_capacity" validate:"omitempty,min=1"`
}

// CreateRoomRequest describes payload for creating a room.
type CreateRoomRequest struct {
	Code        string `json:"code" validate:"required"`
	BuildingID  string `json:"building_id" validate:"required"`
	Level       string `json:"level" validate:"required"`
	VenueTypeID string `json:"venue_type_id" validate:"required"`
	Capacity    int    `json:"capacity" validate:"min=0"`
}

// UpdateRoomRequest updates an existing room.
type UpdateRoomRequest struct {
	Code        string `json:"code" validate:"required"`
	BuildingID  string `json:"building_id" validate:"required"`
	Level       string `json:"level" validate:"required"`
	VenueTypeID string `json:"venue_type_id" validate:"required"`
	Capacity    int    `json:"capacity" validate:"min=0"`
}

// RoomService coordinates room management and the availability search.
type RoomService struct {
	rooms      roomRepository
	bookings   roomAvailabilityReader
	locations  locationReader
	venueTypes venueTypeReader
	policy     SchedulingPolicy
	validator  *validator.Validate
	logger     *zap.Logger
}

// NewRoomService instantiates RoomService.
func NewRoomService(rooms roomRepository, bookings roomAvailabilityReader, locations locationReader, venueTypes venueTypeReader, policy SchedulingPolicy, validate *validator.Validate, logger *zap.Logger) *RoomService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomService{
		rooms:      rooms,
		bookings:   bookings,
		locations:  locations,
		venueTypes: venueTypes,
		policy:     policy,
		validator:  validate,
		logger:     logger,
	}
}

// Search returns rooms matching the filters, each annotated with whether the
// requested slot is free plus the bookings already placed that date.
func (s *RoomService) Search(ctx context.Context, req SearchRoomsRequest) ([]models.RoomAvailability, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room search payload")
	}
	if _, err := models.ParseDate(req.Date); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if _, err := s.policy.validateSlot(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	rooms, _, err := s.rooms.List(ctx, models.RoomFilter{
		BuildingID:  req.BuildingID,
		VenueTypeID: req.VenueTypeID,
		MinCapacity: req.MinCapacity,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}

	results := make([]models.RoomAvailability, 0, len(rooms))
	for _, room := range rooms {
		conflicts, err := s.bookings.FindConflicts(ctx, room.ID, req.Date, req.StartTime, req.EndTime)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check room availability")
		}
		existing, err := s.bookings.ListByRoomAndDate(ctx, room.ID, req.Date)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list room bookings")
		}
		if existing == nil {
			existing = []models.BookingConflict{}
		}
		results = append(results, models.RoomAvailability{
			RoomDetail:       room,
			IsAvailable:      len(conflicts) == 0,
			ExistingBookings: existing,
		})
	}
	return results, nil
}

// List returns rooms with pagination metadata.
func (s *RoomService) List(ctx context.Context, filter models.RoomFilter) ([]models.RoomDetail, *models.Pagination, error) {
	rooms, total, err := s.rooms.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return rooms, pagination, nil
}

// Get loads a single room.
func (s *RoomService) Get(ctx context.Context, id string) (*models.RoomDetail, error) {
	room, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}
	return room, nil
}

// Create inserts a new room after verifying its references.
func (s *RoomService) Create(ctx context.Context, req CreateRoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}
	if err := s.ensureReferences(ctx, req.BuildingID, req.VenueTypeID); err != nil {
		return nil, err
	}

	room := models.Room{
		Code:        req.Code,
		BuildingID:  req.BuildingID,
		Level:       req.Level,
		VenueTypeID: req.VenueTypeID,
		Capacity:    req.Capacity,
	}
	if err := s.rooms.Create(ctx, &room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create room")
	}
	return &room, nil
}

// Update modifies an existing room.
func (s *RoomService) Update(ctx context.Context, id string, req UpdateRoomRequest) (*models.Room, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid room payload")
	}

	existing, err := s.rooms.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}
	if err := s.ensureReferences(ctx, req.BuildingID, req.VenueTypeID); err != nil {
		return nil, err
	}

	room := existing.Room
	room.Code = req.Code
	room.BuildingID = req.BuildingID
	room.Level = req.Level
	room.VenueTypeID = req.VenueTypeID
	room.Capacity = req.Capacity
	if err := s.rooms.Update(ctx, &room); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update room")
	}
	return &room, nil
}

// Delete removes a room.
func (s *RoomService) Delete(ctx context.Context, id string) error {
	if _, err := s.rooms.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}
	if err := s.rooms.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete room")
	}
	return nil
}

func (s *RoomService) ensureReferences(ctx context.Context, buildingID, venueTypeID string) error {
	if _, err := s.locations.FindByID(ctx, buildingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "building not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load building")
	}
	if _, err := s.venueTypes.FindByID(ctx, venueTypeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "venue type not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load venue type")
	}
	return nil
}
