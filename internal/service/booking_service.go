package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campushub/room-booking-api/internal/models"
	appErrors "github.com/campushub/room-booking-api/pkg/errors"
)

type bookingRepository interface {
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	FindConflicts(ctx context.Context, roomID, date, startTime, endTime string) ([]models.BookingConflict, error)
	CountByUserAndDate(ctx context.Context, userID, date string) (int, error)
	Create(ctx context.Context, booking *models.Booking) error
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.BookingDetail, int, error)
	ListByUser(ctx context.Context, userID string) ([]models.BookingDetail, error)
	ListByDate(ctx context.Context, date, buildingID string) ([]models.BookingDetail, error)
}

// CheckAvailabilityRequest asks whether one room is free for a slot.
type CheckAvailabilityRequest struct {
	RoomID    string `json:"room_id" validate:"required"`
	Date      string `json:"date" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

// AvailabilityResult reports the availability verdict with the blocking
// bookings, if any.
type AvailabilityResult struct {
	Available bool                     `json:"available"`
	Conflicts []models.BookingConflict `json:"conflicts"`
}

// CreateBookingRequest describes payload for a single booking.
type CreateBookingRequest struct {
	UserID    string `json:"-"`
	RoomID    string `json:"room_id" validate:"required"`
	Date      string `json:"date" validate:"required"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

// QuotaDetail is attached to QUOTA_EXCEEDED responses.
type QuotaDetail struct {
	Count int `json:"count"`
	Limit int `json:"limit"`
}

// BookingService coordinates single-booking scheduling logic.
type BookingService struct {
	repo      bookingRepository
	locks     *SlotLocks
	policy    SchedulingPolicy
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewBookingService instantiates BookingService.
func NewBookingService(repo bookingRepository, locks *SlotLocks, policy SchedulingPolicy, validate *validator.Validate, logger *zap.Logger) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if locks == nil {
		locks = NewSlotLocks()
	}
	return &BookingService{
		repo:      repo,
		locks:     locks,
		policy:    policy,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// CheckAvailability runs the availability query for one room, date and slot.
// Read-only; an empty conflict list means the room is free.
func (s *BookingService) CheckAvailability(ctx context.Context, req CheckAvailabilityRequest) (*AvailabilityResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}
	if _, err := models.ParseDate(req.Date); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if _, err := s.policy.validateSlot(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	conflicts, err := s.repo.FindConflicts(ctx, req.RoomID, req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check availability")
	}
	if conflicts == nil {
		conflicts = []models.BookingConflict{}
	}
	return &AvailabilityResult{Available: len(conflicts) == 0, Conflicts: conflicts}, nil
}

// Create inserts a booking after quota and conflict checks. The whole
// check-then-insert sequence holds the (room, date) slot lock, so concurrent
// requests for the same room and date are serialised.
func (s *BookingService) Create(ctx context.Context, req CreateBookingRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}
	if req.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "missing requesting user")
	}
	if _, err := models.ParseDate(req.Date); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if _, err := s.policy.validateSlot(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	release := s.locks.Acquire(req.RoomID, req.Date)
	defer release()

	count, err := s.repo.CountByUserAndDate(ctx, req.UserID, req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count daily bookings")
	}
	if count >= s.policy.DailyLimit {
		msg := fmt.Sprintf("you have reached the maximum daily booking limit (%d bookings per day)", s.policy.DailyLimit)
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrQuotaExceeded, msg), QuotaDetail{Count: count, Limit: s.policy.DailyLimit})
	}

	conflicts, err := s.repo.FindConflicts(ctx, req.RoomID, req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check booking conflicts")
	}
	if len(conflicts) > 0 {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrBookingConflict, ""), conflicts)
	}

	booking := models.Booking{
		UserID:      req.UserID,
		RoomID:      req.RoomID,
		BookingDate: req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	}
	if err := s.repo.Create(ctx, &booking); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create booking")
	}

	s.logger.Info("booking created",
		zap.String("booking_id", booking.ID),
		zap.String("room_id", booking.RoomID),
		zap.String("date", booking.BookingDate))
	return &booking, nil
}

// Cancel removes a booking on behalf of the requesting user. Admins may
// delete any booking at any time; a lecturer may only cancel their own
// future bookings with at least the configured lead before start.
func (s *BookingService) Cancel(ctx context.Context, id string, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}

	if actor.Role != models.RoleAdmin {
		if booking.UserID != actor.UserID {
			return appErrors.ErrForbidden
		}
		start, err := bookingStart(booking)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to parse booking time")
		}
		now := s.now()
		if !start.After(now) {
			return appErrors.Clone(appErrors.ErrValidation, "cannot cancel past bookings")
		}
		if start.Sub(now) < s.policy.MinCancelLead {
			msg := fmt.Sprintf("cannot cancel bookings within %s of start time", s.policy.MinCancelLead)
			return appErrors.Clone(appErrors.ErrValidation, msg)
		}
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete booking")
	}
	if !deleted {
		return appErrors.Clone(appErrors.ErrNotFound, "booking not found")
	}

	s.logger.Info("booking cancelled", zap.String("booking_id", id), zap.String("actor", actor.UserID))
	return nil
}

// List returns booking details with pagination metadata for admin views.
func (s *BookingService) List(ctx context.Context, filter models.BookingFilter) ([]models.BookingDetail, *models.Pagination, error) {
	bookings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return bookings, pagination, nil
}

// ListByDate returns a day's bookings for the admin overview.
func (s *BookingService) ListByDate(ctx context.Context, date, buildingID string) ([]models.BookingDetail, error) {
	if _, err := models.ParseDate(date); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	bookings, err := s.repo.ListByDate(ctx, date, buildingID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings by date")
	}
	return bookings, nil
}

// Schedule returns a lecturer's bookings decorated with cancellation flags.
func (s *BookingService) Schedule(ctx context.Context, userID string) ([]models.ScheduleEntry, error) {
	bookings, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list user bookings")
	}

	now := s.now()
	entries := make([]models.ScheduleEntry, 0, len(bookings))
	for _, b := range bookings {
		entry := models.ScheduleEntry{BookingDetail: b}
		if start, err := bookingStart(&b.Booking); err == nil {
			entry.IsPast = !start.After(now)
			entry.CanCancel = !entry.IsPast && start.Sub(now) >= s.policy.MinCancelLead
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// TimeSlots exposes the bookable boundaries of the operating window.
func (s *BookingService) TimeSlots() []TimeSlotOption {
	return s.policy.TimeSlots()
}

// DailyLimit reports the configured per-user daily cap.
func (s *BookingService) DailyLimit() int {
	return s.policy.DailyLimit
}

func bookingStart(b *models.Booking) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", b.BookingDate+" "+b.StartTime, time.Local)
}
