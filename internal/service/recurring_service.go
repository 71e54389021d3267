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

type recurringBookingRepository interface {
	FindConflicts(ctx context.Context, roomID, date, startTime, endTime string) ([]models.BookingConflict, error)
	ListByRoomAndDate(ctx context.Context, roomID, date string) ([]models.BookingConflict, error)
	CreateBatch(ctx context.Context, bookings []models.Booking) error
}

type lecturerReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// CreateRecurringBookingRequest expands a date range into one booking per
// matching weekday.
type CreateRecurringBookingRequest struct {
	LecturerID string   `json:"lecturer_id" validate:"required"`
	RoomID     string   `json:"room_id" validate:"required"`
	StartDate  string   `json:"start_date" validate:"required"`
	EndDate    string   `json:"end_date" validate:"required"`
	StartTime  string   `json:"start_time" validate:"required"`
	EndTime    string   `json:"end_time" validate:"required"`
	DaysOfWeek []string `json:"days_of_week" validate:"required,min=1"`
}

// PreviewConflictsRequest asks which dates of a recurring range are already
// occupied.
type PreviewConflictsRequest struct {
	RoomID     string   `json:"room_id" validate:"required"`
	StartDate  string   `json:"start_date" validate:"required"`
	EndDate    string   `json:"end_date" validate:"required"`
	DaysOfWeek []string `json:"days_of_week" validate:"required,min=1"`
}

// RecurringBookingResult lists the bookings created for the whole range.
type RecurringBookingResult struct {
	Created      []models.Booking `json:"created"`
	CreatedCount int              `json:"created_count"`
}

// RecurringConflictDetail names the first failing date of a recurring
// request, attached to BOOKING_CONFLICT responses.
type RecurringConflictDetail struct {
	Date      string                   `json:"date"`
	Weekday   models.Weekday           `json:"weekday"`
	Conflicts []models.BookingConflict `json:"conflicts"`
}

type occurrence struct {
	date    string
	weekday models.Weekday
}

// RecurringBookingService creates recurring bookings on behalf of a
// lecturer. The whole range is fail-fast: either every expanded date is
// booked or none are.
type RecurringBookingService struct {
	repo      recurringBookingRepository
	users     lecturerReader
	locks     *SlotLocks
	policy    SchedulingPolicy
	validator *validator.Validate
	logger    *zap.Logger
}

// NewRecurringBookingService instantiates RecurringBookingService. The lock
// registry must be the one used by BookingService so single and recurring
// creation serialise against each other.
func NewRecurringBookingService(repo recurringBookingRepository, users lecturerReader, locks *SlotLocks, policy SchedulingPolicy, validate *validator.Validate, logger *zap.Logger) *RecurringBookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if locks == nil {
		locks = NewSlotLocks()
	}
	return &RecurringBookingService{
		repo:      repo,
		users:     users,
		locks:     locks,
		policy:    policy,
		validator: validate,
		logger:    logger,
	}
}

// expandOccurrences produces the ascending calendar dates in
// [start, end] whose weekday is in the requested set. Validation of the
// weekday tokens happens before any iteration.
func expandOccurrences(startDate, endDate string, daysOfWeek []string) ([]occurrence, error) {
	days, err := models.ParseWeekdays(daysOfWeek)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	start, err := models.ParseDate(startDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	end, err := models.ParseDate(endDate)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if start.After(end) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start date must not be after end date")
	}

	var out []occurrence
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		weekday := models.WeekdayOf(d)
		if _, ok := days[weekday]; ok {
			out = append(out, occurrence{date: d.Format(models.ClockDate), weekday: weekday})
		}
	}
	return out, nil
}

// Create expands the range, checks every date and inserts all bookings in
// one transaction. On the first conflicting date the whole operation aborts
// with zero rows written, naming the failing date and weekday.
//
// The daily quota is deliberately not applied here: the admin-driven
// recurring flow books on behalf of a lecturer and bypasses the cap, as the
// interactive flow alone enforces it.
func (s *RecurringBookingService) Create(ctx context.Context, req CreateRecurringBookingRequest) (*RecurringBookingResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid recurring booking payload")
	}
	if _, err := s.policy.validateSlot(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	if _, err := s.users.FindByID(ctx, req.LecturerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lecturer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lecturer")
	}

	occurrences, err := expandOccurrences(req.StartDate, req.EndDate, req.DaysOfWeek)
	if err != nil {
		return nil, err
	}
	if len(occurrences) == 0 {
		return &RecurringBookingResult{Created: []models.Booking{}}, nil
	}

	dates := make([]string, len(occurrences))
	for i, occ := range occurrences {
		dates[i] = occ.date
	}
	release := s.locks.AcquireAll(req.RoomID, dates)
	defer release()

	for _, occ := range occurrences {
		conflicts, err := s.repo.FindConflicts(ctx, req.RoomID, occ.date, req.StartTime, req.EndTime)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check booking conflicts")
		}
		if len(conflicts) > 0 {
			msg := fmt.Sprintf("booking conflict on %s (%s): room is already booked during this time", occ.date, occ.weekday)
			return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrBookingConflict, msg), RecurringConflictDetail{
				Date:      occ.date,
				Weekday:   occ.weekday,
				Conflicts: conflicts,
			})
		}
	}

	now := time.Now().UTC()
	bookings := make([]models.Booking, len(occurrences))
	for i, occ := range occurrences {
		bookings[i] = models.Booking{
			UserID:      req.LecturerID,
			RoomID:      req.RoomID,
			BookingDate: occ.date,
			StartTime:   req.StartTime,
			EndTime:     req.EndTime,
			CreatedAt:   now,
		}
	}
	if err := s.repo.CreateBatch(ctx, bookings); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create recurring bookings")
	}

	s.logger.Info("recurring bookings created",
		zap.String("room_id", req.RoomID),
		zap.String("lecturer_id", req.LecturerID),
		zap.Int("count", len(bookings)))
	return &RecurringBookingResult{Created: bookings, CreatedCount: len(bookings)}, nil
}

// PreviewConflicts is the non-mutating report used before committing a
// recurring booking. Dates with no bookings are omitted from the map, so an
// absent key means the date is free.
func (s *RecurringBookingService) PreviewConflicts(ctx context.Context, req PreviewConflictsRequest) (map[string][]models.BookingConflict, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid conflict preview payload")
	}

	occurrences, err := expandOccurrences(req.StartDate, req.EndDate, req.DaysOfWeek)
	if err != nil {
		return nil, err
	}

	conflicts := make(map[string][]models.BookingConflict)
	for _, occ := range occurrences {
		dayBookings, err := s.repo.ListByRoomAndDate(ctx, req.RoomID, occ.date)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check booking conflicts")
		}
		if len(dayBookings) > 0 {
			conflicts[occ.date] = dayBookings
		}
	}
	return conflicts, nil
}
