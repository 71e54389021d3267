package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/room-booking-api/internal/models"
	appErrors "github.com/campushub/room-booking-api/pkg/errors"
)

type mockLecturerReader struct {
	users map[string]*models.User
}

func (m *mockLecturerReader) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func newTestRecurringService(t *testing.T, repo *mockBookingRepo) *RecurringBookingService {
	t.Helper()
	users := &mockLecturerReader{users: map[string]*models.User{
		"lecturer-1": {ID: "lecturer-1", Role: models.RoleLecturer, Active: true},
	}}
	return NewRecurringBookingService(repo, users, nil, testPolicy(t), nil, nil)
}

func TestExpandOccurrences(t *testing.T) {
	// 2025-08-04 is a Monday, 2025-08-10 a Sunday.
	occurrences, err := expandOccurrences("2025-08-04", "2025-08-10", []string{"monday", "friday"})
	require.NoError(t, err)
	require.Len(t, occurrences, 2)
	assert.Equal(t, "2025-08-04", occurrences[0].date)
	assert.Equal(t, models.Monday, occurrences[0].weekday)
	assert.Equal(t, "2025-08-08", occurrences[1].date)
	assert.Equal(t, models.Friday, occurrences[1].weekday)
}

func TestExpandOccurrencesSingleDay(t *testing.T) {
	occurrences, err := expandOccurrences("2025-08-04", "2025-08-04", []string{"monday"})
	require.NoError(t, err)
	require.Len(t, occurrences, 1)
	assert.Equal(t, "2025-08-04", occurrences[0].date)
}

func TestExpandOccurrencesNoMatchingDays(t *testing.T) {
	// Monday through Wednesday, asking for Sundays.
	occurrences, err := expandOccurrences("2025-08-04", "2025-08-06", []string{"sunday"})
	require.NoError(t, err)
	assert.Empty(t, occurrences)
}

func TestExpandOccurrencesRejectsInvalidWeekday(t *testing.T) {
	_, err := expandOccurrences("2025-08-04", "2025-08-10", []string{"monday", "someday"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExpandOccurrencesRejectsInvertedRange(t *testing.T) {
	_, err := expandOccurrences("2025-08-10", "2025-08-04", []string{"monday"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRecurringCreateSuccess(t *testing.T) {
	repo := &mockBookingRepo{}
	svc := newTestRecurringService(t, repo)

	result, err := svc.Create(context.Background(), CreateRecurringBookingRequest{
		LecturerID: "lecturer-1",
		RoomID:     "room-1",
		StartDate:  "2025-08-04",
		EndDate:    "2025-08-17",
		StartTime:  "09:00",
		EndTime:    "10:30",
		DaysOfWeek: []string{"monday", "wednesday"},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, result.CreatedCount)
	assert.Len(t, repo.bookings, 4)
	for _, b := range result.Created {
		assert.Equal(t, "lecturer-1", b.UserID)
		assert.Equal(t, "09:00", b.StartTime)
		assert.Equal(t, "10:30", b.EndTime)
	}
}

func TestRecurringCreateFailFastWritesNothing(t *testing.T) {
	// Occupy the second matching date; the whole series must abort.
	repo := &mockBookingRepo{bookings: []models.Booking{{
		ID:          "existing",
		UserID:      "user-2",
		RoomID:      "room-1",
		BookingDate: "2025-08-11",
		StartTime:   "09:00",
		EndTime:     "10:00",
	}}}
	svc := newTestRecurringService(t, repo)

	_, err := svc.Create(context.Background(), CreateRecurringBookingRequest{
		LecturerID: "lecturer-1",
		RoomID:     "room-1",
		StartDate:  "2025-08-04",
		EndDate:    "2025-08-17",
		StartTime:  "09:00",
		EndTime:    "10:30",
		DaysOfWeek: []string{"monday"},
	})
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrBookingConflict.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "2025-08-11")
	assert.Contains(t, appErr.Message, "monday")
	assert.Len(t, repo.bookings, 1, "no booking may be written when any date conflicts")
}

func TestRecurringCreateUnknownLecturer(t *testing.T) {
	svc := newTestRecurringService(t, &mockBookingRepo{})

	_, err := svc.Create(context.Background(), CreateRecurringBookingRequest{
		LecturerID: "ghost",
		RoomID:     "room-1",
		StartDate:  "2025-08-04",
		EndDate:    "2025-08-10",
		StartTime:  "09:00",
		EndTime:    "10:00",
		DaysOfWeek: []string{"monday"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestRecurringCreateEmptyExpansion(t *testing.T) {
	repo := &mockBookingRepo{}
	svc := newTestRecurringService(t, repo)

	result, err := svc.Create(context.Background(), CreateRecurringBookingRequest{
		LecturerID: "lecturer-1",
		RoomID:     "room-1",
		StartDate:  "2025-08-04",
		EndDate:    "2025-08-06",
		StartTime:  "09:00",
		EndTime:    "10:00",
		DaysOfWeek: []string{"sunday"},
	})
	require.NoError(t, err)
	assert.Zero(t, result.CreatedCount)
	assert.Empty(t, repo.bookings)
}

func TestPreviewConflictsListsWholeDays(t *testing.T) {
	// The preview reports every booking on a matching date, even ones that
	// would not overlap a particular slot.
	repo := &mockBookingRepo{bookings: []models.Booking{
		{ID: "b-1", RoomID: "room-1", BookingDate: "2025-08-04", StartTime: "07:30", EndTime: "08:30"},
		{ID: "b-2", RoomID: "room-1", BookingDate: "2025-08-04", StartTime: "15:00", EndTime: "16:00"},
		{ID: "b-3", RoomID: "room-1", BookingDate: "2025-08-06", StartTime: "09:00", EndTime: "10:00"},
		{ID: "b-4", RoomID: "room-2", BookingDate: "2025-08-11", StartTime: "09:00", EndTime: "10:00"},
	}}
	svc := newTestRecurringService(t, repo)

	conflicts, err := svc.PreviewConflicts(context.Background(), PreviewConflictsRequest{
		RoomID:     "room-1",
		StartDate:  "2025-08-04",
		EndDate:    "2025-08-17",
		DaysOfWeek: []string{"monday", "wednesday"},
	})
	require.NoError(t, err)
	require.Len(t, conflicts, 2)
	assert.Len(t, conflicts["2025-08-04"], 2)
	assert.Len(t, conflicts["2025-08-06"], 1)
	_, present := conflicts["2025-08-11"]
	assert.False(t, present, "free dates are omitted")
}

func TestPreviewConflictsIsReadOnly(t *testing.T) {
	repo := &mockBookingRepo{bookings: []models.Booking{
		{ID: "b-1", RoomID: "room-1", BookingDate: "2025-08-04", StartTime: "09:00", EndTime: "10:00"},
	}}
	svc := newTestRecurringService(t, repo)

	req := PreviewConflictsRequest{
		RoomID:     "room-1",
		StartDate:  "2025-08-04",
		EndDate:    "2025-08-10",
		DaysOfWeek: []string{"monday"},
	}
	first, err := svc.PreviewConflicts(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.PreviewConflicts(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, repo.bookings, 1)
}
