package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/room-booking-api/internal/models"
	"github.com/campushub/room-booking-api/pkg/config"
	appErrors "github.com/campushub/room-booking-api/pkg/errors"
)

type mockBookingRepo struct {
	mu       sync.Mutex
	bookings []models.Booking
	nextID   int

	findByIDErr      error
	findConflictsErr error
	countErr         error
	createErr        error
	deleteErr        error
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	if m.findByIDErr != nil {
		return nil, m.findByIDErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.bookings {
		if m.bookings[i].ID == id {
			b := m.bookings[i]
			return &b, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockBookingRepo) FindConflicts(ctx context.Context, roomID, date, startTime, endTime string) ([]models.BookingConflict, error) {
	if m.findConflictsErr != nil {
		return nil, m.findConflictsErr
	}
	requested, err := models.NewTimeSlot(startTime, endTime)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var conflicts []models.BookingConflict
	for _, b := range m.bookings {
		if b.RoomID != roomID || b.BookingDate != date {
			continue
		}
		existing, err := models.NewTimeSlot(b.StartTime, b.EndTime)
		if err != nil {
			return nil, err
		}
		if requested.Overlaps(existing) {
			conflicts = append(conflicts, models.BookingConflict{ID: b.ID, StartTime: b.StartTime, EndTime: b.EndTime})
		}
	}
	return conflicts, nil
}

func (m *mockBookingRepo) ListByRoomAndDate(ctx context.Context, roomID, date string) ([]models.BookingConflict, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.BookingConflict
	for _, b := range m.bookings {
		if b.RoomID == roomID && b.BookingDate == date {
			out = append(out, models.BookingConflict{ID: b.ID, StartTime: b.StartTime, EndTime: b.EndTime})
		}
	}
	return out, nil
}

func (m *mockBookingRepo) CountByUserAndDate(ctx context.Context, userID, date string) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, b := range m.bookings {
		if b.UserID == userID && b.BookingDate == date {
			count++
		}
	}
	return count, nil
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	booking.ID = fmt.Sprintf("booking-%d", m.nextID)
	m.bookings = append(m.bookings, *booking)
	return nil
}

func (m *mockBookingRepo) CreateBatch(ctx context.Context, bookings []models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range bookings {
		m.nextID++
		bookings[i].ID = fmt.Sprintf("booking-%d", m.nextID)
	}
	m.bookings = append(m.bookings, bookings...)
	return nil
}

func (m *mockBookingRepo) Delete(ctx context.Context, id string) (bool, error) {
	if m.deleteErr != nil {
		return false, m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.bookings {
		if m.bookings[i].ID == id {
			m.bookings = append(m.bookings[:i], m.bookings[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockBookingRepo) List(ctx context.Context, filter models.BookingFilter) ([]models.BookingDetail, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.BookingDetail, 0, len(m.bookings))
	for _, b := range m.bookings {
		out = append(out, models.BookingDetail{Booking: b})
	}
	return out, len(out), nil
}

func (m *mockBookingRepo) ListByUser(ctx context.Context, userID string) ([]models.BookingDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.BookingDetail
	for _, b := range m.bookings {
		if b.UserID == userID {
			out = append(out, models.BookingDetail{Booking: b})
		}
	}
	return out, nil
}

func (m *mockBookingRepo) ListByDate(ctx context.Context, date, buildingID string) ([]models.BookingDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.BookingDetail
	for _, b := range m.bookings {
		if b.BookingDate == date {
			out = append(out, models.BookingDetail{Booking: b})
		}
	}
	return out, nil
}

func testPolicy(t *testing.T) SchedulingPolicy {
	t.Helper()
	policy, err := NewSchedulingPolicy(config.BookingConfig{
		DailyLimit:    4,
		DayStart:      "07:30",
		DayEnd:        "19:30",
		MinCancelLead: 2 * time.Hour,
		SlotInterval:  30 * time.Minute,
	})
	require.NoError(t, err)
	return policy
}

func newTestBookingService(t *testing.T, repo *mockBookingRepo) *BookingService {
	t.Helper()
	return NewBookingService(repo, nil, testPolicy(t), nil, nil)
}

func TestBookingCreateSuccess(t *testing.T) {
	repo := &mockBookingRepo{}
	svc := newTestBookingService(t, repo)

	booking, err := svc.Create(context.Background(), CreateBookingRequest{
		UserID:    "user-1",
		RoomID:    "room-1",
		Date:      "2025-08-04",
		StartTime: "09:00",
		EndTime:   "10:30",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, booking.ID)
	assert.Len(t, repo.bookings, 1)
}

func TestBookingCreateRejectsInvertedSlot(t *testing.T) {
	svc := newTestBookingService(t, &mockBookingRepo{})

	_, err := svc.Create(context.Background(), CreateBookingRequest{
		UserID:    "user-1",
		RoomID:    "room-1",
		Date:      "2025-08-04",
		StartTime: "10:30",
		EndTime:   "09:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBookingCreateRejectsOutsideWindow(t *testing.T) {
	svc := newTestBookingService(t, &mockBookingRepo{})

	_, err := svc.Create(context.Background(), CreateBookingRequest{
		UserID:    "user-1",
		RoomID:    "room-1",
		Date:      "2025-08-04",
		StartTime: "06:00",
		EndTime:   "08:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBookingCreateRejectsBadDate(t *testing.T) {
	svc := newTestBookingService(t, &mockBookingRepo{})

	_, err := svc.Create(context.Background(), CreateBookingRequest{
		UserID:    "user-1",
		RoomID:    "room-1",
		Date:      "04/08/2025",
		StartTime: "09:00",
		EndTime:   "10:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBookingCreateQuotaExceeded(t *testing.T) {
	repo := &mockBookingRepo{}
	for i := 0; i < 4; i++ {
		repo.bookings = append(repo.bookings, models.Booking{
			ID:          fmt.Sprintf("seed-%d", i),
			UserID:      "user-1",
			RoomID:      fmt.Sprintf("room-%d", i),
			BookingDate: "2025-08-04",
			StartTime:   models.FormatClock(480 + i*60),
			EndTime:     models.FormatClock(540 + i*60),
		})
	}
	svc := newTestBookingService(t, repo)

	_, err := svc.Create(context.Background(), CreateBookingRequest{
		UserID:    "user-1",
		RoomID:    "room-free",
		Date:      "2025-08-04",
		StartTime: "15:00",
		EndTime:   "16:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrQuotaExceeded.Code, appErrors.FromError(err).Code)
	assert.Len(t, repo.bookings, 4, "no booking may be written once the quota is hit")
}

func TestBookingCreateConflict(t *testing.T) {
	repo := &mockBookingRepo{bookings: []models.Booking{{
		ID:          "existing",
		UserID:      "user-2",
		RoomID:      "room-1",
		BookingDate: "2025-08-04",
		StartTime:   "09:00",
		EndTime:     "11:00",
	}}}
	svc := newTestBookingService(t, repo)

	_, err := svc.Create(context.Background(), CreateBookingRequest{
		UserID:    "user-1",
		RoomID:    "room-1",
		Date:      "2025-08-04",
		StartTime: "10:00",
		EndTime:   "12:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBookingConflict.Code, appErrors.FromError(err).Code)
	assert.Len(t, repo.bookings, 1)
}

func TestBookingCreateAllowsTouchingSlots(t *testing.T) {
	repo := &mockBookingRepo{bookings: []models.Booking{{
		ID:          "existing",
		UserID:      "user-2",
		RoomID:      "room-1",
		BookingDate: "2025-08-04",
		StartTime:   "09:00",
		EndTime:     "10:00",
	}}}
	svc := newTestBookingService(t, repo)

	_, err := svc.Create(context.Background(), CreateBookingRequest{
		UserID:    "user-1",
		RoomID:    "room-1",
		Date:      "2025-08-04",
		StartTime: "10:00",
		EndTime:   "11:00",
	})
	assert.NoError(t, err, "a booking starting exactly at another's end must be accepted")
}

func TestBookingCreateConcurrentOneWinner(t *testing.T) {
	repo := &mockBookingRepo{}
	svc := newTestBookingService(t, repo)

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(context.Background(), CreateBookingRequest{
				UserID:    fmt.Sprintf("user-%d", i),
				RoomID:    "room-1",
				Date:      "2025-08-04",
				StartTime: "09:00",
				EndTime:   "10:00",
			})
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.Equal(t, appErrors.ErrBookingConflict.Code, appErrors.FromError(err).Code)
		}
	}
	assert.Equal(t, 1, winners)
	assert.Len(t, repo.bookings, 1)
}

func TestBookingCancelAdminBypassesLeadTime(t *testing.T) {
	repo := &mockBookingRepo{bookings: []models.Booking{{
		ID:          "b-1",
		UserID:      "user-1",
		RoomID:      "room-1",
		BookingDate: "2020-01-01",
		StartTime:   "09:00",
		EndTime:     "10:00",
	}}}
	svc := newTestBookingService(t, repo)

	err := svc.Cancel(context.Background(), "b-1", &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	require.NoError(t, err)
	assert.Empty(t, repo.bookings)
}

func TestBookingCancelOwnerWithEnoughLead(t *testing.T) {
	repo := &mockBookingRepo{bookings: []models.Booking{{
		ID:          "b-1",
		UserID:      "user-1",
		RoomID:      "room-1",
		BookingDate: "2025-08-04",
		StartTime:   "12:00",
		EndTime:     "13:00",
	}}}
	svc := newTestBookingService(t, repo)
	svc.now = func() time.Time {
		return time.Date(2025, 8, 4, 9, 0, 0, 0, time.Local)
	}

	err := svc.Cancel(context.Background(), "b-1", &models.JWTClaims{UserID: "user-1", Role: models.RoleLecturer})
	assert.NoError(t, err)
}

func TestBookingCancelOwnerInsideLeadWindow(t *testing.T) {
	repo := &mockBookingRepo{bookings: []models.Booking{{
		ID:          "b-1",
		UserID:      "user-1",
		RoomID:      "room-1",
		BookingDate: "2025-08-04",
		StartTime:   "12:00",
		EndTime:     "13:00",
	}}}
	svc := newTestBookingService(t, repo)
	svc.now = func() time.Time {
		return time.Date(2025, 8, 4, 11, 0, 0, 0, time.Local)
	}

	err := svc.Cancel(context.Background(), "b-1", &models.JWTClaims{UserID: "user-1", Role: models.RoleLecturer})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Len(t, repo.bookings, 1)
}

func TestBookingCancelOwnerPastBooking(t *testing.T) {
	repo := &mockBookingRepo{bookings: []models.Booking{{
		ID:          "b-1",
		UserID:      "user-1",
		RoomID:      "room-1",
		BookingDate: "2025-08-04",
		StartTime:   "09:00",
		EndTime:     "10:00",
	}}}
	svc := newTestBookingService(t, repo)
	svc.now = func() time.Time {
		return time.Date(2025, 8, 4, 15, 0, 0, 0, time.Local)
	}

	err := svc.Cancel(context.Background(), "b-1", &models.JWTClaims{UserID: "user-1", Role: models.RoleLecturer})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBookingCancelForeignBookingForbidden(t *testing.T) {
	repo := &mockBookingRepo{bookings: []models.Booking{{
		ID:          "b-1",
		UserID:      "user-1",
		RoomID:      "room-1",
		BookingDate: "2099-08-04",
		StartTime:   "09:00",
		EndTime:     "10:00",
	}}}
	svc := newTestBookingService(t, repo)

	err := svc.Cancel(context.Background(), "b-1", &models.JWTClaims{UserID: "user-2", Role: models.RoleLecturer})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestBookingCancelUnknownID(t *testing.T) {
	svc := newTestBookingService(t, &mockBookingRepo{})

	err := svc.Cancel(context.Background(), "missing", &models.JWTClaims{UserID: "admin-1", Role: models.RoleAdmin})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBookingScheduleFlags(t *testing.T) {
	repo := &mockBookingRepo{bookings: []models.Booking{
		{ID: "past", UserID: "user-1", RoomID: "room-1", BookingDate: "2025-08-04", StartTime: "08:00", EndTime: "09:00"},
		{ID: "soon", UserID: "user-1", RoomID: "room-1", BookingDate: "2025-08-04", StartTime: "13:00", EndTime: "14:00"},
		{ID: "later", UserID: "user-1", RoomID: "room-1", BookingDate: "2025-08-05", StartTime: "09:00", EndTime: "10:00"},
	}}
	svc := newTestBookingService(t, repo)
	svc.now = func() time.Time {
		return time.Date(2025, 8, 4, 12, 0, 0, 0, time.Local)
	}

	entries, err := svc.Schedule(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	byID := make(map[string]models.ScheduleEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	assert.True(t, byID["past"].IsPast)
	assert.False(t, byID["past"].CanCancel)
	assert.False(t, byID["soon"].IsPast)
	assert.False(t, byID["soon"].CanCancel, "starts within the cancellation lead")
	assert.False(t, byID["later"].IsPast)
	assert.True(t, byID["later"].CanCancel)
}

func TestBookingCheckAvailability(t *testing.T) {
	repo := &mockBookingRepo{bookings: []models.Booking{{
		ID:          "existing",
		UserID:      "user-2",
		RoomID:      "room-1",
		BookingDate: "2025-08-04",
		StartTime:   "09:00",
		EndTime:     "11:00",
	}}}
	svc := newTestBookingService(t, repo)

	busy, err := svc.CheckAvailability(context.Background(), CheckAvailabilityRequest{
		RoomID: "room-1", Date: "2025-08-04", StartTime: "10:00", EndTime: "12:00",
	})
	require.NoError(t, err)
	assert.False(t, busy.Available)
	assert.Len(t, busy.Conflicts, 1)

	free, err := svc.CheckAvailability(context.Background(), CheckAvailabilityRequest{
		RoomID: "room-1", Date: "2025-08-05", StartTime: "10:00", EndTime: "12:00",
	})
	require.NoError(t, err)
	assert.True(t, free.Available)
	assert.Empty(t, free.Conflicts)
}
