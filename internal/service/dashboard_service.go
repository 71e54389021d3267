package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campushub/room-booking-api/internal/models"
	appErrors "github.com/campushub/room-booking-api/pkg/errors"
)

type dashboardBookingRepository interface {
	CountByUser(ctx context.Context, userID string) (int, error)
	CountByUserAndDate(ctx context.Context, userID, date string) (int, error)
	CountByUserBetween(ctx context.Context, userID, fromDate, toDate string) (int, error)
	CountRoomsBusyAt(ctx context.Context, date, clock string) (int, error)
	CountCreatedInMonth(ctx context.Context, year int, month time.Month) (int, error)
	ListByUser(ctx context.Context, userID string) ([]models.BookingDetail, error)
	ListByDate(ctx context.Context, date, buildingID string) ([]models.BookingDetail, error)
}

type dashboardRoomRepository interface {
	Count(ctx context.Context) (int, error)
}

// DashboardService aggregates booking statistics for the dashboard views.
// Results are cached because the admin dashboard fans out several counting
// queries per request.
type DashboardService struct {
	bookings dashboardBookingRepository
	rooms    dashboardRoomRepository
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewDashboardService constructs a DashboardService instance.
func NewDashboardService(bookings dashboardBookingRepository, rooms dashboardRoomRepository, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 1 * time.Minute
	}
	return &DashboardService{
		bookings: bookings,
		rooms:    rooms,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// Lecturer produces the dashboard for a single lecturer.
func (s *DashboardService) Lecturer(ctx context.Context, userID string) (*models.LecturerDashboard, error) {
	now := s.now()
	today := now.Format(models.ClockDate)

	cacheKey := fmt.Sprintf("dashboard:lecturer:%s:%s", userID, today)
	if s.cache != nil && s.cache.Enabled() {
		var cached models.LecturerDashboard
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	total, err := s.bookings.CountByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count bookings")
	}

	todayCount, err := s.bookings.CountByUserAndDate(ctx, userID, today)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count today's bookings")
	}

	tomorrow := now.AddDate(0, 0, 1).Format(models.ClockDate)
	weekOut := now.AddDate(0, 0, 7).Format(models.ClockDate)
	upcoming, err := s.bookings.CountByUserBetween(ctx, userID, tomorrow, weekOut)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count upcoming bookings")
	}

	freeNow, err := s.roomsFreeAt(ctx, now)
	if err != nil {
		return nil, err
	}

	all, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}
	schedule := make([]models.BookingDetail, 0)
	for _, b := range all {
		if b.BookingDate == today {
			schedule = append(schedule, b)
		}
	}

	dashboard := &models.LecturerDashboard{
		TotalBookings:    total,
		TodayBookings:    todayCount,
		UpcomingBookings: upcoming,
		RoomsFreeNow:     freeNow,
		TodaySchedule:    schedule,
	}

	s.store(ctx, cacheKey, dashboard)
	return dashboard, nil
}

// Admin produces the institution-wide dashboard.
func (s *DashboardService) Admin(ctx context.Context) (*models.AdminDashboard, error) {
	now := s.now()
	today := now.Format(models.ClockDate)

	cacheKey := fmt.Sprintf("dashboard:admin:%s", today)
	if s.cache != nil && s.cache.Enabled() {
		var cached models.AdminDashboard
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	totalRooms, err := s.rooms.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count rooms")
	}

	monthly, err := s.bookings.CountCreatedInMonth(ctx, now.Year(), now.Month())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count monthly bookings")
	}

	busyNow, err := s.bookings.CountRoomsBusyAt(ctx, today, now.Format("15:04"))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count busy rooms")
	}

	todays, err := s.bookings.ListByDate(ctx, today, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list today's bookings")
	}

	dashboard := &models.AdminDashboard{
		TotalRooms:        totalRooms,
		BookingsThisMonth: monthly,
		BookingsToday:     len(todays),
		RoomsBusyNow:      busyNow,
		TodayBookings:     todays,
	}

	s.store(ctx, cacheKey, dashboard)
	return dashboard, nil
}

// Invalidate drops cached dashboards. Booking writes call this so stats do
// not lag behind by a full TTL.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil || !s.cache.Enabled() {
		return
	}
	if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}

func (s *DashboardService) roomsFreeAt(ctx context.Context, at time.Time) (int, error) {
	total, err := s.rooms.Count(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count rooms")
	}
	busy, err := s.bookings.CountRoomsBusyAt(ctx, at.Format(models.ClockDate), at.Format("15:04"))
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count busy rooms")
	}
	free := total - busy
	if free < 0 {
		free = 0
	}
	return free, nil
}

func (s *DashboardService) store(ctx context.Context, key string, value interface{}) {
	if s.cache == nil || !s.cache.Enabled() {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache dashboard", zap.String("key", key), zap.Error(err))
	}
}
