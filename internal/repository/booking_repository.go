package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/campushub/room-booking-api/internal/models"
)

// bookingColumns renders date/time columns as the wire strings the rest of
// the system works with.
const bookingColumns = `b.id, b.user_id, b.room_id,
to_char(b.booking_date, 'YYYY-MM-DD') AS booking_date,
to_char(b.start_time, 'HH24:MI') AS start_time,
to_char(b.end_time, 'HH24:MI') AS end_time,
b.created_at`

const bookingDetailColumns = bookingColumns + `,
r.code AS room_code, r.level AS level,
l.name AS building_name, v.name AS venue_type_name,
u.full_name AS lecturer_name, u.email AS lecturer_email`

const bookingDetailJoins = `
JOIN rooms r ON r.id = b.room_id
JOIN locations l ON l.id = r.building_id
JOIN venue_types v ON v.id = r.venue_type_id
JOIN users u ON u.id = b.user_id`

// BookingRepository provides persistence for room bookings.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new booking repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// FindByID loads a booking by id.
func (r *BookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM room_bookings b WHERE b.id = $1`, bookingColumns)
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindConflicts returns every booking for the room and date whose interval
// overlaps the candidate [start, end) slot, annotated with the owning
// lecturer. The overlap condition is the single strict inequality
// start_time < $4 AND end_time > $3; intervals that merely touch at an
// endpoint do not conflict.
func (r *BookingRepository) FindConflicts(ctx context.Context, roomID, date, startTime, endTime string) ([]models.BookingConflict, error) {
	const query = `SELECT b.id,
to_char(b.start_time, 'HH24:MI') AS start_time,
to_char(b.end_time, 'HH24:MI') AS end_time,
u.full_name AS lecturer_name, u.email AS lecturer_email
FROM room_bookings b
JOIN users u ON u.id = b.user_id
WHERE b.room_id = $1 AND b.booking_date = $2
  AND b.start_time < $4 AND b.end_time > $3
ORDER BY b.start_time ASC`
	var conflicts []models.BookingConflict
	if err := r.db.SelectContext(ctx, &conflicts, query, roomID, date, startTime, endTime); err != nil {
		return nil, fmt.Errorf("find booking conflicts: %w", err)
	}
	return conflicts, nil
}

// ListByRoomAndDate returns every booking placed on the room for the date,
// ordered by start time, for display alongside availability results.
func (r *BookingRepository) ListByRoomAndDate(ctx context.Context, roomID, date string) ([]models.BookingConflict, error) {
	const query = `SELECT b.id,
to_char(b.start_time, 'HH24:MI') AS start_time,
to_char(b.end_time, 'HH24:MI') AS end_time,
u.full_name AS lecturer_name, u.email AS lecturer_email
FROM room_bookings b
JOIN users u ON u.id = b.user_id
WHERE b.room_id = $1 AND b.booking_date = $2
ORDER BY b.start_time ASC`
	var bookings []models.BookingConflict
	if err := r.db.SelectContext(ctx, &bookings, query, roomID, date); err != nil {
		return nil, fmt.Errorf("list bookings by room and date: %w", err)
	}
	return bookings, nil
}

// CountByUserAndDate counts the user's live bookings on a calendar date. The
// daily quota is evaluated against this number.
func (r *BookingRepository) CountByUserAndDate(ctx context.Context, userID, date string) (int, error) {
	const query = `SELECT COUNT(*) FROM room_bookings WHERE user_id = $1 AND booking_date = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, date); err != nil {
		return 0, fmt.Errorf("count bookings on date: %w", err)
	}
	return count, nil
}

// Create stores a new booking record.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO room_bookings (id, user_id, room_id, booking_date, start_time, end_time, created_at)
VALUES (:id, :user_id, :room_id, :booking_date, :start_time, :end_time, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, booking); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

// CreateBatch inserts the bookings of one recurring request inside a single
// transaction, so a storage failure midway leaves no partial schedule.
func (r *BookingRepository) CreateBatch(ctx context.Context, bookings []models.Booking) (err error) {
	if len(bookings) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create bookings: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	const query = `INSERT INTO room_bookings (id, user_id, room_id, booking_date, start_time, end_time, created_at)
VALUES (:id, :user_id, :room_id, :booking_date, :start_time, :end_time, :created_at)`
	for i := range bookings {
		payload := bookings[i]
		if payload.ID == "" {
			payload.ID = uuid.NewString()
		}
		if payload.CreatedAt.IsZero() {
			payload.CreatedAt = now
		}
		if _, err = sqlx.NamedExecContext(ctx, tx, query, &payload); err != nil {
			return fmt.Errorf("insert recurring booking: %w", err)
		}
		bookings[i] = payload
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create bookings: %w", err)
	}
	return nil
}

// Delete removes a booking. Deletion is physical; the data model carries no
// status column.
func (r *BookingRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM room_bookings WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete booking: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete booking rows: %w", err)
	}
	return rows > 0, nil
}

// List returns booking details with optional filtering and pagination for
// the admin views.
func (r *BookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.BookingDetail, int, error) {
	base := "FROM room_bookings b" + bookingDetailJoins + " WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("b.user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	if filter.RoomID != "" {
		conditions = append(conditions, fmt.Sprintf("b.room_id = $%d", len(args)+1))
		args = append(args, filter.RoomID)
	}
	if filter.Date != "" {
		conditions = append(conditions, fmt.Sprintf("b.booking_date = $%d", len(args)+1))
		args = append(args, filter.Date)
	}
	if filter.BuildingID != "" {
		conditions = append(conditions, fmt.Sprintf("r.building_id = $%d", len(args)+1))
		args = append(args, filter.BuildingID)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY b.booking_date DESC, b.start_time ASC LIMIT %d OFFSET %d", bookingDetailColumns, base, size, offset)
	var bookings []models.BookingDetail
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}

	return bookings, total, nil
}

// ListByUser returns a lecturer's bookings newest first for the schedule
// view.
func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]models.BookingDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM room_bookings b%s WHERE b.user_id = $1 ORDER BY b.booking_date DESC, b.start_time DESC`, bookingDetailColumns, bookingDetailJoins)
	var bookings []models.BookingDetail
	if err := r.db.SelectContext(ctx, &bookings, query, userID); err != nil {
		return nil, fmt.Errorf("list bookings by user: %w", err)
	}
	return bookings, nil
}

// CountByUser counts all bookings the user holds.
func (r *BookingRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM room_bookings WHERE user_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("count bookings by user: %w", err)
	}
	return count, nil
}

// CountByUserBetween counts the user's bookings with dates inside the
// inclusive range.
func (r *BookingRepository) CountByUserBetween(ctx context.Context, userID, fromDate, toDate string) (int, error) {
	const query = `SELECT COUNT(*) FROM room_bookings WHERE user_id = $1 AND booking_date BETWEEN $2 AND $3`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, fromDate, toDate); err != nil {
		return 0, fmt.Errorf("count bookings between dates: %w", err)
	}
	return count, nil
}

// CountRoomsBusyAt counts distinct rooms occupied at a given wall-clock
// moment on a date, for the dashboard's free-room figure.
func (r *BookingRepository) CountRoomsBusyAt(ctx context.Context, date, clock string) (int, error) {
	const query = `SELECT COUNT(DISTINCT room_id) FROM room_bookings WHERE booking_date = $1 AND start_time <= $2 AND end_time > $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, date, clock); err != nil {
		return 0, fmt.Errorf("count busy rooms: %w", err)
	}
	return count, nil
}

// CountCreatedInMonth counts bookings created during the given month, for
// the admin dashboard.
func (r *BookingRepository) CountCreatedInMonth(ctx context.Context, year int, month time.Month) (int, error) {
	const query = `SELECT COUNT(*) FROM room_bookings WHERE date_part('year', created_at) = $1 AND date_part('month', created_at) = $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, year, int(month)); err != nil {
		return 0, fmt.Errorf("count bookings in month: %w", err)
	}
	return count, nil
}

// ListByDate returns every booking on a date ordered by start time, joined
// for the admin day overview, optionally limited to one building.
func (r *BookingRepository) ListByDate(ctx context.Context, date, buildingID string) ([]models.BookingDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM room_bookings b%s WHERE b.booking_date = $1`, bookingDetailColumns, bookingDetailJoins)
	args := []interface{}{date}
	if buildingID != "" {
		query += " AND r.building_id = $2"
		args = append(args, buildingID)
	}
	query += " ORDER BY b.start_time ASC"

	var bookings []models.BookingDetail
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("list bookings by date: %w", err)
	}
	return bookings, nil
}
