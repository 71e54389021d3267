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

const roomDetailColumns = `r.id, r.code, r.building_id, r.level, r.venue_type_id, r.capacity, r.created_at, r.updated_at,
l.name AS building_name, v.name AS venue_type_name`

const roomDetailJoins = `
JOIN locations l ON l.id = r.building_id
JOIN venue_types v ON v.id = r.venue_type_id`

// RoomRepository provides persistence for rooms.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository creates a new room repository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

// List returns rooms matching the filter, joined with building and venue
// type labels.
func (r *RoomRepository) List(ctx context.Context, filter models.RoomFilter) ([]models.RoomDetail, int, error) {
	base := "FROM rooms r" + roomDetailJoins + " WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.BuildingID != "" {
		conditions = append(conditions, fmt.Sprintf("r.building_id = $%d", len(args)+1))
		args = append(args, filter.BuildingID)
	}
	if filter.VenueTypeID != "" {
		conditions = append(conditions, fmt.Sprintf("r.venue_type_id = $%d", len(args)+1))
		args = append(args, filter.VenueTypeID)
	}
	if filter.MinCapacity > 0 {
		conditions = append(conditions, fmt.Sprintf("r.capacity >= $%d", len(args)+1))
		args = append(args, filter.MinCapacity)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY r.code ASC LIMIT %d OFFSET %d", roomDetailColumns, base, size, offset)
	var rooms []models.RoomDetail
	if err := r.db.SelectContext(ctx, &rooms, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list rooms: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count rooms: %w", err)
	}

	return rooms, total, nil
}

// FindByID loads a room with its labels.
func (r *RoomRepository) FindByID(ctx context.Context, id string) (*models.RoomDetail, error) {
	query := fmt.Sprintf(`SELECT %s FROM rooms r%s WHERE r.id = $1`, roomDetailColumns, roomDetailJoins)
	var room models.RoomDetail
	if err := r.db.GetContext(ctx, &room, query, id); err != nil {
		return nil, err
	}
	return &room, nil
}

// Count returns the total number of rooms.
func (r *RoomRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM rooms`); err != nil {
		return 0, fmt.Errorf("count rooms: %w", err)
	}
	return count, nil
}

// Create stores a new room record.
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = now
	}
	room.UpdatedAt = now

	const query = `INSERT INTO rooms (id, code, building_id, level, venue_type_id, capacity, created_at, updated_at)
VALUES (:id, :code, :building_id, :level, :venue_type_id, :capacity, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	return nil
}

// Update modifies a room record.
func (r *RoomRepository) Update(ctx context.Context, room *models.Room) error {
	room.UpdatedAt = time.Now().UTC()
	const query = `UPDATE rooms SET code = :code, building_id = :building_id, level = :level, venue_type_id = :venue_type_id, capacity = :capacity, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, room); err != nil {
		return fmt.Errorf("update room: %w", err)
	}
	return nil
}

// Delete removes a room by id.
func (r *RoomRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	return nil
}
