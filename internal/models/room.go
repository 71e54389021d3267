package models

import "time"

// Location represents a campus building rooms belong to.
type Location struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Levels    int       `db:"levels" json:"levels"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// VenueType labels a room category, e.g. "Lecture Hall" or "Lab".
type VenueType struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Room represents a bookable classroom.
type Room struct {
	ID          string    `db:"id" json:"id"`
	Code        string    `db:"code" json:"code"`
	BuildingID  string    `db:"building_id" json:"building_id"`
	Level       string    `db:"level" json:"level"`
	VenueTypeID string    `db:"venue_type_id" json:"venue_type_id"`
	Capacity    int       `db:"capacity" json:"capacity"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// RoomDetail joins a room with its building and venue type labels.
type RoomDetail struct {
	Room
	BuildingName  string `db:"building_name" json:"building_name"`
	VenueTypeName string `db:"venue_type_name" json:"venue_type_name"`
}

// RoomFilter captures filtering criteria for room queries.
type RoomFilter struct {
	BuildingID  string
	VenueTypeID string
	MinCapacity int
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}

// RoomAvailability annotates a room with its availability for a requested
// slot plus the bookings already placed on that date.
type RoomAvailability struct {
	RoomDetail
	IsAvailable      bool              `json:"is_available"`
	ExistingBookings []BookingConflict `json:"existing_bookings"`
}
