package models

import "time"

// Booking reserves one room for one contiguous time interval on one calendar
// date. Dates are `YYYY-MM-DD` and times are `HH:MM` wall-clock strings; the
// interval is half-open, so a booking ending at 10:00 does not collide with
// one starting at 10:00.
type Booking struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	RoomID      string    `db:"room_id" json:"room_id"`
	BookingDate string    `db:"booking_date" json:"booking_date"`
	StartTime   string    `db:"start_time" json:"start_time"`
	EndTime     string    `db:"end_time" json:"end_time"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// BookingDetail joins a booking with room, building, venue type and lecturer
// columns for admin and schedule views.
type BookingDetail struct {
	Booking
	RoomCode      string `db:"room_code" json:"room_code"`
	BuildingName  string `db:"building_name" json:"building_name"`
	Level         string `db:"level" json:"level"`
	VenueTypeName string `db:"venue_type_name" json:"venue_type_name"`
	LecturerName  string `db:"lecturer_name" json:"lecturer_name"`
	LecturerEmail string `db:"lecturer_email" json:"lecturer_email"`
}

// BookingConflict is the display view of a booking that blocks a candidate
// slot.
type BookingConflict struct {
	ID            string `db:"id" json:"id"`
	StartTime     string `db:"start_time" json:"start_time"`
	EndTime       string `db:"end_time" json:"end_time"`
	LecturerName  string `db:"lecturer_name" json:"lecturer_name"`
	LecturerEmail string `db:"lecturer_email" json:"lecturer_email"`
}

// BookingFilter captures query params for listing bookings.
type BookingFilter struct {
	UserID     string
	RoomID     string
	Date       string
	BuildingID string
	Page       int
	PageSize   int
}

// ScheduleEntry decorates a lecturer's booking with cancellation flags.
type ScheduleEntry struct {
	BookingDetail
	CanCancel bool `json:"can_cancel"`
	IsPast    bool `json:"is_past"`
}
