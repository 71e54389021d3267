package models

// LecturerDashboard summarizes a lecturer's booking activity.
type LecturerDashboard struct {
	TotalBookings    int             `json:"total_bookings"`
	TodayBookings    int             `json:"today_bookings"`
	UpcomingBookings int             `json:"upcoming_bookings"`
	RoomsFreeNow     int             `json:"rooms_free_now"`
	TodaySchedule    []BookingDetail `json:"today_schedule"`
}

// AdminDashboard summarizes booking activity across the institution.
type AdminDashboard struct {
	TotalRooms        int             `json:"total_rooms"`
	BookingsThisMonth int             `json:"bookings_this_month"`
	BookingsToday     int             `json:"bookings_today"`
	RoomsBusyNow      int             `json:"rooms_busy_now"`
	TodayBookings     []BookingDetail `json:"today_bookings"`
}
