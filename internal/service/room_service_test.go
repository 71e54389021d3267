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

type mockRoomRepo struct {
	rooms     []models.RoomDetail
	listErr   error
	created   []models.Room
	deletedID string
}

func (m *mockRoomRepo) List(ctx context.Context, filter models.RoomFilter) ([]models.RoomDetail, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.rooms, len(m.rooms), nil
}

func (m *mockRoomRepo) FindByID(ctx context.Context, id string) (*models.RoomDetail, error) {
	for i := range m.rooms {
		if m.rooms[i].ID == id {
			return &m.rooms[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockRoomRepo) Create(ctx context.Context, room *models.Room) error {
	room.ID = "room-new"
	m.created = append(m.created, *room)
	return nil
}

func (m *mockRoomRepo) Update(ctx context.Context, room *models.Room) error {
	return nil
}

func (m *mockRoomRepo) Delete(ctx context.Context, id string) error {
	m.deletedID = id
	return nil
}

type mockCatalogReader struct {
	locations map[string]*models.Location
}

func (m *mockCatalogReader) FindByID(ctx context.Context, id string) (*models.Location, error) {
	if l, ok := m.locations[id]; ok {
		return l, nil
	}
	return nil, sql.ErrNoRows
}

type mockVenueTypeReader struct {
	venueTypes map[string]*models.VenueType
}

func (m *mockVenueTypeReader) FindByID(ctx context.Context, id string) (*models.VenueType, error) {
	if v, ok := m.venueTypes[id]; ok {
		return v, nil
	}
	return nil, sql.ErrNoRows
}

func newTestRoomService(t *testing.T, rooms *mockRoomRepo, bookings *mockBookingRepo) *RoomService {
	t.Helper()
	locations := &mockCatalogReader{locations: map[string]*models.Location{
		"bld-1": {ID: "bld-1", Name: "Main Block", Levels: 3},
	}}
	venueTypes := &mockVenueTypeReader{venueTypes: map[string]*models.VenueType{
		"vt-1": {ID: "vt-1", Name: "Lecture Hall"},
	}}
	return NewRoomService(rooms, bookings, locations, venueTypes, testPolicy(t), nil, nil)
}

func roomDetail(id, code string) models.RoomDetail {
	return models.RoomDetail{Room: models.Room{ID: id, Code: code, BuildingID: "bld-1", Level: "1", VenueTypeID: "vt-1", Capacity: 40}}
}

func TestRoomSearchAnnotatesAvailability(t *testing.T) {
	rooms := &mockRoomRepo{rooms: []models.RoomDetail{roomDetail("room-1", "R101"), roomDetail("room-2", "R102")}}
	bookings := &mockBookingRepo{bookings: []models.Booking{{
		ID:          "b-1",
		UserID:      "user-1",
		RoomID:      "room-1",
		BookingDate: "2025-08-04",
		StartTime:   "09:00",
		EndTime:     "11:00",
	}}}
	svc := newTestRoomService(t, rooms, bookings)

	results, err := svc.Search(context.Background(), SearchRoomsRequest{
		Date: "2025-08-04", StartTime: "10:00", EndTime: "12:00",
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	byID := map[string]models.RoomAvailability{}
	for _, r := range results {
		byID[r.ID] = r
	}
	assert.False(t, byID["room-1"].IsAvailable)
	assert.Len(t, byID["room-1"].ExistingBookings, 1)
	assert.True(t, byID["room-2"].IsAvailable)
	assert.Empty(t, byID["room-2"].ExistingBookings)
}

func TestRoomSearchRejectsSlotOutsideWindow(t *testing.T) {
	svc := newTestRoomService(t, &mockRoomRepo{}, &mockBookingRepo{})

	_, err := svc.Search(context.Background(), SearchRoomsRequest{
		Date: "2025-08-04", StartTime: "20:00", EndTime: "21:00",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRoomCreateRejectsUnknownBuilding(t *testing.T) {
	rooms := &mockRoomRepo{}
	svc := newTestRoomService(t, rooms, &mockBookingRepo{})

	_, err := svc.Create(context.Background(), CreateRoomRequest{
		Code: "R201", BuildingID: "ghost", Level: "2", VenueTypeID: "vt-1", Capacity: 30,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, rooms.created)
}

func TestRoomCreateSuccess(t *testing.T) {
	rooms := &mockRoomRepo{}
	svc := newTestRoomService(t, rooms, &mockBookingRepo{})

	room, err := svc.Create(context.Background(), CreateRoomRequest{
		Code: "R201", BuildingID: "bld-1", Level: "2", VenueTypeID: "vt-1", Capacity: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, "room-new", room.ID)
	assert.Len(t, rooms.created, 1)
}

func TestRoomGetNotFound(t *testing.T) {
	svc := newTestRoomService(t, &mockRoomRepo{}, &mockBookingRepo{})

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
