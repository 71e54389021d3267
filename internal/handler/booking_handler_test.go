package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushub/room-booking-api/internal/middleware"
	"github.com/campushub/room-booking-api/internal/models"
	"github.com/campushub/room-booking-api/internal/service"
	"github.com/campushub/room-booking-api/pkg/config"
)

type responseEnvelope struct {
	Data  json.RawMessage        `json:"data"`
	Error map[string]interface{} `json:"error"`
}

type fakeBookingRepo struct {
	bookings  []models.Booking
	conflicts []models.BookingConflict
	dayCount  int
}

func (f *fakeBookingRepo) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	for i := range f.bookings {
		if f.bookings[i].ID == id {
			return &f.bookings[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeBookingRepo) FindConflicts(ctx context.Context, roomID, date, startTime, endTime string) ([]models.BookingConflict, error) {
	return f.conflicts, nil
}

func (f *fakeBookingRepo) CountByUserAndDate(ctx context.Context, userID, date string) (int, error) {
	return f.dayCount, nil
}

func (f *fakeBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	booking.ID = "booking-1"
	f.bookings = append(f.bookings, *booking)
	return nil
}

func (f *fakeBookingRepo) Delete(ctx context.Context, id string) (bool, error) {
	return true, nil
}

func (f *fakeBookingRepo) List(ctx context.Context, filter models.BookingFilter) ([]models.BookingDetail, int, error) {
	return nil, 0, nil
}

func (f *fakeBookingRepo) ListByUser(ctx context.Context, userID string) ([]models.BookingDetail, error) {
	return nil, nil
}

func (f *fakeBookingRepo) ListByDate(ctx context.Context, date, buildingID string) ([]models.BookingDetail, error) {
	return nil, nil
}

func newBookingTestHandler(t *testing.T, repo *fakeBookingRepo) *BookingHandler {
	t.Helper()
	policy, err := service.NewSchedulingPolicy(config.BookingConfig{
		DailyLimit:    4,
		DayStart:      "07:30",
		DayEnd:        "19:30",
		MinCancelLead: 2 * time.Hour,
		SlotInterval:  30 * time.Minute,
	})
	require.NoError(t, err)
	svc := service.NewBookingService(repo, nil, policy, nil, nil)
	return NewBookingHandler(svc, nil, nil, nil)
}

func postContext(t *testing.T, rec *httptest.ResponseRecorder, path string, payload interface{}, claims *models.JWTClaims) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(rec)
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	c.Request = httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c
}

func TestBookingHandlerCreateSuccess(t *testing.T) {
	repo := &fakeBookingRepo{}
	h := newBookingTestHandler(t, repo)

	rec := httptest.NewRecorder()
	c := postContext(t, rec, "/bookings", map[string]string{
		"room_id":    "room-1",
		"date":       "2025-08-04",
		"start_time": "09:00",
		"end_time":   "10:00",
	}, &models.JWTClaims{UserID: "user-1", Role: models.RoleLecturer})

	h.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, repo.bookings, 1)
	assert.Equal(t, "user-1", repo.bookings[0].UserID, "owner comes from the token, not the payload")
}

func TestBookingHandlerCreateConflict(t *testing.T) {
	repo := &fakeBookingRepo{conflicts: []models.BookingConflict{{ID: "b-1", StartTime: "09:00", EndTime: "11:00"}}}
	h := newBookingTestHandler(t, repo)

	rec := httptest.NewRecorder()
	c := postContext(t, rec, "/bookings", map[string]string{
		"room_id":    "room-1",
		"date":       "2025-08-04",
		"start_time": "09:00",
		"end_time":   "10:00",
	}, &models.JWTClaims{UserID: "user-1", Role: models.RoleLecturer})

	h.Create(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "BOOKING_CONFLICT", envelope.Error["code"])
}

func TestBookingHandlerCreateQuotaExceeded(t *testing.T) {
	repo := &fakeBookingRepo{dayCount: 4}
	h := newBookingTestHandler(t, repo)

	rec := httptest.NewRecorder()
	c := postContext(t, rec, "/bookings", map[string]string{
		"room_id":    "room-1",
		"date":       "2025-08-04",
		"start_time": "09:00",
		"end_time":   "10:00",
	}, &models.JWTClaims{UserID: "user-1", Role: models.RoleLecturer})

	h.Create(c)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "QUOTA_EXCEEDED", envelope.Error["code"])
}

func TestBookingHandlerCreateWithoutClaims(t *testing.T) {
	h := newBookingTestHandler(t, &fakeBookingRepo{})

	rec := httptest.NewRecorder()
	c := postContext(t, rec, "/bookings", map[string]string{
		"room_id":    "room-1",
		"date":       "2025-08-04",
		"start_time": "09:00",
		"end_time":   "10:00",
	}, nil)

	h.Create(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBookingHandlerCreateMalformedBody(t *testing.T) {
	h := newBookingTestHandler(t, &fakeBookingRepo{})

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/bookings", bytes.NewReader([]byte("{not-json")))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleLecturer})

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookingHandlerCheckAvailability(t *testing.T) {
	repo := &fakeBookingRepo{}
	h := newBookingTestHandler(t, repo)

	rec := httptest.NewRecorder()
	c := postContext(t, rec, "/bookings/check-availability", map[string]string{
		"room_id":    "room-1",
		"date":       "2025-08-04",
		"start_time": "09:00",
		"end_time":   "10:00",
	}, nil)

	h.CheckAvailability(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	var result service.AvailabilityResult
	require.NoError(t, json.Unmarshal(envelope.Data, &result))
	assert.True(t, result.Available)
}
