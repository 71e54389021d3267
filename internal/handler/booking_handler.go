package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campushub/room-booking-api/internal/models"
	"github.com/campushub/room-booking-api/internal/service"
	appErrors "github.com/campushub/room-booking-api/pkg/errors"
	"github.com/campushub/room-booking-api/pkg/response"
)

// BookingHandler exposes booking endpoints.
type BookingHandler struct {
	bookings   *service.BookingService
	recurring  *service.RecurringBookingService
	dashboards *service.DashboardService
	metrics    *service.MetricsService
}

// NewBookingHandler constructs handler.
func NewBookingHandler(bookings *service.BookingService, recurring *service.RecurringBookingService, dashboards *service.DashboardService, metrics *service.MetricsService) *BookingHandler {
	return &BookingHandler{bookings: bookings, recurring: recurring, dashboards: dashboards, metrics: metrics}
}

// CheckAvailability godoc
// @Summary Check whether a room is free for a time slot
// @Tags Bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CheckAvailabilityRequest true "Slot to check"
// @Success 200 {object} response.Envelope
// @Router /bookings/check-availability [post]
func (h *BookingHandler) CheckAvailability(c *gin.Context) {
	var req service.CheckAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.bookings.CheckAvailability(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Create godoc
// @Summary Create a single booking for the authenticated lecturer
// @Tags Bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateBookingRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /bookings [post]
func (h *BookingHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req service.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.UserID = claims.UserID

	booking, err := h.bookings.Create(c.Request.Context(), req)
	if err != nil {
		h.recordOutcome("single", err)
		response.Error(c, err)
		return
	}
	h.recordOutcome("single", nil)
	h.invalidateDashboards(c)
	response.Created(c, booking)
}

// CreateRecurring godoc
// @Summary Create a recurring booking series (all-or-nothing)
// @Tags Bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateRecurringBookingRequest true "Series payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /bookings/recurring [post]
func (h *BookingHandler) CreateRecurring(c *gin.Context) {
	var req service.CreateRecurringBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.recurring.Create(c.Request.Context(), req)
	if err != nil {
		h.recordOutcome("recurring", err)
		response.Error(c, err)
		return
	}
	h.recordOutcome("recurring", nil)
	h.invalidateDashboards(c)
	response.Created(c, result)
}

// PreviewConflicts godoc
// @Summary Preview existing bookings across a recurring date range
// @Tags Bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.PreviewConflictsRequest true "Range payload"
// @Success 200 {object} response.Envelope
// @Router /bookings/recurring/preview [post]
func (h *BookingHandler) PreviewConflicts(c *gin.Context) {
	var req service.PreviewConflictsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	conflicts, err := h.recurring.PreviewConflicts(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"conflicts": conflicts}, nil)
}

// Cancel godoc
// @Summary Cancel a booking
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 204
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /bookings/{id} [delete]
func (h *BookingHandler) Cancel(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.bookings.Cancel(c.Request.Context(), c.Param("id"), claims); err != nil {
		response.Error(c, err)
		return
	}
	h.invalidateDashboards(c)
	response.NoContent(c)
}

// List godoc
// @Summary List bookings with filters and pagination
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param date query string false "Filter by date (YYYY-MM-DD)"
// @Param roomId query string false "Filter by room"
// @Param userId query string false "Filter by lecturer"
// @Param buildingId query string false "Filter by building"
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	filter := models.BookingFilter{
		UserID:     c.Query("userId"),
		RoomID:     c.Query("roomId"),
		Date:       c.Query("date"),
		BuildingID: c.Query("buildingId"),
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "pageSize", 20),
	}
	bookings, pagination, err := h.bookings.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, bookings, pagination)
}

// Schedule godoc
// @Summary List a lecturer's bookings with cancellation hints
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Router /users/{id}/bookings [get]
func (h *BookingHandler) Schedule(c *gin.Context) {
	entries, err := h.bookings.Schedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// TimeSlots godoc
// @Summary List the bookable time slots of the operating window
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /bookings/time-slots [get]
func (h *BookingHandler) TimeSlots(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.bookings.TimeSlots(), nil)
}

func (h *BookingHandler) recordOutcome(kind string, err error) {
	if h.metrics == nil {
		return
	}
	outcome := "created"
	if err != nil {
		switch appErrors.FromError(err).Code {
		case appErrors.ErrBookingConflict.Code:
			outcome = "conflict"
		case appErrors.ErrQuotaExceeded.Code:
			outcome = "quota_exceeded"
		default:
			outcome = "error"
		}
	}
	h.metrics.RecordBookingOutcome(kind, outcome)
}

func (h *BookingHandler) invalidateDashboards(c *gin.Context) {
	if h.dashboards == nil {
		return
	}
	h.dashboards.Invalidate(c.Request.Context())
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
