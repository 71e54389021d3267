package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/campushub/room-booking-api/internal/models"
	"github.com/campushub/room-booking-api/internal/service"
	appErrors "github.com/campushub/room-booking-api/pkg/errors"
	"github.com/campushub/room-booking-api/pkg/response"
)

// ReportHandler exposes booking export endpoints.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// BookingReport godoc
// @Summary Export bookings as CSV or PDF
// @Tags Reports
// @Produce octet-stream
// @Security BearerAuth
// @Param format query string true "csv or pdf"
// @Param date query string false "Filter by date (YYYY-MM-DD)"
// @Param roomId query string false "Filter by room"
// @Param userId query string false "Filter by lecturer"
// @Param buildingId query string false "Filter by building"
// @Success 200 {file} binary
// @Router /reports/bookings [get]
func (h *ReportHandler) BookingReport(c *gin.Context) {
	format := service.ReportFormat(c.DefaultQuery("format", "csv"))
	filter := models.BookingFilter{
		UserID:     c.Query("userId"),
		RoomID:     c.Query("roomId"),
		Date:       c.Query("date"),
		BuildingID: c.Query("buildingId"),
	}

	report, err := h.reports.BookingReport(c.Request.Context(), filter, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	if report == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+report.FileName+`"`)
	c.Data(200, report.ContentType, report.Content)
}
