package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/campushub/room-booking-api/internal/models"
	appErrors "github.com/campushub/room-booking-api/pkg/errors"
	"github.com/campushub/room-booking-api/pkg/export"
)

type reportBookingRepository interface {
	List(ctx context.Context, filter models.BookingFilter) ([]models.BookingDetail, int, error)
}

// ReportFormat selects the rendered output of a booking report.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// Report is a rendered booking export ready to be written to a response.
type Report struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ReportService renders booking exports for administrators.
type ReportService struct {
	repo   reportBookingRepository
	csv    *export.CSVExporter
	pdf    *export.PDFExporter
	logger *zap.Logger
}

// NewReportService constructs a ReportService instance.
func NewReportService(repo reportBookingRepository, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		repo:   repo,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
		logger: logger,
	}
}

// BookingReport renders every booking matching the filter into the requested
// format. Pagination is bypassed so exports always cover the full result set.
func (s *ReportService) BookingReport(ctx context.Context, filter models.BookingFilter, format ReportFormat) (*Report, error) {
	filter.Page = 1
	filter.PageSize = 10000

	bookings, _, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings for report")
	}

	dataset := export.Dataset{
		Headers: []string{"Date", "Start", "End", "Room", "Building", "Level", "Venue Type", "Lecturer", "Email"},
		Rows:    make([]map[string]string, 0, len(bookings)),
	}
	for _, b := range bookings {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":       b.BookingDate,
			"Start":      b.StartTime,
			"End":        b.EndTime,
			"Room":       b.RoomCode,
			"Building":   b.BuildingName,
			"Level":      b.Level,
			"Venue Type": b.VenueTypeName,
			"Lecturer":   b.LecturerName,
			"Email":      b.LecturerEmail,
		})
	}

	name := "room-bookings"
	if filter.Date != "" {
		name = fmt.Sprintf("room-bookings-%s", filter.Date)
	}

	switch format {
	case ReportFormatCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return &Report{
			FileName:    name + ".csv",
			ContentType: "text/csv",
			Content:     content,
		}, nil
	case ReportFormatPDF:
		content, err := s.pdf.Render(dataset, "Room Booking Report")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return &Report{
			FileName:    name + ".pdf",
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report format %q", format))
	}
}
