package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/course-registration-api/internal/models"
	appErrors "github.com/noah-isme/course-registration-api/pkg/errors"
	"github.com/noah-isme/course-registration-api/pkg/export"
)

// RosterFormat selects the rendered output type.
type RosterFormat string

// Supported roster formats.
const (
	RosterFormatCSV RosterFormat = "csv"
	RosterFormatPDF RosterFormat = "pdf"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// RosterExport carries a rendered course roster.
type RosterExport struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders course rosters for download.
type ExportService struct {
	courses     analyticsCourseStore
	enrollments rosterEnrollmentStore
	csv         csvRenderer
	pdf         pdfRenderer
	logger      *zap.Logger
}

type rosterEnrollmentStore interface {
	FindByCourse(ctx context.Context, courseID string) ([]models.Enrollment, error)
}

// NewExportService constructs an ExportService.
func NewExportService(courses analyticsCourseStore, enrollments rosterEnrollmentStore, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		courses:     courses,
		enrollments: enrollments,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		logger:      logger,
	}
}

// CourseRoster renders the enrollment roster for a course in the requested
// format.
func (s *ExportService) CourseRoster(ctx context.Context, courseID string, format RosterFormat) (*RosterExport, error) {
	course, err := s.courses.FindByID(ctx, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	enrollments, err := s.enrollments.FindByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}

	dataset := export.Dataset{
		Headers: []string{"Enrollment ID", "Student ID", "Status", "Enrolled Date"},
	}
	for i := range enrollments {
		e := &enrollments[i]
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Enrollment ID": e.ID,
			"Student ID":    e.StudentID,
			"Status":        string(e.Status),
			"Enrolled Date": e.EnrolledDate.Format("2006-01-02"),
		})
	}

	switch strings.ToLower(string(format)) {
	case string(RosterFormatPDF):
		data, err := s.pdf.Render(dataset, fmt.Sprintf("%s roster", course.Name))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &RosterExport{
			Filename:    fmt.Sprintf("roster-%s.pdf", course.ID),
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	case string(RosterFormatCSV), "":
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &RosterExport{
			Filename:    fmt.Sprintf("roster-%s.csv", course.ID),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format: %s", format))
	}
}
