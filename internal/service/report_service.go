package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/classsync-api/internal/catalog"
	"github.com/noah-isme/classsync-api/internal/models"
	appErrors "github.com/noah-isme/classsync-api/pkg/errors"
	"github.com/noah-isme/classsync-api/pkg/export"
)

// Report formats.
const (
	ReportFormatCSV = "csv"
	ReportFormatPDF = "pdf"
)

type classViewSource interface {
	ClassTimetables(ctx context.Context) ([]models.ClassView, error)
}

type csvRenderer interface {
	Render(tables []export.Table) ([]byte, error)
}

type pdfRenderer interface {
	Render(title string, tables []export.Table) ([]byte, error)
}

// ReportFile is a rendered download.
type ReportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ReportService renders the whole-school class timetable report.
type ReportService struct {
	views  classViewSource
	csv    csvRenderer
	pdf    pdfRenderer
	title  string
	logger *zap.Logger
	now    func() time.Time
}

// NewReportService constructs a ReportService.
func NewReportService(views classViewSource, csv csvRenderer, pdf pdfRenderer, title string, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if title == "" {
		title = "Class Timetable Report"
	}
	return &ReportService{views: views, csv: csv, pdf: pdf, title: title, logger: logger, now: time.Now}
}

// TimetableReport renders one table per class in the requested format.
func (s *ReportService) TimetableReport(ctx context.Context, format string) (*ReportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ReportFormatCSV
	}
	if format != ReportFormatCSV && format != ReportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	views, err := s.views.ClassTimetables(ctx)
	if err != nil {
		return nil, err
	}
	tables := make([]export.Table, 0, len(views))
	for _, v := range views {
		tables = append(tables, classTable(v))
	}

	stamp := s.now().UTC().Format("20060102")
	var file ReportFile
	switch format {
	case ReportFormatPDF:
		file.Content, err = s.pdf.Render(s.title, tables)
		file.ContentType = "application/pdf"
	default:
		file.Content, err = s.csv.Render(tables)
		file.ContentType = "text/csv; charset=utf-8"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}
	file.Filename = fmt.Sprintf("timetable-%s.%s", stamp, format)

	s.logger.Info("timetable report rendered", zap.String("format", format), zap.Int("classes", len(tables)), zap.Int("bytes", len(file.Content)))
	return &file, nil
}

func classTable(view models.ClassView) export.Table {
	headers := []string{"교시"}
	for _, d := range catalog.Days() {
		headers = append(headers, d.Label)
	}
	table := export.Table{Title: view.Class + " 시간표", Headers: headers}
	for _, row := range view.Rows {
		line := []string{row.PeriodLabel}
		for _, c := range row.Cells {
			line = append(line, cellText(c))
		}
		table.Rows = append(table.Rows, line)
	}
	return table
}

func cellText(c models.Cell) string {
	switch {
	case c.Room != "" && c.Value != "":
		return c.Room + " / " + c.Value
	case c.Room != "":
		return c.Room
	default:
		return c.Value
	}
}
