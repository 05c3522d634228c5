package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classsync-api/internal/service"
	"github.com/noah-isme/classsync-api/pkg/response"
)

type timetableReporter interface {
	TimetableReport(ctx context.Context, format string) (*service.ReportFile, error)
}

// ReportHandler exposes the printable timetable downloads.
type ReportHandler struct {
	reports timetableReporter
}

// NewReportHandler constructs handler.
func NewReportHandler(reports timetableReporter) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Timetable godoc
// @Summary Whole-school class timetable
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /reports/timetable [get]
func (h *ReportHandler) Timetable(c *gin.Context) {
	file, err := h.reports.TimetableReport(c.Request.Context(), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.Filename, file.ContentType, file.Content)
}
