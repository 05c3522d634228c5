package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classsync-api/internal/dto"
	appErrors "github.com/noah-isme/classsync-api/pkg/errors"
	"github.com/noah-isme/classsync-api/pkg/response"
)

type importer interface {
	Import(ctx context.Context, r io.Reader, encoding string) (*dto.ImportReport, error)
}

type resetter interface {
	Reset(ctx context.Context, req dto.ResetRequest) (*dto.ResetResult, error)
}

// AdminHandler exposes bulk import and full reset.
type AdminHandler struct {
	importer importer
	resetter resetter
	maxBytes int64
}

// NewAdminHandler constructs the handler. maxBytes caps the import upload size.
func NewAdminHandler(importer importer, resetter resetter, maxBytes int64) *AdminHandler {
	if maxBytes <= 0 {
		maxBytes = 2 << 20
	}
	return &AdminHandler{importer: importer, resetter: resetter, maxBytes: maxBytes}
}

// Import godoc
// @Summary Import fixed bookings and teacher schedules from CSV
// @Description Columns: name, day, period, content, type (기초시간표 or 교담시간표). Accepts a multipart "file" field or a raw body. Unresolvable rows are reported and skipped; the rest commit atomically.
// @Tags Admin
// @Accept multipart/form-data
// @Accept text/csv
// @Produce json
// @Security BearerAuth
// @Param file formData file false "CSV file"
// @Param encoding query string false "auto (default), euc-kr or utf-8"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/import [post]
func (h *AdminHandler) Import(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)

	var body io.Reader = c.Request.Body
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("file")
		if err != nil {
			response.Error(c, uploadError(err, "file field is required"))
			return
		}
		file, err := header.Open()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to open upload"))
			return
		}
		defer file.Close()
		body = file
	}

	report, err := h.importer.Import(c.Request.Context(), body, c.Query("encoding"))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusRequestEntityTooLarge, "import file too large")
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report)
}

// Reset godoc
// @Summary Remove every booking, reservation, subject and teacher schedule
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.ResetRequest true "Confirmation"
// @Success 200 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /admin/reset [post]
func (h *AdminHandler) Reset(c *gin.Context) {
	var req dto.ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reset payload"))
		return
	}
	result, err := h.resetter.Reset(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

func uploadError(err error, message string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusRequestEntityTooLarge, "import file too large")
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message)
}
