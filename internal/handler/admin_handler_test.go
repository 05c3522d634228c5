package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classsync-api/internal/dto"
	appErrors "github.com/noah-isme/classsync-api/pkg/errors"
)

type importerMock struct {
	body     string
	encoding string
	err      error
}

func (m *importerMock) Import(ctx context.Context, r io.Reader, encoding string) (*dto.ImportReport, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read import file")
	}
	m.body = string(raw)
	m.encoding = encoding
	if m.err != nil {
		return nil, m.err
	}
	return &dto.ImportReport{Rows: 1, Applied: 1, Encoding: "utf-8"}, nil
}

type resetterMock struct {
	req dto.ResetRequest
}

func (m *resetterMock) Reset(ctx context.Context, req dto.ResetRequest) (*dto.ResetResult, error) {
	m.req = req
	if !req.Confirm {
		return nil, appErrors.ErrConfirmationRequired
	}
	return &dto.ResetResult{Removed: map[string]int64{"fixedData": 3}, Total: 3}, nil
}

func newAdminRouter(imp importer, res resetter, maxBytes int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAdminHandler(imp, res, maxBytes)
	r := gin.New()
	r.POST("/admin/import", h.Import)
	r.POST("/admin/reset", h.Reset)
	return r
}

const sampleRow = "강당,월,1교시,3-1,기초시간표\n"

func TestAdminImportRawBody(t *testing.T) {
	imp := &importerMock{}
	r := newAdminRouter(imp, &resetterMock{}, 0)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/import?encoding=euc-kr", strings.NewReader(sampleRow))
	req.Header.Set("Content-Type", "text/csv")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, sampleRow, imp.body)
	assert.Equal(t, "euc-kr", imp.encoding)
	assert.Contains(t, w.Body.String(), `"applied":1`)
}

func TestAdminImportMultipart(t *testing.T) {
	imp := &importerMock{}
	r := newAdminRouter(imp, &resetterMock{}, 0)

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile("file", "timetable.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(sampleRow))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/import", buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, sampleRow, imp.body)
}

func TestAdminImportMissingFileField(t *testing.T) {
	r := newAdminRouter(&importerMock{}, &resetterMock{}, 0)

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	require.NoError(t, writer.WriteField("note", "no file"))
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/import", buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminImportTooLarge(t *testing.T) {
	r := newAdminRouter(&importerMock{}, &resetterMock{}, 16)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/import", strings.NewReader(strings.Repeat(sampleRow, 4)))
	req.Header.Set("Content-Type", "text/csv")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestAdminReset(t *testing.T) {
	res := &resetterMock{}
	r := newAdminRouter(&importerMock{}, res, 0)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/reset", strings.NewReader(`{"confirm":false}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/admin/reset", strings.NewReader(`{"confirm":true,"pin":"1234"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1234", res.req.Pin)
	assert.Contains(t, w.Body.String(), `"total":3`)
}
