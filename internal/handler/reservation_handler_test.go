package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classsync-api/internal/models"
	"github.com/noah-isme/classsync-api/internal/service"
	appErrors "github.com/noah-isme/classsync-api/pkg/errors"
)

type reservationServiceMock struct {
	reserveResp *models.Reservation
	reserveErr  error
	lastReq     service.CreateReservationRequest
	cancelled   string
}

func (m *reservationServiceMock) Reserve(ctx context.Context, req service.CreateReservationRequest) (*models.Reservation, error) {
	m.lastReq = req
	return m.reserveResp, m.reserveErr
}

func (m *reservationServiceMock) Cancel(ctx context.Context, id string) error {
	m.cancelled = id
	return nil
}

type reservationStatusMock struct {
	groups []models.RoomReservations
}

func (m *reservationStatusMock) ReservationStatus(ctx context.Context) ([]models.RoomReservations, error) {
	return m.groups, nil
}

func newReservationRouter(svc reservationService, status reservationStatusSource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewReservationHandler(svc, status)
	r := gin.New()
	r.GET("/reservations", h.List)
	r.POST("/reservations", h.Create)
	r.DELETE("/reservations/:id", h.Cancel)
	return r
}

func postReservation(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/reservations", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestReservationHandlerCreate(t *testing.T) {
	svc := &reservationServiceMock{reserveResp: &models.Reservation{ID: "2026-03-02-강당-1", Room: "강당", Date: "2026-03-02", Period: "1", ClassName: "1-1"}}
	r := newReservationRouter(svc, &reservationStatusMock{})

	w := postReservation(r, `{"room":"gangdang","date":"2026-03-02","period":"1","className":"1-1"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "gangdang", svc.lastReq.Room)
	assert.Contains(t, w.Body.String(), `"id":"2026-03-02-강당-1"`)
}

func TestReservationHandlerMapsPolicyErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{appErrors.ErrWeekendNotBookable, http.StatusUnprocessableEntity, "WEEKEND_NOT_BOOKABLE"},
		{appErrors.ErrSlotAlreadyReserved, http.StatusConflict, "SLOT_ALREADY_RESERVED"},
	}
	for _, tc := range cases {
		r := newReservationRouter(&reservationServiceMock{reserveErr: tc.err}, &reservationStatusMock{})
		w := postReservation(r, `{"room":"강당","date":"2026-03-07","period":"1","className":"1-1"}`)
		assert.Equal(t, tc.status, w.Code)
		assert.Contains(t, w.Body.String(), tc.code)
	}
}

func TestReservationHandlerCreateInvalidBody(t *testing.T) {
	svc := &reservationServiceMock{}
	r := newReservationRouter(svc, &reservationStatusMock{})
	w := postReservation(r, `[]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, svc.lastReq.Room)
}

func TestReservationHandlerCancel(t *testing.T) {
	svc := &reservationServiceMock{}
	r := newReservationRouter(svc, &reservationStatusMock{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/reservations/2026-03-02-%EA%B0%95%EB%8B%B9-1", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "2026-03-02-강당-1", svc.cancelled)
}

func TestReservationHandlerListIncludesTotal(t *testing.T) {
	status := &reservationStatusMock{groups: []models.RoomReservations{
		{Room: "강당", Count: 2, Reservations: []models.Reservation{{ID: "a"}, {ID: "b"}}},
		{Room: "운동장", Count: 1, Reservations: []models.Reservation{{ID: "c"}}},
	}}
	r := newReservationRouter(&reservationServiceMock{}, status)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reservations", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":3`)
}
