package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classsync-api/internal/models"
	"github.com/noah-isme/classsync-api/internal/service"
	appErrors "github.com/noah-isme/classsync-api/pkg/errors"
	"github.com/noah-isme/classsync-api/pkg/response"
)

type reservationService interface {
	Reserve(ctx context.Context, req service.CreateReservationRequest) (*models.Reservation, error)
	Cancel(ctx context.Context, id string) error
}

type reservationStatusSource interface {
	ReservationStatus(ctx context.Context) ([]models.RoomReservations, error)
}

// ReservationHandler books, cancels and lists extra reservations.
type ReservationHandler struct {
	service reservationService
	status  reservationStatusSource
}

// NewReservationHandler constructs the handler.
func NewReservationHandler(service reservationService, status reservationStatusSource) *ReservationHandler {
	return &ReservationHandler{service: service, status: status}
}

// List godoc
// @Summary Reservations grouped by room
// @Tags Reservations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /reservations [get]
func (h *ReservationHandler) List(c *gin.Context) {
	groups, err := h.status.ReservationStatus(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	total := 0
	for _, g := range groups {
		total += g.Count
	}
	response.JSON(c, http.StatusOK, groups, map[string]interface{}{"total": total})
}

// Create godoc
// @Summary Reserve a room for one period on a date
// @Tags Reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body service.CreateReservationRequest true "Reservation"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /reservations [post]
func (h *ReservationHandler) Create(c *gin.Context) {
	var req service.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reservation payload"))
		return
	}
	reservation, err := h.service.Reserve(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, reservation)
}

// Cancel godoc
// @Summary Cancel a reservation
// @Description The id is date-room-period. Cancelling an unknown reservation succeeds.
// @Tags Reservations
// @Security BearerAuth
// @Param id path string true "Reservation id"
// @Success 204
// @Router /reservations/{id} [delete]
func (h *ReservationHandler) Cancel(c *gin.Context) {
	if err := h.service.Cancel(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
