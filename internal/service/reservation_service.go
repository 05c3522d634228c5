package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/classsync-api/internal/catalog"
	"github.com/noah-isme/classsync-api/internal/models"
	"github.com/noah-isme/classsync-api/internal/slotkey"
	appErrors "github.com/noah-isme/classsync-api/pkg/errors"
)

type reservationStore interface {
	Reservations(ctx context.Context) ([]models.Reservation, error)
	CreateReservation(ctx context.Context, payload models.ReservationPayload) (*models.Reservation, error)
	CreateReservationIfAbsent(ctx context.Context, payload models.ReservationPayload) (*models.Reservation, bool, error)
	DeleteReservation(ctx context.Context, key slotkey.ReservationKey) error
}

// CreateReservationRequest is the payload for booking a room on a date. Room accepts the id or the label.
type CreateReservationRequest struct {
	Room      string `json:"room" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Period    string `json:"period" validate:"required"`
	ClassName string `json:"className" validate:"required"`
}

// Reservation outcomes reported to metrics.
const (
	ReservationAccepted     = "accepted"
	ReservationWeekend      = "weekend"
	ReservationDoubleBooked = "double_booked"
	ReservationFailed       = "failed"
)

// ReservationService books and cancels extra reservations.
type ReservationService struct {
	store     reservationStore
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	strict    bool
}

// NewReservationService constructs a ReservationService. In strict mode the slot is claimed with an
// insert-if-absent instead of a separate existence check.
func NewReservationService(store reservationStore, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger, strict bool) *ReservationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReservationService{store: store, validator: validate, metrics: metrics, logger: logger, strict: strict}
}

// Reserve validates the request, applies the booking rules and persists the reservation.
//
// Outside strict mode two callers reserving the same slot concurrently can both pass the
// check; the later write wins.
func (s *ReservationService) Reserve(ctx context.Context, req CreateReservationRequest) (*models.Reservation, error) {
	payload, err := s.normalize(req)
	if err != nil {
		return nil, err
	}

	var reservation *models.Reservation
	if s.strict {
		reservation, err = s.reserveStrict(ctx, payload)
	} else {
		reservation, err = s.reserveBestEffort(ctx, payload)
	}
	s.metrics.RecordReservation(outcomeOf(err))
	if err != nil {
		return nil, err
	}

	s.logger.Info("reservation created",
		zap.String("id", reservation.ID),
		zap.String("class", reservation.ClassName),
		zap.Bool("strict", s.strict))
	return reservation, nil
}

// Cancel removes a reservation by id. Unknown or malformed ids are a no-op.
func (s *ReservationService) Cancel(ctx context.Context, id string) error {
	key, ok := slotkey.ParseReservationKey(id)
	if !ok {
		s.logger.Debug("ignoring malformed reservation id", zap.String("id", id))
		return nil
	}
	return s.store.DeleteReservation(ctx, key)
}

// List returns all reservations ordered chronologically.
func (s *ReservationService) List(ctx context.Context) ([]models.Reservation, error) {
	return s.store.Reservations(ctx)
}

func (s *ReservationService) reserveBestEffort(ctx context.Context, payload models.ReservationPayload) (*models.Reservation, error) {
	existing, err := s.store.Reservations(ctx)
	if err != nil {
		return nil, err
	}
	if err := EvaluateReservation(payload, existing); err != nil {
		return nil, err
	}
	return s.store.CreateReservation(ctx, payload)
}

func (s *ReservationService) reserveStrict(ctx context.Context, payload models.ReservationPayload) (*models.Reservation, error) {
	if err := EvaluateReservation(payload, nil); err != nil {
		return nil, err
	}
	reservation, inserted, err := s.store.CreateReservationIfAbsent(ctx, payload)
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, appErrors.Clone(appErrors.ErrSlotAlreadyReserved, "이미 예약된 시간입니다")
	}
	return reservation, nil
}

func (s *ReservationService) normalize(req CreateReservationRequest) (models.ReservationPayload, error) {
	req.Room = strings.TrimSpace(req.Room)
	req.Date = strings.TrimSpace(req.Date)
	req.Period = strings.TrimSpace(req.Period)
	req.ClassName = strings.TrimSpace(req.ClassName)
	if err := s.validator.Struct(req); err != nil {
		return models.ReservationPayload{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reservation payload")
	}

	room := req.Room
	if label, ok := catalog.RoomLabel(room); ok {
		room = label
	} else if !catalog.IsRoomLabel(room) {
		return models.ReservationPayload{}, appErrors.Clone(appErrors.ErrValidation, "unknown room "+req.Room)
	}
	period := req.Period
	if id, ok := catalog.PeriodID(period); ok {
		period = id
	} else if !catalog.IsPeriod(period) {
		return models.ReservationPayload{}, appErrors.Clone(appErrors.ErrValidation, "unknown period "+req.Period)
	}
	if !catalog.IsClass(req.ClassName) {
		return models.ReservationPayload{}, appErrors.Clone(appErrors.ErrValidation, "unknown class "+req.ClassName)
	}

	return models.ReservationPayload{Room: room, Date: req.Date, Period: period, ClassName: req.ClassName}, nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return ReservationAccepted
	case errors.Is(err, appErrors.ErrWeekendNotBookable):
		return ReservationWeekend
	case errors.Is(err, appErrors.ErrSlotAlreadyReserved):
		return ReservationDoubleBooked
	default:
		return ReservationFailed
	}
}
