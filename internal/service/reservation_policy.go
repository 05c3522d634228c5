package service

import (
	"time"

	"github.com/noah-isme/classsync-api/internal/models"
	"github.com/noah-isme/classsync-api/internal/slotkey"
	appErrors "github.com/noah-isme/classsync-api/pkg/errors"
)

// EvaluateReservation applies the booking rules in order and returns the first violation:
// weekend dates are rejected, then a reservation already holding the same room label,
// date and period. Room must be the display label.
func EvaluateReservation(req models.ReservationPayload, existing []models.Reservation) error {
	if err := checkWeekday(req.Date); err != nil {
		return err
	}
	for _, r := range existing {
		if r.Room == req.Room && r.Date == req.Date && r.Period == req.Period {
			return appErrors.Clone(appErrors.ErrSlotAlreadyReserved, "이미 예약된 시간입니다: "+r.ClassName)
		}
	}
	return nil
}

func checkWeekday(date string) error {
	day, err := time.ParseInLocation(slotkey.DateLayout, date, time.UTC)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date must be YYYY-MM-DD")
	}
	switch day.Weekday() {
	case time.Saturday, time.Sunday:
		return appErrors.Clone(appErrors.ErrWeekendNotBookable, "토요일 또는 일요일은 휴일이므로 예약할 수 없습니다")
	}
	return nil
}
