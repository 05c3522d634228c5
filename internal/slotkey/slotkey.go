// Package slotkey converts between typed slot identifiers and the dash-joined
// strings used as record keys in the store.
package slotkey

import (
	"strings"
	"time"

	"github.com/noah-isme/classsync-api/internal/catalog"
)

// Separator joins key segments.
const Separator = "-"

// DateLayout is the ISO calendar date used in reservation keys.
const DateLayout = "2006-01-02"

// Encode joins segments with the separator. Segments are not validated.
func Encode(segments ...string) string {
	return strings.Join(segments, Separator)
}

// Decode splits a key on the separator. It never fails; callers validate the segment count.
func Decode(key string) []string {
	return strings.Split(key, Separator)
}

// SlotKey addresses a weekly cell: a room, teacher or class at a day and period.
type SlotKey struct {
	Resource string `json:"resource"`
	Day      string `json:"day"`
	Period   string `json:"period"`
}

// String renders the storage key.
func (k SlotKey) String() string {
	return Encode(k.Resource, k.Day, k.Period)
}

// ParseSlotKey decodes resource-day-period. Day and period are always the last
// two segments so class resources such as "1-1" survive the split.
func ParseSlotKey(key string) (SlotKey, bool) {
	parts := Decode(key)
	if len(parts) < 3 {
		return SlotKey{}, false
	}
	n := len(parts)
	k := SlotKey{
		Resource: Encode(parts[:n-2]...),
		Day:      parts[n-2],
		Period:   parts[n-1],
	}
	if k.Resource == "" || !catalog.IsDay(k.Day) || !catalog.IsPeriod(k.Period) {
		return SlotKey{}, false
	}
	return k, true
}

// ReservationKey addresses a dated room slot. Room holds the display label.
type ReservationKey struct {
	Date   string `json:"date"`
	Room   string `json:"room"`
	Period string `json:"period"`
}

// String renders the storage key.
func (k ReservationKey) String() string {
	return Encode(k.Date, k.Room, k.Period)
}

// ParseReservationKey decodes YYYY-MM-DD-room-period.
func ParseReservationKey(key string) (ReservationKey, bool) {
	parts := Decode(key)
	if len(parts) != 5 {
		return ReservationKey{}, false
	}
	k := ReservationKey{
		Date:   Encode(parts[0], parts[1], parts[2]),
		Room:   parts[3],
		Period: parts[4],
	}
	if _, err := time.Parse(DateLayout, k.Date); err != nil {
		return ReservationKey{}, false
	}
	if k.Room == "" || !catalog.IsPeriod(k.Period) {
		return ReservationKey{}, false
	}
	return k, true
}
