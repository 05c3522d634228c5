package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Collection names one of the shared record sets.
type Collection string

const (
	CollectionFixed            Collection = "fixedData"
	CollectionReservations     Collection = "extraRes"
	CollectionSubjects         Collection = "classSubjects"
	CollectionTeacherSchedules Collection = "teacherSchedules"
)

// Collections lists every record set in reset order.
func Collections() []Collection {
	return []Collection{CollectionFixed, CollectionReservations, CollectionSubjects, CollectionTeacherSchedules}
}

// ParseCollection validates a collection name.
func ParseCollection(raw string) (Collection, bool) {
	for _, c := range Collections() {
		if string(c) == raw {
			return c, true
		}
	}
	return "", false
}

// Record is a stored document in one collection.
type Record struct {
	Collection Collection     `db:"collection" json:"collection"`
	Key        string         `db:"record_key" json:"key"`
	Payload    types.JSONText `db:"payload" json:"payload"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}

// RecordWrite is a single upsert inside a batch commit.
type RecordWrite struct {
	Collection Collection
	Key        string
	Payload    []byte
}

// CellValue is the payload of fixed bookings, class subjects and teacher schedules.
type CellValue struct {
	Val string `json:"val"`
}

// Reservation is a one-off dated room booking. Room holds the display label.
type Reservation struct {
	ID        string `json:"id"`
	Room      string `json:"room"`
	Date      string `json:"date"`
	Period    string `json:"period"`
	ClassName string `json:"className"`
}

// SortDate implements catalog.Ranked.
func (r Reservation) SortDate() string { return r.Date }

// SortPeriod implements catalog.Ranked.
func (r Reservation) SortPeriod() string { return r.Period }

// SortRoom implements catalog.Ranked.
func (r Reservation) SortRoom() string { return r.Room }

// ReservationPayload is the stored form of a reservation; the id lives in the record key.
type ReservationPayload struct {
	Room      string `json:"room"`
	Date      string `json:"date"`
	Period    string `json:"period"`
	ClassName string `json:"className"`
}

// Snapshot is the full current content of one collection.
type Snapshot struct {
	Collection   Collection        `json:"collection"`
	Cells        map[string]string `json:"cells,omitempty"`
	Reservations []Reservation     `json:"reservations,omitempty"`
	Version      uint64            `json:"version"`
	At           time.Time         `json:"at"`
}

// Len returns the number of records in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	if s.Collection == CollectionReservations {
		return len(s.Reservations)
	}
	return len(s.Cells)
}

// ChangeEvent announces that a collection changed, so every instance refreshes its subscribers.
type ChangeEvent struct {
	Collection Collection `json:"collection"`
	Origin     string     `json:"origin"`
	At         time.Time  `json:"at"`
}
